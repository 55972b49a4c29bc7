package adf4351

import (
	"errors"

	"golang.org/x/exp/constraints"

	"github.com/tinysdr/adf4351/regmap"
)

// Planning errors. These are configuration problems: retrying with the same
// inputs cannot succeed, the caller must supply a different frequency plan.
var (
	ErrFrequencyOutOfRange = errors.New("output frequency out of range")
	ErrReferenceOutOfRange = errors.New("reference frequency out of range")
	ErrInvalidRCounter     = errors.New("R counter out of range")
	ErrPFDOutOfRange       = errors.New("phase detector frequency out of range")
	ErrNoValidDivider      = errors.New("no RF divider places VCO in band")
	ErrIntegerTooSmall     = errors.New("INT below prescaler minimum")
	ErrIntegerTooLarge     = errors.New("INT exceeds 16 bits")
)

// Config is the caller supplied frequency intent for one SetFrequency call.
// The driver derives and validates all register fields from it; nothing is
// retained between calls.
type Config struct {
	// RefIn is the reference input frequency in Hertz, 10..250 MHz.
	RefIn uint32
	// Frequency is the desired output frequency in Hertz.
	Frequency uint64
	// ChannelSpacing bounds the fractional resolution in Hertz. The
	// modulus is derived as fPFD/ChannelSpacing. Zero selects the default
	// modulus of 4000.
	ChannelSpacing uint32
	// RCounter divides the reference before the phase detector, 1..1023.
	RCounter uint16
	// RefDoubler enables the REFin 2x doubler.
	RefDoubler bool
	// RefDiv2 enables the divide-by-2 between R counter and PFD.
	RefDiv2 bool
	// Power sets the primary RF output level.
	Power regmap.OutputPower
	// AuxEnable turns on the auxiliary RF output.
	AuxEnable bool
	// AuxFundamental taps the auxiliary output from the fundamental VCO
	// instead of the RF dividers.
	AuxFundamental bool
	// AuxPower sets the auxiliary RF output level.
	AuxPower regmap.OutputPower
	// MuteTillLockDetect gates the RF output stage until lock is reached.
	MuteTillLockDetect bool
	// LowSpur selects low spur noise mode; default is low noise.
	LowSpur bool
	// Muxout selects the diagnostic signal on the MUXOUT pin.
	Muxout regmap.Muxout
	// ChargePumpCurrent is the 4-bit charge pump current code the loop
	// filter was designed for.
	ChargePumpCurrent uint8
}

// DefaultConfig returns a Config for a 25 MHz reference, maximum output
// power and a 2.5 mA charge pump. The caller fills in Frequency and,
// optionally, ChannelSpacing.
func DefaultConfig() Config {
	return Config{
		RefIn:             25_000_000,
		RCounter:          1,
		ChargePumpCurrent: 0b111,
		Power:             regmap.PowerPlus5dBm,
	}
}

// R3 clock divider value used for fast lock / phase resync timeouts. The
// divider mode stays off so the value is inert but deterministic.
const defaultClockDivider = 150

func b2u32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// clamp bounds v to the interval [lo, hi].
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// errjoin joins non-nil errors into a single error formatting as the
// newline concatenation of each message.
func errjoin(errs ...error) error {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	e := &joinError{
		errs: make([]error, 0, n),
	}
	for _, err := range errs {
		if err != nil {
			e.errs = append(e.errs, err)
		}
	}
	return e
}

type joinError struct {
	errs []error
}

func (e *joinError) Error() string {
	var b []byte
	for i, err := range e.errs {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, err.Error()...)
	}
	return string(b)
}

func (e *joinError) Unwrap() []error { return e.errs }
