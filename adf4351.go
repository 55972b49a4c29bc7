// Package adf4351 implements a driver for the Analog Devices ADF4351
// wideband fractional-N frequency synthesizer. The driver plans a register
// configuration from a target frequency, packs it into the chip's six
// 32-bit words and streams them over a write-only serial bus, latching each
// word with the LE pin.
package adf4351

import (
	"errors"
	"runtime"
	"strconv"
	"sync"
	"time"

	"log/slog"

	"github.com/tinysdr/adf4351/regmap"
)

// Datasheet timing: data to LE setup and LE pulse width are single-digit
// nanoseconds; these generous delays also cover slow bit-banged buses.
const (
	latchSetupDelay = 5 * time.Microsecond
	latchPulseWidth = 10 * time.Microsecond
)

// Device drives one ADF4351. The bus and latch pin are owned exclusively by
// the Device for the duration of each six-word transaction; concurrent
// SetFrequency calls serialize on an internal lock.
//
// The Device holds no synthesizer state between calls. The only state that
// matters lives in the chip itself.
type Device struct {
	mu     sync.Mutex
	ce     outputPin
	le     outputPin
	bus    Bus
	logger *slog.Logger
}

// New creates an unconfigured Device.
//
// `ce` drives the chip enable pin and may be nil if CE is strapped high.
// `le` drives the load enable (latch) pin.
// `bus` transmits 32-bit words MSB first (SPI mode 0, MOSI to DATA).
// `logger` may be nil to disable logging.
func New(ce, le outputPin, bus Bus, logger *slog.Logger) *Device {
	if le == nil || bus == nil {
		panic("nil LE pin or bus")
	}
	return &Device{
		ce:     ce,
		le:     le,
		bus:    bus,
		logger: logger,
	}
}

// Enable powers the device up via the CE pin. Output activates once a full
// register set has been written.
func (d *Device) Enable() {
	if d.ce != nil {
		d.ce(true)
	}
}

// Disable powers the device down and three-states the charge pump.
func (d *Device) Disable() {
	if d.ce != nil {
		d.ce(false)
	}
}

// SetFrequency plans, encodes and programs a full synthesizer configuration
// for cfg. The returned error is either a planning error (bad Config, see
// Plan) or a transport fault, in which case the chip holds an undefined
// partial configuration and the caller must call SetFrequency again to
// reach a known state.
func (d *Device) SetFrequency(cfg Config) error {
	p, err := Plan(cfg)
	if err != nil {
		d.logerr("SetFrequency:plan", slog.Uint64("target", cfg.Frequency), slog.String("err", err.Error()))
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.info("SetFrequency",
		slog.Uint64("target", cfg.Frequency),
		slog.Uint64("actual", p.Frequency()),
		slog.Uint64("vco", p.VCOFrequency()),
		slog.Uint64("pfd", uint64(p.PFD)),
		slog.Uint64("rfdiv", uint64(1)<<p.RFDividerSelect),
	)
	return d.writeRegisterSet(p.Encode())
}

// WriteRegisterSet programs a previously encoded register set, for callers
// that plan once and re-apply, or that hand-tune register fields.
func (d *Device) WriteRegisterSet(rs regmap.RegisterSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegisterSet(rs)
}

// writeRegisterSet streams all six words in descending address order. The
// order is a hard protocol invariant: the chip buffers writes and applies
// the whole configuration atomically on the register 0 latch, so register 0
// must always land last. On error the remaining writes are abandoned; a
// partial register set is internally inconsistent and only a full rewrite
// recovers.
func (d *Device) writeRegisterSet(rs regmap.RegisterSet) error {
	for i := regmap.NumRegisters - 1; i >= 0; i-- {
		if err := d.writeRegister(rs[i]); err != nil {
			d.logerr("writeRegisterSet:abort",
				slog.Int("reg", i),
				slog.String("err", err.Error()),
			)
			return errjoin(errors.New("write R"+strconv.Itoa(i)+" failed, chip state undefined"), err)
		}
	}
	d.debug("writeRegisterSet:done")
	return nil
}

// writeRegister clocks one word into the shift register and strobes LE to
// move it to the latch addressed by the word's control bits. A busy bus
// retries the same word; once latched the word is never revisited.
func (d *Device) writeRegister(w uint32) error {
	d.le(false)
	for {
		err := d.bus.WriteWord(w)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrBusy) {
			return err
		}
		d.trace("writeRegister:busy", slog.Uint64("word", uint64(w)))
		runtime.Gosched()
	}
	time.Sleep(latchSetupDelay)
	d.le(true)
	time.Sleep(latchPulseWidth)
	d.le(false)
	d.trace("writeRegister",
		slog.Uint64("word", uint64(w)),
		slog.Uint64("reg", uint64(regmap.Addr(w))),
	)
	return nil
}
