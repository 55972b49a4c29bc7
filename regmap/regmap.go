// Package regmap describes the ADF4351 register map: the six 32-bit
// configuration words, their bitfield layout and the datasheet operating
// limits. The encoding here must match the datasheet bit for bit; a wrong
// offset does not fail, it programs a wrong frequency.
package regmap

// Each register word carries its own address in the three control bits
// C3..C1 (DB2..DB0). The chip routes the shifted-in word to the latch
// selected by these bits, so transmission order is free to the encoder and
// constrained only by the apply-on-register-0 rule.
const (
	NumRegisters = 6
	AddrBits     = 3
	AddrMask     = 0b111
)

// Operating limits from the ADF4351 datasheet.
const (
	// REFin input frequency range.
	RefInFreqMin = 10_000_000
	RefInFreqMax = 250_000_000

	// Maximum phase frequency detector frequency in fractional-N mode.
	PFDFreqFracNMax = 32_000_000

	// Fundamental VCO range, before output dividers.
	VCOFreqMin uint64 = 2_200_000_000
	VCOFreqMax uint64 = 4_400_000_000

	// Above 3.6 GHz the 4/5 prescaler is out of spec and 8/9 must be used.
	VCOFreqPrescaler45Max uint64 = 3_600_000_000

	// Output range: fundamental VCO down to divide-by-64.
	OutFreqMin = VCOFreqMin / 64
	OutFreqMax = VCOFreqMax

	// RF divider select is a power-of-two exponent, 2^0..2^6.
	RFDividerSelectMax = 6

	// Fractional modulus range (12-bit field, MOD=0,1 are reserved).
	ModMin = 2
	ModMax = 4095

	// 10-bit reference division factor.
	RCounterMax = 1023

	// Minimum INT value per prescaler mode.
	IntMin45 = 23
	IntMin89 = 75

	// The band select logic clock should stay at or below 125 kHz in the
	// slow logic mode. Its divider is an 8-bit field.
	BandSelectClockMax    = 125_000
	BandSelectClockDivMax = 255
)

// Field locates one logical value inside one of the six register words.
type Field struct {
	Reg  uint8 // register address 0..5
	Off  uint8 // offset of lowest bit
	Bits uint8 // field width
}

// Mask returns the field mask, not shifted into position.
func (f Field) Mask() uint32 {
	return ^uint32(0) >> (32 - f.Bits)
}

// Put returns w with the field set to v. Bits of v outside the field width
// are discarded.
func (f Field) Put(w, v uint32) uint32 {
	return w&^(f.Mask()<<f.Off) | (v&f.Mask())<<f.Off
}

// Get extracts the field value from w.
func (f Field) Get(w uint32) uint32 {
	return (w >> f.Off) & f.Mask()
}

// Register 0: INT and FRAC.
var (
	// 16-bit integer division factor. 23..65535 with the 4/5 prescaler,
	// 75..65535 with 8/9.
	FieldInt = Field{Reg: 0, Off: 15, Bits: 16}
	// 12-bit fractional numerator, 0..MOD-1.
	FieldFrac = Field{Reg: 0, Off: 3, Bits: 12}
)

// Register 1: prescaler, phase and modulus.
var (
	// When set the part skips VCO band selection on register 0 updates.
	FieldPhaseAdjust = Field{Reg: 1, Off: 28, Bits: 1}
	FieldPrescaler   = Field{Reg: 1, Off: 27, Bits: 1}
	// 12-bit phase word, must be less than MOD.
	FieldPhase = Field{Reg: 1, Off: 15, Bits: 12}
	// 12-bit fractional modulus: ratio of PFD frequency to channel step.
	FieldMod = Field{Reg: 1, Off: 3, Bits: 12}
)

// Register 2: reference path, charge pump and lock detect tuning.
var (
	FieldNoiseMode            = Field{Reg: 2, Off: 29, Bits: 2}
	FieldMuxout               = Field{Reg: 2, Off: 26, Bits: 3}
	FieldRefDoubler           = Field{Reg: 2, Off: 25, Bits: 1}
	FieldRefDiv2              = Field{Reg: 2, Off: 24, Bits: 1}
	FieldRCounter             = Field{Reg: 2, Off: 14, Bits: 10}
	FieldDoubleBuffer         = Field{Reg: 2, Off: 13, Bits: 1}
	FieldChargePumpCurrent    = Field{Reg: 2, Off: 9, Bits: 4}
	FieldLDF                  = Field{Reg: 2, Off: 8, Bits: 1}
	FieldLDP                  = Field{Reg: 2, Off: 7, Bits: 1}
	FieldPDPolarity           = Field{Reg: 2, Off: 6, Bits: 1}
	FieldPowerDown            = Field{Reg: 2, Off: 5, Bits: 1}
	FieldChargePumpThreeState = Field{Reg: 2, Off: 4, Bits: 1}
	FieldCounterReset         = Field{Reg: 2, Off: 3, Bits: 1}
)

// Register 3: band select logic and clock divider.
var (
	FieldBandSelectClockMode = Field{Reg: 3, Off: 23, Bits: 1}
	FieldABP                 = Field{Reg: 3, Off: 22, Bits: 1}
	FieldChargeCancel        = Field{Reg: 3, Off: 21, Bits: 1}
	FieldCSR                 = Field{Reg: 3, Off: 18, Bits: 1}
	FieldClockDividerMode    = Field{Reg: 3, Off: 15, Bits: 2}
	FieldClockDivider        = Field{Reg: 3, Off: 3, Bits: 12}
)

// Register 4: output stage and band select clock divider.
var (
	FieldFeedbackSelect     = Field{Reg: 4, Off: 23, Bits: 1}
	FieldRFDividerSelect    = Field{Reg: 4, Off: 20, Bits: 3}
	FieldBandSelectClockDiv = Field{Reg: 4, Off: 12, Bits: 8}
	FieldVCOPowerDown       = Field{Reg: 4, Off: 11, Bits: 1}
	FieldMuteTillLockDetect = Field{Reg: 4, Off: 10, Bits: 1}
	FieldAuxSelect          = Field{Reg: 4, Off: 9, Bits: 1}
	FieldAuxEnable          = Field{Reg: 4, Off: 8, Bits: 1}
	FieldAuxPower           = Field{Reg: 4, Off: 6, Bits: 2}
	FieldRFEnable           = Field{Reg: 4, Off: 5, Bits: 1}
	FieldOutputPower        = Field{Reg: 4, Off: 3, Bits: 2}
)

// Register 5: lock detect pin mode. Bits DB20:DB19 are reserved and must be
// programmed to 0b11.
var (
	FieldLockDetectPin = Field{Reg: 5, Off: 22, Bits: 2}

	reg5Reserved uint32 = 0b11 << 19
)

// Prescaler selects the dual-modulus prescaler ratio.
type Prescaler uint8

const (
	Prescaler45 Prescaler = iota // 4/5, VCO up to 3.6 GHz, INT >= 23
	Prescaler89                  // 8/9, required above 3.6 GHz, INT >= 75
)

// IntMin returns the minimum legal INT value for the prescaler mode.
func (p Prescaler) IntMin() uint32 {
	if p == Prescaler89 {
		return IntMin89
	}
	return IntMin45
}

func (p Prescaler) String() string {
	if p == Prescaler89 {
		return "8/9"
	}
	return "4/5"
}

// NoiseMode trades spurious performance against phase noise.
type NoiseMode uint8

const (
	NoiseModeLowNoise NoiseMode = 0b00
	NoiseModeLowSpur  NoiseMode = 0b11
)

// Muxout selects the diagnostic signal on the MUXOUT pin.
type Muxout uint8

const (
	MuxoutThreeState Muxout = iota
	MuxoutDVdd
	MuxoutDGnd
	MuxoutRCounter
	MuxoutNDivider
	MuxoutAnalogLock
	MuxoutDigitalLock
)

func (m Muxout) String() string {
	switch m {
	case MuxoutThreeState:
		return "three-state"
	case MuxoutDVdd:
		return "dvdd"
	case MuxoutDGnd:
		return "dgnd"
	case MuxoutRCounter:
		return "r-counter"
	case MuxoutNDivider:
		return "n-divider"
	case MuxoutAnalogLock:
		return "analog-lock"
	case MuxoutDigitalLock:
		return "digital-lock"
	}
	return "unknown"
}

// OutputPower is one of the four discrete RF output levels.
type OutputPower uint8

const (
	PowerMinus4dBm OutputPower = iota
	PowerMinus1dBm
	PowerPlus2dBm
	PowerPlus5dBm
)

// LockDetectPin selects the LD pin behavior (register 5).
type LockDetectPin uint8

const (
	LockDetectLow  LockDetectPin = 0b00
	LockDetectDLD  LockDetectPin = 0b01
	LockDetectHigh LockDetectPin = 0b11
)

// RegisterSet holds the six configuration words indexed by register address.
// The zero value of each word is completed with its address bits by Empty.
type RegisterSet [NumRegisters]uint32

// Empty returns a register set with only the address control bits and the
// register 5 reserved bits programmed.
func Empty() RegisterSet {
	var rs RegisterSet
	for i := range rs {
		rs[i] = uint32(i)
	}
	rs[5] |= reg5Reserved
	return rs
}

// Set programs field f to value v.
func (rs *RegisterSet) Set(f Field, v uint32) {
	rs[f.Reg] = f.Put(rs[f.Reg], v)
}

// Get extracts field f.
func (rs *RegisterSet) Get(f Field) uint32 {
	return f.Get(rs[f.Reg])
}

// Addr returns the register address encoded in the low control bits of word w.
func Addr(w uint32) uint8 {
	return uint8(w & AddrMask)
}

// PFDFrequency computes the phase frequency detector frequency for the
// reference path programmed in register 2:
//
//	fPFD = REFin x (1+D) / (R x (1+T))
func (rs *RegisterSet) PFDFrequency(refIn uint32) uint32 {
	r := rs.Get(FieldRCounter)
	if r == 0 {
		return 0
	}
	return refIn * (1 + rs.Get(FieldRefDoubler)) / r / (1 + rs.Get(FieldRefDiv2))
}

// OutputFrequency reconstructs the programmed output frequency from the
// register contents using integer arithmetic only:
//
//	RFout = (INT*MOD + FRAC) x fPFD / (MOD x RFDivider)
func (rs *RegisterSet) OutputFrequency(refIn uint32) uint64 {
	mod := uint64(rs.Get(FieldMod))
	if mod == 0 {
		return 0
	}
	n := uint64(rs.Get(FieldInt))*mod + uint64(rs.Get(FieldFrac))
	fpfd := uint64(rs.PFDFrequency(refIn))
	div := uint64(1) << rs.Get(FieldRFDividerSelect)
	return n * fpfd / mod / div
}
