package adf4351

import (
	"github.com/tinysdr/adf4351/regmap"
)

// Params is a validated synthesis parameter set derived from a Config by
// Plan. All register fields are fully determined; Encode cannot fail.
type Params struct {
	// Feedback division: fVCO = (Int + Frac/Mod) x fPFD.
	Int  uint32
	Frac uint32 // 0 <= Frac < Mod
	Mod  uint32

	// RF output divider exponent: fOUT = fVCO / 2^RFDividerSelect.
	RFDividerSelect uint8

	// Band select clock divider and logic speed.
	BandSelectClockDiv  uint8
	BandSelectFastLogic bool

	Prescaler regmap.Prescaler

	// Reference path.
	PFD        uint32 // derived phase detector frequency, Hz
	RCounter   uint16
	RefDoubler bool
	RefDiv2    bool

	// Passthrough output and diagnostic codes.
	Power              regmap.OutputPower
	AuxEnable          bool
	AuxFundamental     bool
	AuxPower           regmap.OutputPower
	MuteTillLockDetect bool
	LowSpur            bool
	Muxout             regmap.Muxout
	ChargePumpCurrent  uint8
}

// Plan derives and validates synthesis parameters for cfg. All arithmetic
// is integer: the achieved frequency reported by Frequency is bit exact,
// there is no floating point rounding anywhere in the chain.
func Plan(cfg Config) (Params, error) {
	var p Params
	if cfg.Frequency < regmap.OutFreqMin || cfg.Frequency > regmap.OutFreqMax {
		return p, ErrFrequencyOutOfRange
	}
	if cfg.RefIn < regmap.RefInFreqMin || cfg.RefIn > regmap.RefInFreqMax {
		return p, ErrReferenceOutOfRange
	}
	if cfg.RCounter < 1 || cfg.RCounter > regmap.RCounterMax {
		return p, ErrInvalidRCounter
	}

	// fPFD = REFin x (1+D) / (R x (1+T)).
	fpfd := uint64(cfg.RefIn) * uint64(1+b2u32(cfg.RefDoubler)) /
		uint64(cfg.RCounter) / uint64(1+b2u32(cfg.RefDiv2))
	if fpfd == 0 || fpfd > regmap.PFDFreqFracNMax {
		return p, ErrPFDOutOfRange
	}

	// Smallest power-of-two output divider that lifts the VCO into band.
	vco := cfg.Frequency
	sel := uint8(0)
	for vco < regmap.VCOFreqMin && sel < regmap.RFDividerSelectMax {
		vco *= 2
		sel++
	}
	if vco < regmap.VCOFreqMin || vco > regmap.VCOFreqMax {
		return p, ErrNoValidDivider
	}

	prescaler := regmap.Prescaler45
	if vco > regmap.VCOFreqPrescaler45Max {
		prescaler = regmap.Prescaler89
	}

	// MOD is the ratio of PFD frequency to channel step.
	var mod uint64
	if cfg.ChannelSpacing == 0 {
		mod = 4000
	} else {
		mod = clamp(fpfd/uint64(cfg.ChannelSpacing), regmap.ModMin, regmap.ModMax)
	}

	// fVCO = (INT + FRAC/MOD) x fPFD, so INT and FRAC fall out of the
	// scaled division ratio fVCO x MOD / fPFD.
	nscaled := vco * mod / fpfd
	n := nscaled / mod
	frac := nscaled % mod
	if n < uint64(prescaler.IntMin()) {
		return p, ErrIntegerTooSmall
	}
	if n > uint64(regmap.FieldInt.Mask()) {
		return p, ErrIntegerTooLarge
	}

	// Keep the band select clock at or below 125 kHz. If the 8-bit divider
	// cannot get there the fast band select logic must be used instead.
	bsDiv := (fpfd + regmap.BandSelectClockMax - 1) / regmap.BandSelectClockMax
	fast := false
	if bsDiv > regmap.BandSelectClockDivMax {
		bsDiv = regmap.BandSelectClockDivMax
		fast = true
	}
	if bsDiv < 1 {
		bsDiv = 1
	}

	p = Params{
		Int:                 uint32(n),
		Frac:                uint32(frac),
		Mod:                 uint32(mod),
		RFDividerSelect:     sel,
		BandSelectClockDiv:  uint8(bsDiv),
		BandSelectFastLogic: fast,
		Prescaler:           prescaler,
		PFD:                 uint32(fpfd),
		RCounter:            cfg.RCounter,
		RefDoubler:          cfg.RefDoubler,
		RefDiv2:             cfg.RefDiv2,
		Power:               cfg.Power,
		AuxEnable:           cfg.AuxEnable,
		AuxFundamental:      cfg.AuxFundamental,
		AuxPower:            cfg.AuxPower,
		MuteTillLockDetect:  cfg.MuteTillLockDetect,
		LowSpur:             cfg.LowSpur,
		Muxout:              cfg.Muxout,
		ChargePumpCurrent:   cfg.ChargePumpCurrent & 0b1111,
	}
	return p, nil
}

// Frequency returns the exact output frequency the parameter set produces:
//
//	RFout = (INT*MOD + FRAC) x fPFD / (MOD x 2^RFDividerSelect)
func (p Params) Frequency() uint64 {
	n := uint64(p.Int)*uint64(p.Mod) + uint64(p.Frac)
	return n * uint64(p.PFD) / uint64(p.Mod) / (uint64(1) << p.RFDividerSelect)
}

// VCOFrequency returns the fundamental VCO frequency before output dividers.
func (p Params) VCOFrequency() uint64 {
	return p.Frequency() << p.RFDividerSelect
}

// Encode packs the parameter set into the six register words. It is total:
// every Params produced by Plan maps to exactly one register set.
func (p Params) Encode() regmap.RegisterSet {
	rs := regmap.Empty()

	rs.Set(regmap.FieldInt, p.Int)
	rs.Set(regmap.FieldFrac, p.Frac)

	rs.Set(regmap.FieldPrescaler, uint32(p.Prescaler))
	rs.Set(regmap.FieldMod, p.Mod)

	noise := regmap.NoiseModeLowNoise
	if p.LowSpur {
		noise = regmap.NoiseModeLowSpur
	}
	rs.Set(regmap.FieldNoiseMode, uint32(noise))
	rs.Set(regmap.FieldMuxout, uint32(p.Muxout))
	rs.Set(regmap.FieldRefDoubler, b2u32(p.RefDoubler))
	rs.Set(regmap.FieldRefDiv2, b2u32(p.RefDiv2))
	rs.Set(regmap.FieldRCounter, uint32(p.RCounter))
	rs.Set(regmap.FieldDoubleBuffer, 1)
	rs.Set(regmap.FieldChargePumpCurrent, uint32(p.ChargePumpCurrent))
	// LDF/LDP/ABP stay at their fractional-N recommended zero values.
	rs.Set(regmap.FieldPDPolarity, 1) // passive loop filter

	if p.BandSelectFastLogic {
		rs.Set(regmap.FieldBandSelectClockMode, 1)
	}
	rs.Set(regmap.FieldClockDivider, defaultClockDivider)

	rs.Set(regmap.FieldFeedbackSelect, 1) // fundamental VCO feedback
	rs.Set(regmap.FieldRFDividerSelect, uint32(p.RFDividerSelect))
	rs.Set(regmap.FieldBandSelectClockDiv, uint32(p.BandSelectClockDiv))
	rs.Set(regmap.FieldMuteTillLockDetect, b2u32(p.MuteTillLockDetect))
	rs.Set(regmap.FieldAuxSelect, b2u32(p.AuxFundamental))
	rs.Set(regmap.FieldAuxEnable, b2u32(p.AuxEnable))
	rs.Set(regmap.FieldAuxPower, uint32(p.AuxPower))
	rs.Set(regmap.FieldRFEnable, 1)
	rs.Set(regmap.FieldOutputPower, uint32(p.Power))

	rs.Set(regmap.FieldLockDetectPin, uint32(regmap.LockDetectDLD))

	return rs
}
