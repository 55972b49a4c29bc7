package regmap

import "testing"

func TestEmptyAddressBits(t *testing.T) {
	rs := Empty()
	for i, w := range rs {
		if Addr(w) != uint8(i) {
			t.Errorf("R%d: address bits %d", i, Addr(w))
		}
	}
	// Reserved bits DB20:DB19 of register 5 must be programmed to 0b11.
	if rs[5]>>19&0b11 != 0b11 {
		t.Errorf("R5 reserved bits not set: %#010x", rs[5])
	}
}

func TestFieldPut(t *testing.T) {
	if FieldInt.Mask() != 0xffff {
		t.Errorf("INT mask %#x", FieldInt.Mask())
	}
	if FieldFrac.Mask() != 0xfff {
		t.Errorf("FRAC mask %#x", FieldFrac.Mask())
	}
	rs := Empty()
	rs.Set(FieldInt, 96)
	rs.Set(FieldFrac, 0)
	if rs[0] != 96<<15 {
		t.Errorf("R0 = %#010x", rs[0])
	}
	rs.Set(FieldMod, 250)
	if rs[1] != 250<<3|1 {
		t.Errorf("R1 = %#010x", rs[1])
	}
	// Overwriting a field must not disturb neighbors.
	rs.Set(FieldFrac, 0xfff)
	rs.Set(FieldFrac, 3)
	if Addr(rs[0]) != 0 || rs.Get(FieldInt) != 96 || rs.Get(FieldFrac) != 3 {
		t.Errorf("R0 field overwrite corrupted word: %#010x", rs[0])
	}
	// Values wider than the field are truncated, never smeared.
	rs.Set(FieldRFDividerSelect, 0b1111)
	if rs.Get(FieldRFDividerSelect) != 0b111 {
		t.Errorf("rf divider select = %d", rs.Get(FieldRFDividerSelect))
	}
}

func TestFieldsDisjoint(t *testing.T) {
	fields := []Field{
		FieldInt, FieldFrac,
		FieldPhaseAdjust, FieldPrescaler, FieldPhase, FieldMod,
		FieldNoiseMode, FieldMuxout, FieldRefDoubler, FieldRefDiv2,
		FieldRCounter, FieldDoubleBuffer, FieldChargePumpCurrent,
		FieldLDF, FieldLDP, FieldPDPolarity, FieldPowerDown,
		FieldChargePumpThreeState, FieldCounterReset,
		FieldBandSelectClockMode, FieldABP, FieldChargeCancel, FieldCSR,
		FieldClockDividerMode, FieldClockDivider,
		FieldFeedbackSelect, FieldRFDividerSelect, FieldBandSelectClockDiv,
		FieldVCOPowerDown, FieldMuteTillLockDetect, FieldAuxSelect,
		FieldAuxEnable, FieldAuxPower, FieldRFEnable, FieldOutputPower,
		FieldLockDetectPin,
	}
	var used [NumRegisters]uint32
	for i := range used {
		used[i] = AddrMask // control bits
	}
	used[5] |= reg5Reserved
	for _, f := range fields {
		m := f.Mask() << f.Off
		if used[f.Reg]&m != 0 {
			t.Errorf("field %+v overlaps R%d bits %#010x", f, f.Reg, used[f.Reg]&m)
		}
		used[f.Reg] |= m
	}
}

func TestPFDFrequency(t *testing.T) {
	rs := Empty()
	rs.Set(FieldRCounter, 1)
	if got := rs.PFDFrequency(25_000_000); got != 25_000_000 {
		t.Errorf("pfd = %d", got)
	}
	rs.Set(FieldRefDoubler, 1)
	rs.Set(FieldRefDiv2, 1)
	if got := rs.PFDFrequency(25_000_000); got != 25_000_000 {
		t.Errorf("pfd with doubler+div2 = %d", got)
	}
	rs.Set(FieldRefDoubler, 0)
	rs.Set(FieldRCounter, 5)
	if got := rs.PFDFrequency(25_000_000); got != 2_500_000 {
		t.Errorf("pfd with R=5, div2 = %d", got)
	}
}

func TestOutputFrequencyReconstruction(t *testing.T) {
	rs := Empty()
	rs.Set(FieldRCounter, 1)
	rs.Set(FieldInt, 96)
	rs.Set(FieldFrac, 0)
	rs.Set(FieldMod, 250)
	if got := rs.OutputFrequency(25_000_000); got != 2_400_000_000 {
		t.Errorf("f_out = %d", got)
	}
	// 35 MHz with divide-by-64: INT=89 FRAC=150 MOD=250.
	rs.Set(FieldInt, 89)
	rs.Set(FieldFrac, 150)
	rs.Set(FieldRFDividerSelect, 6)
	if got := rs.OutputFrequency(25_000_000); got != 35_000_000 {
		t.Errorf("f_out = %d", got)
	}
}

func TestPrescalerIntMin(t *testing.T) {
	if Prescaler45.IntMin() != 23 || Prescaler89.IntMin() != 75 {
		t.Error("prescaler INT minimums")
	}
	if Prescaler45.String() != "4/5" || Prescaler89.String() != "8/9" {
		t.Error("prescaler strings")
	}
}
