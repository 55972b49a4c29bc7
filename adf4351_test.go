package adf4351

import (
	"errors"
	"testing"

	"github.com/tinysdr/adf4351/regmap"
)

var errInjectedFault = errors.New("injected bus fault")

// recordingBus is the in-memory transport used by the sequencing tests. It
// records every accepted word, can report busy a configured number of times
// per word, and can hard-fail when a specific register address arrives.
type recordingBus struct {
	words     []uint32 // accepted words in transmission order
	busyLeft  int      // remaining ErrBusy returns before accepting
	busyEach  int      // busy returns injected before every word
	failAddr  int      // register address to hard-fail on, -1 disables
	attempts  int
	latchHigh bool
	latched   int // rising latch edges seen
	// Words accepted while the latch was high violate the
	// shift-then-latch protocol.
	acceptedWhileHigh int
}

func newRecordingBus() *recordingBus {
	return &recordingBus{failAddr: -1}
}

func (b *recordingBus) WriteWord(w uint32) error {
	b.attempts++
	if int(regmap.Addr(w)) == b.failAddr {
		return errInjectedFault
	}
	if b.busyLeft > 0 {
		b.busyLeft--
		return ErrBusy
	}
	if b.latchHigh {
		b.acceptedWhileHigh++
	}
	b.words = append(b.words, w)
	b.busyLeft = b.busyEach
	return nil
}

func (b *recordingBus) le(high bool) {
	if high && !b.latchHigh {
		b.latched++
	}
	b.latchHigh = high
}

func (b *recordingBus) addrs() []uint8 {
	a := make([]uint8, len(b.words))
	for i, w := range b.words {
		a[i] = regmap.Addr(w)
	}
	return a
}

func testDevice() (*Device, *recordingBus) {
	bus := newRecordingBus()
	d := New(nil, bus.le, bus, nil)
	return d, bus
}

func TestSetFrequencySequence(t *testing.T) {
	d, bus := testDevice()
	cfg := DefaultConfig()
	cfg.Frequency = 2_400_000_000
	cfg.ChannelSpacing = 100_000
	if err := d.SetFrequency(cfg); err != nil {
		t.Fatal(err)
	}
	if len(bus.words) != regmap.NumRegisters {
		t.Fatalf("wrote %d words", len(bus.words))
	}
	for i, a := range bus.addrs() {
		if want := uint8(5 - i); a != want {
			t.Errorf("write %d latched R%d, want R%d", i, a, want)
		}
	}
	if bus.latched != regmap.NumRegisters {
		t.Errorf("latch strobed %d times", bus.latched)
	}
	if bus.acceptedWhileHigh != 0 {
		t.Errorf("%d words shifted while LE high", bus.acceptedWhileHigh)
	}
	// Golden words for the 25 MHz / 2.4 GHz / 100 kHz scenario.
	p, _ := Plan(cfg)
	want := p.Encode()
	for i, w := range bus.words {
		if w != want[5-i] {
			t.Errorf("write %d = %#010x, want %#010x", i, w, want[5-i])
		}
	}
}

func TestSequencerRetriesBusyWord(t *testing.T) {
	d, bus := testDevice()
	bus.busyEach = 2
	bus.busyLeft = 2
	cfg := DefaultConfig()
	cfg.Frequency = 2_400_000_000
	cfg.ChannelSpacing = 100_000
	if err := d.SetFrequency(cfg); err != nil {
		t.Fatal(err)
	}
	// Busy retries must not duplicate, drop or reorder words.
	addrs := bus.addrs()
	if len(addrs) != regmap.NumRegisters {
		t.Fatalf("wrote %d words", len(addrs))
	}
	for i, a := range addrs {
		if a != uint8(5-i) {
			t.Errorf("write %d latched R%d", i, a)
		}
	}
	if bus.attempts != regmap.NumRegisters*3 {
		t.Errorf("attempts = %d, want %d", bus.attempts, regmap.NumRegisters*3)
	}
	if bus.latched != regmap.NumRegisters {
		t.Errorf("latch strobed %d times", bus.latched)
	}
}

func TestSequencerAbortsOnFault(t *testing.T) {
	d, bus := testDevice()
	bus.failAddr = 2
	cfg := DefaultConfig()
	cfg.Frequency = 2_400_000_000
	cfg.ChannelSpacing = 100_000
	err := d.SetFrequency(cfg)
	if !errors.Is(err, errInjectedFault) {
		t.Fatalf("err = %v", err)
	}
	// R5, R4, R3 made it out; nothing for R2, R1 or R0 may follow.
	wantAddrs := []uint8{5, 4, 3}
	addrs := bus.addrs()
	if len(addrs) != len(wantAddrs) {
		t.Fatalf("addrs = %v", addrs)
	}
	for i := range wantAddrs {
		if addrs[i] != wantAddrs[i] {
			t.Errorf("addrs = %v", addrs)
		}
	}
}

func TestSetFrequencyPlanErrorWritesNothing(t *testing.T) {
	d, bus := testDevice()
	cfg := DefaultConfig()
	cfg.Frequency = regmap.OutFreqMin - 1
	if err := d.SetFrequency(cfg); !errors.Is(err, ErrFrequencyOutOfRange) {
		t.Fatalf("err = %v", err)
	}
	if len(bus.words) != 0 || bus.latched != 0 {
		t.Error("bus touched on plan failure")
	}
}

func TestWriteRegisterSet(t *testing.T) {
	d, bus := testDevice()
	p, err := Plan(testConfig(35_000_000))
	if err != nil {
		t.Fatal(err)
	}
	rs := p.Encode()
	if err := d.WriteRegisterSet(rs); err != nil {
		t.Fatal(err)
	}
	if len(bus.words) != regmap.NumRegisters {
		t.Fatalf("wrote %d words", len(bus.words))
	}
	if bus.words[regmap.NumRegisters-1] != rs[0] {
		t.Error("register 0 not written last")
	}
}

func TestEnableDisable(t *testing.T) {
	bus := newRecordingBus()
	var ce []bool
	d := New(func(b bool) { ce = append(ce, b) }, bus.le, bus, nil)
	d.Enable()
	d.Disable()
	if len(ce) != 2 || !ce[0] || ce[1] {
		t.Errorf("ce transitions = %v", ce)
	}
	// Nil CE pin is allowed for boards that strap CE high.
	d = New(nil, bus.le, bus, nil)
	d.Enable()
	d.Disable()
}
