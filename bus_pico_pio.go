//go:build pico

package adf4351

import (
	"machine"

	"log/slog"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
)

// ADF4351 modules tolerate a wide range of clock rates; 1 MHz keeps wiring
// forgiving on jumper leads.
const picoBusBaud = 1_000_000

type pioBus struct {
	spi *piolib.SPI3w
}

func (b *pioBus) WriteWord(w uint32) error {
	return b.spi.CmdWrite(w, nil)
}

// NewPicoDevice wires an ADF4351 board to a Raspberry Pi Pico using a PIO
// backed 3-wire SPI for the DATA/CLK lines. `ce` may be machine.NoPin if
// the board straps CE high.
func NewPicoDevice(data, clk, le, ce machine.Pin, logger *slog.Logger) *Device {
	le.Configure(machine.PinConfig{Mode: machine.PinOutput})
	le.Low()
	var cePin outputPin
	if ce != machine.NoPin {
		ce.Configure(machine.PinConfig{Mode: machine.PinOutput})
		cePin = ce.Set
	}
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		panic(err.Error())
	}
	spi, err := piolib.NewSPI3w(sm, data, clk, picoBusBaud)
	if err != nil {
		panic(err.Error())
	}
	return New(cePin, le.Set, &pioBus{spi: spi}, logger)
}
