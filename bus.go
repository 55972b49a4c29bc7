package adf4351

import (
	"encoding/binary"
	"errors"

	"tinygo.org/x/drivers"
)

// ADF4351 words are clocked in most significant bit first.
var busOrder = binary.BigEndian

// ErrBusy is returned by a Bus whose underlying transport cannot accept a
// word right now. It is transient: the driver retries the same word until
// the bus accepts it or reports a hard fault.
var ErrBusy = errors.New("bus busy")

// Bus is the serial capability the driver consumes: transmit one 32-bit
// word to the chip's shift register, most significant bit first. The latch
// strobe is not part of the bus, it is a separate output pin owned by the
// Device.
type Bus interface {
	WriteWord(w uint32) error
}

// outputPin abstracts a push-pull digital output such as the LE and CE pins.
type outputPin func(bool)

// SPIBus adapts an SPI peripheral implementing the tinygo.org/x/drivers SPI
// interface (machine.SPI on TinyGo targets) to the word bus the driver
// consumes. Use SPI mode 0; MOSI connects to DATA, SCK to CLK.
type SPIBus struct {
	SPI drivers.SPI
	buf [4]byte
}

// WriteWord shifts out w as four bytes, most significant first.
func (b *SPIBus) WriteWord(w uint32) error {
	busOrder.PutUint32(b.buf[:], w)
	return b.SPI.Tx(b.buf[:], nil)
}
