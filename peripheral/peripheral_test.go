package peripheral

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/msp430emu/bus"
)

func TestUart(t *testing.T) {
	assert := assert.New(t)

	var out bytes.Buffer
	uart := NewUart(&out)
	assert.Equal(UART_PORT, uart.Port())
	assert.Equal(uint8(0), uart.Rx())

	uart.Tx(0x10)
	uart.Tx(0x01)
	assert.Equal("uart tx bit set\nuart tx bit unset\n", out.String())

	uart.Wiring = 5
	assert.Equal(5, uart.Port())

	// No output attached.
	(&Uart{}).Tx(0x10)
}

func TestAttach(t *testing.T) {
	assert := assert.New(t)

	b, err := bus.NewStockBus(false)
	if !assert.NoError(err) {
		return
	}

	var out bytes.Buffer
	assert.NoError(Attach(b, NewUart(&out)))

	port := b.Ports[UART_PORT-1]

	// Enable the pull resistors and drive the pins as outputs.
	assert.NoError(b.Write8(port.Ren, 0xff))
	assert.NoError(b.Write8(port.Dir, 0xff))

	assert.NoError(b.Write8(port.Out, 0x00))
	assert.NoError(b.Write8(port.Out, 0x10))
	assert.Equal("uart tx bit unset\nuart tx bit set\n", out.String())

	assert.ErrorIs(Attach(b, &Uart{Wiring: 9}), bus.ErrPortInvalid)
}
