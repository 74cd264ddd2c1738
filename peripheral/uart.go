package peripheral

import (
	"io"

	"github.com/ezrec/msp430emu/translate"
)

var f = translate.From

const (
	UART_PORT   = 3    // Port the board routes the UART to.
	UART_TX_BIT = 0x10 // Transmit line within the port.
)

// Uart reports the level of the transmit line on every output write.
type Uart struct {
	Output io.Writer // Receives one line of text per transmit update.
	Wiring int       // Port override; zero selects UART_PORT.
}

var _ Peripheral = (*Uart)(nil)

// NewUart creates a UART reporting to output.
func NewUart(output io.Writer) *Uart {
	return &Uart{Output: output}
}

func (uart *Uart) Port() int {
	if uart.Wiring == 0 {
		return UART_PORT
	}
	return uart.Wiring
}

// Rx drives no input bits.
func (uart *Uart) Rx() uint8 {
	return 0
}

func (uart *Uart) Tx(value uint8) {
	if uart.Output == nil {
		return
	}

	if value&UART_TX_BIT != 0 {
		io.WriteString(uart.Output, f("uart tx bit set\n"))
	} else {
		io.WriteString(uart.Output, f("uart tx bit unset\n"))
	}
}
