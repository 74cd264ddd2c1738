// Package peripheral holds the board devices wired to the digital I/O
// ports of the emulated part.
package peripheral

import (
	"github.com/ezrec/msp430emu/device"
)

// Peripheral is a device connected to a digital I/O port.
type Peripheral interface {
	// Port is the port number the peripheral is wired to, from 1.
	Port() int
	// Rx supplies the input bits driven by the peripheral.
	Rx() uint8
	// Tx observes a value written to the port's output register.
	Tx(value uint8)
}

// Registrar accepts port callbacks; the bus is one.
type Registrar interface {
	RegisterPeripheral(port int, rx device.RxFunc, tx device.TxFunc) error
}

// Attach wires each peripheral to its port.
func Attach(reg Registrar, peripherals ...Peripheral) (err error) {
	for _, p := range peripherals {
		err = reg.RegisterPeripheral(p.Port(), p.Rx, p.Tx)
		if err != nil {
			return
		}
	}
	return
}
