package device

import (
	"fmt"
	"log"
)

const (
	PORT_COUNT = 8    // Digital I/O ports on the part.
	PORT_LATCH = 0x90 // Port latch value after reset.
)

// PortConfig is the register map and board wiring of one digital I/O port.
// A register address of zero means the port lacks that register.
type PortConfig struct {
	Ren uint32 // Pull resistor enable.
	In  uint32 // Input.
	Out uint32 // Output.
	Dir uint32 // Direction.
	Sel uint32 // Function select.
	Ifg uint32 // Interrupt flag.
	Ies uint32 // Interrupt edge select.
	Ie  uint32 // Interrupt enable.

	Drive uint8 // Output bits the firmware may drive.
	Strap uint8 // Output bits held high by the board.
}

// PORT_CONFIG describes ports 1 to 8, in order.
var PORT_CONFIG = [PORT_COUNT]PortConfig{
	{Ren: 0x27, In: 0x20, Out: 0x21, Dir: 0x22, Sel: 0x26, Ifg: 0x23, Ies: 0x24, Ie: 0x25, Drive: 0xff, Strap: 0x90},
	{Ren: 0x2f, In: 0x28, Out: 0x29, Dir: 0x2a, Sel: 0x2e, Ifg: 0x2b, Ies: 0x2c, Ie: 0x2d, Drive: 0xff, Strap: 0x01},
	{Ren: 0x10, In: 0x18, Out: 0x19, Dir: 0x1a, Sel: 0x1b, Drive: 0xff, Strap: 0x01},
	{Ren: 0x11, In: 0x1c, Out: 0x1d, Dir: 0x1e, Sel: 0x1f, Drive: 0xff, Strap: 0xe0},
	{Ren: 0x12, In: 0x30, Out: 0x31, Dir: 0x32, Sel: 0x33, Drive: 0xff, Strap: 0x01},
	{Ren: 0x13, In: 0x34, Out: 0x35, Dir: 0x36, Sel: 0x37, Drive: 0xff, Strap: 0x80},
	{Ren: 0x14, In: 0x38, Out: 0x3a, Dir: 0x3c, Sel: 0x3e, Drive: 0xff, Strap: 0x01},
	{Ren: 0x15, In: 0x39, Out: 0x3b, Dir: 0x3d, Sel: 0x3f, Drive: 0x00, Strap: 0x10},
}

// TxFunc is notified of every value written to a port's output register.
type TxFunc func(value uint8)

// RxFunc supplies input bits sampled when a port's input register is read.
type RxFunc func() uint8

// Port is a byte-wide digital I/O port.
type Port struct {
	Stub
	PortConfig
	Verbose bool
	Index   int // Port number, from 1.

	latch uint8
	ren   uint8
	out   uint8
	dir   uint8
	sel   uint8
	ifg   uint8
	ies   uint8
	ie    uint8

	rx []RxFunc
	tx []TxFunc
}

var _ Device = (*Port)(nil)
var _ Checker = (*Port)(nil)

// NewPort creates port index (from 1) with its stock register map.
func NewPort(index int) (port *Port) {
	port = &Port{
		PortConfig: PORT_CONFIG[index-1],
		Index:      index,
	}
	return
}

func (port *Port) Name() string {
	return fmt.Sprintf("port%d", port.Index)
}

func (port *Port) Ranges() (ranges []AddressRange) {
	for _, addr := range []uint32{port.Ren, port.In, port.Out, port.Dir, port.Sel, port.Ifg, port.Ies, port.Ie} {
		if addr != 0 {
			ranges = append(ranges, AddressRange{Start: addr, End: addr})
		}
	}
	return
}

func (port *Port) Init() error {
	port.latch = PORT_LATCH
	port.ren = 0
	port.out = 0
	port.dir = 0
	port.sel = 0
	port.ifg = 0
	port.ies = 0
	port.ie = 0
	return nil
}

// Attach adds peripheral callbacks to the port. Either may be nil.
func (port *Port) Attach(rx RxFunc, tx TxFunc) {
	if rx != nil {
		port.rx = append(port.rx, rx)
	}
	if tx != nil {
		port.tx = append(port.tx, tx)
	}
}

// register returns the storage behind addr, or nil for IN and unknown
// addresses.
func (port *Port) register(addr uint32) *uint8 {
	switch addr {
	case port.Ren:
		return &port.ren
	case port.Out:
		return &port.out
	case port.Dir:
		return &port.dir
	case port.Sel:
		return &port.sel
	case port.Ifg:
		return &port.ifg
	case port.Ies:
		return &port.ies
	case port.Ie:
		return &port.ie
	}
	return nil
}

// Check allows byte access to the port's registers only.
func (port *Port) Check(addr uint32, width int) (err error) {
	switch {
	case width != 1:
		err = ErrNotImplemented
	case addr == 0:
		err = ErrRegisterInvalid
	case addr != port.In && port.register(addr) == nil:
		err = ErrRegisterInvalid
	}
	if err != nil {
		err = &ErrAccess{Device: port.Name(), Addr: addr, Width: width, Err: err}
	}
	return
}

func (port *Port) Read8(addr uint32) (value uint8, err error) {
	err = port.Check(addr, 1)
	if err != nil {
		return
	}

	if addr == port.In {
		input := port.latch
		for _, rx := range port.rx {
			input |= rx()
		}
		value = input & port.ren & ^port.dir
	} else {
		value = *port.register(addr)
	}

	if port.Verbose {
		log.Printf("%v: read 0x%02x = 0x%02x", port.Name(), addr, value)
	}

	return
}

func (port *Port) Write8(addr uint32, value uint8) (err error) {
	err = port.Check(addr, 1)
	if err != nil {
		return
	}

	if port.Verbose {
		log.Printf("%v: write 0x%02x = 0x%02x", port.Name(), addr, value)
	}

	switch addr {
	case port.In:
		if port.Verbose {
			log.Printf("%v: write to input register ignored", port.Name())
		}
	case port.Out:
		port.latch = (value & port.ren & port.dir & port.Drive) | port.Strap
		port.out = port.latch
		for _, tx := range port.tx {
			tx(port.out)
		}
	default:
		*port.register(addr) = value
	}

	return
}
