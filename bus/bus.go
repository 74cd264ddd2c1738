// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package bus routes every memory access of the MSP430 core to the device
// that owns the address.
//
// The routing table holds one entry per byte address. Entries are filled as
// devices register, and an address keeps the first device that claimed it.
// Any address left unclaimed resolves to the backing Memory.
package bus

import (
	"fmt"
	"io"
	"iter"
	"log"

	"github.com/ezrec/msp430emu/device"
)

const (
	DEVICE_LIMIT = 255 // Maximum number of registered devices.
)

// Bus is the device manager of the emulated part.
type Bus struct {
	Verbose bool // Set to enable verbose logging.

	Memory   *device.Memory                   // Fallback device for unclaimed addresses.
	Watchdog *device.Watchdog                 // Stock watchdog, if registered.
	Ports    [device.PORT_COUNT]*device.Port // Stock digital I/O ports, if registered.

	devices []device.Device // Registered devices, in order.
	mapped  []bool          // Set when the device owns at least one address.
	table   []uint8         // Per-address device handle, 0 for unclaimed.
	sealed  bool
}

// NewBus creates a bus with no devices registered. Every address resolves to
// mem until devices claim ranges.
func NewBus(mem *device.Memory) (bus *Bus) {
	bus = &Bus{
		Memory: mem,
		table:  make([]uint8, len(mem.Data)),
	}
	return
}

// NewStockBus creates a bus populated with the watchdog, ports 1 to 8, and
// memory, registered in that order.
func NewStockBus(verbose bool) (bus *Bus, err error) {
	bus = NewBus(device.NewMemory())
	bus.Verbose = verbose

	bus.Watchdog = &device.Watchdog{}
	err = bus.Register(bus.Watchdog)
	if err != nil {
		return
	}

	for n := range bus.Ports {
		port := device.NewPort(n + 1)
		port.Verbose = verbose
		bus.Ports[n] = port
		err = bus.Register(port)
		if err != nil {
			return
		}
	}

	err = bus.Register(bus.Memory)
	return
}

// Seal rejects any further device registration.
func (bus *Bus) Seal() {
	bus.sealed = true
}

// Register initializes dev and claims each of its address ranges.
func (bus *Bus) Register(dev device.Device) (err error) {
	if bus.sealed {
		err = ErrSealed
		return
	}

	if len(bus.devices) >= DEVICE_LIMIT {
		err = ErrBusFull
		return
	}

	err = dev.Init()
	if err != nil {
		return
	}

	bus.devices = append(bus.devices, dev)
	bus.mapped = append(bus.mapped, false)

	for _, ar := range dev.Ranges() {
		err = bus.RegisterRange(ar.Start, ar.End, dev)
		if err != nil {
			return
		}
	}

	return
}

// handle returns the table handle of a registered device, or 0.
func (bus *Bus) handle(dev device.Device) uint8 {
	for n, known := range bus.devices {
		if known == dev {
			return uint8(n + 1)
		}
	}
	return 0
}

// RegisterRange claims every unclaimed address from start to end, inclusive,
// for dev. Addresses already owned by an earlier device are left alone.
func (bus *Bus) RegisterRange(start uint32, end uint32, dev device.Device) (err error) {
	if bus.sealed {
		err = ErrSealed
		return
	}

	if end < start || uint64(end) >= uint64(len(bus.table)) {
		err = fmt.Errorf("%w: %v 0x%x-0x%x", ErrRangeInvalid, dev.Name(), start, end)
		return
	}

	h := bus.handle(dev)
	if h == 0 {
		if len(bus.devices) >= DEVICE_LIMIT {
			err = ErrBusFull
			return
		}
		bus.devices = append(bus.devices, dev)
		bus.mapped = append(bus.mapped, false)
		h = uint8(len(bus.devices))
	}

	if bus.Verbose {
		log.Printf("bus: register device %v 0x%05x to 0x%05x", dev.Name(), start, end)
	}

	for addr := uint64(start); addr <= uint64(end); addr++ {
		if bus.table[addr] == 0 {
			bus.table[addr] = h
			bus.mapped[h-1] = true
		}
	}

	return
}

// Resolve returns the device owning addr, falling back to Memory.
func (bus *Bus) Resolve(addr uint32) device.Device {
	if uint64(addr) < uint64(len(bus.table)) {
		if h := bus.table[addr]; h != 0 {
			return bus.devices[h-1]
		}
	}
	return bus.Memory
}

// Devices iterates over the mapped devices in registration order.
func (bus *Bus) Devices() iter.Seq[device.Device] {
	return func(yield func(device.Device) bool) {
		for n, dev := range bus.devices {
			if !bus.mapped[n] {
				continue
			}
			if !yield(dev) {
				return
			}
		}
	}
}

// UpdateAll calls Update once on every mapped device.
func (bus *Bus) UpdateAll() (err error) {
	for dev := range bus.Devices() {
		err = dev.Update()
		if err != nil {
			return
		}
	}
	return
}

// RegisterPeripheral attaches peripheral callbacks to port (from 1).
func (bus *Bus) RegisterPeripheral(port int, rx device.RxFunc, tx device.TxFunc) (err error) {
	if port < 1 || port > len(bus.Ports) || bus.Ports[port-1] == nil {
		err = fmt.Errorf("%w: %d", ErrPortInvalid, port)
		return
	}

	bus.Ports[port-1].Attach(rx, tx)
	return
}

func checkWidth(addr uint32, width int) (err error) {
	switch width {
	case 1, 2, 4:
	default:
		err = &ErrWidth{Addr: addr, Width: width}
	}
	return
}

// Check validates an access of width bytes at addr without performing it.
func (bus *Bus) Check(addr uint32, width int) (err error) {
	err = checkWidth(addr, width)
	if err != nil {
		return
	}

	dev := bus.Resolve(addr)
	if checker, ok := dev.(device.Checker); ok {
		err = checker.Check(addr, width)
	}
	return
}

func (bus *Bus) Read8(addr uint32) (uint8, error) {
	return bus.Resolve(addr).Read8(addr)
}

func (bus *Bus) Read16(addr uint32) (uint16, error) {
	return bus.Resolve(addr).Read16(addr)
}

func (bus *Bus) Read32(addr uint32) (uint32, error) {
	return bus.Resolve(addr).Read32(addr)
}

func (bus *Bus) Write8(addr uint32, value uint8) error {
	return bus.Resolve(addr).Write8(addr, value)
}

func (bus *Bus) Write16(addr uint32, value uint16) error {
	return bus.Resolve(addr).Write16(addr, value)
}

func (bus *Bus) Write32(addr uint32, value uint32) error {
	return bus.Resolve(addr).Write32(addr, value)
}

// Read performs a read of width bytes.
func (bus *Bus) Read(addr uint32, width int) (value uint32, err error) {
	switch width {
	case 1:
		var v8 uint8
		v8, err = bus.Read8(addr)
		value = uint32(v8)
	case 2:
		var v16 uint16
		v16, err = bus.Read16(addr)
		value = uint32(v16)
	case 4:
		value, err = bus.Read32(addr)
	default:
		err = checkWidth(addr, width)
	}
	return
}

// Write performs a write of width bytes.
func (bus *Bus) Write(addr uint32, value uint32, width int) (err error) {
	switch width {
	case 1:
		err = bus.Write8(addr, uint8(value))
	case 2:
		err = bus.Write16(addr, uint16(value))
	case 4:
		err = bus.Write32(addr, value)
	default:
		err = checkWidth(addr, width)
	}
	return
}

// Dump writes a hex listing of length bytes from addr, sixteen per line.
// Bytes that cannot be read as a single byte are shown as '--'.
func (bus *Bus) Dump(w io.Writer, addr uint32, length int) (err error) {
	for line := 0; line < length; line += 16 {
		_, err = fmt.Fprintf(w, "%05X:", addr+uint32(line))
		if err != nil {
			return
		}
		for n := line; n < line+16 && n < length; n++ {
			text := "--"
			value, rerr := bus.Read8(addr + uint32(n))
			if rerr == nil {
				text = fmt.Sprintf("%02X", value)
			}
			_, err = fmt.Fprintf(w, " %v", text)
			if err != nil {
				return
			}
		}
		_, err = fmt.Fprintln(w)
		if err != nil {
			return
		}
	}
	return
}
