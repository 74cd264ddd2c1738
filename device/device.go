// Package device defines the addressable components behind the MSP430 bus.
//
// Every component that answers bus accesses (backing memory, the digital
// I/O ports, the watchdog) implements Device. A device claims one or more
// inclusive address ranges, and the bus dispatches reads and writes of 1, 2
// or 4 bytes to the device that owns the first byte of the access.
package device

import (
	"fmt"
)

// AddressRange is an inclusive span of bus addresses.
type AddressRange struct {
	Start uint32 // First address in the range.
	End   uint32 // Last address in the range.
}

// Contains reports whether addr lies inside the range.
func (ar AddressRange) Contains(addr uint32) bool {
	return addr >= ar.Start && addr <= ar.End
}

// Len is the number of addresses covered by the range.
func (ar AddressRange) Len() int {
	if ar.End < ar.Start {
		return 0
	}
	return int(ar.End-ar.Start) + 1
}

func (ar AddressRange) String() string {
	return fmt.Sprintf("0x%05x-0x%05x", ar.Start, ar.End)
}

// Device is the contract between the bus and every addressable component.
type Device interface {
	// Name identifies the device in logs and listings.
	Name() string
	// Ranges returns the address ranges claimed by the device.
	Ranges() []AddressRange

	Init() error
	Destroy() error
	// Update advances any periodic device state.
	Update() error

	Read8(addr uint32) (value uint8, err error)
	Read16(addr uint32) (value uint16, err error)
	Read32(addr uint32) (value uint32, err error)
	Write8(addr uint32, value uint8) error
	Write16(addr uint32, value uint16) error
	Write32(addr uint32, value uint32) error
}

// Checker is implemented by devices that can validate an access of
// width bytes at addr without performing it.
type Checker interface {
	Check(addr uint32, width int) error
}

// Stub supplies default behaviour for the parts of the Device contract a
// simple register device leaves out. Lifecycle hooks do nothing, and every
// access width reports ErrNotImplemented.
type Stub struct{}

func (Stub) Init() error    { return nil }
func (Stub) Destroy() error { return nil }
func (Stub) Update() error  { return nil }

func (Stub) Read8(addr uint32) (value uint8, err error) {
	err = &ErrAccess{Addr: addr, Width: 1, Err: ErrNotImplemented}
	return
}

func (Stub) Read16(addr uint32) (value uint16, err error) {
	err = &ErrAccess{Addr: addr, Width: 2, Err: ErrNotImplemented}
	return
}

func (Stub) Read32(addr uint32) (value uint32, err error) {
	err = &ErrAccess{Addr: addr, Width: 4, Err: ErrNotImplemented}
	return
}

func (Stub) Write8(addr uint32, value uint8) error {
	return &ErrAccess{Addr: addr, Width: 1, Err: ErrNotImplemented}
}

func (Stub) Write16(addr uint32, value uint16) error {
	return &ErrAccess{Addr: addr, Width: 2, Err: ErrNotImplemented}
}

func (Stub) Write32(addr uint32, value uint32) error {
	return &ErrAccess{Addr: addr, Width: 4, Err: ErrNotImplemented}
}
