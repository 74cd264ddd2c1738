package device

import (
	"encoding/binary"
)

const (
	MEMORY_SIZE = 0x200000 // 2 MiB backing; the core masks addresses to 20 bits.
)

// Memory is the flat byte array backing every address not claimed by a
// peripheral. Multi-byte accesses are little-endian.
type Memory struct {
	Stub
	Data []byte
}

var _ Device = (*Memory)(nil)
var _ Checker = (*Memory)(nil)

// NewMemory allocates memory spanning the full address space.
func NewMemory() (mem *Memory) {
	mem = &Memory{
		Data: make([]byte, MEMORY_SIZE),
	}
	return
}

func (mem *Memory) Name() string {
	return "mem"
}

func (mem *Memory) Ranges() []AddressRange {
	return []AddressRange{{Start: 0, End: uint32(len(mem.Data) - 1)}}
}

// Clear zeros the backing store.
func (mem *Memory) Clear() {
	clear(mem.Data)
}

// Check verifies that width bytes at addr lie inside the backing store.
func (mem *Memory) Check(addr uint32, width int) (err error) {
	if uint64(addr)+uint64(width) > uint64(len(mem.Data)) {
		err = &ErrAccess{Device: mem.Name(), Addr: addr, Width: width, Err: ErrAddressOutOfRange}
	}
	return
}

// Load copies data into memory starting at addr.
func (mem *Memory) Load(addr uint32, data []byte) (err error) {
	err = mem.Check(addr, len(data))
	if err != nil {
		return
	}
	copy(mem.Data[addr:], data)
	return
}

func (mem *Memory) Read8(addr uint32) (value uint8, err error) {
	err = mem.Check(addr, 1)
	if err != nil {
		return
	}
	value = mem.Data[addr]
	return
}

func (mem *Memory) Read16(addr uint32) (value uint16, err error) {
	err = mem.Check(addr, 2)
	if err != nil {
		return
	}
	value = binary.LittleEndian.Uint16(mem.Data[addr:])
	return
}

func (mem *Memory) Read32(addr uint32) (value uint32, err error) {
	err = mem.Check(addr, 4)
	if err != nil {
		return
	}
	value = binary.LittleEndian.Uint32(mem.Data[addr:])
	return
}

func (mem *Memory) Write8(addr uint32, value uint8) (err error) {
	err = mem.Check(addr, 1)
	if err != nil {
		return
	}
	mem.Data[addr] = value
	return
}

func (mem *Memory) Write16(addr uint32, value uint16) (err error) {
	err = mem.Check(addr, 2)
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint16(mem.Data[addr:], value)
	return
}

func (mem *Memory) Write32(addr uint32, value uint32) (err error) {
	err = mem.Check(addr, 4)
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint32(mem.Data[addr:], value)
	return
}
