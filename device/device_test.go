package device

import (
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressRange(t *testing.T) {
	assert := assert.New(t)

	ar := AddressRange{Start: 0x120, End: 0x121}
	assert.True(ar.Contains(0x120))
	assert.True(ar.Contains(0x121))
	assert.False(ar.Contains(0x11f))
	assert.False(ar.Contains(0x122))
	assert.Equal(2, ar.Len())
	assert.Equal(0, AddressRange{Start: 2, End: 1}.Len())
	assert.Equal("0x00120-0x00121", ar.String())
}

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	assert.NoError(mem.Init())
	assert.Equal([]AddressRange{{0, 0x1fffff}}, mem.Ranges())

	table := [](struct {
		addr  uint32
		value uint32
	}){
		{0x0000, 0x12345678},
		{0x1234, 0xcafef00d},
		{0x1ffffc, 0xdeadbeef},
	}

	for _, entry := range table {
		assert.NoError(mem.Write32(entry.addr, entry.value))
		v32, err := mem.Read32(entry.addr)
		assert.NoError(err)
		assert.Equal(entry.value, v32)

		v16, err := mem.Read16(entry.addr)
		assert.NoError(err)
		assert.Equal(uint16(entry.value), v16)

		v8, err := mem.Read8(entry.addr + 3)
		assert.NoError(err)
		assert.Equal(uint8(entry.value>>24), v8)
	}

	assert.NoError(mem.Write16(0x200, 0xa55a))
	lo, _ := mem.Read8(0x200)
	hi, _ := mem.Read8(0x201)
	assert.Equal(uint8(0x5a), lo)
	assert.Equal(uint8(0xa5), hi)

	mem.Clear()
	v16, _ := mem.Read16(0x200)
	assert.Equal(uint16(0), v16)
}

func TestMemory_OutOfRange(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	assert.Equal(0x200000, MEMORY_SIZE)
	assert.Len(mem.Data, MEMORY_SIZE)
	assert.NoError(mem.Write8(0x1ffffe, 0x11))
	assert.NoError(mem.Write8(0x1fffff, 0x22))

	_, err := mem.Read8(MEMORY_SIZE)
	assert.ErrorIs(err, ErrAddressOutOfRange)
	_, err = mem.Read16(0x1fffff)
	assert.ErrorIs(err, ErrAddressOutOfRange)
	_, err = mem.Read32(0x1ffffd)
	assert.ErrorIs(err, ErrAddressOutOfRange)

	err = mem.Write16(0x1fffff, 0xffff)
	assert.ErrorIs(err, ErrAddressOutOfRange)
	err = mem.Write32(0xffffffff, 0xffff)
	assert.ErrorIs(err, ErrAddressOutOfRange)

	// Failed writes leave memory untouched.
	v8, _ := mem.Read8(0x1fffff)
	assert.Equal(uint8(0x22), v8)

	var access *ErrAccess
	if assert.True(errors.As(err, &access)) {
		assert.Equal("mem", access.Device)
		assert.Equal(4, access.Width)
	}

	assert.ErrorIs(mem.Load(0x1ffff0, make([]byte, 0x20)), ErrAddressOutOfRange)
	assert.NoError(mem.Load(0x100, []byte{1, 2, 3}))
	v32, _ := mem.Read32(0x100)
	assert.Equal(uint32(0x030201), v32)
}

func TestWatchdog(t *testing.T) {
	assert := assert.New(t)

	wd := &Watchdog{}
	assert.NoError(wd.Init())
	assert.Equal("wdog", wd.Name())

	value, err := wd.Read16(WDTCTL)
	assert.NoError(err)
	assert.Equal(WDTCTL_RESET, value)

	assert.NoError(wd.Write16(WDTCTL, 0x5a80))
	value, _ = wd.Read16(WDTCTL)
	assert.Equal(uint16(0x5a80), value)

	_, err = wd.Read8(WDTCTL)
	assert.ErrorIs(err, ErrNotImplemented)
	assert.ErrorIs(wd.Write32(WDTCTL, 0), ErrNotImplemented)
	assert.ErrorIs(wd.Write16(WDTCTL+1, 0), ErrRegisterInvalid)
}

func TestPort(t *testing.T) {
	assert := assert.New(t)

	port := NewPort(3)
	assert.NoError(port.Init())
	assert.Equal("port3", port.Name())
	assert.Len(port.Ranges(), 5)

	var sent []uint8
	port.Attach(nil, func(value uint8) { sent = append(sent, value) })

	assert.NoError(port.Write8(port.Ren, 0xff))
	assert.NoError(port.Write8(port.Dir, 0xf0))
	assert.NoError(port.Write8(port.Out, 0x3c))
	assert.Equal([]uint8{0x31}, sent)

	out, err := port.Read8(port.Out)
	assert.NoError(err)
	assert.Equal(uint8(0x31), out)

	dir, _ := port.Read8(port.Dir)
	assert.Equal(uint8(0xf0), dir)

	// Input bits are only visible on pulled inputs.
	in, err := port.Read8(port.In)
	assert.NoError(err)
	assert.Equal(uint8(0x31&0x0f), in)

	port.Attach(func() uint8 { return 0x0e }, nil)
	in, _ = port.Read8(port.In)
	assert.Equal(uint8(0x0f), in)

	// Writing the input register changes nothing.
	assert.NoError(port.Write8(port.In, 0xff))
	assert.Equal([]uint8{0x31}, sent)

	_, err = port.Read16(port.Out)
	assert.ErrorIs(err, ErrNotImplemented)
	assert.ErrorIs(port.Check(0x23, 1), ErrRegisterInvalid)
	assert.ErrorIs(port.Check(0, 1), ErrRegisterInvalid)
}

func TestPort_Strap(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		index  int
		expect uint8
	}){
		{1, 0xff},
		{2, 0x7f},
		{4, 0xff},
		{6, 0xff},
		{8, 0x10},
	}

	for _, entry := range table {
		port := NewPort(entry.index)
		port.Init()
		port.Write8(port.Ren, 0xff)
		port.Write8(port.Dir, 0xff)
		port.Write8(port.Out, 0x7f)
		out, err := port.Read8(port.Out)
		assert.NoError(err)
		assert.Equal(entry.expect, out, port.Name())
	}
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	defines := maps.Collect(Defines())
	assert.Equal(WDTCTL, defines["WDTCTL"])
	assert.Equal(uint32(0x21), defines["P1OUT"])
	assert.Equal(uint32(0x3b), defines["P8OUT"])
	_, ok := defines["P3IFG"]
	assert.False(ok)
}
