package emulator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/msp430emu/bus"
	"github.com/ezrec/msp430emu/cpu"
	"github.com/ezrec/msp430emu/device"
	"github.com/ezrec/msp430emu/rom"
)

const FIRMWARE_BASE = uint32(0xc000)

// firmware builds an image with code at FIRMWARE_BASE and the reset vector
// pointing at it.
func firmware(code ...uint16) (img *rom.Image) {
	img = &rom.Image{}
	for n, word := range code {
		addr := FIRMWARE_BASE + uint32(n*2)
		img.Set(addr, uint8(word))
		img.Set(addr+1, uint8(word>>8))
	}
	img.Set(rom.RESET_VECTOR, uint8(FIRMWARE_BASE&0xff))
	img.Set(rom.RESET_VECTOR+1, uint8(FIRMWARE_BASE>>8))
	return
}

func newTestEmulator(t *testing.T, code ...uint16) (emu *Emulator) {
	emu, err := NewEmulator()
	if err != nil {
		t.Fatal(err)
	}

	err = emu.LoadImage(firmware(code...))
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator()
	if !assert.NoError(err) {
		return
	}

	assert.False(emu.Verbose)
	assert.NotNil(emu.Bus.Memory)
	assert.Equal(cpu.RESET_PC, emu.Cpu.Pc())
	assert.Equal(cpu.RESET_SP, emu.Cpu.Register[cpu.REG_SP])
	assert.Nil(emu.Rom)

	assert.NoError(emu.Reset())
	assert.Equal(cpu.RESET_PC, emu.Cpu.Pc())

	assert.NoError(emu.ResetAt(0x200))
	assert.Equal(uint32(0x200), emu.Cpu.Pc())

	assert.NoError(emu.Close())
}

func TestEmulator_ResetDevices(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t)

	assert.NoError(emu.Bus.Write16(device.WDTCTL, 0x5a80))
	assert.NoError(emu.Reset())

	value, err := emu.Bus.Read16(device.WDTCTL)
	assert.NoError(err)
	assert.Equal(device.WDTCTL_RESET, value)
	assert.Equal(FIRMWARE_BASE, emu.Cpu.Pc())
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		0x4035, 0x1234, // MOV #0x1234, R5
		0x43f2, 0x0010, // MOV.B #-1, &P3REN
		0x43f2, 0x001a, // MOV.B #-1, &P3DIR
		0x40f2, 0x0010, 0x0019, // MOV.B #0x10, &P3OUT
		0x3fff, // JMP $
	)

	var out bytes.Buffer
	emu.Uart.Output = &out

	assert.NoError(emu.Run(context.Background()))
	assert.Equal(uint32(0x1234), emu.Cpu.Register[5])
	assert.Equal(FIRMWARE_BASE+0x12, emu.Cpu.Pc())
	assert.Equal(5, emu.Ticks)
	assert.Equal("uart tx bit set\n", out.String())

	err := emu.Bus.Register(&device.Watchdog{})
	assert.ErrorIs(err, bus.ErrSealed)
}

func TestEmulator_UartWiring(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulatorUart(1)
	if !assert.NoError(err) {
		return
	}

	var out bytes.Buffer
	emu.Uart.Output = &out

	assert.NoError(emu.Bus.Write8(device.PORT_CONFIG[0].Ren, 0xff))
	assert.NoError(emu.Bus.Write8(device.PORT_CONFIG[0].Dir, 0xff))
	assert.NoError(emu.Bus.Write8(device.PORT_CONFIG[0].Out, 0x10))
	assert.NoError(emu.Bus.Write8(device.PORT_CONFIG[2].Out, 0x00))
	assert.Equal("uart tx bit set\n", out.String())

	_, err = NewEmulatorUart(9)
	assert.Error(err)
}

func TestEmulator_Limit(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		0x5315, // ADD #1, R5
		0x3ffe, // JMP $-2
	)
	emu.Limit = 10

	assert.NoError(emu.Run(context.Background()))
	assert.Equal(10, emu.Ticks)
	assert.Equal(uint32(5), emu.Cpu.Register[5])

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(10, emu.Ticks)
}

func TestEmulator_Halted(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, 0x5315, 0x3ffe)
	emu.Cpu.Register[cpu.REG_SR] |= uint32(cpu.SR_CPUOFF)

	assert.True(emu.Halted())
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(0, emu.Ticks)
}

func TestEmulator_Fault(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t,
		0x5315, // ADD #1, R5
		0x13a0, // reserved
	)

	err := emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrReservedOpcode)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(FIRMWARE_BASE+2, runtime.Pc)
	}

	assert.Equal(FIRMWARE_BASE+2, emu.Cpu.Pc())
	assert.Equal(uint32(1), emu.Cpu.Register[5])
	assert.Equal(1, emu.Ticks)
}

func TestEmulator_Cancel(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, 0x5315, 0x3ffe)
	emu.Delay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(emu.Run(ctx), context.Canceled)
	assert.Equal(0, emu.Ticks)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(emu.Run(ctx), context.DeadlineExceeded)
	assert.Greater(emu.Ticks, 0)
}

func TestEmulator_VerbosePorts(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, 0x5315, 0x3ffe)
	emu.Verbose = true

	_, err := emu.Tick()
	assert.NoError(err)
	for _, port := range emu.Bus.Ports {
		assert.True(port.Verbose, port.Name())
	}

	emu.Verbose = false
	_, err = emu.Tick()
	assert.NoError(err)
	for _, port := range emu.Bus.Ports {
		assert.False(port.Verbose, port.Name())
	}
}

func TestEmulator_Trace(t *testing.T) {
	assert := assert.New(t)

	emu := newTestEmulator(t, 0x5315, 0x3ffe)

	var trace bytes.Buffer
	emu.Trace = &trace

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)

	text := trace.String()
	assert.Contains(text, "PC: 0c000")
	assert.Contains(text, "PC: 0_C000")
	assert.Contains(text, "02DD0:")
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator()
	if !assert.NoError(err) {
		return
	}

	defines := map[string]uint32{}
	for name, value := range emu.Defines() {
		defines[name] = value
	}

	assert.Equal(rom.RESET_VECTOR, defines["RESET_VECTOR"])
	assert.Equal(device.WDTCTL, defines["WDTCTL"])
	assert.Equal(uint32(cpu.REG_SP), defines["SP"])
	assert.Equal(uint32(0x19), defines["P3OUT"])
}

func TestEmulator_LoadROM(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator()
	if !assert.NoError(err) {
		return
	}

	name := filepath.Join(t.TempDir(), "fw.hex")
	file, err := os.Create(name)
	if !assert.NoError(err) {
		return
	}
	assert.NoError(firmware(0x5315, 0x3ffe).WriteHex(file))
	assert.NoError(file.Close())

	assert.NoError(emu.LoadROM(name))
	assert.NoError(emu.Reset())
	assert.Equal(FIRMWARE_BASE, emu.Cpu.Pc())

	word, err := emu.Bus.Read16(FIRMWARE_BASE)
	assert.NoError(err)
	assert.Equal(uint16(0x5315), word)

	assert.ErrorIs(emu.LoadROM(filepath.Join(t.TempDir(), "missing.hex")), rom.ErrRomLoad)
}
