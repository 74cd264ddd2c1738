// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/msp430emu/bus"
	"github.com/ezrec/msp430emu/cpu"
	"github.com/ezrec/msp430emu/device"
	"github.com/ezrec/msp430emu/internal"
	"github.com/ezrec/msp430emu/peripheral"
	"github.com/ezrec/msp430emu/rom"
)

const (
	TRACE_STACK_ABOVE = 16 // Bytes shown below the stack pointer in a trace.
	TRACE_STACK_BYTES = 32 // Bytes of stack shown in a trace.
)

var _emulator_defines = map[string]uint32{
	"RESET_VECTOR": rom.RESET_VECTOR,
	"RESET_PC":     cpu.RESET_PC,
	"RESET_SP":     cpu.RESET_SP,
}

// Emulator state. CPU + bus + board peripherals.
type Emulator struct {
	Verbose  bool          // If set, enables verbose logging.
	Trace    io.Writer     // If set, receives a register and stack dump before each cycle.
	Delay    time.Duration // Pause between cycles in Run.
	Limit    int           // If non-zero, Run stops after this many cycles.
	*cpu.Cpu               // Reference to the CPU simulation.

	Bus  *bus.Bus         // Device bus the core executes against.
	Uart *peripheral.Uart // UART on a port, 3 unless wired elsewhere.
	Rom  *rom.Image       // Last loaded firmware image.
}

// NewEmulator creates an emulator with the stock devices and a UART.
func NewEmulator() (emu *Emulator, err error) {
	return NewEmulatorUart(peripheral.UART_PORT)
}

// NewEmulatorUart creates an emulator with the UART wired to uart_port.
func NewEmulatorUart(uart_port int) (emu *Emulator, err error) {
	b, err := bus.NewStockBus(false)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:  cpu.NewCpu(b),
		Bus:  b,
		Uart: &peripheral.Uart{Wiring: uart_port},
	}

	err = peripheral.Attach(b, emu.Uart)
	if err != nil {
		return
	}

	emu.Cpu.Reset(cpu.RESET_PC, cpu.RESET_SP)

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, uint32] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		device.Defines(),
	)
}

// Close releases the devices on the bus.
func (emu *Emulator) Close() (err error) {
	for dev := range emu.Bus.Devices() {
		err = dev.Destroy()
		if err != nil {
			return
		}
	}
	return
}

// LoadROM reads an Intel HEX file and writes it to the bus.
func (emu *Emulator) LoadROM(name string) (err error) {
	img, err := rom.ReadFile(name)
	if err != nil {
		return
	}

	err = emu.LoadImage(img)
	return
}

// LoadImage writes a firmware image to the bus.
func (emu *Emulator) LoadImage(img *rom.Image) (err error) {
	err = img.Load(emu.Bus)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %v bytes", img.Len())
	}

	emu.Rom = img
	return
}

// Reset starts the core at the firmware's reset vector, or at the board
// default entry point when there is no firmware vector.
func (emu *Emulator) Reset() (err error) {
	pc := cpu.RESET_PC

	if emu.Rom != nil {
		vector, err_vector := emu.Rom.ResetVector()
		if err_vector == nil {
			pc = vector
		} else if emu.Verbose {
			log.Printf("emulator: %v, starting at 0x%05x", err_vector, pc)
		}
	}

	err = emu.ResetAt(pc)
	return
}

// ResetAt re-initializes the devices and starts the core at pc.
func (emu *Emulator) ResetAt(pc uint32) (err error) {
	for dev := range emu.Bus.Devices() {
		err = dev.Init()
		if err != nil {
			return
		}
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset(pc, cpu.RESET_SP)

	return
}

// Halted is true when the CPU has been switched off.
func (emu *Emulator) Halted() bool {
	return emu.Cpu.Status()&cpu.SR_CPUOFF != 0
}

// Dump writes the register file and the memory around the stack pointer.
func (emu *Emulator) Dump(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "----------- PC: %05x --------\n%v", emu.Cpu.Pc(), emu.Cpu)
	if err != nil {
		return
	}

	sp := emu.Cpu.Register[cpu.REG_SP]
	err = emu.Bus.Dump(w, sp-min(sp, TRACE_STACK_ABOVE), TRACE_STACK_BYTES)
	return
}

// Tick performs a single cycle of the emulator: device updates, then one
// instruction. done is set when the core cannot make further progress: it
// is switched off, it reached the cycle limit, or it jumped to itself.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Bus.Verbose = emu.Verbose
	for _, port := range emu.Bus.Ports {
		if port != nil {
			port.Verbose = emu.Verbose
		}
	}

	pc := emu.Cpu.Pc()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, Err: err}
		}
	}()

	if emu.Halted() || (emu.Limit > 0 && emu.Cpu.Ticks >= emu.Limit) {
		done = true
		return
	}

	if emu.Trace != nil {
		err = emu.Dump(emu.Trace)
		if err != nil {
			return
		}
	}

	err = emu.Bus.UpdateAll()
	if err != nil {
		return
	}

	insn, err := emu.Cpu.Step()
	if err != nil {
		return
	}

	if emu.Cpu.Pc() == pc && insn.Repetition == 0 {
		if emu.Verbose {
			log.Printf("emulator: %05x: %v loops on itself", pc, &insn)
		}
		done = true
	}

	return
}

// Run ticks the emulator until it is done, a cycle fails, or ctx ends.
// The bus device map is sealed once running.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	emu.Bus.Seal()

	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}

		if emu.Delay > 0 {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-time.After(emu.Delay):
			}
		}
	}
}
