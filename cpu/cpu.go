// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

const (
	RESET_PC = uint32(0x471c) // Board default entry point.
	RESET_SP = uint32(0x2de0) // Board default top of stack.
)

var _cpu_defines = map[string]uint32{
	"PC":     REG_PC,
	"SP":     REG_SP,
	"SR":     REG_SR,
	"CG2":    REG_CG2,
	"C":      uint32(SR_C),
	"Z":      uint32(SR_Z),
	"N":      uint32(SR_N),
	"GIE":    uint32(SR_GIE),
	"CPUOFF": uint32(SR_CPUOFF),
	"OSCOFF": uint32(SR_OSCOFF),
	"SCG0":   uint32(SR_SCG0),
	"SCG1":   uint32(SR_SCG1),
	"V":      uint32(SR_V),
}

func init() {
	for n := range REGISTER_COUNT {
		_cpu_defines[fmt.Sprintf("R%d", n)] = uint32(n)
	}
}

// Bus is the memory interface the core executes against.
type Bus interface {
	Read(addr uint32, width int) (value uint32, err error)
	Write(addr uint32, value uint32, width int) error
	// Check validates an access without performing it.
	Check(addr uint32, width int) error
}

type pendingWrite struct {
	addr  uint32
	value uint32
	width int
}

// Cpu is the MSP430X core: register file, status flags, and the
// decode/execute engine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Bus      Bus                    // Memory bus.
	Register [REGISTER_COUNT]uint32 // Register file.
	Ticks    int                    // Instructions executed since reset.

	pending []pendingWrite // Bus writes staged by the current instruction.
}

// NewCpu creates a core attached to a bus.
func NewCpu(bus Bus) (cpu *Cpu) {
	cpu = &Cpu{
		Bus: bus,
	}
	return
}

// Defines returns the register and status bit names of the core.
func (cpu *Cpu) Defines() iter.Seq2[string, uint32] {
	return maps.All(_cpu_defines)
}

// Reset clears the register file and sets the entry point and stack.
func (cpu *Cpu) Reset(pc uint32, sp uint32) {
	if cpu.Verbose {
		log.Printf("cpu: reset pc=0x%05x sp=0x%05x", pc, sp)
	}

	clear(cpu.Register[:])
	cpu.Register[REG_PC] = pc & ADDRESS_MASK
	cpu.Register[REG_SP] = sp & ADDRESS_MASK
	cpu.Ticks = 0
	cpu.pending = cpu.pending[:0]
}

// Pc returns the program counter.
func (cpu *Cpu) Pc() uint32 {
	return cpu.Register[REG_PC]
}

// Status returns the status register.
func (cpu *Cpu) Status() Status {
	return Status(cpu.Register[REG_SR])
}

// String returns the register file as text.
func (cpu *Cpu) String() (text string) {
	for n, value := range cpu.Register {
		text += fmt.Sprintf("% 4s: %01X_%04X", registerName(n), value>>16, value&0xffff)
		if n%4 == 3 {
			text += "\n"
		} else {
			text += "  "
		}
	}
	text += fmt.Sprintf("  sr: %v\n", cpu.Status())
	return
}

// SetRegister writes a register the way an instruction would. Writes to
// the constant generator are discarded, and writes to the status register
// keep its power control bits.
func (cpu *Cpu) SetRegister(reg int, value uint32, size WordSize) {
	value &= size.Mask()

	switch reg {
	case REG_CG2:
		return
	case REG_SR:
		power := Status(cpu.Register[REG_SR]) & SR_POWER
		value = uint32((Status(value) &^ SR_POWER) | power)
	}

	cpu.Register[reg] = value
}

// setFlags updates the status bits in mask.
func (cpu *Cpu) setFlags(mask Status, set Status) {
	sr := Status(cpu.Register[REG_SR])
	cpu.Register[REG_SR] = uint32((sr &^ mask) | (set & mask))
}

func flagIf(cond bool, bit Status) Status {
	if cond {
		return bit
	}
	return 0
}

func (cpu *Cpu) read(addr uint32, width int) (value uint32, err error) {
	if cpu.Bus == nil {
		err = ErrBusMissing
		return
	}
	value, err = cpu.Bus.Read(addr, width)
	return
}

// stage queues a bus write for the end of the instruction.
func (cpu *Cpu) stage(addr uint32, value uint32, width int) {
	cpu.pending = append(cpu.pending, pendingWrite{addr: addr, value: value, width: width})
}

// commit performs the staged writes, once every one of them is known to be
// valid.
func (cpu *Cpu) commit() (err error) {
	defer func() {
		cpu.pending = cpu.pending[:0]
	}()

	if len(cpu.pending) == 0 {
		return
	}

	if cpu.Bus == nil {
		err = ErrBusMissing
		return
	}

	for _, pw := range cpu.pending {
		err = cpu.Bus.Check(pw.addr, pw.width)
		if err != nil {
			return
		}
	}

	for _, pw := range cpu.pending {
		err = cpu.Bus.Write(pw.addr, pw.value, pw.width)
		if err != nil {
			return
		}
	}

	return
}

// fetch reads the instruction word at the program counter.
func (cpu *Cpu) fetch() (word uint16, err error) {
	value, err := cpu.read(cpu.Register[REG_PC]&ADDRESS_MASK, 2)
	word = uint16(value)
	return
}

// advance moves the program counter to the next word.
func (cpu *Cpu) advance() {
	cpu.Register[REG_PC] = (cpu.Register[REG_PC] + 2) & ADDRESS_MASK
}

// Decode fetches and decodes the instruction at the program counter. When
// an extension prefix is present, the program counter is left on the core
// word. A repetition count held in a register is read into Repetition.
func (cpu *Cpu) Decode() (insn Instruction, err error) {
	word, err := cpu.fetch()
	if err != nil {
		return
	}

	words := []uint16{word}
	major := MajorOpcode(word)
	if major == MAJOR_PREFIX || major == MAJOR_PREFIX2 {
		cpu.advance()
		word, err = cpu.fetch()
		if err != nil {
			return
		}
		words = append(words, word)
	}

	insn, err = Decode(words...)
	if err != nil {
		return
	}

	if insn.RepeatReg >= 0 {
		insn.Repetition = int(cpu.Register[insn.RepeatReg] & 0xf)
	}

	return
}

// Next decodes and resolves the instruction at the program counter without
// executing it. Registers are left unchanged.
func (cpu *Cpu) Next() (insn Instruction, err error) {
	saved := cpu.Register
	defer func() {
		cpu.Register = saved
	}()

	insn, err = cpu.Decode()
	if err != nil {
		return
	}

	err = cpu.Resolve(&insn)
	return
}

// Step runs one instruction, with all of its repetitions. If any part of it
// fails, registers and memory are left as they were before the step.
func (cpu *Cpu) Step() (insn Instruction, err error) {
	saved := cpu.Register
	start := cpu.Register[REG_PC]

	defer func() {
		if err != nil {
			cpu.Register = saved
			cpu.pending = cpu.pending[:0]
		}
	}()

	repeat := 0
	for n := 0; ; n++ {
		insn, err = cpu.Decode()
		if err != nil {
			return
		}

		if n == 0 {
			repeat = insn.Repetition
		}

		err = cpu.Resolve(&insn)
		if err != nil {
			return
		}

		if cpu.Verbose {
			log.Printf("cpu: %05x: %v", start, &insn)
		}

		err = cpu.Execute(&insn)
		if err != nil {
			return
		}

		if n >= repeat {
			break
		}

		cpu.Register[REG_PC] = start
	}

	cpu.Ticks++

	return
}

// errOpcode annotates err with the instruction words.
func errOpcode(insn *Instruction, err error) error {
	if err == nil || errors.Is(err, ErrOpcode{}) {
		return err
	}
	return errors.Join(ErrOpcode(insn.Raw), err)
}
