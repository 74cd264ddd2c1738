package cpu

import (
	"fmt"
	"strings"
)

// AddressingMode selects how an operand's register and offset yield data.
type AddressingMode int

//go:generate go tool stringer -linecomment -type=AddressingMode
const (
	MODE_INVALID                = AddressingMode(0) // invalid
	MODE_REGISTER               = AddressingMode(1) // register
	MODE_INDEXED                = AddressingMode(2) // indexed
	MODE_SYMBOLIC               = AddressingMode(3) // symbolic
	MODE_ABSOLUTE               = AddressingMode(4) // absolute
	MODE_INDIRECT_REGISTER      = AddressingMode(5) // indirect
	MODE_INDIRECT_AUTOINCREMENT = AddressingMode(6) // autoincrement
	MODE_IMMEDIATE              = AddressingMode(7) // immediate
)

// Memory reports whether the mode reaches operand data through the bus.
func (am AddressingMode) Memory() bool {
	switch am {
	case MODE_INDEXED, MODE_SYMBOLIC, MODE_ABSOLUTE, MODE_INDIRECT_REGISTER, MODE_INDIRECT_AUTOINCREMENT:
		return true
	}
	return false
}

// WordSize is the width of an operand.
type WordSize int

//go:generate go tool stringer -linecomment -type=WordSize
const (
	SIZE_WORD     = WordSize(0) // W
	SIZE_BYTE     = WordSize(1) // B
	SIZE_EXTENDED = WordSize(2) // A
)

// Bits is the number of significant bits in the word size.
func (ws WordSize) Bits() int {
	switch ws {
	case SIZE_BYTE:
		return 8
	case SIZE_EXTENDED:
		return 20
	}
	return 16
}

// Bytes is the bus access width used for the word size.
func (ws WordSize) Bytes() int {
	switch ws {
	case SIZE_BYTE:
		return 1
	case SIZE_EXTENDED:
		return 4
	}
	return 2
}

// Mask covers the significant bits of the word size.
func (ws WordSize) Mask() uint32 {
	return (uint32(1) << ws.Bits()) - 1
}

// Sign is the sign bit of the word size.
func (ws WordSize) Sign() uint32 {
	return (ws.Mask() + 1) >> 1
}

// Operand is one decoded, and later resolved, instruction operand.
type Operand struct {
	Value    uint32         // Operand data, masked to Size.
	Address  uint32         // Bus address for memory modes.
	Offset   uint32         // Extension word offset, with any high bits applied.
	Register int            // Register index.
	Mode     AddressingMode // Addressing mode.
	Size     WordSize       // Operand width.
	As       int            // Raw addressing field.
	High     uint32         // Address bits 19:16 supplied by the opcode or prefix.

	Wide     bool // Offset is 20 bits wide, composed from High and the extension word.
	Inline   bool // Value is encoded in the opcode; no extension word.
	Constant bool // Register 2 and 3 select generated constants.

	NeedsValueFetch       bool // Read the operand data during resolution.
	UsedConstantGenerator bool // The constant generator supplied Value.
}

func registerName(reg int) string {
	switch reg {
	case REG_PC:
		return "PC"
	case REG_SP:
		return "SP"
	case REG_SR:
		return "SR"
	}
	return fmt.Sprintf("R%d", reg)
}

func (op Operand) String() string {
	if op.UsedConstantGenerator || (op.Mode == MODE_IMMEDIATE && op.Inline) {
		return fmt.Sprintf("#%d", int32(signExtend(op.Value, op.Size.Bits())))
	}

	switch op.Mode {
	case MODE_REGISTER:
		return registerName(op.Register)
	case MODE_INDEXED:
		return fmt.Sprintf("0x%x(%v)", op.Offset, registerName(op.Register))
	case MODE_SYMBOLIC:
		return fmt.Sprintf("0x%x(PC)", op.Offset)
	case MODE_ABSOLUTE:
		return fmt.Sprintf("&0x%x", op.Offset)
	case MODE_INDIRECT_REGISTER:
		return "@" + registerName(op.Register)
	case MODE_INDIRECT_AUTOINCREMENT:
		return "@" + registerName(op.Register) + "+"
	case MODE_IMMEDIATE:
		return fmt.Sprintf("#0x%x", op.Offset)
	}

	return "?"
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Operation   Operation // Decoded operation.
	MajorOpcode uint8     // Major opcode of the core word.
	MinorOpcode uint16    // Minor opcode within the major group.
	Format      int       // 1 two operand, 2 single operand, 3 jump.
	Extended    bool      // Preceded by an extension prefix word.
	Repetition  int       // Additional executions, 0 to 15.
	RepeatReg   int       // Register holding the repetition count, or -1.
	ZC          bool      // Rotate through a zero carry.
	Raw         []uint16  // Prefix (if any) and core word.

	Source      Operand
	Destination Operand
}

// Word returns the core instruction word.
func (insn *Instruction) Word() uint16 {
	if len(insn.Raw) == 0 {
		return 0
	}
	return insn.Raw[len(insn.Raw)-1]
}

// Mnemonic returns the assembler name of the instruction, with suffixes.
func (insn *Instruction) Mnemonic() (name string) {
	name = insn.Operation.String()

	switch insn.Operation {
	case OP_JNZ, OP_JZ, OP_JNC, OP_JC, OP_JN, OP_JGE, OP_JL, OP_JMP,
		OP_RETI, OP_CALLA, OP_MOVA, OP_CMPA, OP_ADDA, OP_SUBA, OP_INVALID:
		return
	case OP_PUSHM, OP_POPM, OP_RRCM, OP_RRAM, OP_RLAM, OP_RRUM:
		return name + "." + insn.Destination.Size.String()
	case OP_RRC:
		if insn.Extended && insn.ZC {
			name = "RRU"
		}
	}

	size := insn.Destination.Size
	if insn.Format == 2 {
		size = insn.Source.Size
	}

	if insn.Extended {
		name += "X"
	}

	return name + "." + size.String()
}

func (insn *Instruction) String() string {
	var args []string

	switch insn.Operation {
	case OP_RETI, OP_INVALID:
	case OP_JNZ, OP_JZ, OP_JNC, OP_JC, OP_JN, OP_JGE, OP_JL, OP_JMP:
		args = append(args, fmt.Sprintf("$%+d", jumpOffset(insn.Destination.Value)+2))
	case OP_PUSHM, OP_POPM, OP_RRCM, OP_RRAM, OP_RLAM, OP_RRUM:
		count := insn.Source.Value
		if insn.Operation != OP_PUSHM && insn.Operation != OP_POPM {
			count++
		}
		args = append(args, fmt.Sprintf("#%d", count), insn.Destination.String())
	default:
		args = append(args, insn.Source.String())
		if insn.Format == 1 {
			args = append(args, insn.Destination.String())
		}
	}

	text := insn.Mnemonic()
	if len(args) > 0 {
		text += " " + strings.Join(args, ", ")
	}
	if insn.Repetition != 0 || insn.RepeatReg >= 0 {
		if insn.RepeatReg >= 0 {
			text = fmt.Sprintf("RPT %v { %v }", registerName(insn.RepeatReg), text)
		} else {
			text = fmt.Sprintf("RPT #%d { %v }", insn.Repetition+1, text)
		}
	}

	return text
}
