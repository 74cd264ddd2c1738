package cpu

// Operation is the decoded operation of an instruction.
type Operation int

//go:generate go tool stringer -linecomment -type=Operation
const (
	OP_INVALID = Operation(iota) // ???

	// Format I, two operand.
	OP_MOV  // MOV
	OP_ADD  // ADD
	OP_ADDC // ADDC
	OP_SUBC // SUBC
	OP_SUB  // SUB
	OP_CMP  // CMP
	OP_DADD // DADD
	OP_BIT  // BIT
	OP_BIC  // BIC
	OP_BIS  // BIS
	OP_XOR  // XOR
	OP_AND  // AND

	// Format III, conditional jump.
	OP_JNZ // JNZ
	OP_JZ  // JZ
	OP_JNC // JNC
	OP_JC  // JC
	OP_JN  // JN
	OP_JGE // JGE
	OP_JL  // JL
	OP_JMP // JMP

	// Format II, single operand.
	OP_RRC   // RRC
	OP_SWPB  // SWPB
	OP_RRA   // RRA
	OP_SXT   // SXT
	OP_PUSH  // PUSH
	OP_CALL  // CALL
	OP_RETI  // RETI
	OP_CALLA // CALLA

	// Multiple register stack operations.
	OP_PUSHM // PUSHM
	OP_POPM  // POPM

	// Address word operations.
	OP_MOVA // MOVA
	OP_CMPA // CMPA
	OP_ADDA // ADDA
	OP_SUBA // SUBA
	OP_RRCM // RRCM
	OP_RRAM // RRAM
	OP_RLAM // RLAM
	OP_RRUM // RRUM
)

// Major opcode groups.
const (
	MAJOR_ADDRESS = uint8(0x00) // MOVA family and RRxM.
	MAJOR_SINGLE  = uint8(0x10) // Format II, RETI and CALLA.
	MAJOR_PUSHM   = uint8(0x14) // PUSHM and POPM.
	MAJOR_PREFIX  = uint8(0x18) // Extension word.
	MAJOR_PREFIX2 = uint8(0x1c) // Extension word, upper half.
	MAJOR_JUMP    = uint8(0x20) // First conditional jump.
	MAJOR_MOV     = uint8(0x40) // First format I opcode.
)

// Minor opcodes of the MAJOR_SINGLE group.
const (
	MINOR_RETI        = uint16(0x130)
	MINOR_CALLA_REG   = uint16(0x134)
	MINOR_CALLA_INDEX = uint16(0x135)
	MINOR_CALLA_IND   = uint16(0x136)
	MINOR_CALLA_INC   = uint16(0x137)
	MINOR_CALLA_ABS   = uint16(0x138)
	MINOR_CALLA_SYM   = uint16(0x139)
	MINOR_CALLA_IMM   = uint16(0x13b)
)

// Minor opcodes of the MAJOR_PUSHM group.
const (
	MINOR_PUSHM_A = uint16(0x14)
	MINOR_PUSHM_W = uint16(0x15)
	MINOR_POPM_A  = uint16(0x16)
	MINOR_POPM_W  = uint16(0x17)
)

var _format1_operation = map[uint8]Operation{
	0x40: OP_MOV,
	0x50: OP_ADD,
	0x60: OP_ADDC,
	0x70: OP_SUBC,
	0x80: OP_SUB,
	0x90: OP_CMP,
	0xa0: OP_DADD,
	0xb0: OP_BIT,
	0xc0: OP_BIC,
	0xd0: OP_BIS,
	0xe0: OP_XOR,
	0xf0: OP_AND,
}

var _jump_operation = [8]Operation{
	OP_JNZ, OP_JZ, OP_JNC, OP_JC, OP_JN, OP_JGE, OP_JL, OP_JMP,
}

var _single_operation = [6]Operation{
	OP_RRC, OP_SWPB, OP_RRA, OP_SXT, OP_PUSH, OP_CALL,
}

var _rotate_operation = [4]Operation{
	OP_RRCM, OP_RRAM, OP_RLAM, OP_RRUM,
}

// MajorOpcode extracts the major opcode group of an instruction word.
// Groups below 0x10 and from 0x40 up are a whole nibble wide.
func MajorOpcode(word uint16) (major uint8) {
	major = uint8(word>>8) & 0xfc
	if (major&0xf0) >= 0x40 || (major&0xf0) == 0 {
		major &= 0xf0
	}
	return
}

// OpcodeFormat returns the instruction format of a major opcode.
func OpcodeFormat(major uint8) int {
	switch {
	case major == MAJOR_ADDRESS || major >= MAJOR_MOV:
		return 1
	case major == MAJOR_SINGLE || major == MAJOR_PUSHM:
		return 2
	case major >= MAJOR_JUMP:
		return 3
	}
	return 0
}

func signExtend(value uint32, bits int) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

// jumpOffset is the byte displacement encoded in a jump's offset field.
func jumpOffset(raw uint32) int {
	return int(int32(signExtend(raw&0x3ff, 10))) * 2
}
