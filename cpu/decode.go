package cpu

import (
	"errors"
	"slices"
)

// wordSize selects the operand width from the byte/word bit, and for
// extended instructions the A/L bit of the prefix.
func wordSize(extended bool, al uint16, bw uint16) (size WordSize, err error) {
	switch {
	case !extended && bw == 0:
		size = SIZE_WORD
	case !extended:
		size = SIZE_BYTE
	case al == 0 && bw == 1:
		size = SIZE_EXTENDED
	case al == 1 && bw == 0:
		size = SIZE_WORD
	case al == 1 && bw == 1:
		size = SIZE_BYTE
	default:
		err = ErrReservedOpcode
	}
	return
}

// addressingMode maps an As or Ad field and its register to a mode.
// Constant generator registers are resolved later.
func addressingMode(as int, reg int) AddressingMode {
	switch as {
	case 0:
		return MODE_REGISTER
	case 1:
		switch reg {
		case REG_PC:
			return MODE_SYMBOLIC
		case REG_SR:
			return MODE_ABSOLUTE
		}
		return MODE_INDEXED
	case 2:
		return MODE_INDIRECT_REGISTER
	}

	if reg == REG_PC {
		return MODE_IMMEDIATE
	}
	// @Rn+ post-increments Rn; POP and RET are encoded this way.
	return MODE_INDIRECT_AUTOINCREMENT
}

// encodedOperand builds an operand from an As style field.
func encodedOperand(reg int, as int, size WordSize) Operand {
	return Operand{
		Register:        reg,
		As:              as,
		Mode:            addressingMode(as, reg),
		Size:            size,
		Constant:        true,
		NeedsValueFetch: true,
	}
}

func registerOperand(reg int, size WordSize) Operand {
	return Operand{
		Register:        reg,
		Mode:            MODE_REGISTER,
		Size:            size,
		NeedsValueFetch: true,
	}
}

// Decode turns instruction words into an Instruction. words holds either the
// core word alone, or an extension prefix followed by the core word.
// Operand extension words are not part of words; they are fetched when the
// operands are resolved.
//
// Decode does not consult registers. A repetition count held in a register
// is reported through RepeatReg.
func Decode(words ...uint16) (insn Instruction, err error) {
	insn.RepeatReg = -1
	insn.Raw = slices.Clone(words)

	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(insn.Raw), err)
		}
	}()

	if len(words) == 0 || len(words) > 2 {
		err = ErrReservedOpcode
		return
	}

	major := MajorOpcode(words[0])
	if major == MAJOR_PREFIX || major == MAJOR_PREFIX2 {
		if len(words) != 2 {
			err = ErrReservedOpcode
			return
		}
		err = insn.decodeExtended(words[0], words[1])
		return
	}

	if len(words) != 1 {
		err = ErrReservedOpcode
		return
	}

	word := words[0]
	insn.MajorOpcode = major
	insn.Format = OpcodeFormat(major)

	switch {
	case major == MAJOR_ADDRESS:
		err = insn.decodeAddress(word)
	case major == MAJOR_SINGLE:
		err = insn.decodeSingle(word, SIZE_WORD)
	case major == MAJOR_PUSHM:
		err = insn.decodePushm(word)
	case major >= MAJOR_MOV:
		var size WordSize
		size, err = wordSize(false, 0, (word>>6)&1)
		if err != nil {
			return
		}
		insn.decodeFormat1(word, size)
	case major >= MAJOR_JUMP:
		insn.decodeJump(word)
	default:
		err = ErrReservedOpcode
	}

	return
}

func (insn *Instruction) decodeFormat1(word uint16, size WordSize) {
	insn.MinorOpcode = word >> 12
	insn.Operation = _format1_operation[insn.MajorOpcode]

	srcReg := int(word>>8) & 0xf
	ad := int(word>>7) & 1
	as := int(word>>4) & 3
	dstReg := int(word) & 0xf

	insn.Source = encodedOperand(srcReg, as, size)
	insn.Destination = Operand{
		Register:        dstReg,
		As:              ad,
		Mode:            addressingMode(ad, dstReg),
		Size:            size,
		NeedsValueFetch: insn.Operation != OP_MOV,
	}
}

func (insn *Instruction) decodeJump(word uint16) {
	insn.MinorOpcode = (word >> 10) & 7
	insn.Operation = _jump_operation[insn.MinorOpcode]
	insn.Destination.Value = uint32(word) & 0x3ff
}

// decodeAddress decodes the MOVA, CMPA, ADDA, SUBA and RRxM group.
func (insn *Instruction) decodeAddress(word uint16) (err error) {
	minor := (word >> 4) & 0xf
	insn.MinorOpcode = minor

	src := int(word>>8) & 0xf
	dst := int(word) & 0xf

	insn.Operation = [4]Operation{OP_MOVA, OP_CMPA, OP_ADDA, OP_SUBA}[minor&3]
	insn.Source = registerOperand(src, SIZE_EXTENDED)
	insn.Destination = registerOperand(dst, SIZE_EXTENDED)

	switch minor {
	case 0x0:
		insn.Operation = OP_MOVA
		insn.Source.Mode = MODE_INDIRECT_REGISTER
	case 0x1:
		insn.Operation = OP_MOVA
		insn.Source.Mode = MODE_INDIRECT_AUTOINCREMENT
	case 0x2:
		insn.Operation = OP_MOVA
		insn.Source = Operand{
			Register:        REG_SR,
			Mode:            MODE_ABSOLUTE,
			Size:            SIZE_EXTENDED,
			High:            uint32(src),
			Wide:            true,
			NeedsValueFetch: true,
		}
	case 0x3:
		insn.Operation = OP_MOVA
		insn.Source.Mode = MODE_INDEXED
	case 0x4, 0x5:
		size := SIZE_EXTENDED
		if minor == 0x5 {
			size = SIZE_WORD
		}
		insn.Operation = _rotate_operation[(word>>8)&3]
		insn.Source = Operand{
			Mode:   MODE_IMMEDIATE,
			Size:   size,
			Inline: true,
			Value:  uint32(word>>10) & 3,
		}
		insn.Destination = registerOperand(dst, size)
	case 0x6:
		insn.Operation = OP_MOVA
		insn.Destination = Operand{
			Register: REG_SR,
			Mode:     MODE_ABSOLUTE,
			Size:     SIZE_EXTENDED,
			High:     uint32(dst),
			Wide:     true,
		}
	case 0x7:
		insn.Operation = OP_MOVA
		insn.Destination.Mode = MODE_INDEXED
	case 0x8, 0x9, 0xa, 0xb:
		insn.Source = Operand{
			Register:        REG_PC,
			Mode:            MODE_IMMEDIATE,
			Size:            SIZE_EXTENDED,
			High:            uint32(src),
			Wide:            true,
			NeedsValueFetch: true,
		}
	}

	if insn.Operation == OP_MOVA {
		insn.Destination.NeedsValueFetch = false
	}

	return
}

// decodeSingle decodes the format II, RETI and CALLA group. size applies to
// extended format II instructions only.
func (insn *Instruction) decodeSingle(word uint16, size WordSize) (err error) {
	minor := word >> 4
	insn.MinorOpcode = minor

	reg := int(word) & 0xf

	switch {
	case minor < MINOR_RETI:
		insn.Operation = _single_operation[(word>>7)&7]
		as := int(word>>4) & 3
		if !insn.Extended {
			size, err = wordSize(false, 0, (word>>6)&1)
			if err != nil {
				return
			}
		}
		switch insn.Operation {
		case OP_SWPB, OP_SXT, OP_CALL:
			if size == SIZE_BYTE {
				err = ErrReservedOpcode
				return
			}
		}
		if insn.Extended && insn.Operation == OP_CALL {
			err = ErrReservedOpcode
			return
		}
		insn.Source = encodedOperand(reg, as, size)
	case insn.Extended:
		err = ErrReservedOpcode
	case minor == MINOR_RETI:
		insn.Operation = OP_RETI
	case minor == MINOR_CALLA_REG:
		insn.Operation = OP_CALLA
		insn.Source = registerOperand(reg, SIZE_EXTENDED)
	case minor == MINOR_CALLA_INDEX:
		insn.Operation = OP_CALLA
		insn.Source = registerOperand(reg, SIZE_EXTENDED)
		insn.Source.Mode = MODE_INDEXED
	case minor == MINOR_CALLA_IND:
		insn.Operation = OP_CALLA
		insn.Source = registerOperand(reg, SIZE_EXTENDED)
		insn.Source.Mode = MODE_INDIRECT_REGISTER
	case minor == MINOR_CALLA_INC:
		insn.Operation = OP_CALLA
		insn.Source = registerOperand(reg, SIZE_EXTENDED)
		insn.Source.Mode = MODE_INDIRECT_AUTOINCREMENT
	case minor == MINOR_CALLA_ABS, minor == MINOR_CALLA_SYM, minor == MINOR_CALLA_IMM:
		insn.Operation = OP_CALLA
		insn.Source = Operand{
			Register:        REG_PC,
			Size:            SIZE_EXTENDED,
			High:            uint32(reg),
			Wide:            true,
			NeedsValueFetch: true,
		}
		switch minor {
		case MINOR_CALLA_ABS:
			insn.Source.Register = REG_SR
			insn.Source.Mode = MODE_ABSOLUTE
		case MINOR_CALLA_SYM:
			insn.Source.Mode = MODE_SYMBOLIC
		default:
			insn.Source.Mode = MODE_IMMEDIATE
		}
	default:
		err = ErrReservedOpcode
	}

	return
}

// decodePushm decodes PUSHM and POPM. The source operand carries the
// number of registers to transfer.
func (insn *Instruction) decodePushm(word uint16) (err error) {
	minor := word >> 8
	insn.MinorOpcode = minor

	size := SIZE_EXTENDED
	switch minor {
	case MINOR_PUSHM_A:
		insn.Operation = OP_PUSHM
	case MINOR_PUSHM_W:
		insn.Operation = OP_PUSHM
		size = SIZE_WORD
	case MINOR_POPM_A:
		insn.Operation = OP_POPM
	case MINOR_POPM_W:
		insn.Operation = OP_POPM
		size = SIZE_WORD
	default:
		err = ErrReservedOpcode
		return
	}

	insn.Source = Operand{
		Mode:   MODE_IMMEDIATE,
		Size:   size,
		Inline: true,
		Value:  uint32(word>>4)&0xf + 1,
	}
	insn.Destination = Operand{
		Register: int(word) & 0xf,
		Mode:     MODE_REGISTER,
		Size:     size,
	}

	return
}

// decodeExtended decodes a core instruction preceded by an extension prefix.
func (insn *Instruction) decodeExtended(prefix uint16, word uint16) (err error) {
	major := MajorOpcode(word)

	insn.Extended = true
	insn.MajorOpcode = major
	insn.Format = OpcodeFormat(major)

	size, err := wordSize(true, (prefix>>6)&1, (word>>6)&1)
	if err != nil {
		return
	}

	switch {
	case major >= MAJOR_MOV:
		insn.decodeFormat1(word, size)
	case major == MAJOR_SINGLE:
		err = insn.decodeSingle(word, size)
		if err != nil {
			return
		}
	default:
		err = ErrReservedOpcode
		return
	}

	registerMode := insn.Source.As == 0
	if insn.Format == 1 {
		registerMode = registerMode && insn.Destination.As == 0
	}

	if registerMode {
		insn.ZC = (prefix>>8)&1 != 0
		if (prefix>>7)&1 != 0 {
			insn.RepeatReg = int(prefix) & 0xf
		} else {
			insn.Repetition = int(prefix) & 0xf
		}
		return
	}

	insn.Source.Wide = true
	insn.Destination.Wide = true
	if insn.Format == 1 {
		insn.Source.High = uint32(prefix>>7) & 0xf
		insn.Destination.High = uint32(prefix) & 0xf
	} else {
		insn.Source.High = uint32(prefix) & 0xf
	}

	return
}
