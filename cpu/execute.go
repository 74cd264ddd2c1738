package cpu

// isPC reports whether the operand is the program counter register.
func (op *Operand) isPC() bool {
	return op.Mode == MODE_REGISTER && op.Register == REG_PC
}

// store writes an operand's result back to its register, or stages it for
// the bus. Immediate operands discard the result.
func (cpu *Cpu) store(op *Operand, value uint32) {
	switch {
	case op.Mode == MODE_REGISTER:
		cpu.SetRegister(op.Register, value, op.Size)
	case op.Mode.Memory():
		cpu.stage(op.Address, value&op.Size.Mask(), op.Size.Bytes())
	}
}

// push decrements the stack pointer and stages a write of width bytes.
func (cpu *Cpu) push(value uint32, width int) {
	step := uint32(max(width, 2))
	sp := (cpu.Register[REG_SP] - step) & ADDRESS_MASK
	cpu.Register[REG_SP] = sp
	cpu.stage(sp, value, width)
}

// pop reads width bytes from the stack and increments the stack pointer.
func (cpu *Cpu) pop(width int) (value uint32, err error) {
	sp := cpu.Register[REG_SP] & ADDRESS_MASK
	value, err = cpu.read(sp, width)
	if err != nil {
		return
	}
	cpu.Register[REG_SP] = (sp + uint32(max(width, 2))) & ADDRESS_MASK
	return
}

// Execute performs a resolved instruction. Bus writes are committed at the
// end, and only once all of them are valid.
func (cpu *Cpu) Execute(insn *Instruction) (err error) {
	defer func() {
		if err == nil {
			err = cpu.commit()
		}
		cpu.pending = cpu.pending[:0]
		err = errOpcode(insn, err)
	}()

	src := &insn.Source
	dst := &insn.Destination
	incPc := true

	switch insn.Operation {
	case OP_MOV, OP_MOVA:
		cpu.store(dst, src.Value)
		incPc = !dst.isPC()
	case OP_ADD, OP_ADDA:
		cpu.add(dst, src.Value, 0)
	case OP_ADDC:
		cpu.add(dst, src.Value, uint32(flagIf(cpu.Status().Carry(), 1)))
	case OP_SUB, OP_SUBA:
		cpu.subtract(dst, src.Value, 0, true)
	case OP_SUBC:
		cpu.subtract(dst, src.Value, uint32(flagIf(!cpu.Status().Carry(), 1)), true)
	case OP_CMP, OP_CMPA:
		cpu.subtract(dst, src.Value, 0, false)
	case OP_DADD:
		cpu.decimalAdd(dst, src.Value)
	case OP_BIT:
		cpu.logical(dst, src.Value&dst.Value, false, false)
	case OP_AND:
		cpu.logical(dst, src.Value&dst.Value, true, false)
	case OP_XOR:
		cpu.logical(dst, src.Value^dst.Value, true, src.Value&dst.Value&dst.Size.Sign() != 0)
	case OP_BIC:
		cpu.store(dst, dst.Value&^src.Value)
	case OP_BIS:
		cpu.store(dst, dst.Value|src.Value)
	case OP_JNZ, OP_JZ, OP_JNC, OP_JC, OP_JN, OP_JGE, OP_JL, OP_JMP:
		cpu.jump(insn)
		incPc = false
	case OP_RRC, OP_RRA, OP_SWPB, OP_SXT:
		cpu.single(insn)
	case OP_PUSH:
		cpu.push(src.Value, src.Size.Bytes())
	case OP_CALL:
		cpu.advance()
		cpu.push(cpu.Register[REG_PC]&0xffff, 2)
		cpu.Register[REG_PC] = src.Value & 0xffff
		incPc = false
	case OP_CALLA:
		cpu.advance()
		pc := cpu.Register[REG_PC]
		cpu.push(pc>>16, 2)
		cpu.push(pc&0xffff, 2)
		cpu.Register[REG_PC] = src.Value & ADDRESS_MASK
		incPc = false
	case OP_RETI:
		err = cpu.reti()
		incPc = false
	case OP_PUSHM:
		cpu.pushm(insn)
	case OP_POPM:
		err = cpu.popm(insn)
	case OP_RRCM, OP_RRAM, OP_RLAM, OP_RRUM:
		cpu.rotate(insn)
	default:
		err = ErrUnimplementedInstruction
	}

	if err == nil && incPc {
		cpu.advance()
	}

	return
}

func (cpu *Cpu) add(dst *Operand, value uint32, carry uint32) {
	mask := dst.Size.Mask()
	sign := dst.Size.Sign()

	sum := dst.Value + value + carry
	result := sum & mask
	cpu.store(dst, result)

	cpu.setFlags(SR_FLAGS,
		flagIf(result == 0, SR_Z)|
			flagIf(result&sign != 0, SR_N)|
			flagIf(sum > mask, SR_C)|
			flagIf((dst.Value&sign) == (value&sign) && (dst.Value&sign) != (result&sign), SR_V))
}

// subtract computes dst - value - borrow, writing the result if write is set.
func (cpu *Cpu) subtract(dst *Operand, value uint32, borrow uint32, write bool) {
	mask := dst.Size.Mask()
	sign := dst.Size.Sign()

	result := (dst.Value - value - borrow) & mask
	if write {
		cpu.store(dst, result)
	}

	cpu.setFlags(SR_FLAGS,
		flagIf(result == 0, SR_Z)|
			flagIf(result&sign != 0, SR_N)|
			flagIf(dst.Value >= value, SR_C)|
			flagIf((dst.Value&sign) != (value&sign) && (dst.Value&sign) != (result&sign), SR_V))
}

// decimalAdd adds packed BCD digits, with the carry flag as carry in.
func (cpu *Cpu) decimalAdd(dst *Operand, value uint32) {
	digits := dst.Size.Bits() / 4
	carry := uint32(flagIf(cpu.Status().Carry(), 1))

	var result uint32
	for n := range digits {
		shift := uint(n * 4)
		digit := (dst.Value>>shift)&0xf + (value>>shift)&0xf + carry
		if digit > 9 {
			digit += 6
		}
		carry = (digit >> 4) & 1
		result |= (digit & 0xf) << shift
	}

	cpu.store(dst, result)

	cpu.setFlags(SR_C|SR_Z|SR_N,
		flagIf(result == 0, SR_Z)|
			flagIf(result&dst.Size.Sign() != 0, SR_N)|
			flagIf(carry != 0, SR_C))
}

// logical sets flags for AND, BIT and XOR. The carry flag is set for any
// non-zero result.
func (cpu *Cpu) logical(dst *Operand, result uint32, write bool, overflow bool) {
	result &= dst.Size.Mask()
	if write {
		cpu.store(dst, result)
	}

	cpu.setFlags(SR_FLAGS,
		flagIf(result == 0, SR_Z)|
			flagIf(result&dst.Size.Sign() != 0, SR_N)|
			flagIf(result != 0, SR_C)|
			flagIf(overflow, SR_V))
}

func (cpu *Cpu) jump(insn *Instruction) {
	st := cpu.Status()

	var taken bool
	switch insn.Operation {
	case OP_JNZ:
		taken = !st.Zero()
	case OP_JZ:
		taken = st.Zero()
	case OP_JNC:
		taken = !st.Carry()
	case OP_JC:
		taken = st.Carry()
	case OP_JN:
		taken = st.Negative()
	case OP_JGE:
		taken = st.Negative() == st.Overflow()
	case OP_JL:
		taken = st.Negative() != st.Overflow()
	case OP_JMP:
		taken = true
	}

	pc := cpu.Register[REG_PC] + 2
	if taken {
		pc += uint32(jumpOffset(insn.Destination.Value))
	}
	cpu.Register[REG_PC] = pc & ADDRESS_MASK
}

// single performs the format II operations that rewrite their operand.
func (cpu *Cpu) single(insn *Instruction) {
	op := &insn.Source
	value := op.Value
	size := op.Size
	sign := size.Sign()

	var result uint32
	var flags Status

	switch insn.Operation {
	case OP_RRC:
		carry := cpu.Status().Carry()
		if insn.Extended && insn.ZC {
			carry = false
		}
		result = value >> 1
		if carry {
			result |= sign
		}
		flags = flagIf(value&1 != 0, SR_C)
	case OP_RRA:
		result = (value >> 1) | (value & sign)
		flags = flagIf(value&1 != 0, SR_C)
	case OP_SWPB:
		result = (value&0xff)<<8 | (value>>8)&0xff
		if size == SIZE_EXTENDED {
			result |= value & 0xf0000
		}
		cpu.store(op, result)
		return
	case OP_SXT:
		result = signExtend(value&0xff, 8) & size.Mask()
		flags = flagIf(result != 0, SR_C)
	}

	cpu.store(op, result)

	cpu.setFlags(SR_FLAGS, flags|
		flagIf(result == 0, SR_Z)|
		flagIf(result&sign != 0, SR_N))
}

func (cpu *Cpu) reti() (err error) {
	sr, err := cpu.pop(2)
	if err != nil {
		return
	}

	pc, err := cpu.pop(2)
	if err != nil {
		return
	}

	cpu.setFlags(SR_FLAGS|SR_GIE, Status(sr))
	cpu.Register[REG_PC] = (pc | (sr>>12)<<16) & ADDRESS_MASK
	return
}

// pushm pushes registers from the destination register downward.
func (cpu *Cpu) pushm(insn *Instruction) {
	size := insn.Destination.Size
	for n := range int(insn.Source.Value) {
		reg := (insn.Destination.Register - n) & 0xf
		cpu.push(cpu.Register[reg]&size.Mask(), size.Bytes())
	}
}

// popm pops registers from the destination register upward.
func (cpu *Cpu) popm(insn *Instruction) (err error) {
	size := insn.Destination.Size
	for n := range int(insn.Source.Value) {
		reg := (insn.Destination.Register + n) & 0xf
		var value uint32
		value, err = cpu.pop(size.Bytes())
		if err != nil {
			return
		}
		cpu.SetRegister(reg, value, size)
	}
	return
}

// rotate performs the RRCM, RRAM, RLAM and RRUM multiple bit shifts.
func (cpu *Cpu) rotate(insn *Instruction) {
	dst := &insn.Destination
	mask := dst.Size.Mask()
	sign := dst.Size.Sign()

	value := dst.Value
	carry := cpu.Status().Carry()

	for range insn.Source.Value + 1 {
		switch insn.Operation {
		case OP_RRCM:
			out := value&1 != 0
			value >>= 1
			if carry {
				value |= sign
			}
			carry = out
		case OP_RRAM:
			carry = value&1 != 0
			value = (value >> 1) | (value & sign)
		case OP_RLAM:
			carry = value&sign != 0
			value = (value << 1) & mask
		case OP_RRUM:
			carry = value&1 != 0
			value >>= 1
		}
	}

	cpu.store(dst, value)

	cpu.setFlags(SR_FLAGS,
		flagIf(value == 0, SR_Z)|
			flagIf(value&sign != 0, SR_N)|
			flagIf(carry, SR_C))
}
