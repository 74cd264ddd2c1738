package cpu

// Resolve fetches operand extension words and data for the source, then
// the destination operand. The program counter is advanced past each
// extension word fetched.
func (cpu *Cpu) Resolve(insn *Instruction) (err error) {
	err = cpu.resolve(&insn.Source)
	if err == nil {
		err = cpu.resolve(&insn.Destination)
	}
	return errOpcode(insn, err)
}

// step is the autoincrement amount for an operand.
func (op *Operand) step() uint32 {
	step := uint32(op.Size.Bytes())
	if op.Register == REG_SP && step < 2 {
		step = 2
	}
	return step
}

func (cpu *Cpu) resolve(op *Operand) (err error) {
	if op.Mode == MODE_INVALID {
		return
	}

	if op.Constant {
		value, ok := constantGenerator(op.Register, op.As, op.Size)
		if ok {
			op.Mode = MODE_IMMEDIATE
			op.Value = value
			op.UsedConstantGenerator = true
			return
		}
	}

	switch op.Mode {
	case MODE_INDEXED, MODE_SYMBOLIC, MODE_ABSOLUTE, MODE_IMMEDIATE:
		if op.Inline {
			break
		}
		cpu.advance()
		var word uint16
		word, err = cpu.fetch()
		if err != nil {
			return
		}
		op.Offset = uint32(word)
		if op.Wide {
			op.Offset |= op.High << 16
		}
		switch {
		case op.Mode != MODE_INDEXED && op.Mode != MODE_SYMBOLIC:
		case op.Wide:
			op.Offset = signExtend(op.Offset, 20) & ADDRESS_MASK
		default:
			op.Offset = signExtend(op.Offset, 16) & ADDRESS_MASK
		}
	}

	mask := op.Size.Mask()

	switch op.Mode {
	case MODE_REGISTER:
		op.Value = cpu.Register[op.Register] & mask
		return
	case MODE_IMMEDIATE:
		if !op.Inline {
			op.Value = op.Offset & mask
		}
		return
	case MODE_INDEXED:
		op.Address = (cpu.Register[op.Register] + op.Offset) & ADDRESS_MASK
	case MODE_SYMBOLIC:
		op.Address = (cpu.Register[REG_PC] + op.Offset) & ADDRESS_MASK
	case MODE_ABSOLUTE:
		op.Address = op.Offset & ADDRESS_MASK
	case MODE_INDIRECT_REGISTER, MODE_INDIRECT_AUTOINCREMENT:
		op.Address = cpu.Register[op.Register] & ADDRESS_MASK
	}

	if op.NeedsValueFetch {
		var value uint32
		value, err = cpu.read(op.Address, op.Size.Bytes())
		if err != nil {
			return
		}
		op.Value = value & mask
	}

	if op.Mode == MODE_INDIRECT_AUTOINCREMENT {
		cpu.Register[op.Register] = (cpu.Register[op.Register] + op.step()) & ADDRESS_MASK
	}

	return
}
