package cpu

import (
	"fmt"
	"strings"
)

const (
	REGISTER_COUNT = 16

	REG_PC  = 0 // Program counter.
	REG_SP  = 1 // Stack pointer.
	REG_SR  = 2 // Status register, constant generator 1.
	REG_CG2 = 3 // Constant generator 2.

	ADDRESS_MASK = uint32(0xfffff) // 20-bit address space of the core.
)

// Status register bits.
const (
	SR_C      = Status(1 << 0) // Carry
	SR_Z      = Status(1 << 1) // Zero
	SR_N      = Status(1 << 2) // Negative
	SR_GIE    = Status(1 << 3) // General interrupt enable
	SR_CPUOFF = Status(1 << 4) // CPU off
	SR_OSCOFF = Status(1 << 5) // Oscillator off
	SR_SCG0   = Status(1 << 6) // System clock generator 0
	SR_SCG1   = Status(1 << 7) // System clock generator 1
	SR_V      = Status(1 << 8) // Overflow

	SR_FLAGS = SR_C | SR_Z | SR_N | SR_V
	SR_POWER = SR_CPUOFF | SR_OSCOFF | SR_SCG0 | SR_SCG1
)

// Status is the packed contents of the status register.
type Status uint32

func (st Status) Carry() bool    { return st&SR_C != 0 }
func (st Status) Zero() bool     { return st&SR_Z != 0 }
func (st Status) Negative() bool { return st&SR_N != 0 }
func (st Status) Overflow() bool { return st&SR_V != 0 }
func (st Status) GIE() bool      { return st&SR_GIE != 0 }

func (st Status) String() string {
	var flags strings.Builder
	for _, bit := range []struct {
		mask Status
		name string
	}{
		{SR_V, "V"}, {SR_SCG1, "SCG1"}, {SR_SCG0, "SCG0"}, {SR_OSCOFF, "OSCOFF"},
		{SR_CPUOFF, "CPUOFF"}, {SR_GIE, "GIE"}, {SR_N, "N"}, {SR_Z, "Z"}, {SR_C, "C"},
	} {
		if st&bit.mask != 0 {
			if flags.Len() > 0 {
				flags.WriteByte(' ')
			}
			flags.WriteString(bit.name)
		}
	}
	return fmt.Sprintf("%04x [%v]", uint32(st), flags.String())
}

// constantGenerator returns the constant selected by a register and As
// field, if that combination generates one.
func constantGenerator(reg int, as int, size WordSize) (value uint32, ok bool) {
	switch {
	case reg == REG_CG2:
		value = [4]uint32{0, 1, 2, 0xffffffff}[as&3]
		ok = true
	case reg == REG_SR && as == 2:
		value = 4
		ok = true
	case reg == REG_SR && as == 3:
		value = 8
		ok = true
	}
	value &= size.Mask()
	return
}
