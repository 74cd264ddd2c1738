package monitor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/msp430emu/cpu"
	"github.com/ezrec/msp430emu/emulator"
)

func newTestMonitor(t *testing.T) (mon *Monitor, out *bytes.Buffer) {
	emu, err := emulator.NewEmulator()
	if err != nil {
		t.Fatal(err)
	}

	out = &bytes.Buffer{}
	mon = NewMonitor(emu, out)
	return
}

func TestMonitor_Eval(t *testing.T) {
	table := [](struct {
		expr   string
		expect uint32
	}){
		{"1 + 2", 3},
		{"SP", cpu.REG_SP},
		{"R15", 15},
		{"WDTCTL", 0x120},
		{"P3OUT", 0x19},
		{"RESET_VECTOR", 0xfffe},
		{"C | Z", 3},
		{"reg(SP)", cpu.RESET_SP},
		{"pc()", cpu.RESET_PC},
		{"peekw(WDTCTL)", 0x6900},
	}

	for _, entry := range table {
		t.Run(entry.expr, func(t *testing.T) {
			assert := assert.New(t)

			mon, _ := newTestMonitor(t)
			value, err := mon.Eval(entry.expr)
			assert.NoError(err)
			assert.Equal(entry.expect, value)
		})
	}
}

func TestMonitor_EvalErrors(t *testing.T) {
	assert := assert.New(t)

	mon, _ := newTestMonitor(t)

	_, err := mon.Eval("'text'")
	assert.ErrorIs(err, ErrExpression)

	_, err = mon.Eval("1 +")
	assert.ErrorIs(err, ErrScript)

	_, err = mon.Eval("reg(16)")
	assert.ErrorIs(err, ErrScript)
	assert.ErrorIs(err, ErrRegister)
}

func TestMonitor_Script(t *testing.T) {
	assert := assert.New(t)

	mon, out := newTestMonitor(t)

	script := `
pokew(0x200, 0x5315)   # ADD #1, R5
pokew(0x202, 0x3ffe)   # JMP $-2
poke(0x210, 0xab)
set_reg(PC, 0x200)
set_reg(5, 10)
ran = step(4)
print(ran, reg(5), peek(0x210), "0x%x" % pc())
print(flags())
dump(0x200, 4)
`
	_, err := mon.Exec("test.star", script)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(uint32(12), mon.emu.Cpu.Register[5])
	assert.Equal(4, mon.emu.Ticks)
	assert.Equal("4 12 171 0x200\n0000 []\n00200: 15 53 FE 3F\n", out.String())
}

func TestMonitor_StepFault(t *testing.T) {
	assert := assert.New(t)

	mon, _ := newTestMonitor(t)

	_, err := mon.Exec("fault.star", "pokew(0x200, 0x13a0)\nset_reg(PC, 0x200)\nstep()\n")
	assert.ErrorIs(err, ErrScript)
	assert.ErrorIs(err, cpu.ErrReservedOpcode)
	assert.Equal(uint32(0x200), mon.emu.Cpu.Pc())
}

func TestMonitor_StepHalted(t *testing.T) {
	assert := assert.New(t)

	mon, _ := newTestMonitor(t)

	value, err := mon.Eval("set_reg(SR, CPUOFF) or step(10)")
	assert.NoError(err)
	assert.Equal(uint32(0), value)
}
