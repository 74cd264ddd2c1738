// Package monitor runs Starlark debug scripts against an emulator.
//
// Scripts see every emulator define (register numbers, status bits and
// device register addresses) as a predeclared integer, plus these builtins:
//
//	reg(n)               register n
//	set_reg(n, value)    store register n, without instruction side effects
//	peek(addr)           read a byte from the bus
//	poke(addr, value)    write a byte to the bus
//	peekw(addr)          read a word from the bus
//	pokew(addr, value)   write a word to the bus
//	step(n=1)            run n emulator cycles, returning the number run
//	dump(addr, length)   print a hex listing of the bus
//	pc()                 program counter
//	flags()              status register, as text
package monitor

import (
	"errors"
	"fmt"
	"io"
	"log"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/msp430emu/cpu"
	"github.com/ezrec/msp430emu/emulator"
)

// Monitor is a scripting front end to an emulator.
type Monitor struct {
	Verbose bool      // If set, logs each builtin call.
	Output  io.Writer // Receives print() and dump() output.

	emu *emulator.Emulator
}

// NewMonitor creates a monitor for emu, printing to output.
func NewMonitor(emu *emulator.Emulator, output io.Writer) *Monitor {
	return &Monitor{
		Output: output,
		emu:    emu,
	}
}

type builtinFunc func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// predeclared returns the defines and builtins visible to scripts.
func (mon *Monitor) predeclared() (pred starlark.StringDict) {
	pred = starlark.StringDict{}
	for name, value := range mon.emu.Defines() {
		pred[name] = starlark.MakeUint64(uint64(value))
	}

	for name, fn := range map[string]builtinFunc{
		"reg":     mon.reg,
		"set_reg": mon.setReg,
		"peek":    mon.peek,
		"poke":    mon.poke,
		"peekw":   mon.peekw,
		"pokew":   mon.pokew,
		"step":    mon.step,
		"dump":    mon.dump,
		"pc":      mon.pc,
		"flags":   mon.flags,
	} {
		pred[name] = starlark.NewBuiltin(name, mon.logged(fn))
	}

	return
}

func (mon *Monitor) logged(fn builtinFunc) builtinFunc {
	return func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if mon.Verbose {
			log.Printf("monitor: %v%v", b.Name(), args)
		}
		return fn(thread, b, args, kwargs)
	}
}

func (mon *Monitor) thread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			if mon.Output != nil {
				fmt.Fprintln(mon.Output, msg)
			}
		},
	}
}

// Exec runs a script. src may be a string, a []byte or an io.Reader; if it
// is nil, the script is read from the file name.
func (mon *Monitor) Exec(name string, src any) (globals starlark.StringDict, err error) {
	opts := syntax.FileOptions{}
	globals, err = starlark.ExecFileOptions(&opts, mon.thread(name), name, src, mon.predeclared())
	if err != nil {
		err = errors.Join(ErrScript, err)
	}
	return
}

// Eval evaluates an integer expression.
func (mon *Monitor) Eval(expr string) (value uint32, err error) {
	dict, err := mon.Exec("expr", "rc="+expr+"\n")
	if err != nil {
		return
	}

	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrExpression, expr)
		return
	}

	st_int64, ok := st_int.Int64()
	if !ok {
		err = fmt.Errorf("%w: %v", ErrExpression, expr)
		return
	}

	value = uint32(st_int64)
	return
}

func (mon *Monitor) reg(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &n)
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= cpu.REGISTER_COUNT {
		return nil, fmt.Errorf("%w: %v", ErrRegister, n)
	}
	return starlark.MakeUint64(uint64(mon.emu.Cpu.Register[n])), nil
}

func (mon *Monitor) setReg(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n, value int
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &n, &value)
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= cpu.REGISTER_COUNT {
		return nil, fmt.Errorf("%w: %v", ErrRegister, n)
	}
	mon.emu.Cpu.Register[n] = uint32(value) & cpu.ADDRESS_MASK
	return starlark.None, nil
}

func (mon *Monitor) peek(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr int
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
	if err != nil {
		return nil, err
	}
	value, err := mon.emu.Bus.Read8(uint32(addr))
	if err != nil {
		return nil, err
	}
	return starlark.MakeInt(int(value)), nil
}

func (mon *Monitor) poke(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr, value int
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &addr, &value)
	if err != nil {
		return nil, err
	}
	err = mon.emu.Bus.Write8(uint32(addr), uint8(value))
	if err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (mon *Monitor) peekw(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr int
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
	if err != nil {
		return nil, err
	}
	value, err := mon.emu.Bus.Read16(uint32(addr))
	if err != nil {
		return nil, err
	}
	return starlark.MakeInt(int(value)), nil
}

func (mon *Monitor) pokew(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr, value int
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &addr, &value)
	if err != nil {
		return nil, err
	}
	err = mon.emu.Bus.Write16(uint32(addr), uint16(value))
	if err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (mon *Monitor) step(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	count := 1
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0, &count)
	if err != nil {
		return nil, err
	}

	start := mon.emu.Ticks
	for range count {
		done, err := mon.emu.Tick()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	return starlark.MakeInt(mon.emu.Ticks - start), nil
}

func (mon *Monitor) dump(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr, length int
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &addr, &length)
	if err != nil {
		return nil, err
	}
	if mon.Output != nil {
		err = mon.emu.Bus.Dump(mon.Output, uint32(addr), length)
		if err != nil {
			return nil, err
		}
	}
	return starlark.None, nil
}

func (mon *Monitor) pc(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0)
	if err != nil {
		return nil, err
	}
	return starlark.MakeUint64(uint64(mon.emu.Cpu.Pc())), nil
}

func (mon *Monitor) flags(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0)
	if err != nil {
		return nil, err
	}
	return starlark.String(mon.emu.Cpu.Status().String()), nil
}
