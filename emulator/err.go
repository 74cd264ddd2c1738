package emulator

import (
	"github.com/ezrec/msp430emu/translate"
)

var f = translate.From

// ErrRuntime indicates the program counter of a failing cycle.
type ErrRuntime struct {
	Pc  uint32
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("pc 0x%05x: %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
