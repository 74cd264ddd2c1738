package cpu

import (
	"errors"

	"github.com/ezrec/msp430emu/translate"
)

var f = translate.From

var (
	// Decode and dispatch errors
	ErrReservedOpcode           = errors.New(f("reserved opcode"))
	ErrUnimplementedInstruction = errors.New(f("unimplemented instruction"))

	// Bus errors
	ErrBusMissing = errors.New(f("no bus attached"))
)

// ErrOpcode annotates an error with the instruction words being decoded or
// executed.
type ErrOpcode []uint16

func (eo ErrOpcode) Error() (text string) {
	text = f("opcode")
	for _, word := range eo {
		text += f(" 0x%04x", word)
	}
	return
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}
