package bus

import (
	"errors"

	"github.com/ezrec/msp430emu/translate"
)

var f = translate.From

var (
	// Bus errors
	ErrUnsupportedAccessWidth = errors.New(f("unsupported access width"))
	ErrSealed                 = errors.New(f("bus sealed"))
	ErrPortInvalid            = errors.New(f("port invalid"))
	ErrBusFull                = errors.New(f("too many devices"))
	ErrRangeInvalid           = errors.New(f("address range invalid"))
)

// ErrWidth reports an access width outside of 1, 2 or 4 bytes.
type ErrWidth struct {
	Addr  uint32
	Width int
}

func (err *ErrWidth) Error() string {
	return f("0x%05x width %v: %v", err.Addr, err.Width, ErrUnsupportedAccessWidth)
}

func (err *ErrWidth) Unwrap() error {
	return ErrUnsupportedAccessWidth
}
