package device

import (
	"errors"

	"github.com/ezrec/msp430emu/translate"
)

var f = translate.From

var (
	// Device access errors
	ErrAddressOutOfRange = errors.New(f("address out of range"))
	ErrNotImplemented    = errors.New(f("access width not implemented"))
	ErrRegisterInvalid   = errors.New(f("no register at address"))
)

// ErrAccess locates a failed device access.
type ErrAccess struct {
	Device string
	Addr   uint32
	Width  int
	Err    error
}

func (err *ErrAccess) Error() string {
	if err.Device == "" {
		return f("access 0x%05x/%v %v", err.Addr, err.Width, err.Err)
	}
	return f("%v access 0x%05x/%v %v", err.Device, err.Addr, err.Width, err.Err)
}

func (err *ErrAccess) Unwrap() error {
	return err.Err
}
