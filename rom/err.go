package rom

import (
	"errors"

	"github.com/ezrec/msp430emu/translate"
)

var f = translate.From

var (
	ErrRomLoad      = errors.New(f("rom load failed"))
	ErrRecordSyntax = errors.New(f("malformed hex record"))
	ErrRecordType   = errors.New(f("unsupported hex record type"))
	ErrChecksum     = errors.New(f("hex record checksum mismatch"))
	ErrResetVector  = errors.New(f("rom has no reset vector"))
)

// ErrLine indicates the line of a hex file that failed to parse.
type ErrLine struct {
	Line int
	Err  error
}

func (err *ErrLine) Error() string {
	return f("line %v: %v", err.Line, err.Err)
}

func (err *ErrLine) Unwrap() error {
	return err.Err
}
