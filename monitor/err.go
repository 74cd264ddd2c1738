package monitor

import (
	"errors"

	"github.com/ezrec/msp430emu/translate"
)

var f = translate.From

var (
	ErrScript     = errors.New(f("monitor script failed"))
	ErrExpression = errors.New(f("expression is not an integer"))
	ErrRegister   = errors.New(f("no such register"))
)
