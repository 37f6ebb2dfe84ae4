package io

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	// Keyboard errors
	ErrKeysEmpty   = errors.New(f("scripted keys exhausted"))
	ErrInputClosed = errors.New(f("keyboard input closed"))
)
