package io

import (
	"io"
)

// Console is a display that writes characters to an io.Writer.
// A nil Output discards everything.
type Console struct {
	Output io.Writer
}

var _ Display = (*Console)(nil)

// Put writes a single character to the output.
func (con *Console) Put(key byte) (err error) {
	if con.Output == nil {
		return
	}

	_, err = con.Output.Write([]byte{key})

	return
}
