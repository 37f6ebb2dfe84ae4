package io

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalPipe(t *testing.T) {
	assert := assert.New(t)

	rd, wr, err := os.Pipe()
	assert.NoError(err)
	defer rd.Close()

	tty := &Terminal{Input: rd}
	err = tty.Open()
	assert.NoError(err)
	defer tty.Close()

	_, err = wr.Write([]byte("ab"))
	assert.NoError(err)

	key, err := tty.ReadKey()
	assert.NoError(err)
	assert.Equal(byte('a'), key)

	key, err = tty.ReadKey()
	assert.NoError(err)
	assert.Equal(byte('b'), key)

	// Nothing pending.
	_, ok := tty.Poll()
	assert.False(ok)

	wr.Close()

	_, err = tty.ReadKey()
	assert.ErrorIs(err, ErrInputClosed)
}
