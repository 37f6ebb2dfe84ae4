package io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	con := &Console{Output: out}

	for _, key := range []byte("Hi\n") {
		err := con.Put(key)
		assert.NoError(err)
	}

	assert.Equal("Hi\n", out.String())
}

func TestConsoleDiscard(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}

	err := con.Put('x')
	assert.NoError(err)
}
