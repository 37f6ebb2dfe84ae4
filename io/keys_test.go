package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert := assert.New(t)

	keys := &Keys{}

	_, ok := keys.Poll()
	assert.False(ok)

	_, err := keys.ReadKey()
	assert.ErrorIs(err, ErrKeysEmpty)

	keys.Type("ab")

	key, ok := keys.Poll()
	assert.True(ok)
	assert.Equal(byte('a'), key)

	key, err = keys.ReadKey()
	assert.NoError(err)
	assert.Equal(byte('b'), key)

	_, ok = keys.Poll()
	assert.False(ok)
}
