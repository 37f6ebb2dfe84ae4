package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lc3io "github.com/ezrec/lc3/io"
)

func TestMemoryReadWrite(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()

	assert.Equal(MEMORY_SIZE, len(mem.Cell))
	assert.Equal(uint16(0), mem.Read(0x3000))

	mem.Write(0x3000, 0xbeef)
	assert.Equal(uint16(0xbeef), mem.Read(0x3000))

	mem.Write(0xffff, 0x1234)
	assert.Equal(uint16(0x1234), mem.Read(0xffff))

	mem.Reset()
	assert.Equal(uint16(0), mem.Read(0x3000))
	assert.Equal(uint16(0), mem.Read(0xffff))
}

func TestMemoryKeyboard(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()

	// No keyboard attached; KBSR never reports ready.
	assert.Equal(uint16(0), mem.Read(KBSR))

	keys := &lc3io.Keys{}
	mem.Keyboard = keys

	// Attached but idle.
	assert.Equal(uint16(0), mem.Read(KBSR))
	assert.Equal(uint16(0), mem.Read(KBDR))

	keys.Type("ab")

	// Each KBSR read latches one key into KBDR.
	assert.Equal(KBSR_READY, mem.Read(KBSR))
	assert.Equal(uint16('a'), mem.Read(KBDR))

	// KBDR is stable until the next KBSR poll.
	assert.Equal(uint16('a'), mem.Read(KBDR))

	assert.Equal(KBSR_READY, mem.Read(KBSR))
	assert.Equal(uint16('b'), mem.Read(KBDR))

	// Exhausted; KBSR drops back to not-ready.
	assert.Equal(uint16(0), mem.Read(KBSR))
}
