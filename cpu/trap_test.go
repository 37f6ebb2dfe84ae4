package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	lc3io "github.com/ezrec/lc3/io"
)

// trapCpu builds a CPU with a scripted keyboard and captured display.
func trapCpu(typed string) (cpu *Cpu, out *bytes.Buffer) {
	cpu = NewCpu()
	out = &bytes.Buffer{}

	keys := &lc3io.Keys{}
	keys.Type(typed)
	cpu.Mem.Keyboard = keys
	cpu.Display = &lc3io.Console{Output: out}

	return
}

func TestTrapGetc(t *testing.T) {
	assert := assert.New(t)

	cpu, out := trapCpu("A")

	err := cpu.Execute(MakeCodeTrap(TRAP_GETC))
	assert.NoError(err)
	assert.Equal(uint16('A'), cpu.Register[0])
	// GETC does not echo, and does not touch the flags.
	assert.Equal("", out.String())
	assert.Equal(FLAG_ZRO, cpu.Cond)
}

func TestTrapOut(t *testing.T) {
	assert := assert.New(t)

	cpu, out := trapCpu("")

	cpu.Register[0] = uint16('H')
	err := cpu.Execute(MakeCodeTrap(TRAP_OUT))
	assert.NoError(err)
	assert.Equal("H", out.String())
}

func TestTrapPuts(t *testing.T) {
	assert := assert.New(t)

	cpu, out := trapCpu("")

	cpu.Mem.Write(0x4000, uint16('H'))
	cpu.Mem.Write(0x4001, uint16('i'))
	cpu.Mem.Write(0x4002, 0)

	cpu.Register[0] = 0x4000
	err := cpu.Execute(MakeCodeTrap(TRAP_PUTS))
	assert.NoError(err)
	assert.Equal("Hi", out.String())
	assert.Equal(uint16(0x4000), cpu.Register[0])
}

func TestTrapIn(t *testing.T) {
	assert := assert.New(t)

	cpu, out := trapCpu("x")

	err := cpu.Execute(MakeCodeTrap(TRAP_IN))
	assert.NoError(err)
	assert.Equal("Enter a character: x", out.String())
	assert.Equal(uint16('x'), cpu.Register[0])
}

func TestTrapPutsp(t *testing.T) {
	assert := assert.New(t)

	cpu, out := trapCpu("")

	// Two characters packed per word, low byte first.
	cpu.Mem.Write(0x4000, uint16('e')<<8|uint16('H'))
	cpu.Mem.Write(0x4001, uint16('l'))
	cpu.Mem.Write(0x4002, 0)

	cpu.Register[0] = 0x4000
	err := cpu.Execute(MakeCodeTrap(TRAP_PUTSP))
	assert.NoError(err)
	assert.Equal("Hel", out.String())
}

func TestTrapHalt(t *testing.T) {
	assert := assert.New(t)

	cpu, out := trapCpu("")

	err := cpu.Execute(MakeCodeTrap(TRAP_HALT))
	assert.NoError(err)
	assert.False(cpu.Running)
	assert.Equal("HALT\n", out.String())
}

func TestTrapUnknown(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := trapCpu("")

	err := cpu.Execute(MakeCodeTrap(TrapVector(0x7f)))
	assert.ErrorIs(err, ErrTrap(0))
	assert.False(cpu.Running)
}

func TestTrapNoKeyboard(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	err := cpu.Execute(MakeCodeTrap(TRAP_GETC))
	assert.ErrorIs(err, ErrKeyboardInvalid)
	assert.False(cpu.Running)
}

func TestTrapKeysExhausted(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := trapCpu("")

	err := cpu.Execute(MakeCodeTrap(TRAP_GETC))
	assert.ErrorIs(err, lc3io.ErrKeysEmpty)
	assert.False(cpu.Running)
}
