package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lc3io "github.com/ezrec/lc3/io"
)

func FuzzCpu(f *testing.F) {
	f.Add(uint16(0x0000), uint16(0), uint16(0))
	f.Add(uint16(0xffff), uint16(0xffff), uint16(0xffff))
	for op := range 16 {
		f.Add(uint16(op)<<12, uint16(0x1234), uint16(0x8000))
	}

	f.Fuzz(func(t *testing.T, opcode uint16, r0 uint16, r1 uint16) {
		assert := assert.New(t)

		cpu := NewCpu()

		keys := &lc3io.Keys{}
		keys.Type("fuzz")
		cpu.Mem.Keyboard = keys
		cpu.Display = &lc3io.Console{}

		cpu.Register[0] = r0
		cpu.Register[1] = r1

		err := cpu.Execute(Code(opcode))

		// A failed instruction always stops the CPU.
		if err != nil {
			assert.False(cpu.Running)
		}

		// The condition register holds exactly one flag.
		switch cpu.Cond {
		case FLAG_POS, FLAG_ZRO, FLAG_NEG:
		default:
			t.Fatalf("invalid condition flags %v", cpu.Cond)
		}
	})
}
