// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/lc3/io"
)

// Keyboard is the keyboard input capability.
type Keyboard io.Keyboard

const (
	// MEMORY_SIZE is the number of addressable words.
	MEMORY_SIZE = 1 << 16

	// KBSR is the memory-mapped keyboard status register.
	KBSR = uint16(0xfe00)
	// KBDR is the memory-mapped keyboard data register.
	KBDR = uint16(0xfe02)
	// KBSR_READY is the key-available bit of KBSR.
	KBSR_READY = uint16(0x8000)
)

var _memory_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
	"KBSR":        fmt.Sprintf("0x%04x", KBSR),
	"KBDR":        fmt.Sprintf("0x%04x", KBDR),
	"KBSR_READY":  fmt.Sprintf("0x%04x", KBSR_READY),
}

// Memory is the flat 65536-word store with the keyboard device mapped
// at KBSR/KBDR. Only reads of KBSR are intercepted to refresh the
// device registers; writes behave as plain storage everywhere.
type Memory struct {
	Keyboard Keyboard // Polled on KBSR reads. May be nil.

	Cell []uint16
}

// NewMemory creates a zeroed memory.
func NewMemory() (mem *Memory) {
	mem = &Memory{
		Cell: make([]uint16, MEMORY_SIZE),
	}

	return
}

// Defines for the memory map.
func (mem *Memory) Defines() iter.Seq2[string, string] {
	return maps.All(_memory_defines)
}

// Reset zeroes all of memory.
func (mem *Memory) Reset() {
	clear(mem.Cell)
}

// Read returns the word at address. A read of KBSR first polls the
// keyboard without blocking: if a key is available KBSR is set to
// KBSR_READY and KBDR receives the key, otherwise KBSR is cleared.
func (mem *Memory) Read(address uint16) uint16 {
	if address == KBSR {
		key, ok := mem.poll()
		if ok {
			mem.Cell[KBSR] = KBSR_READY
			mem.Cell[KBDR] = uint16(key)
		} else {
			mem.Cell[KBSR] = 0
		}
	}

	return mem.Cell[address]
}

// Write stores value at address. No address is validated or reserved.
func (mem *Memory) Write(address uint16, value uint16) {
	mem.Cell[address] = value
}

// poll checks the keyboard for an available key without blocking.
func (mem *Memory) poll() (key byte, ok bool) {
	if mem.Keyboard == nil {
		return
	}

	return mem.Keyboard.Poll()
}
