// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"encoding/binary"
	"io"

	"github.com/ezrec/lc3/cpu"
	lc3io "github.com/ezrec/lc3/io"
)

// Emulator state. CPU + program listing + IO devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Console lc3io.Console // Display output device.
}

// NewEmulator creates a new emulator with its display wired to the
// console. The keyboard is left unset; attach one with SetKeyboard.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Display = &emu.Console

	return
}

// SetKeyboard attaches a keyboard device to the memory map and traps.
func (emu *Emulator) SetKeyboard(keyboard cpu.Keyboard) {
	emu.Cpu.Mem.Keyboard = keyboard
}

// LoadImage loads a machine image into memory: a little-endian origin
// word followed by the little-endian code words. Images that overrun
// the top of memory are truncated there.
func (emu *Emulator) LoadImage(input io.Reader) (err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	if len(data) < 2 || len(data)%2 != 0 {
		err = ErrImageTruncated
		return
	}

	origin := binary.LittleEndian.Uint16(data)
	address := int(origin)
	for at := 2; at < len(data) && address < cpu.MEMORY_SIZE; at += 2 {
		emu.Cpu.Mem.Cell[address] = binary.LittleEndian.Uint16(data[at:])
		address++
	}

	return
}

// Reset resets the CPU and memory, then writes the assembled program
// listing (if any) into memory.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Mem.Reset()
	emu.Cpu.Reset()

	for address, code := range emu.Program.Words() {
		emu.Cpu.Mem.Write(address, uint16(code))
	}
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Tick performs a single instruction step of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Step()
	if err != nil {
		return
	}

	done = !emu.Cpu.Running

	return
}

// Run ticks the emulator until the program halts or errors out.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
