package cpu

import (
	"encoding/binary"
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated instruction words.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []Code
	LinkLabel string
	LinkBits  int
}

// Program is an assembled listing: an origin address plus the opcodes
// laid out contiguously from it.
type Program struct {
	Origin  uint16
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug maps a memory address back to the opcode that occupies it.
func (prog *Program) Debug(address uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if address >= uint16(op.Ip) && address < uint16(op.Ip)+uint16(len(op.Codes)) {
			index := int(address - uint16(op.Ip))
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  index,
			}
			break
		}
	}

	return
}

// Words iterates over the (address, code) pairs of the program.
func (prog *Program) Words() iter.Seq2[uint16, Code] {
	return func(yield func(address uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			address := uint16(op.Ip)
			for n, code := range op.Codes {
				if !yield(address+uint16(n), code) {
					return
				}
			}
		}
	}
}

// Image returns the loadable binary image of the program: the origin
// word followed by the code words, all little-endian.
func (prog *Program) Image() (image []byte) {
	image = binary.LittleEndian.AppendUint16(image, prog.Origin)
	for _, code := range prog.Words() {
		image = binary.LittleEndian.AppendUint16(image, uint16(code))
	}

	return
}
