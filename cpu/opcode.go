package cpu

import (
	"fmt"
)

// Op is the 4-bit operation field of an instruction word.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_BR   = Op(0)  // br
	OP_ADD  = Op(1)  // add
	OP_LD   = Op(2)  // ld
	OP_ST   = Op(3)  // st
	OP_JSR  = Op(4)  // jsr
	OP_AND  = Op(5)  // and
	OP_LDR  = Op(6)  // ldr
	OP_STR  = Op(7)  // str
	OP_RTI  = Op(8)  // rti
	OP_NOT  = Op(9)  // not
	OP_LDI  = Op(10) // ldi
	OP_STI  = Op(11) // sti
	OP_JMP  = Op(12) // jmp
	OP_RES  = Op(13) // res
	OP_LEA  = Op(14) // lea
	OP_TRAP = Op(15) // trap
)

// Flag is a condition flag. COND holds exactly one flag at any time;
// branch masks may combine them.
type Flag uint16

//go:generate go tool stringer -linecomment -type=Flag
const (
	FLAG_POS = Flag(1 << 0) // p
	FLAG_ZRO = Flag(1 << 1) // z
	FLAG_NEG = Flag(1 << 2) // n
)

// TrapVector selects one of the built-in I/O service routines.
type TrapVector int

//go:generate go tool stringer -linecomment -type=TrapVector
const (
	TRAP_GETC  = TrapVector(0x20) // getc
	TRAP_OUT   = TrapVector(0x21) // out
	TRAP_PUTS  = TrapVector(0x22) // puts
	TRAP_IN    = TrapVector(0x23) // in
	TRAP_PUTSP = TrapVector(0x24) // putsp
	TRAP_HALT  = TrapVector(0x25) // halt
)

// SignExtend widens the low 'bits' bits of value to a 16-bit
// two's-complement value. All arithmetic stays in uint16.
func SignExtend(value uint16, bits uint) uint16 {
	if (value>>(bits-1))&1 != 0 {
		value |= 0xffff << bits
	}
	return value
}

// Code represents a single 16-bit instruction word.
type Code uint16

// Op returns the operation field (bits 15-12).
func (code Code) Op() Op {
	return Op((uint16(code) >> 12) & 0xf)
}

// Dr returns the destination register field (bits 11-9).
func (code Code) Dr() uint16 {
	return (uint16(code) >> 9) & 0x7
}

// Sr returns the source register of a store (bits 11-9).
func (code Code) Sr() uint16 {
	return (uint16(code) >> 9) & 0x7
}

// Sr1 returns the first source register field (bits 8-6).
func (code Code) Sr1() uint16 {
	return (uint16(code) >> 6) & 0x7
}

// BaseR returns the base register field (bits 8-6).
func (code Code) BaseR() uint16 {
	return (uint16(code) >> 6) & 0x7
}

// Sr2 returns the second source register field (bits 2-0).
func (code Code) Sr2() uint16 {
	return uint16(code) & 0x7
}

// ImmFlag reports whether the immediate mode bit (bit 5) is set.
func (code Code) ImmFlag() bool {
	return (uint16(code)>>5)&1 != 0
}

// Imm5 returns the sign-extended 5-bit immediate (bits 4-0).
func (code Code) Imm5() uint16 {
	return SignExtend(uint16(code)&0x1f, 5)
}

// Offset6 returns the sign-extended 6-bit offset (bits 5-0).
func (code Code) Offset6() uint16 {
	return SignExtend(uint16(code)&0x3f, 6)
}

// PcOffset9 returns the sign-extended 9-bit PC offset (bits 8-0).
func (code Code) PcOffset9() uint16 {
	return SignExtend(uint16(code)&0x1ff, 9)
}

// PcOffset11 returns the sign-extended 11-bit PC offset (bits 10-0).
func (code Code) PcOffset11() uint16 {
	return SignExtend(uint16(code)&0x7ff, 11)
}

// JsrFlag reports whether bit 11 selects the PC-relative JSR form.
func (code Code) JsrFlag() bool {
	return (uint16(code)>>11)&1 != 0
}

// CondMask returns the branch condition mask (bits 11-9).
func (code Code) CondMask() Flag {
	return Flag((uint16(code) >> 9) & 0x7)
}

// Vector returns the trap vector (bits 7-0).
func (code Code) Vector() TrapVector {
	return TrapVector(uint16(code) & 0xff)
}

// makeOp assembles an instruction word from the operation and its fields.
func makeOp(op Op, fields uint16) Code {
	return Code((uint16(op) << 12) | fields)
}

// MakeCodeAdd creates a register-form ADD instruction.
func MakeCodeAdd(dr, sr1, sr2 uint16) Code {
	return makeOp(OP_ADD, ((dr&7)<<9)|((sr1&7)<<6)|(sr2&7))
}

// MakeCodeAddImm creates an immediate-form ADD instruction.
func MakeCodeAddImm(dr, sr1, imm5 uint16) Code {
	return makeOp(OP_ADD, ((dr&7)<<9)|((sr1&7)<<6)|(1<<5)|(imm5&0x1f))
}

// MakeCodeAnd creates a register-form AND instruction.
func MakeCodeAnd(dr, sr1, sr2 uint16) Code {
	return makeOp(OP_AND, ((dr&7)<<9)|((sr1&7)<<6)|(sr2&7))
}

// MakeCodeAndImm creates an immediate-form AND instruction.
func MakeCodeAndImm(dr, sr1, imm5 uint16) Code {
	return makeOp(OP_AND, ((dr&7)<<9)|((sr1&7)<<6)|(1<<5)|(imm5&0x1f))
}

// MakeCodeNot creates a NOT instruction.
func MakeCodeNot(dr, sr uint16) Code {
	return makeOp(OP_NOT, ((dr&7)<<9)|((sr&7)<<6)|0x3f)
}

// MakeCodeBr creates a BR instruction with the given condition mask.
func MakeCodeBr(mask Flag, offset9 uint16) Code {
	return makeOp(OP_BR, ((uint16(mask)&7)<<9)|(offset9&0x1ff))
}

// MakeCodeJmp creates a JMP instruction.
func MakeCodeJmp(base uint16) Code {
	return makeOp(OP_JMP, (base&7)<<6)
}

// MakeCodeRet creates a RET instruction (JMP through r7).
func MakeCodeRet() Code {
	return MakeCodeJmp(7)
}

// MakeCodeJsr creates a PC-relative JSR instruction.
func MakeCodeJsr(offset11 uint16) Code {
	return makeOp(OP_JSR, (1<<11)|(offset11&0x7ff))
}

// MakeCodeJsrr creates a register-form JSRR instruction.
func MakeCodeJsrr(base uint16) Code {
	return makeOp(OP_JSR, (base&7)<<6)
}

// MakeCodeLd creates a LD instruction.
func MakeCodeLd(dr, offset9 uint16) Code {
	return makeOp(OP_LD, ((dr&7)<<9)|(offset9&0x1ff))
}

// MakeCodeLdi creates a LDI instruction.
func MakeCodeLdi(dr, offset9 uint16) Code {
	return makeOp(OP_LDI, ((dr&7)<<9)|(offset9&0x1ff))
}

// MakeCodeLdr creates a LDR instruction.
func MakeCodeLdr(dr, base, offset6 uint16) Code {
	return makeOp(OP_LDR, ((dr&7)<<9)|((base&7)<<6)|(offset6&0x3f))
}

// MakeCodeLea creates a LEA instruction.
func MakeCodeLea(dr, offset9 uint16) Code {
	return makeOp(OP_LEA, ((dr&7)<<9)|(offset9&0x1ff))
}

// MakeCodeSt creates a ST instruction.
func MakeCodeSt(sr, offset9 uint16) Code {
	return makeOp(OP_ST, ((sr&7)<<9)|(offset9&0x1ff))
}

// MakeCodeSti creates a STI instruction.
func MakeCodeSti(sr, offset9 uint16) Code {
	return makeOp(OP_STI, ((sr&7)<<9)|(offset9&0x1ff))
}

// MakeCodeStr creates a STR instruction.
func MakeCodeStr(sr, base, offset6 uint16) Code {
	return makeOp(OP_STR, ((sr&7)<<9)|((base&7)<<6)|(offset6&0x3f))
}

// MakeCodeTrap creates a TRAP instruction.
func MakeCodeTrap(vector TrapVector) Code {
	return makeOp(OP_TRAP, uint16(vector)&0xff)
}

// branchSuffix renders a condition mask as a brnzp-style suffix.
func (mask Flag) branchSuffix() (out string) {
	if mask&FLAG_NEG != 0 {
		out += "n"
	}
	if mask&FLAG_ZRO != 0 {
		out += "z"
	}
	if mask&FLAG_POS != 0 {
		out += "p"
	}
	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()

	switch op {
	case OP_ADD, OP_AND:
		if code.ImmFlag() {
			out = fmt.Sprintf("%v r%d r%d #%d", op, code.Dr(), code.Sr1(), int16(code.Imm5()))
		} else {
			out = fmt.Sprintf("%v r%d r%d r%d", op, code.Dr(), code.Sr1(), code.Sr2())
		}
	case OP_NOT:
		out = fmt.Sprintf("%v r%d r%d", op, code.Dr(), code.Sr1())
	case OP_BR:
		out = fmt.Sprintf("%v%v #%d", op, code.CondMask().branchSuffix(), int16(code.PcOffset9()))
	case OP_JMP:
		out = fmt.Sprintf("%v r%d", op, code.BaseR())
	case OP_JSR:
		if code.JsrFlag() {
			out = fmt.Sprintf("%v #%d", op, int16(code.PcOffset11()))
		} else {
			out = fmt.Sprintf("jsrr r%d", code.BaseR())
		}
	case OP_LD, OP_LDI, OP_LEA:
		out = fmt.Sprintf("%v r%d #%d", op, code.Dr(), int16(code.PcOffset9()))
	case OP_ST, OP_STI:
		out = fmt.Sprintf("%v r%d #%d", op, code.Sr(), int16(code.PcOffset9()))
	case OP_LDR, OP_STR:
		out = fmt.Sprintf("%v r%d r%d #%d", op, code.Dr(), code.BaseR(), int16(code.Offset6()))
	case OP_TRAP:
		out = fmt.Sprintf("%v 0x%02x", op, uint16(code.Vector()))
	default:
		out = op.String()
	}

	return
}
