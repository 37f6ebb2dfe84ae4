package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignExtend(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		value    uint16
		bits     uint
		expected uint16
	}){
		{"imm5_neg", 0b10001, 5, 0xfff1},
		{"imm5_pos", 0b01111, 5, 0x000f},
		{"off6_neg", 0x3e, 6, 0xfffe},
		{"off6_pos", 0x1f, 6, 0x001f},
		{"off9_neg", 0x1ff, 9, 0xffff},
		{"off9_pos", 0x0ff, 9, 0x00ff},
		{"off11_neg", 0x7ff, 11, 0xffff},
		{"off11_pos", 0x3ff, 11, 0x03ff},
		{"zero", 0, 9, 0},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, SignExtend(entry.value, entry.bits), entry.name)
	}
}

func TestCodeFields(t *testing.T) {
	assert := assert.New(t)

	code := MakeCodeAddImm(3, 2, 0x1d)
	assert.Equal(OP_ADD, code.Op())
	assert.Equal(uint16(3), code.Dr())
	assert.Equal(uint16(2), code.Sr1())
	assert.True(code.ImmFlag())
	assert.Equal(uint16(0xfffd), code.Imm5())

	code = MakeCodeAnd(1, 2, 3)
	assert.Equal(OP_AND, code.Op())
	assert.False(code.ImmFlag())
	assert.Equal(uint16(3), code.Sr2())

	code = MakeCodeLdr(1, 2, 0x3e)
	assert.Equal(OP_LDR, code.Op())
	assert.Equal(uint16(2), code.BaseR())
	assert.Equal(uint16(0xfffe), code.Offset6())

	code = MakeCodeBr(FLAG_NEG|FLAG_POS, 0x1fe)
	assert.Equal(OP_BR, code.Op())
	assert.Equal(FLAG_NEG|FLAG_POS, code.CondMask())
	assert.Equal(uint16(0xfffe), code.PcOffset9())

	code = MakeCodeJsr(0x7ff)
	assert.Equal(OP_JSR, code.Op())
	assert.True(code.JsrFlag())
	assert.Equal(uint16(0xffff), code.PcOffset11())

	code = MakeCodeJsrr(5)
	assert.Equal(OP_JSR, code.Op())
	assert.False(code.JsrFlag())
	assert.Equal(uint16(5), code.BaseR())

	code = MakeCodeTrap(TRAP_HALT)
	assert.Equal(OP_TRAP, code.Op())
	assert.Equal(TRAP_HALT, code.Vector())

	assert.Equal(Code(0xc1c0), MakeCodeRet())
}

func TestCodeString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{Code(0x1065), "add r0 r1 #5"},
		{MakeCodeAdd(2, 3, 4), "add r2 r3 r4"},
		{MakeCodeAndImm(0, 0, 0), "and r0 r0 #0"},
		{MakeCodeNot(0, 1), "not r0 r1"},
		{MakeCodeBr(FLAG_NEG|FLAG_ZRO|FLAG_POS, 0x1fd), "brnzp #-3"},
		{MakeCodeBr(FLAG_POS, 2), "brp #2"},
		{MakeCodeJmp(3), "jmp r3"},
		{MakeCodeJsr(0x7ff), "jsr #-1"},
		{MakeCodeJsrr(2), "jsrr r2"},
		{MakeCodeLd(1, 4), "ld r1 #4"},
		{MakeCodeStr(4, 5, 0x3f), "str r4 r5 #-1"},
		{MakeCodeTrap(TRAP_PUTS), "trap 0x22"},
		{makeOp(OP_RTI, 0), "rti"},
		{Code(0xd000), "res"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.code.String(), entry.text)
	}
}
