// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the LC-3.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.
	Origin  uint16   // Load address, set by .orig.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register numbers.
var regMap = map[string]uint16{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": 5,
	"r6": 6,
	"r7": 7,
}

// branchMap maps the brnzp mnemonic family to condition masks.
var branchMap = map[string]Flag{
	"br":    FLAG_NEG | FLAG_ZRO | FLAG_POS,
	"brn":   FLAG_NEG,
	"brz":   FLAG_ZRO,
	"brp":   FLAG_POS,
	"brnz":  FLAG_NEG | FLAG_ZRO,
	"brnp":  FLAG_NEG | FLAG_POS,
	"brzp":  FLAG_ZRO | FLAG_POS,
	"brnzp": FLAG_NEG | FLAG_ZRO | FLAG_POS,
}

// trapAlias maps the trap routine mnemonics to vectors.
var trapAlias = map[string]TrapVector{
	"getc":  TRAP_GETC,
	"out":   TRAP_OUT,
	"puts":  TRAP_PUTS,
	"in":    TRAP_IN,
	"putsp": TRAP_PUTSP,
	"halt":  TRAP_HALT,
}

// valueOf returns the value of a simple word. Accepts #n decimal,
// xNN hex, and Go-style literals; negatives wrap to two's complement.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	text := word
	if text[0] == '#' {
		text = text[1:]
	}
	if len(text) > 1 && (text[0] == 'x' || text[0] == 'X') {
		text = "0x" + text[1:]
	}

	v64, perr := strconv.ParseInt(text, 0, 32)
	if perr != nil || v64 < -0x8000 || v64 > 0xffff {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)

	return
}

// getRegister returns the register number for a word.
func (asm *Assembler) getRegister(word string) (reg uint16, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// rangeCheck verifies that value fits in a signed field of the given width.
func rangeCheck(value uint16, bits int) (err error) {
	v := int(int16(value))
	limit := 1 << (bits - 1)
	if v < -limit || v >= limit {
		err = ErrOffsetRange{Value: v, Bits: bits}
	}
	return
}

// getTarget parses a PC-relative target as either a numeric offset or
// a label to be resolved during the final link pass.
func (asm *Assembler) getTarget(word string, bits int) (offset uint16, label string, err error) {
	value, verr := asm.valueOf(word)
	if verr == nil {
		offset = value
		err = rangeCheck(value, bits)
		return
	}

	label = word

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// splitWords splits a line on whitespace and commas, keeping quoted
// strings whole.
var wordPattern = regexp.MustCompile(`"[^"]*"|[^\s,]+`)

func splitWords(line string) []string {
	return wordPattern.FindAllString(line, -1)
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.EqualFold(words[0], ".equ") {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		if len(word) == 0 || word[0] == '"' {
			continue
		}

		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the address of the next opcode.
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return int(asm.Origin)
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Origin = PC_START
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.EqualFold(words[0], ".macro") {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.EqualFold(words[0], ".endm") {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		address, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Codes) < 1 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		linked := &op.Codes[len(op.Codes)-1]
		if op.LinkBits == 16 {
			// .fill takes the absolute address.
			*linked = Code(uint16(address))
			continue
		}
		offset := address - (op.Ip + len(op.Codes))
		limit := 1 << (op.LinkBits - 1)
		if offset < -limit || offset >= limit {
			err = ErrOffsetRange{Value: offset, Bits: op.LinkBits}
			return
		}
		mask := uint16(1<<op.LinkBits) - 1
		*linked = Code(uint16(*linked) | (uint16(offset) & mask))
	}

	prog = &Program{
		Origin:  asm.Origin,
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// getImmOrReg encodes the third operand of ADD/AND as a register or
// a 5-bit immediate.
func (asm *Assembler) getImmOrReg(word string) (fields uint16, err error) {
	reg, rerr := asm.getRegister(word)
	if rerr == nil {
		fields = reg
		return
	}

	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	err = rangeCheck(value, 5)
	if err != nil {
		return
	}
	fields = (1 << 5) | (value & 0x1f)

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var label string
	var linkBits int

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words,
			Codes: codes, LinkLabel: label, LinkBits: linkBits}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	op := strings.ToLower(words[0])
	args := words[1:]

	mask, is_branch := branchMap[op]
	vector, is_trap := trapAlias[op]

	switch {
	case op == "add" || op == "and":
		if len(args) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var dr, sr1, fields uint16
		dr, err = asm.getRegister(args[0])
		if err != nil {
			return
		}
		sr1, err = asm.getRegister(args[1])
		if err != nil {
			return
		}
		fields, err = asm.getImmOrReg(args[2])
		if err != nil {
			return
		}
		opclass := OP_ADD
		if op == "and" {
			opclass = OP_AND
		}
		codes = append(codes, makeOp(opclass, ((dr&7)<<9)|((sr1&7)<<6)|fields))
	case op == "not":
		if len(args) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var dr, sr uint16
		dr, err = asm.getRegister(args[0])
		if err != nil {
			return
		}
		sr, err = asm.getRegister(args[1])
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeNot(dr, sr))
	case is_branch:
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var offset uint16
		offset, label, err = asm.getTarget(args[0], 9)
		if err != nil {
			return
		}
		linkBits = 9
		codes = append(codes, MakeCodeBr(mask, offset))
	case op == "jmp":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var base uint16
		base, err = asm.getRegister(args[0])
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeJmp(base))
	case op == "ret":
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		codes = append(codes, MakeCodeRet())
	case op == "jsr":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var offset uint16
		offset, label, err = asm.getTarget(args[0], 11)
		if err != nil {
			return
		}
		linkBits = 11
		codes = append(codes, MakeCodeJsr(offset))
	case op == "jsrr":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var base uint16
		base, err = asm.getRegister(args[0])
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeJsrr(base))
	case op == "ld" || op == "ldi" || op == "lea" || op == "st" || op == "sti":
		if len(args) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var reg, offset uint16
		reg, err = asm.getRegister(args[0])
		if err != nil {
			return
		}
		offset, label, err = asm.getTarget(args[1], 9)
		if err != nil {
			return
		}
		linkBits = 9
		var code Code
		switch op {
		case "ld":
			code = MakeCodeLd(reg, offset)
		case "ldi":
			code = MakeCodeLdi(reg, offset)
		case "lea":
			code = MakeCodeLea(reg, offset)
		case "st":
			code = MakeCodeSt(reg, offset)
		case "sti":
			code = MakeCodeSti(reg, offset)
		}
		codes = append(codes, code)
	case op == "ldr" || op == "str":
		if len(args) != 3 {
			err = ErrOpcodeValueMissing
			return
		}
		var reg, base, offset uint16
		reg, err = asm.getRegister(args[0])
		if err != nil {
			return
		}
		base, err = asm.getRegister(args[1])
		if err != nil {
			return
		}
		offset, err = asm.valueOf(args[2])
		if err != nil {
			return
		}
		err = rangeCheck(offset, 6)
		if err != nil {
			return
		}
		if op == "ldr" {
			codes = append(codes, MakeCodeLdr(reg, base, offset))
		} else {
			codes = append(codes, MakeCodeStr(reg, base, offset))
		}
	case op == "trap":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var value uint16
		value, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if value > 0xff {
			err = ErrOffsetRange{Value: int(value), Bits: 8}
			return
		}
		codes = append(codes, MakeCodeTrap(TrapVector(value)))
	case is_trap:
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		codes = append(codes, MakeCodeTrap(vector))
	case op == "rti":
		codes = append(codes, makeOp(OP_RTI, 0))
	case op == ".orig":
		if len(args) != 1 {
			err = ErrOriginSyntax
			return
		}
		if len(asm.Opcode) != 0 {
			err = ErrOriginLate
			return
		}
		asm.Origin, err = asm.valueOf(args[0])
		return
	case op == ".fill":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var value uint16
		value, err = asm.valueOf(args[0])
		if err != nil {
			// A label; resolved to its absolute address at link time.
			err = nil
			label = args[0]
			linkBits = 16
			value = 0
		}
		codes = append(codes, Code(value))
	case op == ".blkw":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		var count uint16
		count, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		for range int(count) {
			codes = append(codes, Code(0))
		}
	case op == ".stringz":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args[0]) < 2 || args[0][0] != '"' {
			err = ErrStringInvalid
			return
		}
		var text string
		text, err = strconv.Unquote(args[0])
		if err != nil {
			err = ErrStringInvalid
			return
		}
		for _, char := range []byte(text) {
			codes = append(codes, Code(char))
		}
		codes = append(codes, Code(0))
	case op == ".end":
		// End of a single-file program; nothing to do.
		return
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
