package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/lc3/io"
)

// Display is the output sink for the trap service routines.
type Display io.Display

// PC_START is the fixed program entry address.
const PC_START = uint16(0x3000)

var _cpu_defines = map[string]string{
	"PC_START": fmt.Sprintf("0x%04x", PC_START),
}

// Cpu is the simulation context for the LC-3 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Mem     *Memory // Reference to the memory simulation.
	Display Display // Output sink for the trap routines.

	Register [8]uint16 // Register bank r0-r7.
	Pc       uint16    // Program counter.
	Cond     Flag      // Condition flag register, exactly one flag set.
	Running  bool      // Cleared by HALT and fatal instruction outcomes.

	Ticks int // Instruction cycle counter.
}

// NewCpu creates a new CPU with its own memory, ready to run.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Mem: NewMemory(),
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_cpu_defines)
	maps.Copy(defines, _trap_defines)
	maps.Insert(defines, cpu.Mem.Defines())

	return maps.All(defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for n, val := range cpu.Register {
		text += fmt.Sprintf("   r%d: 0x%04x\n", n, val)
	}
	text += fmt.Sprintf("   pc: 0x%04x\n", cpu.Pc)
	text += fmt.Sprintf(" cond: %v\n", cpu.Cond)

	return
}

// Reset the CPU state.
// - Clears the registers and statistics counters.
// - Sets the PC to the fixed entry address.
// - Sets the condition flags to zero, and marks the CPU runnable.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Pc = PC_START
	cpu.Cond = FLAG_ZRO
	cpu.Running = true
	cpu.Ticks = 0
}

// updateFlags sets the condition flags from the value of register r.
func (cpu *Cpu) updateFlags(r uint16) {
	value := cpu.Register[r]
	switch {
	case value == 0:
		cpu.Cond = FLAG_ZRO
	case value>>15 != 0:
		cpu.Cond = FLAG_NEG
	default:
		cpu.Cond = FLAG_POS
	}
}

// Step executes a single fetch, decode, execute cycle.
// The PC is advanced past the instruction word before execution.
func (cpu *Cpu) Step() (err error) {
	code := Code(cpu.Mem.Read(cpu.Pc))

	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc, code)
	}

	cpu.Pc++
	cpu.Ticks++

	err = cpu.Execute(code)

	return
}

// Run steps the CPU until it halts or an error stops it.
func (cpu *Cpu) Run() (err error) {
	for cpu.Running {
		err = cpu.Step()
		if err != nil {
			cpu.Running = false
			return
		}
	}

	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	switch code.Op() {
	case OP_ADD:
		value := cpu.Register[code.Sr2()]
		if code.ImmFlag() {
			value = code.Imm5()
		}
		dr := code.Dr()
		cpu.Register[dr] = cpu.Register[code.Sr1()] + value
		cpu.updateFlags(dr)
	case OP_AND:
		value := cpu.Register[code.Sr2()]
		if code.ImmFlag() {
			value = code.Imm5()
		}
		dr := code.Dr()
		cpu.Register[dr] = cpu.Register[code.Sr1()] & value
		cpu.updateFlags(dr)
	case OP_NOT:
		dr := code.Dr()
		cpu.Register[dr] = ^cpu.Register[code.Sr1()]
		cpu.updateFlags(dr)
	case OP_BR:
		if code.CondMask()&cpu.Cond != 0 {
			cpu.Pc += code.PcOffset9()
		}
	case OP_JMP:
		cpu.Pc = cpu.Register[code.BaseR()]
	case OP_JSR:
		cpu.Register[7] = cpu.Pc
		if code.JsrFlag() {
			cpu.Pc += code.PcOffset11()
		} else {
			cpu.Pc = cpu.Register[code.BaseR()]
		}
	case OP_LD:
		dr := code.Dr()
		cpu.Register[dr] = cpu.Mem.Read(cpu.Pc + code.PcOffset9())
		cpu.updateFlags(dr)
	case OP_LDI:
		dr := code.Dr()
		cpu.Register[dr] = cpu.Mem.Read(cpu.Mem.Read(cpu.Pc + code.PcOffset9()))
		cpu.updateFlags(dr)
	case OP_LDR:
		dr := code.Dr()
		cpu.Register[dr] = cpu.Mem.Read(cpu.Register[code.BaseR()] + code.Offset6())
		cpu.updateFlags(dr)
	case OP_LEA:
		dr := code.Dr()
		cpu.Register[dr] = cpu.Pc + code.PcOffset9()
		cpu.updateFlags(dr)
	case OP_ST:
		cpu.Mem.Write(cpu.Pc+code.PcOffset9(), cpu.Register[code.Sr()])
	case OP_STI:
		cpu.Mem.Write(cpu.Mem.Read(cpu.Pc+code.PcOffset9()), cpu.Register[code.Sr()])
	case OP_STR:
		cpu.Mem.Write(cpu.Register[code.BaseR()]+code.Offset6(), cpu.Register[code.Sr()])
	case OP_TRAP:
		err = cpu.trap(code)
	case OP_RTI, OP_RES:
		cpu.Running = false
		err = ErrOpcodeReserved
	default:
		// Unreachable through a 4-bit Op, kept closed.
		cpu.Running = false
		err = ErrOpcodeReserved
	}

	return
}
