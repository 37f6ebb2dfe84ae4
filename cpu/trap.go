package cpu

import (
	"fmt"
	"log"
)

var _trap_defines = map[string]string{
	"TRAP_GETC":  fmt.Sprintf("0x%02x", int(TRAP_GETC)),
	"TRAP_OUT":   fmt.Sprintf("0x%02x", int(TRAP_OUT)),
	"TRAP_PUTS":  fmt.Sprintf("0x%02x", int(TRAP_PUTS)),
	"TRAP_IN":    fmt.Sprintf("0x%02x", int(TRAP_IN)),
	"TRAP_PUTSP": fmt.Sprintf("0x%02x", int(TRAP_PUTSP)),
	"TRAP_HALT":  fmt.Sprintf("0x%02x", int(TRAP_HALT)),
}

// trap dispatches on the low 8 bits of a TRAP instruction.
// An unknown vector stops the CPU, as does input exhaustion during
// the blocking reads of GETC and IN.
func (cpu *Cpu) trap(code Code) (err error) {
	vector := code.Vector()

	if cpu.Verbose {
		log.Printf("cpu: trap %v", vector)
	}

	switch vector {
	case TRAP_GETC:
		var key byte
		key, err = cpu.readKey()
		if err != nil {
			cpu.Running = false
			return
		}
		cpu.Register[0] = uint16(key)
	case TRAP_OUT:
		err = cpu.put(byte(cpu.Register[0]))
	case TRAP_PUTS:
		for address := cpu.Register[0]; ; address++ {
			word := cpu.Mem.Read(address)
			if word == 0 {
				break
			}
			err = cpu.put(byte(word))
			if err != nil {
				return
			}
		}
	case TRAP_IN:
		err = cpu.puts("Enter a character: ")
		if err != nil {
			return
		}
		var key byte
		key, err = cpu.readKey()
		if err != nil {
			cpu.Running = false
			return
		}
		err = cpu.put(key)
		if err != nil {
			return
		}
		cpu.Register[0] = uint16(key)
	case TRAP_PUTSP:
		for address := cpu.Register[0]; ; address++ {
			word := cpu.Mem.Read(address)
			if word == 0 {
				break
			}
			err = cpu.put(byte(word))
			if err != nil {
				return
			}
			if word>>8 != 0 {
				err = cpu.put(byte(word >> 8))
				if err != nil {
					return
				}
			}
		}
	case TRAP_HALT:
		cpu.Running = false
		err = cpu.puts("HALT\n")
	default:
		cpu.Running = false
		err = ErrTrap(vector)
	}

	return
}

// readKey blocks until the keyboard supplies a key, or fails when
// input is exhausted.
func (cpu *Cpu) readKey() (key byte, err error) {
	if cpu.Mem.Keyboard == nil {
		err = ErrKeyboardInvalid
		return
	}

	return cpu.Mem.Keyboard.ReadKey()
}

// put writes a single byte to the display. A nil display discards.
func (cpu *Cpu) put(key byte) (err error) {
	if cpu.Display == nil {
		return
	}

	return cpu.Display.Put(key)
}

// puts writes a host string to the display.
func (cpu *Cpu) puts(text string) (err error) {
	for _, key := range []byte(text) {
		err = cpu.put(key)
		if err != nil {
			return
		}
	}

	return
}
