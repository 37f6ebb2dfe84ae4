// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/emulator"
	lc3io "github.com/ezrec/lc3/io"
)

func main() {
	var compile string
	var output string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&output, "o", "", "Write the machine image to this file, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if len(compile) == 0 && flag.NArg() == 0 {
		log.Fatalf("%v: No image or source file given", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Console.Output = os.Stdout

	// Assemble a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if len(output) != 0 {
		err := os.WriteFile(output, emu.Program.Image(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	emu.Reset()

	for _, name := range flag.Args() {
		inf, err := os.Open(name)
		if err != nil {
			log.Fatalf("%v: %v", name, err)
		}
		err = emu.LoadImage(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", name, err)
		}
	}

	tty := &lc3io.Terminal{}
	err := tty.Open()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	emu.SetKeyboard(tty)

	for done, err := emu.Tick(); !done; done, err = emu.Tick() {
		if err != nil {
			// log.Fatal skips the deferred restore.
			tty.Close()
			log.Fatal(err)
		}
	}

	tty.Close()
}
