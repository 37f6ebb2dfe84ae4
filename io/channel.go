// Package io provides the device implementations for the LC-3 emulator:
// keyboard sources (an interactive raw-mode Terminal and a scripted Keys
// buffer) and display sinks (Console).
package io

// Keyboard defines the interface for keyboard input devices.
// Poll serves the memory-mapped KBSR/KBDR pair and must not block;
// ReadKey serves the blocking character traps.
type Keyboard interface {
	// Poll returns a key if one is available, without blocking.
	Poll() (key byte, ok bool)
	// ReadKey blocks until a key is available.
	ReadKey() (key byte, err error)
}

// Display defines the interface for character output devices.
type Display interface {
	// Put writes a single character to the display.
	Put(key byte) error
}
