package io

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is an interactive keyboard reading from a file, normally
// os.Stdin. When the input is a tty it is switched into raw mode for
// the lifetime of the Terminal, so keystrokes arrive unbuffered and
// unechoed.
type Terminal struct {
	Input *os.File

	raw    bool
	config unix.Termios
	keys   chan byte
}

var _ Keyboard = (*Terminal)(nil)

// Open prepares the terminal for key input. The input file is read by
// a background goroutine so that Poll never blocks.
func (tty *Terminal) Open() (err error) {
	if tty.Input == nil {
		tty.Input = os.Stdin
	}

	if term.IsTerminal(int(tty.Input.Fd())) {
		err = termios.Tcgetattr(tty.Input.Fd(), &tty.config)
		if err != nil {
			return
		}
		raw := tty.config
		raw.Lflag &^= unix.ICANON | unix.ECHO
		err = termios.Tcsetattr(tty.Input.Fd(), termios.TCSANOW, &raw)
		if err != nil {
			return
		}
		tty.raw = true
	}

	tty.keys = make(chan byte, 64)
	go tty.pump()

	return
}

// pump feeds keys from the input file into the key channel.
func (tty *Terminal) pump() {
	defer close(tty.keys)

	buf := make([]byte, 1)
	for {
		n, err := tty.Input.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			tty.keys <- buf[0]
		}
	}
}

// Close restores the terminal settings changed by Open.
func (tty *Terminal) Close() (err error) {
	if tty.raw {
		err = termios.Tcsetattr(tty.Input.Fd(), termios.TCSANOW, &tty.config)
		tty.raw = false
	}

	return
}

// Poll returns a key if one has already been typed, without blocking.
func (tty *Terminal) Poll() (key byte, ok bool) {
	select {
	case key, ok = <-tty.keys:
	default:
	}

	return
}

// ReadKey blocks until a key is typed.
// Returns ErrInputClosed if the input reaches end of file.
func (tty *Terminal) ReadKey() (key byte, err error) {
	key, ok := <-tty.keys
	if !ok {
		err = ErrInputClosed
	}

	return
}
