/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

// Package term runs CHIP-8 programs inside a text terminal.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/massung/chip-8/chip8"
	"github.com/massung/chip-8/internal/runner"
	"github.com/pkg/term"
	"github.com/retroenv/retrogolib/log"
)

/// HoldFrames is how long a key stays down after the terminal reports it.
/// Terminals only send presses, so releases are synthesized.
///
const HoldFrames = 6

/// ANSI sequences.
///
const (
	escHome       = "\x1b[H"
	escClear      = "\x1b[2J"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
	bell          = "\a"
)

/// control characters
///
const (
	ctrlC     = 0x03
	backspace = 0x08
	escape    = 0x1b
	del       = 0x7f
)

/// KeyMap maps the left side of a QWERTY keyboard to the hex keypad.
///
var KeyMap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

/// Frontend implements runner.Frontend and runner.Sink on a terminal.
///
type Frontend struct {
	tty    *term.Term
	out    io.Writer
	input  chan []byte
	hold   [chip8.NumKeys]int
	beep   bool
	logger *log.Logger
}

/// Open puts the controlling terminal into raw mode.
///
func Open(logger *log.Logger) (*Frontend, error) {
	tty, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}

	f := newFrontend(logger, tty, make(chan []byte, 16))
	f.tty = tty

	go f.read(tty)

	if _, err := io.WriteString(f.out, escClear+escHideCursor); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

func newFrontend(logger *log.Logger, out io.Writer, input chan []byte) *Frontend {
	return &Frontend{
		out:    out,
		input:  input,
		logger: logger,
	}
}

/// read forwards terminal input until the terminal is closed.
///
func (f *Frontend) read(r io.Reader) {
	defer close(f.input)

	for {
		buf := make([]byte, 32)

		n, err := r.Read(buf)
		if err != nil {
			f.logger.Debug("Terminal input closed", log.Err(err))
			return
		}
		if n > 0 {
			f.input <- buf[:n]
		}
	}
}

/// Close restores the terminal.
///
func (f *Frontend) Close() error {
	if f.tty == nil {
		return nil
	}

	_, _ = io.WriteString(f.out, escShowCursor+"\r\n")

	if err := f.tty.Restore(); err != nil {
		return err
	}
	return f.tty.Close()
}

/// Poll implements runner.Frontend.
///
func (f *Frontend) Poll(r *runner.Runner) bool {
	for {
		select {
		case b, ok := <-f.input:
			if !ok || !f.feed(r, b) {
				return false
			}
		default:
			f.release(r)
			return true
		}
	}
}

/// feed handles one chunk of terminal input. It returns false on quit.
///
func (f *Frontend) feed(r *runner.Runner, input []byte) bool {
	for i := 0; i < len(input); i++ {
		c := input[i]

		if k, ok := KeyMap[lower(c)]; ok {
			f.hold[k] = HoldFrames
			r.SetKey(k, true)
			continue
		}

		switch c {
		case ctrlC:
			return false
		case escape:
			// a lone escape quits, a sequence (arrows, function keys) is dropped
			if i+1 == len(input) {
				return false
			}
			return true
		case backspace, del:
			r.Reset()
		case ' ':
			r.TogglePause()
		case 'n':
			r.SingleStep()
		case '[':
			r.Slower()
		case ']':
			r.Faster()
		}
	}
	return true
}

/// release lets go of keys whose hold time has run out.
///
func (f *Frontend) release(r *runner.Runner) {
	for k := range f.hold {
		if f.hold[k] == 0 {
			continue
		}

		if f.hold[k]--; f.hold[k] == 0 {
			r.SetKey(uint8(k), false)
		}
	}
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

/// Present implements runner.Frontend.
///
func (f *Frontend) Present(fb *chip8.Framebuffer) error {
	_, err := io.WriteString(f.out, Render(fb))
	return err
}

/// Beep implements runner.Sink, ringing the bell when a tone starts.
///
func (f *Frontend) Beep(on bool) error {
	defer func() { f.beep = on }()

	if on && !f.beep {
		_, err := io.WriteString(f.out, bell)
		return err
	}
	return nil
}

/// Render draws the framebuffer with half-block characters, two rows of
/// pixels per line of text.
///
func Render(fb *chip8.Framebuffer) string {
	var sb strings.Builder

	sb.WriteString(escHome)

	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			top, bottom := fb[y][x], fb[y+1][x]

			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	return sb.String()
}
