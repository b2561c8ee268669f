package main

import (
	"github.com/massung/chip-8/internal/runner"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Mapping of modern keyboard to CHIP-8 keys.
	///
	KeyMap = map[sdl.Scancode]uint8{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

/// Poll events from SDL and map keys to the CHIP-8 VM.
///
func (s *Screen) Poll(r *runner.Runner) bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			pressed := ev.Type == sdl.KEYDOWN

			if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
				r.SetKey(key, pressed)
				continue
			}

			// controls act on the press only
			if !pressed || ev.Repeat != 0 {
				continue
			}

			switch ev.Keysym.Scancode {
			case sdl.SCANCODE_ESCAPE:
				return false
			case sdl.SCANCODE_BACKSPACE:
				r.Reset()

				// holding control during reset will reboot paused
				if ev.Keysym.Mod&sdl.KMOD_CTRL != 0 && !r.Paused() {
					r.TogglePause()
				}
			case sdl.SCANCODE_LEFTBRACKET:
				r.Slower()
			case sdl.SCANCODE_RIGHTBRACKET:
				r.Faster()
			case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
				r.TogglePause()
			case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
				r.SingleStep()
			}
		}
	}

	return true
}
