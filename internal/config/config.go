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

// Package config handles command line options and logger setup.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/massung/chip-8/chip8"
	"github.com/retroenv/retrogolib/log"
)

const (
	// DefaultSpeed is the instruction rate in instructions per second.
	DefaultSpeed = 700

	// DefaultScale is the size of a CHIP-8 pixel in the SDL window.
	DefaultScale = 10
)

// Options are the settings for a run of the emulator.
type Options struct {
	ROM    string
	Speed  int
	Scale  int
	Quirks chip8.Quirks

	Terminal bool
	Wav      string
	Stats    string

	Debug bool
	Quiet bool
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage line and the flag defaults.
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chip8 [options] [rom]\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

// quirkFlags are the individual overrides applied on top of a preset.
type quirkFlags struct {
	preset      string
	shiftVY     bool
	incrementI  bool
	resetVF     bool
	jumpVX      bool
	clip        bool
	waitRelease bool
}

// ParseFlags parses command line arguments, not including the program name.
func ParseFlags(args []string) (Options, error) {
	flags := flag.NewFlagSet("chip8", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	var quirks quirkFlags
	readOptionFlags(flags, &opts, &quirks)

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	switch flags.NArg() {
	case 0:
	case 1:
		opts.ROM = flags.Arg(0)
	default:
		return opts, &UsageError{flags: flags, msg: "only one ROM file can be given"}
	}

	if opts.Speed < 60 {
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("speed %d is below 60 instructions per second", opts.Speed)}
	}
	if opts.Scale < 1 {
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("invalid scale %d", opts.Scale)}
	}

	q, err := chip8.ParseQuirks(quirks.preset)
	if err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	// overrides only ever turn a quirk on
	q.ShiftUsesVY = q.ShiftUsesVY || quirks.shiftVY
	q.LoadStoreIncrementsI = q.LoadStoreIncrementsI || quirks.incrementI
	q.ResetVF = q.ResetVF || quirks.resetVF
	q.JumpUsesVX = q.JumpUsesVX || quirks.jumpVX
	q.WaitForRelease = q.WaitForRelease || quirks.waitRelease
	if quirks.clip {
		q.Sprites = chip8.SpriteClip
	}

	opts.Quirks = q

	return opts, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *Options, quirks *quirkFlags) {
	flags.IntVar(&opts.Speed, "speed", DefaultSpeed, "instructions executed per second")
	flags.IntVar(&opts.Scale, "scale", DefaultScale, "window pixels per CHIP-8 pixel")
	flags.BoolVar(&opts.Terminal, "term", false, "run in the terminal instead of a window")
	flags.StringVar(&opts.Wav, "wav", "", "record the sound output to a .wav file")
	flags.StringVar(&opts.Stats, "stats", "", "serve runtime statistics at this address, for example localhost:12600")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.StringVar(&quirks.preset, "quirks", "modern", "quirks preset (modern/legacy)")
	flags.BoolVar(&quirks.shiftVY, "shift-vy", false, "8XY6/8XYE shift VY into VX")
	flags.BoolVar(&quirks.incrementI, "increment-i", false, "FX55/FX65 increment I")
	flags.BoolVar(&quirks.resetVF, "reset-vf", false, "8XY1/8XY2/8XY3 clear VF")
	flags.BoolVar(&quirks.jumpVX, "jump-vx", false, "BNNN jumps to NNN + VX")
	flags.BoolVar(&quirks.clip, "clip", false, "clip sprites at the screen edges instead of wrapping")
	flags.BoolVar(&quirks.waitRelease, "wait-release", false, "FX0A waits for the key to be released")
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// ReadROM reads a program image from disk.
func ReadROM(path string) ([]byte, error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}
	return program, nil
}
