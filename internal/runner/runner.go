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

// Package runner drives a CHIP-8 virtual machine in real time. It
// interleaves instruction steps at a configurable rate with the 60 Hz
// timer tick, and hands each frame to a frontend and any sound sinks.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/massung/chip-8/chip8"
	"github.com/retroenv/retrogolib/log"
)

const (
	// FrameRate is the timer and display refresh rate.
	FrameRate = 60

	// MinSpeed and MaxSpeed bound the instruction rate.
	MinSpeed = FrameRate
	MaxSpeed = 100 * FrameRate
)

// Frontend presents the machine to the user and collects input.
type Frontend interface {
	// Poll processes pending input, updating keys through the runner.
	// It returns false when the user asked to quit.
	Poll(r *Runner) bool

	// Present shows a frame.
	Present(fb *chip8.Framebuffer) error
}

// Sink receives the state of the beeper once per frame.
type Sink interface {
	Beep(on bool) error
}

// Runner owns the run loop for one VM.
type Runner struct {
	vm       *chip8.VM
	frontend Frontend
	sinks    []Sink
	logger   *log.Logger

	speed  int
	paused bool
	step   bool
}

// New returns a runner executing speed instructions per second.
func New(logger *log.Logger, vm *chip8.VM, frontend Frontend, speed int, sinks ...Sink) *Runner {
	r := &Runner{
		vm:       vm,
		frontend: frontend,
		sinks:    sinks,
		logger:   logger,
	}
	r.SetSpeed(speed)
	return r
}

// VM returns the virtual machine being run.
func (r *Runner) VM() *chip8.VM {
	return r.vm
}

// Speed returns the instruction rate.
func (r *Runner) Speed() int {
	return r.speed
}

// SetSpeed sets the instruction rate, rounded down to a whole number of
// instructions per frame.
func (r *Runner) SetSpeed(speed int) {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	r.speed = speed - speed%FrameRate
}

// Faster raises the instruction rate by one instruction per frame.
func (r *Runner) Faster() {
	r.SetSpeed(r.speed + FrameRate)
	r.logger.Info("Speed changed", log.Int("ips", r.speed))
}

// Slower lowers the instruction rate by one instruction per frame.
func (r *Runner) Slower() {
	r.SetSpeed(r.speed - FrameRate)
	r.logger.Info("Speed changed", log.Int("ips", r.speed))
}

// Paused is true while emulation is paused.
func (r *Runner) Paused() bool {
	return r.paused
}

// TogglePause pauses or resumes emulation.
func (r *Runner) TogglePause() {
	r.paused = !r.paused
}

// SingleStep executes one instruction on the next frame while paused.
func (r *Runner) SingleStep() {
	if r.paused {
		r.step = true
	}
}

// Reset reboots the loaded program.
func (r *Runner) Reset() {
	r.vm.Reset()
	r.logger.Info("Reset")
}

// SetKey forwards a key change to the VM.
func (r *Runner) SetKey(k uint8, pressed bool) {
	r.vm.SetKey(k, pressed)
}

// Frame emulates one 60th of a second: up to speed/60 instructions and a
// single timer tick. It returns the fatal error if the VM halted.
func (r *Runner) Frame() error {
	if r.paused {
		if !r.step {
			return nil
		}
		r.step = false
		return r.execute(1)
	}

	if err := r.execute(r.speed / FrameRate); err != nil {
		return err
	}

	r.vm.TickTimers()
	return nil
}

// execute steps the VM up to n times, stopping early when it blocks on
// the keypad.
func (r *Runner) execute(n int) error {
	for i := 0; i < n; i++ {
		status, err := r.vm.Step()

		switch status {
		case chip8.Blocked:
			return nil
		case chip8.UnknownOpcode:
			r.logger.Warn("Skipping unknown opcode", log.Err(err))
		case chip8.Halted:
			return err
		}
	}
	return nil
}

// present hands the current frame to the frontend and the sinks.
func (r *Runner) present() error {
	fb := r.vm.Framebuffer()
	if err := r.frontend.Present(&fb); err != nil {
		return err
	}

	beep := r.vm.SoundTimer() > 0 && !r.paused
	for _, sink := range r.sinks {
		if err := sink.Beep(beep); err != nil {
			return err
		}
	}
	return nil
}

// Run emulates in real time until the frontend quits, the VM halts, or
// ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	r.logger.Debug("Running", log.Int("ips", r.speed))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if !r.frontend.Poll(r) {
			return nil
		}

		err := r.Frame()

		var fatal *chip8.FatalError
		if errors.As(err, &fatal) {
			r.logger.Error("Emulation halted", log.Hex("address", fatal.Address), log.Err(fatal.Err))
		}

		// show the final frame even when halted
		if perr := r.present(); perr != nil {
			return perr
		}
		if err != nil {
			return err
		}
	}
}
