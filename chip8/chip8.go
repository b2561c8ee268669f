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

// Package chip8 implements the CHIP-8 virtual machine: memory, registers,
// timers, display and keypad state, and the instruction engine that
// mutates them. The host drives it by calling Step at its chosen
// instruction rate and TickTimers at 60 Hz.
package chip8

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/log"
)

/// Status is the outcome of a single Step.
///
type Status int

const (
	/// Continue means an instruction was executed.
	///
	Continue Status = iota

	/// Blocked means the VM is waiting for a key press (FX0A). The
	/// program counter has not moved.
	///
	Blocked

	/// UnknownOpcode means the instruction didn't decode. It was
	/// skipped and execution can continue.
	///
	UnknownOpcode

	/// Halted means a fatal error stopped the VM.
	///
	Halted
)

func (s Status) String() string {
	switch s {
	case Continue:
		return "continue"
	case Blocked:
		return "blocked"
	case UnknownOpcode:
		return "unknown opcode"
	case Halted:
		return "halted"
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

/// VM is a CHIP-8 virtual machine. It is not safe for concurrent use;
/// a host stepping and ticking from different goroutines must
/// serialize the calls itself.
///
type VM struct {
	Machine

	/// Quirks in effect for this VM.
	///
	Quirks Quirks

	/// Cycles is how many instructions have been executed since the last
	/// load or reset.
	///
	Cycles int64

	/// wait is non-nil while blocked on FX0A.
	///
	wait *keyWait

	/// halt is the fatal error that stopped the VM.
	///
	halt error

	rng    *rand.Rand
	logger *log.Logger
}

/// keyWait tracks a pending FX0A.
///
type keyWait struct {
	x    uint8
	key  int
	done bool
}

/// New returns a VM with no program loaded.
///
func New(logger *log.Logger, quirks Quirks) *VM {
	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}

	vm := &VM{
		Quirks: quirks,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}

	vm.Reset()

	return vm
}

/// LoadROM returns a new VM with program loaded.
///
func LoadROM(logger *log.Logger, quirks Quirks, program []byte) (*VM, error) {
	vm := New(logger, quirks)

	if err := vm.Load(program); err != nil {
		return nil, err
	}

	return vm, nil
}

/// Load a program, resetting the VM. On error nothing changes.
///
func (vm *VM) Load(program []byte) error {
	if err := vm.Machine.Load(program); err != nil {
		return err
	}

	vm.restart()

	return nil
}

/// Reset the VM back to the start of the loaded program.
///
func (vm *VM) Reset() {
	vm.Machine.Reset()
	vm.restart()
}

func (vm *VM) restart() {
	vm.Cycles = 0
	vm.wait = nil
	vm.halt = nil
}

/// Seed the random number generator used by RND.
///
func (vm *VM) Seed(seed int64) {
	vm.rng = rand.New(rand.NewSource(seed))
}

/// Waiting is true while the VM is blocked on FX0A.
///
func (vm *VM) Waiting() bool {
	return vm.wait != nil
}

/// Err returns the fatal error that halted the VM, if any.
///
func (vm *VM) Err() error {
	return vm.halt
}

/// SetKey updates the state of key k (0-F). A press, or with
/// WaitForRelease the release that follows it, completes a pending FX0A.
///
func (vm *VM) SetKey(k uint8, pressed bool) {
	k &= 0xF

	was := vm.keys[k]
	vm.keys[k] = pressed

	if w := vm.wait; w != nil {
		switch {
		case pressed && !was && w.key < 0:
			w.key = int(k)
			w.done = !vm.Quirks.WaitForRelease
		case !pressed && was && w.key == int(k):
			w.done = true
		}
	}
}

/// TickTimers counts the delay and sound timers down by one. Call it at
/// 60 Hz regardless of the instruction rate.
///
func (vm *VM) TickTimers() {
	if vm.dt > 0 {
		vm.dt--
	}
	if vm.st > 0 {
		vm.st--
	}
}

/// Step the CHIP-8 virtual machine a single instruction.
///
func (vm *VM) Step() (Status, error) {
	if vm.halt != nil {
		return Halted, vm.halt
	}

	if vm.wait != nil {
		return vm.resume(), nil
	}

	pc := vm.pc

	// fetch the next instruction
	word, err := vm.fetch()
	if err != nil {
		return vm.fatal(pc, err)
	}

	inst := Decode(word)

	if inst.Op == OpUnknown {
		vm.logger.Debug("Unknown opcode", log.Hex("address", pc), log.Hex("opcode", word))

		return UnknownOpcode, &OpcodeError{Address: pc, Word: word}
	}

	if err := vm.execute(inst); err != nil {
		return vm.fatal(pc, err)
	}

	if vm.wait != nil {
		vm.logger.Debug("Waiting for key", log.Hex("address", pc))

		return Blocked, nil
	}

	vm.Cycles++

	return Continue, nil
}

/// fatal halts the VM with the program counter left on the instruction
/// that failed.
///
func (vm *VM) fatal(pc uint16, err error) (Status, error) {
	vm.pc = pc
	vm.halt = &FatalError{Address: pc, Err: err}

	return Halted, vm.halt
}

/// resume a pending FX0A once a key has been hit.
///
func (vm *VM) resume() Status {
	w := vm.wait
	if !w.done {
		return Blocked
	}

	vm.v[w.x] = byte(w.key)
	vm.wait = nil
	vm.SetPC(vm.pc + 2)
	vm.Cycles++

	return Continue
}

/// Fetch the next 16-bit instruction to execute.
///
func (vm *VM) fetch() (uint16, error) {
	i := vm.pc

	if int(i)+1 >= MemorySize {
		return 0, &FetchError{Address: i}
	}

	// advance the program counter
	vm.SetPC(i + 2)

	// return the 16-bit instruction
	return uint16(vm.memory[i])<<8 | uint16(vm.memory[i+1]), nil
}

/// execute a decoded instruction. The program counter is already past it.
///
func (vm *VM) execute(inst Instruction) error {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpCLS:
		vm.cls()
	case OpRET:
		return vm.ret()
	case OpSYS:
		vm.sys(inst.NNN)
	case OpJP:
		vm.jump(inst.NNN)
	case OpCALL:
		return vm.call(inst.NNN)
	case OpSEByte:
		vm.skipIf(x, inst.NN)
	case OpSNEByte:
		vm.skipIfNot(x, inst.NN)
	case OpSEReg:
		vm.skipIfXY(x, y)
	case OpLDByte:
		vm.loadX(x, inst.NN)
	case OpADDByte:
		vm.addX(x, inst.NN)
	case OpLDReg:
		vm.loadXY(x, y)
	case OpOR:
		vm.or(x, y)
	case OpAND:
		vm.and(x, y)
	case OpXOR:
		vm.xor(x, y)
	case OpADDReg:
		vm.addXY(x, y)
	case OpSUB:
		vm.subXY(x, y)
	case OpSHR:
		vm.shr(x, y)
	case OpSUBN:
		vm.subYX(x, y)
	case OpSHL:
		vm.shl(x, y)
	case OpSNEReg:
		vm.skipIfNotXY(x, y)
	case OpLDI:
		vm.loadI(inst.NNN)
	case OpJPV0:
		vm.jumpV0(x, inst.NNN)
	case OpRND:
		vm.rnd(x, inst.NN)
	case OpDRW:
		vm.drw(x, y, inst.N)
	case OpSKP:
		vm.skipIfPressed(x)
	case OpSKNP:
		vm.skipIfNotPressed(x)
	case OpLDVxDT:
		vm.loadXDT(x)
	case OpLDVxK:
		vm.loadXK(x)
	case OpLDDTVx:
		vm.loadDTX(x)
	case OpLDSTVx:
		vm.loadSTX(x)
	case OpADDI:
		vm.addIX(x)
	case OpLDF:
		vm.loadF(x)
	case OpLDB:
		vm.loadB(x)
	case OpLDIVx:
		vm.saveRegs(x)
	case OpLDVxI:
		vm.loadRegs(x)
	default:
		return fmt.Errorf("no handler for %s", inst)
	}

	return nil
}

/// Clear the video display memory.
///
func (vm *VM) cls() {
	vm.clear()
}

/// system call an RCA 1802 program at address. There is no 1802 to
/// run it on, so it does nothing.
///
func (vm *VM) sys(address uint16) {
	vm.logger.Debug("Ignoring machine code call", log.Hex("address", address))
}

/// call a subroutine at address.
///
func (vm *VM) call(address uint16) error {
	if err := vm.push(vm.pc); err != nil {
		return err
	}

	vm.SetPC(address)

	return nil
}

/// return from subroutine.
///
func (vm *VM) ret() error {
	address, err := vm.pop()
	if err != nil {
		return err
	}

	vm.SetPC(address)

	return nil
}

/// jump to address.
///
func (vm *VM) jump(address uint16) {
	vm.SetPC(address)
}

/// jump to address + v0, or + vx with JumpUsesVX.
///
func (vm *VM) jumpV0(x uint8, address uint16) {
	if !vm.Quirks.JumpUsesVX {
		x = 0
	}

	vm.SetPC(address + uint16(vm.v[x]))
}

/// skip the next instruction.
///
func (vm *VM) skip() {
	vm.SetPC(vm.pc + 2)
}

/// skip next instruction if vx == n.
///
func (vm *VM) skipIf(x uint8, b byte) {
	if vm.v[x] == b {
		vm.skip()
	}
}

/// skip next instruction if vx != n.
///
func (vm *VM) skipIfNot(x uint8, b byte) {
	if vm.v[x] != b {
		vm.skip()
	}
}

/// skip next instruction if vx == vy.
///
func (vm *VM) skipIfXY(x, y uint8) {
	if vm.v[x] == vm.v[y] {
		vm.skip()
	}
}

/// skip next instruction if vx != vy.
///
func (vm *VM) skipIfNotXY(x, y uint8) {
	if vm.v[x] != vm.v[y] {
		vm.skip()
	}
}

/// skip next instruction if key(vx) is pressed.
///
func (vm *VM) skipIfPressed(x uint8) {
	if vm.Key(vm.v[x]) {
		vm.skip()
	}
}

/// skip next instruction if key(vx) is not pressed.
///
func (vm *VM) skipIfNotPressed(x uint8) {
	if !vm.Key(vm.v[x]) {
		vm.skip()
	}
}

/// load n into vx.
///
func (vm *VM) loadX(x uint8, b byte) {
	vm.v[x] = b
}

/// load y into vx.
///
func (vm *VM) loadXY(x, y uint8) {
	vm.v[x] = vm.v[y]
}

/// load delay timer into vx.
///
func (vm *VM) loadXDT(x uint8) {
	vm.v[x] = vm.dt
}

/// load vx into delay timer.
///
func (vm *VM) loadDTX(x uint8) {
	vm.dt = vm.v[x]
}

/// load vx into sound timer.
///
func (vm *VM) loadSTX(x uint8) {
	vm.st = vm.v[x]
}

/// load vx with next key hit. The program counter is held on this
/// instruction until resume sees the key.
///
func (vm *VM) loadXK(x uint8) {
	vm.wait = &keyWait{x: x, key: -1}
	vm.SetPC(vm.pc - 2)
}

/// load address register.
///
func (vm *VM) loadI(address uint16) {
	vm.i = address
}

/// load address with BCD of vx.
///
func (vm *VM) loadB(x uint8) {
	n := uint16(vm.v[x])
	b := uint16(0)

	// perform 8 shifts
	for i := uint(0); i < 8; i++ {
		if (b>>0)&0xF >= 5 {
			b += 3
		}
		if (b>>4)&0xF >= 5 {
			b += 3 << 4
		}
		if (b>>8)&0xF >= 5 {
			b += 3 << 8
		}

		// apply shift, pull next bit
		b = (b << 1) | (n >> (7 - i) & 1)
	}

	// write to memory
	vm.Write(vm.i+0, byte(b>>8)&0xF)
	vm.Write(vm.i+1, byte(b>>4)&0xF)
	vm.Write(vm.i+2, byte(b>>0)&0xF)
}

/// load font sprite for vx into I.
///
func (vm *VM) loadF(x uint8) {
	vm.i = FontAddress + uint16(vm.v[x]&0xF)*GlyphSize
}

/// or vx with vy into vx.
///
func (vm *VM) or(x, y uint8) {
	vm.v[x] |= vm.v[y]
	vm.resetVF()
}

/// and vx with vy into vx.
///
func (vm *VM) and(x, y uint8) {
	vm.v[x] &= vm.v[y]
	vm.resetVF()
}

/// xor vx with vy into vx.
///
func (vm *VM) xor(x, y uint8) {
	vm.v[x] ^= vm.v[y]
	vm.resetVF()
}

func (vm *VM) resetVF() {
	if vm.Quirks.ResetVF {
		vm.v[0xF] = 0
	}
}

/// shift source picks the register shifted by shl and shr.
///
func (vm *VM) shiftSource(x, y uint8) byte {
	if vm.Quirks.ShiftUsesVY {
		return vm.v[y]
	}

	return vm.v[x]
}

/// shl vx 1 bit, set carry to MSB of the source before shift.
///
func (vm *VM) shl(x, y uint8) {
	s := vm.shiftSource(x, y)

	vm.v[x] = s << 1
	vm.v[0xF] = s >> 7
}

/// shr vx 1 bit, set carry to LSB of the source before shift.
///
func (vm *VM) shr(x, y uint8) {
	s := vm.shiftSource(x, y)

	vm.v[x] = s >> 1
	vm.v[0xF] = s & 1
}

/// add n to vx.
///
func (vm *VM) addX(x uint8, b byte) {
	vm.v[x] += b
}

/// add vy to vx and set carry.
///
func (vm *VM) addXY(x, y uint8) {
	sum := uint16(vm.v[x]) + uint16(vm.v[y])

	vm.v[x] = byte(sum)
	vm.v[0xF] = byte(sum >> 8)
}

/// add vx to i.
///
func (vm *VM) addIX(x uint8) {
	vm.i += uint16(vm.v[x])
}

/// subtract vy from vx, set carry if no borrow.
///
func (vm *VM) subXY(x, y uint8) {
	c := carry(vm.v[x] >= vm.v[y])

	vm.v[x] -= vm.v[y]
	vm.v[0xF] = c
}

/// subtract vx from vy and store in vx, set carry if no borrow.
///
func (vm *VM) subYX(x, y uint8) {
	c := carry(vm.v[y] >= vm.v[x])

	vm.v[x] = vm.v[y] - vm.v[x]
	vm.v[0xF] = c
}

func carry(b bool) byte {
	if b {
		return 1
	}

	return 0
}

/// load a random number & n into vx.
///
func (vm *VM) rnd(x uint8, b byte) {
	vm.v[x] = byte(vm.rng.Intn(256)) & b
}

/// draw a sprite at I to video memory at vx, vy.
///
func (vm *VM) drw(x, y, n uint8) {
	c := false
	clip := vm.Quirks.Sprites == SpriteClip

	// the origin always wraps
	ox := int(vm.v[x]) & (Width - 1)
	oy := int(vm.v[y]) & (Height - 1)

	// draw each row of the sprite
	for row := 0; row < int(n); row++ {
		py := oy + row

		if py >= Height {
			if clip {
				break
			}
			py -= Height
		}

		s := vm.Read(vm.i + uint16(row))

		for bit := 0; bit < 8; bit++ {
			if s&(0x80>>uint(bit)) == 0 {
				continue
			}

			px := ox + bit

			if px >= Width {
				if clip {
					break
				}
				px -= Width
			}

			// was a pixel turned off?
			if vm.flip(px, py) {
				c = true
			}
		}
	}

	// set carry flag if any collision occurred
	vm.v[0xF] = carry(c)
}

/// save registers v0..vx to I.
///
func (vm *VM) saveRegs(x uint8) {
	for i := uint16(0); i <= uint16(x); i++ {
		vm.Write(vm.i+i, vm.v[i])
	}

	if vm.Quirks.LoadStoreIncrementsI {
		vm.i += uint16(x) + 1
	}
}

/// load registers v0..vx from I.
///
func (vm *VM) loadRegs(x uint8) {
	for i := uint16(0); i <= uint16(x); i++ {
		vm.v[i] = vm.Read(vm.i + i)
	}

	if vm.Quirks.LoadStoreIncrementsI {
		vm.i += uint16(x) + 1
	}
}
