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

package chip8

const (
	/// MemorySize is the number of addressable bytes.
	///
	MemorySize = 0x1000

	/// ProgramAddress is where all programs are loaded and begin.
	///
	ProgramAddress = 0x200

	/// MaxProgramSize is the largest program that fits after the
	/// reserved interpreter area.
	///
	MaxProgramSize = MemorySize - ProgramAddress

	/// Width and Height of the display in pixels.
	///
	Width  = 64
	Height = 32

	/// StackDepth is the maximum number of nested calls.
	///
	StackDepth = 16

	/// NumKeys on the hex keypad.
	///
	NumKeys = 16

	addressMask = MemorySize - 1
)

/// Framebuffer is a copy of the display, indexed [y][x].
///
type Framebuffer [Height][Width]bool

/// Machine holds all the mutable state of a CHIP-8. It has no behavior
/// beyond keeping each piece of state within its declared width.
///
type Machine struct {
	/// rom is the program image last loaded, which Reset restores.
	///
	rom []byte

	/// memory is the 4K address space. The first 512 bytes are reserved
	/// and hold the font sprites.
	///
	memory [MemorySize]byte

	/// video is 64x32 bits, stored MSB first. Pixel <0,0> is bit 0x80
	/// of byte 0.
	///
	video [Width * Height / 8]byte

	v  [16]byte
	i  uint16
	pc uint16

	stack [StackDepth]uint16
	sp    int

	dt byte
	st byte

	keys [NumKeys]bool
}

/// Load validates a program and, if it fits, resets the machine with it.
/// On failure the machine is left untouched.
///
func (m *Machine) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return &LoadError{Size: len(program), Err: ErrProgramTooLarge}
	}

	m.rom = append(m.rom[:0], program...)
	m.Reset()

	return nil
}

/// Reset the machine to its power-on state with the last loaded program.
///
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}

	copy(m.memory[FontAddress:], font[:])
	copy(m.memory[ProgramAddress:], m.rom)

	m.clear()
	m.keys = [NumKeys]bool{}
	m.v = [16]byte{}
	m.stack = [StackDepth]uint16{}
	m.sp = 0
	m.i = 0
	m.pc = ProgramAddress
	m.dt = 0
	m.st = 0
}

/// Read a byte of memory. The address wraps at 4K.
///
func (m *Machine) Read(address uint16) byte {
	return m.memory[address&addressMask]
}

/// Write a byte of memory. The address wraps at 4K, and writes over the
/// font sprites are dropped.
///
func (m *Machine) Write(address uint16, b byte) {
	address &= addressMask

	if !isFont(address) {
		m.memory[address] = b
	}
}

/// V returns the value of register vx.
///
func (m *Machine) V(x uint8) byte {
	return m.v[x&0xF]
}

/// SetV writes register vx.
///
func (m *Machine) SetV(x uint8, b byte) {
	m.v[x&0xF] = b
}

/// I returns the address register.
///
func (m *Machine) I() uint16 {
	return m.i
}

/// SetI writes the address register. It is 16 bits wide, but wraps at 4K
/// whenever it is used as an address.
///
func (m *Machine) SetI(address uint16) {
	m.i = address
}

/// PC returns the address of the next instruction.
///
func (m *Machine) PC() uint16 {
	return m.pc
}

/// SetPC moves the program counter, wrapping at 4K.
///
func (m *Machine) SetPC(address uint16) {
	m.pc = address & addressMask
}

/// Depth returns the number of return addresses on the stack.
///
func (m *Machine) Depth() int {
	return m.sp
}

func (m *Machine) push(address uint16) error {
	if m.sp == StackDepth {
		return ErrStackOverflow
	}

	m.stack[m.sp] = address
	m.sp++

	return nil
}

func (m *Machine) pop() (uint16, error) {
	if m.sp == 0 {
		return 0, ErrStackUnderflow
	}

	m.sp--

	return m.stack[m.sp], nil
}

/// DelayTimer returns the current delay timer value.
///
func (m *Machine) DelayTimer() byte {
	return m.dt
}

/// SetDelayTimer sets the delay timer.
///
func (m *Machine) SetDelayTimer(n byte) {
	m.dt = n
}

/// SoundTimer returns the current sound timer value. While non-zero the
/// host should be playing a tone.
///
func (m *Machine) SoundTimer() byte {
	return m.st
}

/// SetSoundTimer sets the sound timer.
///
func (m *Machine) SetSoundTimer(n byte) {
	m.st = n
}

/// Key is true if key k (0-F) is held down.
///
func (m *Machine) Key(k uint8) bool {
	return m.keys[k&0xF]
}

/// Pixel returns the state of the pixel at x, y. Coordinates wrap.
///
func (m *Machine) Pixel(x, y int) bool {
	x &= Width - 1
	y &= Height - 1

	return m.video[y*Width/8+x>>3]&(0x80>>uint(x&7)) != 0
}

/// Framebuffer returns a copy of the display.
///
func (m *Machine) Framebuffer() Framebuffer {
	var fb Framebuffer

	for y := range fb {
		for x := range fb[y] {
			fb[y][x] = m.Pixel(x, y)
		}
	}

	return fb
}

/// clear the video memory.
///
func (m *Machine) clear() {
	for i := range m.video {
		m.video[i] = 0
	}
}

/// flip xors a single pixel on and returns true if it was turned off.
///
func (m *Machine) flip(x, y int) bool {
	n := y*Width/8 + x>>3
	b := byte(0x80 >> uint(x&7))

	m.video[n] ^= b

	return m.video[n]&b == 0
}
