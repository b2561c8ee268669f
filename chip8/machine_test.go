package chip8

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestMachineLoad(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	sizes := []int{0, 1, 2, 3, 100, 1234, MaxProgramSize - 1, MaxProgramSize}
	for _, size := range sizes {
		program := make([]byte, size)
		rng.Read(program)

		var m Machine
		assert.NoError(t, m.Load(program))
		assert.Equal(t, uint16(ProgramAddress), m.PC())

		for i, b := range program {
			assert.Equal(t, b, m.Read(uint16(ProgramAddress+i)))
		}
	}
}

func TestMachineLoadTooLarge(t *testing.T) {
	var m Machine
	assert.NoError(t, m.Load([]byte{0x12, 0x34}))
	m.SetV(3, 0x42)
	m.SetPC(0x300)

	err := m.Load(make([]byte, MaxProgramSize+1))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrProgramTooLarge))

	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.Equal(t, MaxProgramSize+1, loadErr.Size)

	// nothing was touched
	assert.Equal(t, byte(0x12), m.Read(ProgramAddress))
	assert.Equal(t, byte(0x34), m.Read(ProgramAddress+1))
	assert.Equal(t, byte(0x42), m.V(3))
	assert.Equal(t, uint16(0x300), m.PC())
}

func TestMachineReset(t *testing.T) {
	var m Machine
	assert.NoError(t, m.Load([]byte{0xAB, 0xCD}))

	m.Write(ProgramAddress, 0x00)
	m.SetV(0, 1)
	m.SetI(0x123)
	m.SetPC(0x400)
	m.SetDelayTimer(10)
	m.SetSoundTimer(20)
	m.keys[5] = true
	m.flip(1, 1)
	assert.NoError(t, m.push(0x222))

	m.Reset()

	assert.Equal(t, byte(0xAB), m.Read(ProgramAddress))
	assert.Equal(t, byte(0), m.V(0))
	assert.Equal(t, uint16(0), m.I())
	assert.Equal(t, uint16(ProgramAddress), m.PC())
	assert.Equal(t, byte(0), m.DelayTimer())
	assert.Equal(t, byte(0), m.SoundTimer())
	assert.False(t, m.Key(5))
	assert.False(t, m.Pixel(1, 1))
	assert.Equal(t, 0, m.Depth())
}

func TestMachineFont(t *testing.T) {
	var m Machine
	m.Reset()

	for i, b := range font {
		assert.Equal(t, b, m.Read(uint16(FontAddress+i)))
	}

	// the font can't be overwritten
	m.Write(FontAddress, 0x00)
	m.Write(FontAddress+uint16(len(font))-1, 0x00)
	assert.Equal(t, byte(0xF0), m.Read(FontAddress))
	assert.Equal(t, byte(0x80), m.Read(FontAddress+uint16(len(font))-1))

	// but the bytes around it can
	m.Write(FontAddress-1, 0x77)
	m.Write(FontAddress+uint16(len(font)), 0x88)
	assert.Equal(t, byte(0x77), m.Read(FontAddress-1))
	assert.Equal(t, byte(0x88), m.Read(FontAddress+uint16(len(font))))
}

func TestMachineAddressWrap(t *testing.T) {
	var m Machine
	m.Reset()

	m.Write(0x1300, 0x5A)
	assert.Equal(t, byte(0x5A), m.Read(0x300))
	assert.Equal(t, byte(0x5A), m.Read(0xF300))

	m.SetPC(0x1202)
	assert.Equal(t, uint16(0x202), m.PC())

	// I itself is 16 bits wide
	m.SetI(0xFFFF)
	assert.Equal(t, uint16(0xFFFF), m.I())
}

func TestMachineRegisterIndex(t *testing.T) {
	var m Machine
	m.SetV(0x1F, 0x99)
	assert.Equal(t, byte(0x99), m.V(0xF))
}

func TestMachineStack(t *testing.T) {
	var m Machine

	_, err := m.pop()
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	for i := 0; i < StackDepth; i++ {
		assert.NoError(t, m.push(uint16(0x200+i*2)))
	}
	assert.Equal(t, StackDepth, m.Depth())
	assert.True(t, errors.Is(m.push(0x300), ErrStackOverflow))
	assert.Equal(t, StackDepth, m.Depth())

	for i := StackDepth - 1; i >= 0; i-- {
		address, err := m.pop()
		assert.NoError(t, err)
		assert.Equal(t, uint16(0x200+i*2), address)
	}
	assert.Equal(t, 0, m.Depth())
}

func TestMachinePixels(t *testing.T) {
	var m Machine

	assert.False(t, m.flip(63, 31))
	assert.True(t, m.Pixel(63, 31))
	assert.True(t, m.Pixel(-1, -1))
	assert.True(t, m.Pixel(127, 63))

	fb := m.Framebuffer()
	assert.True(t, fb[31][63])
	assert.False(t, fb[0][0])

	// flipping it again turns it off
	assert.True(t, m.flip(63, 31))
	assert.False(t, m.Pixel(63, 31))

	m.flip(0, 0)
	m.flip(8, 0)
	m.clear()
	assert.Equal(t, Framebuffer{}, m.Framebuffer())
}
