package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/massung/chip-8/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// fakeFrontend quits after a fixed number of polls.
type fakeFrontend struct {
	polls   int
	quitAt  int
	frames  []chip8.Framebuffer
	onPoll  func(r *Runner)
	failErr error
}

func (f *fakeFrontend) Poll(r *Runner) bool {
	f.polls++
	if f.onPoll != nil {
		f.onPoll(r)
	}
	return f.quitAt == 0 || f.polls < f.quitAt
}

func (f *fakeFrontend) Present(fb *chip8.Framebuffer) error {
	f.frames = append(f.frames, *fb)
	return f.failErr
}

type fakeSink struct {
	beeps []bool
}

func (s *fakeSink) Beep(on bool) error {
	s.beeps = append(s.beeps, on)
	return nil
}

func program(words ...uint16) []byte {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

func newRunner(t *testing.T, speed int, words ...uint16) (*Runner, *fakeFrontend, *fakeSink) {
	t.Helper()

	logger := log.NewTestLogger(t)

	vm, err := chip8.LoadROM(logger, chip8.DefaultQuirks(), program(words...))
	assert.NoError(t, err)

	frontend := &fakeFrontend{}
	sink := &fakeSink{}

	return New(logger, vm, frontend, speed, sink), frontend, sink
}

func TestSetSpeed(t *testing.T) {
	r, _, _ := newRunner(t, 700, 0x1200)
	assert.Equal(t, 660, r.Speed())

	r.SetSpeed(10)
	assert.Equal(t, MinSpeed, r.Speed())

	r.SetSpeed(1_000_000)
	assert.Equal(t, MaxSpeed, r.Speed())

	r.Slower()
	assert.Equal(t, MaxSpeed-FrameRate, r.Speed())
	r.Faster()
	r.Faster()
	assert.Equal(t, MaxSpeed, r.Speed())

	r.SetSpeed(MinSpeed)
	r.Slower()
	assert.Equal(t, MinSpeed, r.Speed())
}

func TestFrameRunsSpeedOverFrameRateSteps(t *testing.T) {
	// ADD V0, 1 / JP #200
	r, _, _ := newRunner(t, 600, 0x7001, 0x1200)

	assert.NoError(t, r.Frame())
	assert.Equal(t, int64(10), r.VM().Cycles)
	assert.Equal(t, byte(5), r.VM().V(0))

	assert.NoError(t, r.Frame())
	assert.Equal(t, int64(20), r.VM().Cycles)
}

func TestFrameTicksTimersOnce(t *testing.T) {
	r, _, _ := newRunner(t, 600, 0x1200)
	r.VM().SetDelayTimer(5)
	r.VM().SetSoundTimer(1)

	assert.NoError(t, r.Frame())
	assert.Equal(t, byte(4), r.VM().DelayTimer())
	assert.Equal(t, byte(0), r.VM().SoundTimer())
}

func TestFrameStopsWhenBlocked(t *testing.T) {
	// LD V0, K / JP #202
	r, _, _ := newRunner(t, 600, 0xF00A, 0x1202)
	r.VM().SetDelayTimer(3)

	assert.NoError(t, r.Frame())
	assert.True(t, r.VM().Waiting())
	assert.Equal(t, uint16(0x200), r.VM().PC())

	// timers keep running while blocked
	assert.Equal(t, byte(2), r.VM().DelayTimer())

	r.SetKey(7, true)
	assert.NoError(t, r.Frame())
	assert.False(t, r.VM().Waiting())
	assert.Equal(t, byte(7), r.VM().V(0))
}

func TestFrameSkipsUnknownOpcodes(t *testing.T) {
	r, _, _ := newRunner(t, 120, 0x5121, 0x6005)

	assert.NoError(t, r.Frame())
	assert.Equal(t, byte(5), r.VM().V(0))
	assert.Equal(t, uint16(0x204), r.VM().PC())
}

func TestFrameReturnsFatalError(t *testing.T) {
	r, _, _ := newRunner(t, 600, 0x00EE)

	err := r.Frame()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))

	var fatal *chip8.FatalError
	assert.True(t, errors.As(err, &fatal))
	assert.Equal(t, uint16(0x200), fatal.Address)
}

func TestPauseAndSingleStep(t *testing.T) {
	r, _, _ := newRunner(t, 600, 0x7001, 0x7001, 0x7001)
	r.VM().SetDelayTimer(5)

	r.TogglePause()
	assert.True(t, r.Paused())

	assert.NoError(t, r.Frame())
	assert.Equal(t, int64(0), r.VM().Cycles)

	r.SingleStep()
	assert.NoError(t, r.Frame())
	assert.Equal(t, int64(1), r.VM().Cycles)
	assert.Equal(t, byte(5), r.VM().DelayTimer())

	// the step is consumed
	assert.NoError(t, r.Frame())
	assert.Equal(t, int64(1), r.VM().Cycles)

	r.TogglePause()
	r.SingleStep()
	assert.False(t, r.Paused())
}

func TestReset(t *testing.T) {
	r, _, _ := newRunner(t, 600, 0x7001, 0x1200)

	assert.NoError(t, r.Frame())
	r.Reset()

	assert.Equal(t, uint16(0x200), r.VM().PC())
	assert.Equal(t, byte(0), r.VM().V(0))
	assert.Equal(t, int64(0), r.VM().Cycles)
}

func TestRunUntilQuit(t *testing.T) {
	// LD V0, #10 / LD ST, V0 / JP #204
	r, frontend, sink := newRunner(t, 600, 0x6010, 0xF018, 0x1204)
	frontend.quitAt = 3

	assert.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 3, frontend.polls)
	assert.Len(t, frontend.frames, 2)
	assert.Len(t, sink.beeps, 2)
	assert.True(t, sink.beeps[0])
}

func TestRunForwardsKeys(t *testing.T) {
	// LD V0, K / JP #202
	r, frontend, _ := newRunner(t, 600, 0xF00A, 0x1202)
	frontend.quitAt = 4
	frontend.onPoll = func(r *Runner) {
		r.SetKey(0xB, frontend.polls == 2)
	}

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, byte(0xB), r.VM().V(0))
}

func TestRunHalts(t *testing.T) {
	r, frontend, _ := newRunner(t, 600, 0x00EE)

	err := r.Run(context.Background())
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))

	// the final frame is still shown
	assert.Len(t, frontend.frames, 1)
}

func TestRunPresentError(t *testing.T) {
	r, frontend, _ := newRunner(t, 600, 0x1200)
	frontend.failErr = errors.New("window closed")

	err := r.Run(context.Background())
	assert.ErrorContains(t, err, "window closed")
}

func TestRunCancelled(t *testing.T) {
	r, frontend, _ := newRunner(t, 600, 0x1200)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, frontend.polls)
}
