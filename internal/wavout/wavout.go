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

// Package wavout records the CHIP-8 beeper to a WAV file. Samples are
// buffered in memory and written to disk when the recorder is closed.
package wavout

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/retroenv/retrogolib/log"
)

const (
	// SampleRate of the recording.
	SampleRate = 44100

	// BitDepth of each sample.
	BitDepth = 16

	// Tone is the frequency of the beep in Hz.
	Tone = 440

	// amplitude of the square wave
	amplitude = 0x2000

	// audio format tag for PCM
	formatPCM = 1
)

// Recorder implements runner.Sink.
type Recorder struct {
	filename string
	rate     int
	samples  []int
	phase    int
	logger   *log.Logger
}

// New returns a recorder writing to filename at 60 frames per second.
func New(logger *log.Logger, filename string) *Recorder {
	return &Recorder{
		filename: filename,
		rate:     60,
		logger:   logger,
	}
}

// Beep appends one frame of audio, a square wave while on and silence
// otherwise.
func (r *Recorder) Beep(on bool) error {
	n := SampleRate / r.rate
	period := SampleRate / Tone

	for i := 0; i < n; i++ {
		v := 0
		if on {
			if r.phase < period/2 {
				v = amplitude
			} else {
				v = -amplitude
			}
		}

		r.samples = append(r.samples, v)
		r.phase = (r.phase + 1) % period
	}

	if !on {
		r.phase = 0
	}

	return nil
}

// Samples returns the number of samples recorded so far.
func (r *Recorder) Samples() int {
	return len(r.samples)
}

// Close writes the recording to disk.
func (r *Recorder) Close() (rerr error) {
	f, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("wavout: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavout: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, SampleRate, BitDepth, 1, formatPCM)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		Data:           r.samples,
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavout: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavout: %w", err)
	}

	r.logger.Info("Wrote audio", log.String("file", r.filename), log.Int("samples", len(r.samples)))

	return nil
}
