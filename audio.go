package main

import (
	"github.com/veandco/go-sdl2/sdl"
)

const (
	/// Sample rate of the audio device.
	///
	sampleRate = 22050

	/// Frequency of the beep.
	///
	toneFrequency = 440

	/// Frames of audio to keep queued ahead of playback.
	///
	queueFrames = 3
)

/// Audio plays the CHIP-8 beeper through SDL. It implements runner.Sink.
///
type Audio struct {
	id      sdl.AudioDeviceID
	spec    sdl.AudioSpec
	tone    []uint8
	silence []uint8
}

/// OpenAudio opens the default output device.
///
func OpenAudio() (*Audio, error) {
	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	aud := &Audio{}

	var err error
	if aud.id, err = sdl.OpenAudioDevice("", false, spec, &aud.spec, 0); err != nil {
		return nil, err
	}

	// one 60 Hz frame of square wave and of silence
	n := int(aud.spec.Freq) / 60
	period := int(aud.spec.Freq) / toneFrequency
	if period < 2 {
		period = 2
	}

	aud.tone = make([]uint8, n)
	aud.silence = make([]uint8, n)

	for i := range aud.tone {
		aud.silence[i] = aud.spec.Silence

		if i%period < period/2 {
			aud.tone[i] = aud.spec.Silence + 32
		} else {
			aud.tone[i] = aud.spec.Silence - 32
		}
	}

	// start playing immediately
	sdl.PauseAudioDevice(aud.id, false)

	return aud, nil
}

/// Beep queues the next frame of audio.
///
func (aud *Audio) Beep(on bool) error {
	if sdl.GetQueuedAudioSize(aud.id) > uint32(queueFrames*len(aud.tone)) {
		return nil
	}

	if on {
		return sdl.QueueAudio(aud.id, aud.tone)
	}
	return sdl.QueueAudio(aud.id, aud.silence)
}

/// Close the audio device.
///
func (aud *Audio) Close() {
	sdl.CloseAudioDevice(aud.id)
}
