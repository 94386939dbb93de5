//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/tessro/crate/internal/config"
	crateerr "github.com/tessro/crate/internal/errors"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// speakerLock adapts the speaker's global lock to sync.Locker.
type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// OpenDevice initializes the speaker and starts pulling from a new sink.
func OpenDevice(cfg config.PlaybackConfig) (*Device, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(bufferDuration(cfg.BufferMS))); err != nil {
		return nil, fmt.Errorf("%w: %v", crateerr.ErrAudioDevice, err)
	}

	sink := NewSink(rate, speakerLock{})
	speaker.Play(sink)
	return &Device{sink: sink}, nil
}

// Close stops output and releases the audio device.
func (d *Device) Close() error {
	d.sink.ClearPending()
	speaker.Clear()
	speaker.Close()
	return nil
}
