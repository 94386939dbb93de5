//go:build !((linux && cgo) || windows || darwin)

package audio

import (
	"github.com/tessro/crate/internal/config"
	crateerr "github.com/tessro/crate/internal/errors"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio on linux requires cgo for the native sound libraries.
const AudioAvailable = false

// OpenDevice always fails in builds without an audio backend.
func OpenDevice(cfg config.PlaybackConfig) (*Device, error) {
	return nil, crateerr.ErrAudioUnavailable
}

// Close is a no-op in builds without an audio backend.
func (d *Device) Close() error {
	return nil
}
