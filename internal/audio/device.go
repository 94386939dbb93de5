package audio

import "time"

// Device is the process-wide audio output. Its sink is what the player
// engine appends streams to.
type Device struct {
	sink *Sink
}

// Sink returns the output queue attached to the device.
func (d *Device) Sink() *Sink {
	return d.sink
}

func bufferDuration(ms int) time.Duration {
	if ms <= 0 {
		ms = 100
	}
	return time.Duration(ms) * time.Millisecond
}
