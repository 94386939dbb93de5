package core

import "time"

// Status is the transport state of the playback engine.
type Status int

const (
	StatusIdle   Status = iota // no queue built
	StatusLoaded               // queue built, playback not started
	StatusPlaying
	StatusPaused
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoaded:
		return "loaded"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is a point-in-time snapshot of the engine, safe to render
// without further synchronization.
type PlaybackState struct {
	Track     *Track        `json:"track"`
	Status    Status        `json:"status"`
	IsPlaying bool          `json:"is_playing"`
	Progress  time.Duration `json:"progress"`
	Position  int           `json:"position"`
	QueueLen  int           `json:"queue_len"`
	Ended     bool          `json:"ended"`
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Track == nil || s.Track.Duration == 0 {
		return 0
	}
	p := float64(s.Progress) / float64(s.Track.Duration) * 100
	if p > 100 {
		return 100
	}
	return p
}
