package core

import "time"

// Player defines the transport and query surface a front end drives.
type Player interface {
	// Playback control
	BuildQueue(catalog *Catalog, start int) error
	Play()
	TogglePlay()
	Next()
	Prev() error

	// State queries
	NowPlaying() *Track
	Elapsed() time.Duration
	DurationLabel() string
	Percentage() int
	State() *PlaybackState
	Queue() *Queue

	// Changes signals (without blocking the sender) whenever the position
	// counter moves.
	Changes() <-chan struct{}
}

// HistoryEntry represents a played track.
type HistoryEntry struct {
	Track    *Track
	PlayedAt time.Time
	Skipped  bool
}
