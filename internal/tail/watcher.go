// Package tail reports playback events as they happen, for running the
// player without a terminal UI.
package tail

import (
	"context"
	"time"

	"github.com/tessro/crate/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventQueueEnd
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
}

// Watcher polls a player for state changes and emits events. It also
// wakes on the player's change signal so track boundaries are reported
// without waiting for the next tick.
type Watcher struct {
	player   core.Player
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(player core.Player, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		player:   player,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling for state changes. It blocks until ctx is done or
// Stop is called, and closes the events channel on return.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	prev := w.player.State()
	if prev.HasTrack() {
		w.emit(Diff(nil, prev, w.interval))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
		case <-w.player.Changes():
		}

		curr := w.player.State()
		w.emit(Diff(prev, curr, w.interval))
		prev = curr
	}
}

func (w *Watcher) emit(events []Event) {
	for _, e := range events {
		select {
		case w.events <- e:
		default:
			// Drop event if channel is full
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// Diff compares two states and returns detected events. interval is
// the polling period, used to tell a finished track from a skipped one.
func Diff(prev, curr *core.PlaybackState, interval time.Duration) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First poll - no previous state
	if prev == nil {
		if curr.HasTrack() {
			add(EventTrackChange)
		}
		return events
	}

	if trackChanged(prev, curr) {
		// Moving forward means the previous track either finished or was
		// skipped; moving back is just a change.
		if prev.HasTrack() && curr.HasTrack() && curr.Position > prev.Position {
			if wasCompleted(prev, interval) {
				add(EventTrackComplete)
			} else {
				add(EventTrackSkip)
			}
		}
		if curr.HasTrack() {
			add(EventTrackChange)
		}
	}

	if !prev.Ended && curr.Ended {
		if !trackChanged(prev, curr) {
			add(EventTrackComplete)
		}
		add(EventQueueEnd)
		return events
	}

	// Pause/Resume detection
	if prev.IsPlaying && !curr.IsPlaying && !curr.Ended {
		add(EventPause)
	} else if !prev.IsPlaying && curr.IsPlaying && prev.HasTrack() {
		add(EventResume)
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *core.PlaybackState) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Position != curr.Position || prev.Track.Path != curr.Track.Path
}

// wasCompleted returns true if the track likely ran to its end: the last
// observed progress was within two polls of the duration.
func wasCompleted(state *core.PlaybackState, interval time.Duration) bool {
	if state.Track == nil || state.Track.Duration == 0 {
		return false
	}
	return state.Track.Duration-state.Progress <= 2*interval
}
