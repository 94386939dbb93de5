package tail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/crate/internal/core"
)

var (
	song1 = &core.Track{Title: "One", Artist: "Band", Path: "/m/1.mp3", Duration: 3 * time.Minute}
	song2 = &core.Track{Title: "Two", Path: "/m/2.mp3", Duration: 2 * time.Minute}
)

func state(t *core.Track, pos int, progress time.Duration, playing bool) *core.PlaybackState {
	return &core.PlaybackState{
		Track:     t,
		Position:  pos,
		Progress:  progress,
		IsPlaying: playing,
		QueueLen:  2,
	}
}

func types(events []Event) []EventType {
	var out []EventType
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestDiffStates(t *testing.T) {
	interval := 500 * time.Millisecond
	ended := state(song2, 1, 2*time.Minute, false)
	ended.Ended = true

	tests := []struct {
		name       string
		prev, curr *core.PlaybackState
		want       []EventType
	}{
		{"first poll", nil, state(song1, 0, 0, true), []EventType{EventTrackChange}},
		{"first poll idle", nil, &core.PlaybackState{}, nil},
		{"no change", state(song1, 0, time.Second, true), state(song1, 0, 2*time.Second, true), nil},
		{"pause", state(song1, 0, time.Second, true), state(song1, 0, time.Second, false), []EventType{EventPause}},
		{"resume", state(song1, 0, time.Second, false), state(song1, 0, time.Second, true), []EventType{EventResume}},
		{
			"natural advance",
			state(song1, 0, 3*time.Minute-300*time.Millisecond, true),
			state(song2, 1, 0, true),
			[]EventType{EventTrackComplete, EventTrackChange},
		},
		{
			"skip",
			state(song1, 0, 10*time.Second, true),
			state(song2, 1, 0, true),
			[]EventType{EventTrackSkip, EventTrackChange},
		},
		{
			"back",
			state(song2, 1, 10*time.Second, true),
			state(song1, 0, 0, true),
			[]EventType{EventTrackChange},
		},
		{
			"queue end",
			state(song2, 1, 2*time.Minute-100*time.Millisecond, true),
			ended,
			[]EventType{EventTrackComplete, EventQueueEnd},
		},
		{"loaded to playing", &core.PlaybackState{QueueLen: 2}, state(song1, 0, 0, true), []EventType{EventTrackChange}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types(Diff(tt.prev, tt.curr, interval)))
		})
	}
}

func TestFormatterLine(t *testing.T) {
	f := NewFormatter(WithEmoji(false))

	e := Event{Type: EventTrackChange, Current: state(song1, 0, 0, true)}
	assert.Equal(t, "Now playing: Band - One", f.Format(e))

	e = Event{Type: EventTrackSkip, Previous: state(song2, 1, 0, true), Current: state(song1, 0, 0, true)}
	assert.Equal(t, "Skipped: Two", f.Format(e))

	e = Event{Type: EventQueueEnd, Current: state(song2, 1, 0, false)}
	assert.Equal(t, "End of queue (2 tracks)", f.Format(e))

	ts := time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)
	f = NewFormatter(WithTimestamp(true))
	got := f.Format(Event{Type: EventPause, Timestamp: ts})
	assert.Equal(t, "13:04:05 ⏸️ Paused", got)
}

func TestFormatterTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}} {{.Position}}/{{.QueueLen}} {{.Title}} [{{.Duration}}]"))
	got := f.Format(Event{Type: EventTrackChange, Current: state(song1, 0, 0, true)})
	assert.Equal(t, "track_change 1/2 One [3m0s]", got)

	// A broken template is ignored.
	f = NewFormatter(WithTemplate("{{.Nope"), WithEmoji(false))
	assert.Equal(t, "Resumed", f.Format(Event{Type: EventResume}))

	_, err := ParseTemplate("{{.Nope")
	assert.Error(t, err)
}

// scriptedPlayer replays a fixed sequence of states.
type scriptedPlayer struct {
	core.Player
	states  []*core.PlaybackState
	i       int
	changes chan struct{}
}

func (p *scriptedPlayer) State() *core.PlaybackState {
	s := p.states[min(p.i, len(p.states)-1)]
	p.i++
	return s
}

func (p *scriptedPlayer) Changes() <-chan struct{} { return p.changes }

func TestWatcherEmitsEvents(t *testing.T) {
	p := &scriptedPlayer{
		states: []*core.PlaybackState{
			state(song1, 0, 0, true),
			state(song1, 0, 0, false),
		},
		changes: make(chan struct{}),
	}
	w := NewWatcher(p, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	var got []string
	for e := range w.Events() {
		got = append(got, eventTypeName(e.Type))
		if len(got) == 2 {
			w.Stop()
		}
	}
	assert.Equal(t, []string{"track_change", "pause"}, got)
}

func TestEventNames(t *testing.T) {
	for typ := EventTrackChange; typ <= EventQueueEnd; typ++ {
		require.NotEqual(t, "unknown", eventTypeName(typ))
		require.False(t, strings.Contains(eventEmoji(typ), "❓"))
	}
}
