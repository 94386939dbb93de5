// Package player implements the playback queue engine: a rotated queue of
// tracks streamed back to back into an output sink, with a position counter
// that follows playback.
package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"

	"github.com/tessro/crate/internal/audio"
	"github.com/tessro/crate/internal/core"
	crateerr "github.com/tessro/crate/internal/errors"
)

// Sink is the output queue the engine feeds. Implementations are safe for
// concurrent use; see audio.Sink.
type Sink interface {
	Append(s beep.Streamer)
	Play()
	Pause()
	IsPaused() bool
	SkipCurrent(expected beep.Streamer) bool
	ClearPending()
	Elapsed() time.Duration
	SampleRate() beep.SampleRate
}

// Opener decodes the audio file at path.
type Opener interface {
	Open(path string) (beep.StreamSeekCloser, beep.Format, error)
}

var _ core.Player = (*Engine)(nil)

// Engine implements core.Player on top of a Sink.
//
// Completion callbacks run on the audio thread while the sink's lock is
// held and take e.mu. The engine therefore never calls into the sink while
// holding e.mu. Transport operations are serialized by e.ctl.
type Engine struct {
	sink           Sink
	opener         Opener
	quality        int
	skipUnplayable bool
	log            zerolog.Logger
	changes        chan struct{}

	ctl sync.Mutex

	mu         sync.Mutex
	queue      []core.Track
	streams    []beep.Streamer // by queue index; nil before the last rebuild point
	pos        int
	nowPlaying *core.Track
	generation uint64
	started    bool
	ended      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithResampleQuality sets the quality used when a track's sample rate
// differs from the sink's. Valid values are 1 to 64.
func WithResampleQuality(q int) Option {
	return func(e *Engine) {
		if q >= 1 && q <= 64 {
			e.quality = q
		}
	}
}

// WithSkipUnplayable drops tracks that fail to open instead of failing the
// whole operation.
func WithSkipUnplayable(skip bool) Option {
	return func(e *Engine) {
		e.skipUnplayable = skip
	}
}

// New creates an idle engine.
func New(sink Sink, opener Opener, opts ...Option) *Engine {
	e := &Engine{
		sink:    sink,
		opener:  opener,
		quality: 4,
		log:     zerolog.Nop(),
		changes: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildQueue replaces the queue with the catalog rotated to start at the
// given index and enqueues every track into the sink. Playback does not
// start until Play.
func (e *Engine) BuildQueue(catalog *core.Catalog, start int) error {
	if catalog.Len() == 0 {
		return crateerr.ErrNoTracks
	}

	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.sink.ClearPending()

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.resetLocked()
	e.mu.Unlock()

	tracks := core.Rotate(catalog.Tracks, start)
	e.log.Debug().Int("start", start).Int("tracks", len(tracks)).Msg("building queue")

	if err := e.enqueue(gen, 0, tracks); err != nil {
		return err
	}
	e.notify()
	return nil
}

// Play starts or resumes playback at the current position.
func (e *Engine) Play() {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.nowPlaying = e.trackLocked()
	e.mu.Unlock()

	e.sink.Play()
	e.notify()
}

// TogglePlay pauses or resumes depending on the sink. Before the first Play
// it behaves like Play.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	empty, started := len(e.queue) == 0, e.started
	e.mu.Unlock()

	switch {
	case empty:
		return
	case !started:
		e.Play()
		return
	}

	e.ctl.Lock()
	if e.sink.IsPaused() {
		e.sink.Play()
	} else {
		e.sink.Pause()
	}
	e.ctl.Unlock()
	e.notify()
}

// Next skips to the following track, reusing the stream already in the
// sink. It is a no-op on the last track.
func (e *Engine) Next() {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.mu.Lock()
	if len(e.queue) == 0 || e.pos >= len(e.queue)-1 {
		e.mu.Unlock()
		return
	}
	current := e.streams[e.pos]
	e.pos++
	e.nowPlaying = e.trackLocked()
	e.mustValid()
	pos := e.pos
	e.mu.Unlock()

	// If current already ran out, its completion has moved the counter to
	// the same place and the sink is on the next stream.
	if !e.sink.SkipCurrent(current) {
		e.log.Debug().Int("position", pos).Msg("next raced track end")
	}
	e.notify()
}

// Prev goes back one track. The sink cannot rewind, so it is cleared and
// refilled from the new position to the end of the queue. It is a no-op
// on the first track.
func (e *Engine) Prev() error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.mu.Lock()
	if len(e.queue) == 0 || e.pos <= 0 {
		e.mu.Unlock()
		return nil
	}
	e.pos--
	e.generation++
	e.ended = false
	e.nowPlaying = e.trackLocked()
	e.mustValid()
	gen, from := e.generation, e.pos
	tracks := append([]core.Track(nil), e.queue[from:]...)
	e.mu.Unlock()

	wasPaused := e.sink.IsPaused()
	e.sink.ClearPending()

	if err := e.enqueue(gen, from, tracks); err != nil {
		return err
	}

	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if started && !wasPaused {
		e.sink.Play()
	}
	e.notify()
	return nil
}

// enqueue opens tracks, resamples each to the sink rate, wraps the result
// in a completion notifier for queue index from+i, and appends them to the
// sink. The queue from index from
// onwards is replaced by the tracks that could be opened. On failure the
// engine returns to idle.
func (e *Engine) enqueue(gen uint64, from int, tracks []core.Track) error {
	type opened struct {
		track  core.Track
		stream beep.StreamSeekCloser
		format beep.Format
	}

	var playable []opened
	for _, t := range tracks {
		s, format, err := e.opener.Open(t.Path)
		if err != nil {
			err = fmt.Errorf("%s: %w: %w", t.Path, crateerr.ErrStreamOpen, err)
			if e.skipUnplayable {
				e.log.Warn().Err(err).Str("title", t.Title).Msg("skipping unplayable track")
				continue
			}
			for _, o := range playable {
				o.stream.Close()
			}
			e.fail(gen)
			return err
		}
		playable = append(playable, opened{track: t, stream: s, format: format})
	}
	if len(playable) == 0 {
		e.fail(gen)
		return crateerr.ErrNoPlayableTracks
	}

	rate := e.sink.SampleRate()
	streams := make([]beep.Streamer, len(playable))

	e.mu.Lock()
	queue := make([]core.Track, from, from+len(playable))
	copy(queue, e.queue[:from])
	all := make([]beep.Streamer, from+len(playable))
	for i, o := range playable {
		idx := from + i
		queue = append(queue, o.track)
		src := audio.Resample(e.quality, o.format.SampleRate, rate, o.stream)
		format := o.format
		format.SampleRate = rate
		streams[i] = audio.Notify(src, format, func() { e.completed(gen, idx) })
		all[idx] = streams[i]
	}
	e.queue = queue
	e.streams = all
	if e.nowPlaying != nil {
		e.nowPlaying = e.trackLocked()
	}
	e.mustValid()
	e.mu.Unlock()

	for _, s := range streams {
		e.sink.Append(s)
	}
	e.log.Debug().Int("from", from).Int("enqueued", len(streams)).Msg("queue enqueued")
	return nil
}

// fail drops the queue after an open error.
func (e *Engine) fail(gen uint64) {
	e.mu.Lock()
	if gen == e.generation {
		e.generation++
		e.resetLocked()
	}
	e.mu.Unlock()
	e.sink.ClearPending()
	e.notify()
}

// completed runs on the audio thread when the stream for queue index i of
// generation gen is exhausted.
func (e *Engine) completed(gen uint64, i int) {
	e.mu.Lock()
	if gen != e.generation || len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}
	last := len(e.queue) - 1
	e.pos = min(max(e.pos, i+1), last)
	if i == last {
		e.ended = true
	}
	e.nowPlaying = e.trackLocked()
	e.mustValid()
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) resetLocked() {
	e.queue = nil
	e.streams = nil
	e.pos = 0
	e.nowPlaying = nil
	e.started = false
	e.ended = false
}

// trackLocked returns a copy of the track at the position counter.
func (e *Engine) trackLocked() *core.Track {
	if len(e.queue) == 0 {
		return nil
	}
	t := e.queue[e.pos]
	return &t
}

// mustValid panics if the position counter has left the queue.
func (e *Engine) mustValid() {
	if len(e.queue) > 0 && (e.pos < 0 || e.pos >= len(e.queue)) {
		panic(fmt.Sprintf("player: position %d outside queue of %d", e.pos, len(e.queue)))
	}
}

// notify signals a change without blocking. Pending signals coalesce.
func (e *Engine) notify() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

// Changes returns a channel that receives a value after state changes.
func (e *Engine) Changes() <-chan struct{} {
	return e.changes
}

// NowPlaying returns the current track, or nil before playback starts.
func (e *Engine) NowPlaying() *core.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.nowPlaying == nil {
		return nil
	}
	t := *e.nowPlaying
	return &t
}

// Position returns the position counter.
func (e *Engine) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

// Elapsed returns how far into the current track playback is.
func (e *Engine) Elapsed() time.Duration {
	if e.NowPlaying() == nil {
		return 0
	}
	return e.sink.Elapsed()
}

// DurationLabel returns "mm:ss / mm:ss" for the current track, or the
// placeholder when nothing is playing.
func (e *Engine) DurationLabel() string {
	t := e.NowPlaying()
	if t == nil {
		return Placeholder
	}
	return FormatLabel(e.sink.Elapsed(), t.Duration)
}

// Percentage returns the progress through the current track, 0 to 100.
func (e *Engine) Percentage() int {
	t := e.NowPlaying()
	if t == nil {
		return 0
	}
	return Percent(e.sink.Elapsed(), t.Duration)
}

// Status returns the transport state.
func (e *Engine) Status() core.Status {
	e.mu.Lock()
	empty, started := len(e.queue) == 0, e.started
	e.mu.Unlock()
	return e.status(empty, started)
}

func (e *Engine) status(empty, started bool) core.Status {
	switch {
	case empty:
		return core.StatusIdle
	case !started:
		return core.StatusLoaded
	case e.sink.IsPaused():
		return core.StatusPaused
	default:
		return core.StatusPlaying
	}
}

// Queue returns a copy of the queue with CurrentIndex at the counter.
func (e *Engine) Queue() *core.Queue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &core.Queue{
		Tracks:       append([]core.Track(nil), e.queue...),
		CurrentIndex: e.pos,
	}
}

// State returns a snapshot for rendering.
func (e *Engine) State() *core.PlaybackState {
	e.mu.Lock()
	var track *core.Track
	if e.nowPlaying != nil {
		t := *e.nowPlaying
		track = &t
	}
	state := &core.PlaybackState{
		Track:    track,
		Position: e.pos,
		QueueLen: len(e.queue),
		Ended:    e.ended,
	}
	empty, started := len(e.queue) == 0, e.started
	e.mu.Unlock()

	state.Status = e.status(empty, started)
	state.IsPlaying = state.Status == core.StatusPlaying && !state.Ended
	if track != nil {
		state.Progress = e.sink.Elapsed()
	}
	return state
}
