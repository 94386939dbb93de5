package player

import (
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/crate/internal/audio"
	"github.com/tessro/crate/internal/audio/audiotest"
	"github.com/tessro/crate/internal/core"
	crateerr "github.com/tessro/crate/internal/errors"
)

const testRate = beep.SampleRate(1000)

// fakeOpener serves tones whose length in samples is set per path.
type fakeOpener struct {
	mu      sync.Mutex
	lengths map[string]int
	fail    map[string]bool
	opened  []string
	tones   []*audiotest.Tone
}

func (o *fakeOpener) Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail[path] {
		return nil, beep.Format{}, errors.New("no such file")
	}
	o.opened = append(o.opened, path)
	tone := audiotest.NewTone(o.lengths[path], testRate)
	o.tones = append(o.tones, tone)
	return tone, audiotest.Format(testRate), nil
}

func (o *fakeOpener) reset() {
	o.mu.Lock()
	o.opened = nil
	o.mu.Unlock()
}

type harness struct {
	lock   *sync.Mutex
	sink   *audio.Sink
	opener *fakeOpener
	engine *Engine
	cat    *core.Catalog
}

// newHarness builds a catalog of tracks whose stream lengths in samples
// are given by lengths. Track i is named "track<i>".
func newHarness(t *testing.T, lengths []int, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		lock:   &sync.Mutex{},
		opener: &fakeOpener{lengths: map[string]int{}, fail: map[string]bool{}},
		cat:    &core.Catalog{Root: "/music"},
	}
	h.sink = audio.NewSink(testRate, h.lock)
	for i, n := range lengths {
		path := fmt.Sprintf("/music/track%d.wav", i)
		h.opener.lengths[path] = n
		h.cat.Tracks = append(h.cat.Tracks, core.Track{
			Title:    fmt.Sprintf("track%d", i),
			Path:     path,
			Duration: time.Duration(30+10*i) * time.Second,
		})
	}
	h.engine = New(h.sink, h.opener, opts...)
	return h
}

// pull renders n samples the way the speaker does.
func (h *harness) pull(n int) {
	buf := make([][2]float64, n)
	h.lock.Lock()
	h.sink.Stream(buf)
	h.lock.Unlock()
}

func (h *harness) openedTitles() []string {
	h.opener.mu.Lock()
	defer h.opener.mu.Unlock()
	var out []string
	for _, p := range h.opener.opened {
		out = append(out, core.TitleFromPath(p))
	}
	return out
}

func title(t *core.Track) string {
	if t == nil {
		return "<nil>"
	}
	return t.Title
}

func assertConsistent(t *testing.T, e *Engine) {
	t.Helper()
	q := e.Queue()
	require.False(t, q.IsEmpty())
	pos := e.Position()
	require.GreaterOrEqual(t, pos, 0)
	require.Less(t, pos, q.Len())
	if np := e.NowPlaying(); np != nil {
		assert.Equal(t, q.Tracks[pos], *np)
	}
}

func TestIdleEngine(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	assert.Nil(t, e.NowPlaying())
	assert.Equal(t, Placeholder, e.DurationLabel())
	assert.Equal(t, 0, e.Percentage())
	assert.Equal(t, core.StatusIdle, e.Status())
	assert.Equal(t, time.Duration(0), e.Elapsed())

	// Transport on an empty engine does nothing.
	e.Play()
	e.TogglePlay()
	e.Next()
	require.NoError(t, e.Prev())
	assert.Equal(t, core.StatusIdle, e.Status())

	assert.ErrorIs(t, e.BuildQueue(h.cat, 0), crateerr.ErrNoTracks)
	assert.ErrorIs(t, e.BuildQueue(nil, 0), crateerr.ErrNoTracks)
}

func TestBuildQueueRotates(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50, 60})
	e := h.engine

	require.NoError(t, e.BuildQueue(h.cat, 2))

	q := e.Queue()
	require.Equal(t, 4, q.Len())
	for i := range q.Tracks {
		assert.Equal(t, h.cat.Tracks[(2+i)%4], q.Tracks[i])
	}
	assert.Equal(t, []string{"track2", "track3", "track0", "track1"}, h.openedTitles())
	assert.Equal(t, 4, h.sink.Pending())
	assert.Equal(t, core.StatusLoaded, e.Status())
	assert.Nil(t, e.NowPlaying(), "nothing plays until Play")
	assert.True(t, h.sink.IsPaused())
}

func TestRebuildReplacesQueue(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine

	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()
	h.pull(10)
	e.Next()

	require.NoError(t, e.BuildQueue(h.cat, 2))
	assert.Equal(t, 0, e.Position())
	assert.Equal(t, 3, h.sink.Pending())
	assert.Equal(t, core.StatusLoaded, e.Status())
	assert.Nil(t, e.NowPlaying())
	for _, tone := range h.opener.tones[:3] {
		assert.True(t, tone.Closed, "streams from the old queue are released")
	}
}

func TestPlayAndToggle(t *testing.T) {
	h := newHarness(t, []int{30, 40})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))

	// Toggle before play starts playback.
	e.TogglePlay()
	assert.Equal(t, core.StatusPlaying, e.Status())
	assert.Equal(t, "track0", title(e.NowPlaying()))

	e.TogglePlay()
	assert.Equal(t, core.StatusPaused, e.Status())
	assert.True(t, h.sink.IsPaused())

	e.TogglePlay()
	assert.Equal(t, core.StatusPlaying, e.Status())

	state := e.State()
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 2, state.QueueLen)
	assert.Equal(t, "track0", title(state.Track))
}

func TestNextReusesEnqueuedStreams(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()
	h.pull(10)
	h.opener.reset()

	e.Next()
	assert.Equal(t, 1, e.Position())
	assert.Equal(t, "track1", title(e.NowPlaying()))
	assert.Equal(t, 2, h.sink.Pending())
	assert.True(t, h.opener.tones[0].Closed)
	assert.Empty(t, h.openedTitles(), "next must not re-decode")
	assertConsistent(t, e)

	e.Next()
	e.Next() // at the last track: no-op
	assert.Equal(t, 2, e.Position())
	assert.Equal(t, 1, h.sink.Pending())
	assert.Equal(t, "track2", title(e.NowPlaying()))
}

func TestPrevReenqueuesFromPosition(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()

	require.NoError(t, e.Prev()) // at the first track: no-op
	assert.Equal(t, 0, e.Position())
	assert.Equal(t, 3, h.sink.Pending())

	e.Next()
	e.Next()
	h.opener.reset()

	require.NoError(t, e.Prev())
	assert.Equal(t, 1, e.Position())
	assert.Equal(t, "track1", title(e.NowPlaying()))
	assert.Equal(t, []string{"track1", "track2"}, h.openedTitles())
	assert.Equal(t, 2, h.sink.Pending())
	assert.Equal(t, core.StatusPlaying, e.Status())
	assertConsistent(t, e)
}

func TestPrevKeepsPause(t *testing.T) {
	h := newHarness(t, []int{30, 40})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()
	e.Next()
	e.TogglePlay()
	require.Equal(t, core.StatusPaused, e.Status())

	require.NoError(t, e.Prev())
	assert.Equal(t, core.StatusPaused, e.Status())
}

func TestCompletionAdvancesOncePerTrack(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()

	seen := []int{e.Position()}
	for i := 0; i < 40 && h.sink.Pending() > 0; i++ {
		h.pull(7)
		if p := e.Position(); p != seen[len(seen)-1] {
			seen = append(seen, p)
		}
		assertConsistent(t, e)
	}

	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, 2, e.Position())
	state := e.State()
	assert.True(t, state.Ended)
	assert.False(t, state.IsPlaying)

	// Pulling past the end changes nothing.
	h.pull(100)
	assert.Equal(t, 2, e.Position())
}

func TestCompletionAfterNextDoesNotDoubleAdvance(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()

	e.Next()
	require.Equal(t, 1, e.Position())

	// track1 runs out on its own: the counter moves to 2, not 3.
	h.pull(41)
	assert.Equal(t, 2, e.Position())
	assert.Equal(t, "track2", title(e.NowPlaying()))
}

func TestStaleCompletionIgnored(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()
	e.Next()

	e.mu.Lock()
	stale := e.generation
	e.mu.Unlock()

	require.NoError(t, e.Prev())
	e.completed(stale, 0)
	assert.Equal(t, 0, e.Position())
}

func TestCounterBoundsUnderRandomTransport(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50, 60, 70})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 3))
	e.Play()

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		switch r.Intn(4) {
		case 0, 1:
			e.Next()
		case 2:
			require.NoError(t, e.Prev())
		case 3:
			h.pull(r.Intn(20) + 1)
		}
		assertConsistent(t, e)
	}
}

func TestEndToEndScenario(t *testing.T) {
	// Durations 30s, 40s, 50s; streams are 30, 40 and 50 samples long.
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine

	require.NoError(t, e.BuildQueue(h.cat, 1))
	q := e.Queue()
	assert.Equal(t, []core.Track{h.cat.Tracks[1], h.cat.Tracks[2], h.cat.Tracks[0]}, q.Tracks)

	e.Play()
	assert.Equal(t, "track1", title(e.NowPlaying()))

	// Let track1 run to the end.
	h.pull(41)
	assert.Equal(t, 1, e.Position())
	assert.Equal(t, "track2", title(e.NowPlaying()))

	h.opener.reset()
	require.NoError(t, e.Prev())
	assert.Equal(t, 0, e.Position())
	assert.Equal(t, "track1", title(e.NowPlaying()))
	assert.Equal(t, []string{"track1", "track2", "track0"}, h.openedTitles())
	assert.Equal(t, 3, h.sink.Pending())
}

func TestDurationLabelAndPercentage(t *testing.T) {
	h := newHarness(t, []int{2000})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	assert.Equal(t, Placeholder, e.DurationLabel())

	e.Play()
	h.pull(1500) // 1.5s at 1000Hz
	assert.Equal(t, 1500*time.Millisecond, e.Elapsed())
	assert.Equal(t, "00:01 / 00:30", e.DurationLabel())
	assert.Equal(t, 5, e.Percentage())
}

func TestOpenFailureReturnsToIdle(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	h.opener.fail["/music/track2.wav"] = true
	e := h.engine

	err := e.BuildQueue(h.cat, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, crateerr.ErrStreamOpen)
	assert.Contains(t, err.Error(), "track2.wav")
	assert.Equal(t, core.StatusIdle, e.Status())
	assert.Equal(t, 0, h.sink.Pending())
	for _, tone := range h.opener.tones {
		assert.True(t, tone.Closed)
	}
}

func TestSkipUnplayable(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50}, WithSkipUnplayable(true))
	h.opener.fail["/music/track1.wav"] = true
	e := h.engine

	require.NoError(t, e.BuildQueue(h.cat, 0))
	q := e.Queue()
	assert.Equal(t, []core.Track{h.cat.Tracks[0], h.cat.Tracks[2]}, q.Tracks)

	e.Play()
	h.pull(31)
	assert.Equal(t, "track2", title(e.NowPlaying()))

	for _, tr := range h.cat.Tracks {
		h.opener.fail[tr.Path] = true
	}
	assert.ErrorIs(t, e.BuildQueue(h.cat, 0), crateerr.ErrNoPlayableTracks)
	assert.Equal(t, core.StatusIdle, e.Status())
}

func TestChangesCoalesce(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()
	e.Next()
	e.Next()

	select {
	case <-e.Changes():
	default:
		t.Fatal("expected a pending change")
	}
	select {
	case <-e.Changes():
		t.Fatal("changes should coalesce into one pending signal")
	default:
	}
}

func TestResampledTracksComplete(t *testing.T) {
	h := newHarness(t, []int{100, 100}, WithResampleQuality(1))
	// Decode at half the sink rate.
	h.sink = audio.NewSink(testRate*2, h.lock)
	h.engine = New(h.sink, h.opener, WithResampleQuality(1))
	e := h.engine

	require.NoError(t, e.BuildQueue(h.cat, 0))
	e.Play()
	for i := 0; i < 50 && e.Position() == 0; i++ {
		h.pull(20)
	}
	assert.Equal(t, 1, e.Position())
}

func TestResampledWAVQueueFollowsPlayback(t *testing.T) {
	dir := t.TempDir()
	cat := &core.Catalog{Root: dir}
	for i := range 3 {
		path := filepath.Join(dir, fmt.Sprintf("track%d.wav", i))
		audiotest.WriteWAV(t, path, 4800, beep.SampleRate(48000))
		cat.Tracks = append(cat.Tracks, core.Track{
			Title:    fmt.Sprintf("track%d", i),
			Path:     path,
			Duration: 100 * time.Millisecond,
		})
	}

	lock := &sync.Mutex{}
	sink := audio.NewSink(beep.SampleRate(44100), lock)
	e := New(sink, audio.FileOpener{})
	pull := func() {
		lock.Lock()
		sink.Stream(make([][2]float64, 512))
		lock.Unlock()
	}

	require.NoError(t, e.BuildQueue(cat, 0))
	e.Play()

	for i := 0; i < 20 && e.Position() == 0; i++ {
		pull()
	}
	require.Equal(t, 1, e.Position(), "the first track ran to its end")
	assert.Equal(t, "track1", title(e.NowPlaying()))
	assert.Equal(t, 2, sink.Pending())

	e.Next()
	assert.Equal(t, 2, e.Position())
	assert.Equal(t, 1, sink.Pending(), "next must drop the stream being played")

	for i := 0; i < 20 && !e.State().Ended; i++ {
		pull()
	}
	state := e.State()
	assert.True(t, state.Ended)
	assert.Equal(t, 2, state.Position)
	assert.Equal(t, 0, sink.Pending())
}

func TestTransportRacesPlayback(t *testing.T) {
	h := newHarness(t, []int{30, 40, 50, 60, 70})
	e := h.engine
	require.NoError(t, e.BuildQueue(h.cat, 2))
	e.Play()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				h.pull(7)
			}
		}
	}()

	r := rand.New(rand.NewSource(7))
	for range 500 {
		switch r.Intn(5) {
		case 0, 1:
			e.Next()
		case 2:
			require.NoError(t, e.Prev())
		case 3:
			e.TogglePlay()
		}

		// Only this goroutine changes the queue contents, so a Queue read
		// after the snapshot still matches it.
		s := e.State()
		q := e.Queue()
		require.GreaterOrEqual(t, s.Position, 0)
		require.Less(t, s.Position, s.QueueLen)
		require.Equal(t, q.Len(), s.QueueLen)
		if s.Track != nil {
			require.Equal(t, q.Tracks[s.Position], *s.Track)
		}
	}
	close(stop)
	wg.Wait()

	// Every remaining completion still lands.
	if e.Status() == core.StatusPaused {
		e.TogglePlay()
	}
	h.pull(300)
	s := e.State()
	assert.True(t, s.Ended)
	assert.Equal(t, s.QueueLen-1, s.Position)
	assert.Equal(t, 0, h.sink.Pending())
}
