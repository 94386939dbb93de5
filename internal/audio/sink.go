package audio

import (
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

var _ beep.Streamer = (*Sink)(nil)

// Sink is the output queue the speaker pulls from. Streams are played in
// the order they were appended; when one is exhausted the next continues
// inside the same buffer, so there is no gap between tracks. A paused or
// empty sink produces silence.
//
// Stream is called with lock held by the caller. Every other method
// acquires lock itself.
type Sink struct {
	lock    sync.Locker
	rate    beep.SampleRate
	streams []beep.Streamer
	paused  bool
	played  int
}

// NewSink creates a paused, empty sink producing audio at rate.
func NewSink(rate beep.SampleRate, lock sync.Locker) *Sink {
	return &Sink{
		lock:   lock,
		rate:   rate,
		paused: true,
	}
}

// Stream implements beep.Streamer. It always fills the whole buffer.
func (s *Sink) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	if !s.paused {
		for filled < len(samples) && len(s.streams) > 0 {
			k, ok := s.streams[0].Stream(samples[filled:])
			filled += k
			s.played += k
			if !ok {
				s.pop()
				continue
			}
			if k == 0 {
				break
			}
		}
	}
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (s *Sink) Err() error { return nil }

// pop drops the head stream. Callers hold the lock.
func (s *Sink) pop() {
	closeStream(s.streams[0])
	s.streams[0] = nil
	s.streams = s.streams[1:]
	s.played = 0
}

// Append adds a stream to the end of the queue.
func (s *Sink) Append(st beep.Streamer) {
	s.lock.Lock()
	s.streams = append(s.streams, st)
	s.lock.Unlock()
}

// Play resumes output.
func (s *Sink) Play() {
	s.lock.Lock()
	s.paused = false
	s.lock.Unlock()
}

// Pause silences output without discarding anything.
func (s *Sink) Pause() {
	s.lock.Lock()
	s.paused = true
	s.lock.Unlock()
}

// IsPaused reports whether output is paused.
func (s *Sink) IsPaused() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.paused
}

// SkipCurrent abandons the stream being played, provided it is expected.
// A nil expected stream skips whatever is playing. It reports whether a
// stream was skipped; false means expected already finished on its own.
func (s *Sink) SkipCurrent(expected beep.Streamer) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.streams) == 0 {
		return false
	}
	if expected != nil && s.streams[0] != expected {
		return false
	}
	s.pop()
	return true
}

// ClearPending discards every queued stream and pauses output.
func (s *Sink) ClearPending() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, st := range s.streams {
		closeStream(st)
	}
	s.streams = nil
	s.played = 0
	s.paused = true
}

// Elapsed returns how much of the current stream has been played.
func (s *Sink) Elapsed() time.Duration {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.streams) == 0 {
		return 0
	}
	return s.rate.D(s.played)
}

// SampleRate returns the rate streams must be appended at.
func (s *Sink) SampleRate() beep.SampleRate { return s.rate }

// Pending returns the number of queued streams, including the current one.
func (s *Sink) Pending() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.streams)
}

func closeStream(st beep.Streamer) {
	if c, ok := st.(io.Closer); ok {
		_ = c.Close()
	}
}
