package audio

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
)

var (
	_ beep.Streamer = (*Notifier)(nil)
	_ io.Closer     = (*Notifier)(nil)
)

// Notifier wraps the stream the sink pulls from and invokes a callback
// exactly once, the first time that stream reports exhaustion. Samples pass
// through unchanged.
//
// It must be the outermost layer. Wrappers such as beep.Resample stop
// pulling their source after a short read, so a Notifier beneath one would
// never see the end.
type Notifier struct {
	s      beep.Streamer
	format beep.Format
	fn     func()
	done   atomic.Bool
}

// Notify wraps s, whose samples are in format, so that fn runs when s is
// exhausted. fn may be nil.
func Notify(s beep.Streamer, format beep.Format, fn func()) *Notifier {
	return &Notifier{s: s, format: format, fn: fn}
}

// Stream implements beep.Streamer.
func (n *Notifier) Stream(samples [][2]float64) (int, bool) {
	if n.done.Load() {
		return 0, false
	}
	k, ok := n.s.Stream(samples)
	if !ok {
		n.fire()
	}
	return k, ok
}

func (n *Notifier) fire() {
	if n.done.Swap(true) {
		return
	}
	if n.fn != nil {
		n.fn()
	}
}

// Done reports whether the stream has been exhausted.
func (n *Notifier) Done() bool {
	return n.done.Load()
}

// Err implements beep.Streamer.
func (n *Notifier) Err() error { return n.s.Err() }

// Len returns the total number of samples of the wrapped stream, or 0 when
// it does not know its length.
func (n *Notifier) Len() int {
	if l, ok := n.s.(interface{ Len() int }); ok {
		return l.Len()
	}
	return 0
}

// Format returns the sample rate and channel layout of the wrapped stream.
func (n *Notifier) Format() beep.Format { return n.format }

// Duration returns the total length of the wrapped stream.
func (n *Notifier) Duration() time.Duration {
	return n.format.SampleRate.D(n.Len())
}

// Close releases the wrapped stream without firing the callback.
func (n *Notifier) Close() error {
	if c, ok := n.s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// resampled lets a resampled stream be closed by the sink and still report
// its length.
type resampled struct {
	beep.Streamer
	src      beep.StreamSeekCloser
	from, to beep.SampleRate
}

func (r *resampled) Close() error { return r.src.Close() }

// Len returns the length of the source in samples at the target rate.
func (r *resampled) Len() int {
	return r.to.N(r.from.D(r.src.Len()))
}

// Resample converts s from one rate to another. When the rates already
// match s is returned as is. The result always closes s.
func Resample(quality int, from, to beep.SampleRate, s beep.StreamSeekCloser) beep.Streamer {
	if from == to {
		return s
	}
	return &resampled{
		Streamer: beep.Resample(quality, from, to, s),
		src:      s,
		from:     from,
		to:       to,
	}
}
