// Package audiotest provides synthetic streams and fixture files for tests.
package audiotest

import (
	"math"
	"os"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// Tone is an in-memory sine stream of a fixed number of samples.
type Tone struct {
	N      int
	Freq   float64
	Rate   beep.SampleRate
	pos    int
	Closed bool
}

// NewTone returns a 440Hz tone of n samples at rate.
func NewTone(n int, rate beep.SampleRate) *Tone {
	return &Tone{N: n, Freq: 440, Rate: rate}
}

// Stream implements beep.Streamer.
func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.N {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.N {
			break
		}
		v := 0.5 * math.Sin(2*math.Pi*t.Freq*float64(t.pos)/float64(t.Rate))
		samples[i] = [2]float64{v, v}
		t.pos++
		n++
	}
	return n, true
}

// Err implements beep.Streamer.
func (t *Tone) Err() error { return nil }

// Len implements beep.StreamSeeker.
func (t *Tone) Len() int { return t.N }

// Position implements beep.StreamSeeker.
func (t *Tone) Position() int { return t.pos }

// Seek implements beep.StreamSeeker.
func (t *Tone) Seek(p int) error {
	t.pos = p
	return nil
}

// Close implements beep.StreamSeekCloser.
func (t *Tone) Close() error {
	t.Closed = true
	return nil
}

// Format returns the stereo format of a stream at rate.
func Format(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
}

// WriteWAV writes a tone of the given length to path as a 16-bit WAV file.
func WriteWAV(t testing.TB, path string, samples int, rate beep.SampleRate) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := wav.Encode(f, NewTone(samples, rate), Format(rate)); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
