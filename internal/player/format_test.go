package player

import (
	"testing"
	"time"
)

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		elapsed, total time.Duration
		want           string
	}{
		{125 * time.Second, 605 * time.Second, "02:05 / 10:05"},
		{59900 * time.Millisecond, time.Minute, "00:59 / 01:00"},
		{0, 0, "00:00 / 00:00"},
		{-time.Second, 3 * time.Second, "00:00 / 00:03"},
		{0, 75 * time.Minute, "00:00 / 75:00"},
	}
	for _, tt := range tests {
		if got := FormatLabel(tt.elapsed, tt.total); got != tt.want {
			t.Errorf("FormatLabel(%v, %v) = %q, want %q", tt.elapsed, tt.total, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		elapsed, total time.Duration
		want           int
	}{
		{125 * time.Second, 605 * time.Second, 20},
		{0, 605 * time.Second, 0},
		{10 * time.Second, 0, 0},
		{700 * time.Second, 605 * time.Second, 100},
		{999 * time.Millisecond, time.Second, 99},
		{29 * time.Second, 100 * time.Second, 29},
		{57 * time.Second, 100 * time.Second, 57},
		{time.Second, 3 * time.Second, 33},
	}
	for _, tt := range tests {
		if got := Percent(tt.elapsed, tt.total); got != tt.want {
			t.Errorf("Percent(%v, %v) = %d, want %d", tt.elapsed, tt.total, got, tt.want)
		}
	}
}
