package components

import (
	"strings"
	"testing"
	"time"

	"github.com/tessro/crate/internal/core"
)

func TestLibraryRendersMissingTagsAsDash(t *testing.T) {
	lib := NewLibrary(&core.Catalog{Tracks: []core.Track{
		{Title: "untagged", Path: "/m/untagged.wav", Duration: 185 * time.Second},
	}})

	out := lib.Render(80, 10, true, "")
	if !strings.Contains(out, "untagged") {
		t.Errorf("Render() missing title:\n%s", out)
	}
	if !strings.Contains(out, " - ") {
		t.Errorf("Render() should show \"-\" for missing artist and album:\n%s", out)
	}
	if !strings.Contains(out, "3:05") {
		t.Errorf("Render() missing duration:\n%s", out)
	}
}

func TestLibraryEmptyFilter(t *testing.T) {
	lib := NewLibrary(&core.Catalog{Tracks: []core.Track{{Title: "a"}, {Title: "b"}}})

	lib.SetFilter("zzz")
	if lib.Visible() != 0 || lib.Selected() != -1 {
		t.Errorf("Visible() = %d, Selected() = %d, want 0, -1", lib.Visible(), lib.Selected())
	}

	lib.Down()
	lib.Up()
	if lib.Selected() != -1 {
		t.Error("cursor moved in an empty list")
	}
}

func TestNowPlayingPlaceholder(t *testing.T) {
	np := NewNowPlaying()

	out := np.Render(&core.PlaybackState{Status: core.StatusLoaded, QueueLen: 3}, 60, 12, false)
	if !strings.Contains(out, "--:--/--:--") {
		t.Errorf("Render() before playback should show the placeholder:\n%s", out)
	}

	out = np.Render(&core.PlaybackState{
		Track:     &core.Track{Title: "Song", Duration: 605 * time.Second},
		Status:    core.StatusPlaying,
		IsPlaying: true,
		Progress:  125 * time.Second,
		QueueLen:  3,
	}, 60, 14, false)
	if !strings.Contains(out, "02:05 / 10:05") || !strings.Contains(out, "20%") {
		t.Errorf("Render() missing progress label:\n%s", out)
	}
}
