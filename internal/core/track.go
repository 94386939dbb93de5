package core

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// Track describes a single audio file in the library.
type Track struct {
	Title    string        `json:"title"`
	Artist   string        `json:"artist,omitempty"`
	Album    string        `json:"album,omitempty"`
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
}

// TitleFromPath returns the file name of path without its extension.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Catalog is the ordered, immutable list of tracks discovered in a library.
type Catalog struct {
	Root   string  `json:"root"`
	Tracks []Track `json:"tracks"`
}

// Len returns the number of tracks in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Tracks)
}

// At returns the track at index i, or nil when i is out of range.
func (c *Catalog) At(i int) *Track {
	if c == nil || i < 0 || i >= len(c.Tracks) {
		return nil
	}
	t := c.Tracks[i]
	return &t
}

// TotalDuration sums the duration of every track.
func (c *Catalog) TotalDuration() time.Duration {
	var total time.Duration
	if c == nil {
		return total
	}
	for _, t := range c.Tracks {
		total += t.Duration
	}
	return total
}

// Fingerprint returns a stable hash of the catalog contents. Two scans of an
// unchanged library produce the same fingerprint.
func (c *Catalog) Fingerprint() (uint64, error) {
	if c == nil {
		return 0, nil
	}
	return hashstructure.Hash(c.Tracks, hashstructure.FormatV2, nil)
}
