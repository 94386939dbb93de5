package library

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog"

	"github.com/tessro/crate/internal/audio"
	"github.com/tessro/crate/internal/core"
)

// Extractor produces a track descriptor for an audio file.
type Extractor interface {
	Extract(path string) (core.Track, error)
}

// TagExtractor reads ID3/Vorbis/FLAC tags for title, artist and album and
// decodes the stream header for the duration. Missing tags are not an
// error; the title then falls back to the file name.
type TagExtractor struct {
	Log zerolog.Logger
}

// Extract implements Extractor.
func (e TagExtractor) Extract(path string) (core.Track, error) {
	track := core.Track{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return track, err
	}
	m, err := tag.ReadFrom(f)
	f.Close()
	switch {
	case err == nil:
		track.Title = strings.TrimSpace(m.Title())
		track.Artist = strings.TrimSpace(m.Artist())
		track.Album = strings.TrimSpace(m.Album())
	case errors.Is(err, tag.ErrNoTagsFound):
		// untagged files are common (wav)
	default:
		e.Log.Debug().Err(err).Str("path", path).Msg("tag read failed")
	}

	d, _, err := audio.Probe(path)
	if err != nil {
		return track, fmt.Errorf("read duration: %w", err)
	}
	track.Duration = d

	if track.Title == "" {
		track.Title = core.TitleFromPath(path)
	}
	return track, nil
}
