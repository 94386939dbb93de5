// Package library builds a track catalog from a directory tree.
package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/tessro/crate/internal/audio"
	"github.com/tessro/crate/internal/core"
	crateerr "github.com/tessro/crate/internal/errors"
)

// Scanner walks a music directory and extracts a track per audio file.
type Scanner struct {
	extensions []string
	strict     bool
	extractor  Extractor
	log        zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions limits the scan to files with these extensions.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.extensions = normalizeExtensions(exts)
		}
	}
}

// WithStrict makes any unreadable file abort the scan.
func WithStrict(strict bool) Option {
	return func(s *Scanner) {
		s.strict = strict
	}
}

// WithExtractor overrides how tracks are read.
func WithExtractor(e Extractor) Option {
	return func(s *Scanner) {
		s.extractor = e
	}
}

// WithLogger sets the logger used for skipped files.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

// NewScanner creates a scanner for the formats the decoder supports.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		extensions: audio.SupportedExtensions(),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = TagExtractor{Log: s.log}
	}
	return s
}

// Scan builds the catalog for root. Unreadable files are logged and
// skipped unless the scanner is strict.
func (s *Scanner) Scan(root string) (*core.Catalog, error) {
	result, err := s.ScanPartial(root)
	if err != nil {
		return nil, err
	}
	for _, e := range result.Errors {
		s.log.Warn().Err(e).Msg("skipping track")
	}
	return result.Data, nil
}

// ScanPartial builds the catalog for root and reports skipped files in the
// result instead of logging them. In strict mode the first unreadable file
// is returned as the error.
func (s *Scanner) ScanPartial(root string) (*crateerr.PartialResult[*core.Catalog], error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, crateerr.ErrLibraryNotFound)
	}

	result := &crateerr.PartialResult[*core.Catalog]{
		Data: &core.Catalog{Root: root},
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			if s.strict {
				return fmt.Errorf("%s: %w: %w", path, crateerr.ErrUnreadableTrack, walkErr)
			}
			result.AddError(fmt.Errorf("%s: %w", path, walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.matches(path) {
			return nil
		}

		track, err := s.extractor.Extract(path)
		if err != nil {
			err = fmt.Errorf("%s: %w: %w", path, crateerr.ErrUnreadableTrack, err)
			if s.strict {
				return err
			}
			result.AddError(err)
			return nil
		}

		result.Data.Tracks = append(result.Data.Tracks, track)
		s.log.Debug().Str("path", path).Str("title", track.Title).Msg("track found")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Scanner) matches(path string) bool {
	return lo.Contains(s.extensions, strings.ToLower(filepath.Ext(path)))
}

func normalizeExtensions(exts []string) []string {
	return lo.Uniq(lo.Map(exts, func(ext string, _ int) string {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	}))
}
