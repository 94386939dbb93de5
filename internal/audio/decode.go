package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/samber/lo"

	crateerr "github.com/tessro/crate/internal/errors"
)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".flac": decodeFLAC,
	".mp3":  decodeMP3,
	".ogg":  decodeVorbis,
	".wav":  decodeWAV,
}

func decodeMP3(f *os.File) (beep.StreamSeekCloser, beep.Format, error)    { return mp3.Decode(f) }
func decodeWAV(f *os.File) (beep.StreamSeekCloser, beep.Format, error)    { return wav.Decode(f) }
func decodeFLAC(f *os.File) (beep.StreamSeekCloser, beep.Format, error)   { return flac.Decode(f) }
func decodeVorbis(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }

// SupportedExtensions returns the lowercase file extensions Decode accepts.
func SupportedExtensions() []string {
	exts := lo.Keys(decoders)
	slices.Sort(exts)
	return exts
}

// Supported reports whether path has a decodable extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FileOpener opens audio files from disk, choosing a decoder by extension.
type FileOpener struct{}

// Open decodes the file at path. The returned stream owns the file handle.
func (FileOpener) Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	return Decode(path)
}

// Decode opens and decodes the file at path.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%s: %w", path, crateerr.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	s, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &fileStream{StreamSeekCloser: s, file: f}, format, nil
}

// Probe returns the length and format of the file at path without playing it.
func Probe(path string) (time.Duration, beep.Format, error) {
	s, format, err := Decode(path)
	if err != nil {
		return 0, beep.Format{}, err
	}
	defer s.Close()
	if format.SampleRate <= 0 {
		return 0, format, nil
	}
	return format.SampleRate.D(s.Len()), format, nil
}

// fileStream closes the underlying file even when the decoder does not.
type fileStream struct {
	beep.StreamSeekCloser
	file io.Closer
}

func (s *fileStream) Close() error {
	err := s.StreamSeekCloser.Close()
	if ferr := s.file.Close(); ferr != nil && !errors.Is(ferr, os.ErrClosed) && err == nil {
		err = ferr
	}
	return err
}
