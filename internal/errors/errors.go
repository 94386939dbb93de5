package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrLibraryNotFound   = errors.New("library directory not found")
	ErrUnreadableTrack   = errors.New("unreadable track")
	ErrNoTracks          = errors.New("no tracks found")
	ErrStreamOpen        = errors.New("cannot open audio stream")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNoPlayableTracks  = errors.New("no playable tracks")
	ErrAudioUnavailable  = errors.New("audio output not available in this build")
	ErrAudioDevice       = errors.New("audio device error")
	ErrStartOutOfRange   = errors.New("start index out of range")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// CrateError wraps an error with a user-friendly suggestion.
type CrateError struct {
	Err        error
	Suggestion string
}

func (e *CrateError) Error() string {
	return e.Err.Error()
}

func (e *CrateError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &CrateError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var crateErr *CrateError
	if errors.As(err, &crateErr) && crateErr.Suggestion != "" {
		return crateErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Library errors
	if errors.Is(err, ErrLibraryNotFound) {
		return "Pass a music directory ('crate play ~/Music') or set library.dir in ~/.craterc"
	}
	if errors.Is(err, ErrNoTracks) {
		return "Supported formats are mp3, wav, flac and ogg; check library.extensions"
	}
	if errors.Is(err, ErrUnreadableTrack) {
		return "Set library.strict = false to skip files that cannot be read"
	}

	// Playback errors
	if errors.Is(err, ErrStreamOpen) || errors.Is(err, ErrNoPlayableTracks) {
		return "The file may have been moved or deleted since the library was scanned; set playback.skip_unplayable = true to skip it"
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		return "Convert the file to mp3, wav, flac or ogg"
	}

	// Device errors
	if errors.Is(err, ErrAudioUnavailable) {
		return "Rebuild with CGO_ENABLED=1 to enable audio output"
	}
	if errors.Is(err, ErrAudioDevice) || strings.Contains(errStr, "alsa") ||
		strings.Contains(errStr, "pulse") {
		return "Check that an audio output device is connected and not in exclusive use"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'crate config init' to create a fresh configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
