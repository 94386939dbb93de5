package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/crate/internal/core"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. An unparsable template is
// ignored; use ParseTemplate to validate one first.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := ParseTemplate(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// ParseTemplate parses a --format template.
func ParseTemplate(tmpl string) (*template.Template, error) {
	return template.New("format").Parse(tmpl)
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if t := subject(e); t != nil {
		data.Title = t.Title
		data.Artist = t.Artist
		data.Album = t.Album
		data.Path = t.Path
		data.Duration = t.Duration.Truncate(time.Second).String()
	}
	if e.Current != nil {
		data.Position = e.Current.Position + 1
		data.QueueLen = e.Current.QueueLen
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Artist    string
	Album     string
	Path      string
	Duration  string
	Position  int
	QueueLen  int
}

// subject returns the track an event is about: the one that ended for
// completions and skips, the current one otherwise.
func subject(e Event) *core.Track {
	switch e.Type {
	case EventTrackComplete, EventTrackSkip:
		if e.Previous != nil && e.Previous.Track != nil {
			return e.Previous.Track
		}
	}
	if e.Current != nil {
		return e.Current.Track
	}
	return nil
}

// describe renders "Artist - Title", or just the title when untagged.
func describe(t *core.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	t := subject(e)

	switch e.Type {
	case EventTrackChange:
		if t != nil {
			return fmt.Sprintf("Now playing: %s", describe(t))
		}
		return "Track changed"

	case EventTrackComplete:
		if t != nil {
			return fmt.Sprintf("Finished: %s", describe(t))
		}
		return "Track completed"

	case EventTrackSkip:
		if t != nil {
			return fmt.Sprintf("Skipped: %s", describe(t))
		}
		return "Track skipped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventQueueEnd:
		if e.Current != nil {
			return fmt.Sprintf("End of queue (%d tracks)", e.Current.QueueLen)
		}
		return "End of queue"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventQueueEnd:
		return "🏁"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventQueueEnd:
		return "queue_end"
	default:
		return "unknown"
	}
}
