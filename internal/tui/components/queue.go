package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/tui/styles"
)

// Queue displays the playback queue around the current position.
type Queue struct {
	offset int
	follow bool
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{follow: true}
}

// ScrollDown scrolls the queue down
func (q *Queue) ScrollDown() {
	q.follow = false
	q.offset++
}

// ScrollUp scrolls the queue up
func (q *Queue) ScrollUp() {
	q.follow = false
	if q.offset > 0 {
		q.offset--
	}
}

// Follow keeps the current track at the top of the panel again.
func (q *Queue) Follow() {
	q.follow = true
}

// Render renders the queue panel
func (q *Queue) Render(queue *core.Queue, width, height int, focused bool) string {
	label := "Queue"
	if queue != nil && !queue.IsEmpty() {
		label = fmt.Sprintf("Queue (%d)", queue.Len())
	}
	title := styles.PanelTitle(label, focused)

	var content string
	if queue == nil || queue.IsEmpty() {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderQueue(queue, width-4, height-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (q *Queue) renderQueue(queue *core.Queue, width, maxLines int) string {
	tracks := queue.Tracks

	if q.follow {
		q.offset = queue.CurrentIndex
	}
	if q.offset >= len(tracks) {
		q.offset = len(tracks) - 1
	}

	visibleCount := max(maxLines-1, 1) // room for "more"
	start := q.offset
	end := min(start+visibleCount, len(tracks))

	lines := make([]string, 0, end-start+1)

	// number, play marker and the separator between title and artist
	const overhead = 9

	for i := start; i < end; i++ {
		track := tracks[i]
		num := fmt.Sprintf("%2d.", i+1)

		available := width - overhead
		artist := styles.OrDash(track.Artist)
		artistSpace := min(runewidth.StringWidth(artist), max(available/3, 8))
		title := styles.Truncate(track.Title, available-artistSpace)
		artist = styles.Truncate(artist, artistSpace)

		var line string
		switch {
		case i == queue.CurrentIndex:
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, artist))
		case i < queue.CurrentIndex:
			line = styles.Dim.Render(fmt.Sprintf("%s   %s — %s", num, title, artist))
		default:
			line = fmt.Sprintf("%s   %s — %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist))
		}

		lines = append(lines, line)
	}

	if end < len(tracks) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
