package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/tui/styles"
)

// History displays tracks played this session, newest first.
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []core.HistoryEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (h *History) renderHistory(entries []core.HistoryEntry, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if i >= maxLines {
			break
		}
		track := entry.Track
		if track == nil {
			continue
		}

		timeAgo := formatTimeAgo(entry.PlayedAt)

		icon := "✓"
		if entry.Skipped {
			icon = "⏭"
		}

		info := track.Title
		if track.Artist != "" {
			info += " — " + track.Artist
		}
		// icon + space, then at least one space before the time
		info = styles.Truncate(info, width-3-len(timeAgo))
		padding := max(width-2-runewidth.StringWidth(info)-len(timeAgo), 1)

		line := fmt.Sprintf("%s %s%*s%s",
			styles.Dim.Render(icon),
			info,
			padding, "",
			styles.Dim.Render(timeAgo))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
