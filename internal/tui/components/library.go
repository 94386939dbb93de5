package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/tui/styles"
)

// Library displays the catalog as a table with a selection cursor. The
// cursor wraps around at both ends.
type Library struct {
	catalog *core.Catalog
	visible []int // catalog indices matching the filter
	filter  string
	cursor  int // index into visible
	offset  int
}

// NewLibrary creates a new Library component
func NewLibrary(catalog *core.Catalog) *Library {
	l := &Library{catalog: catalog}
	l.SetFilter("")
	return l
}

// SetFilter shows only tracks whose title, artist or album contain query,
// case-insensitively. The cursor stays on the same track when it is still
// visible.
func (l *Library) SetFilter(query string) {
	prev := l.Selected()
	l.filter = strings.ToLower(strings.TrimSpace(query))

	l.visible = lo.Filter(lo.Range(l.catalog.Len()), func(i int, _ int) bool {
		if l.filter == "" {
			return true
		}
		t := l.catalog.Tracks[i]
		return strings.Contains(strings.ToLower(t.Title), l.filter) ||
			strings.Contains(strings.ToLower(t.Artist), l.filter) ||
			strings.Contains(strings.ToLower(t.Album), l.filter)
	})

	l.cursor = max(0, lo.IndexOf(l.visible, prev))
	l.offset = 0
}

// Filter returns the active filter.
func (l *Library) Filter() string {
	return l.filter
}

// Down moves the cursor down, wrapping to the top.
func (l *Library) Down() {
	if len(l.visible) == 0 {
		return
	}
	l.cursor = (l.cursor + 1) % len(l.visible)
}

// Up moves the cursor up, wrapping to the bottom.
func (l *Library) Up() {
	if len(l.visible) == 0 {
		return
	}
	l.cursor = (l.cursor - 1 + len(l.visible)) % len(l.visible)
}

// Selected returns the catalog index under the cursor, or -1.
func (l *Library) Selected() int {
	if l.cursor < 0 || l.cursor >= len(l.visible) {
		return -1
	}
	return l.visible[l.cursor]
}

// Visible returns the number of tracks shown.
func (l *Library) Visible() int {
	return len(l.visible)
}

// Render renders the library panel. playingPath marks the track being
// played.
func (l *Library) Render(width, height int, focused bool, playingPath string) string {
	label := fmt.Sprintf("Library (%d)", l.catalog.Len())
	if l.filter != "" {
		label = fmt.Sprintf("Library (%d/%d) /%s", len(l.visible), l.catalog.Len(), l.filter)
	}
	title := styles.PanelTitle(label, focused)

	var content string
	if len(l.visible) == 0 {
		content = styles.Muted.Render("No matching tracks")
	} else {
		content = l.renderTable(width-4, height-4, playingPath)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (l *Library) renderTable(width, maxLines int, playingPath string) string {
	// marker (2) + duration (6) + separators
	const timeWidth = 6
	avail := max(width-2-timeWidth-3, 12)
	titleW := avail * 45 / 100
	artistW := avail * 30 / 100
	albumW := avail - titleW - artistW

	header := styles.Label.Render("  " +
		styles.Pad("Title", titleW) + " " +
		styles.Pad("Artist", artistW) + " " +
		styles.Pad("Album", albumW) + " " +
		fmt.Sprintf("%*s", timeWidth, "Time"))

	rows := max(maxLines-1, 1)
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
	end := min(l.offset+rows, len(l.visible))

	lines := []string{header}
	for vi := l.offset; vi < end; vi++ {
		t := l.catalog.Tracks[l.visible[vi]]

		marker := "  "
		if t.Path == playingPath && playingPath != "" {
			marker = "▶ "
		}
		row := marker +
			styles.Pad(t.Title, titleW) + " " +
			styles.Pad(styles.OrDash(t.Artist), artistW) + " " +
			styles.Pad(styles.OrDash(t.Album), albumW) + " " +
			fmt.Sprintf("%*s", timeWidth, shortDuration(t.Duration))

		switch {
		case vi == l.cursor:
			row = styles.Selected.Render(row)
		case marker != "  ":
			row = styles.Playing.Render(row)
		}
		lines = append(lines, row)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// shortDuration renders a track length as "m:ss".
func shortDuration(d time.Duration) string {
	secs := max(int(d/time.Second), 0)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
