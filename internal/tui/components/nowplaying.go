package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/player"
	"github.com/tessro/crate/internal/tui/styles"
)

// NowPlaying displays the currently playing track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state *core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	switch {
	case state == nil || state.Status == core.StatusIdle:
		content = styles.Muted.Render("Select a track and press enter")
	case state.Track == nil:
		content = styles.Muted.Render("Queue ready, press space to play") + "\n\n" +
			styles.Dim.Render(player.Placeholder)
	default:
		content = n.renderTrack(state, width-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (n *NowPlaying) renderTrack(state *core.PlaybackState, width int) string {
	track := state.Track

	icon := styles.StatusIcon(state.IsPlaying)
	title := styles.Title.Render(styles.Truncate(track.Title, width-4))
	artist := styles.Subtitle.Render(styles.Truncate(styles.OrDash(track.Artist), width-2))
	album := styles.Dim.Render(styles.Truncate(styles.OrDash(track.Album), width-2))

	label := player.FormatLabel(state.Progress, track.Duration)
	percent := player.Percent(state.Progress, track.Duration)

	// label (13) + percent (5) + spaces
	barWidth := max(width-20, 10)
	progress := fmt.Sprintf("%s %s %3d%%", label, styles.ProgressBar(percent, barWidth), percent)

	status := fmt.Sprintf("Track %d of %d", state.Position+1, state.QueueLen)
	switch {
	case state.Ended:
		status += " · end of queue"
	case state.Status == core.StatusPaused:
		status += " · paused"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
		"",
		styles.Muted.Render(status),
		n.renderControls(state),
	)
}

func (n *NowPlaying) renderControls(state *core.PlaybackState) string {
	controls := styles.Dim.Render("⏮ ")

	if state.IsPlaying {
		controls += styles.Playing.Render("⏸")
	} else {
		controls += styles.Paused.Render("▶")
	}

	controls += styles.Dim.Render(" ⏭")

	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(controls)
}
