package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Colors, set from a catppuccin flavor by Use.
var (
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
	Surface   lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	TextDim   lipgloss.Color
)

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	Selected  lipgloss.Style
	ErrorText lipgloss.Style
)

// Border styles
var (
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	Use("dark")
}

// Flavor returns the palette for a theme name: "light" is Latte, "dark"
// is Mocha, and "auto" follows the terminal background.
func Flavor(theme string) catppuccin.Flavor {
	switch theme {
	case "light":
		return catppuccin.Latte
	case "dark":
		return catppuccin.Mocha
	default:
		if lipgloss.HasDarkBackground() {
			return catppuccin.Mocha
		}
		return catppuccin.Latte
	}
}

// Use rebuilds every style from the given theme.
func Use(theme string) {
	f := Flavor(theme)

	Primary = lipgloss.Color(f.Mauve().Hex)
	Secondary = lipgloss.Color(f.Green().Hex)
	Warning = lipgloss.Color(f.Peach().Hex)
	Error = lipgloss.Color(f.Red().Hex)
	Border = lipgloss.Color(f.Surface2().Hex)
	Surface = lipgloss.Color(f.Surface0().Hex)
	Text = lipgloss.Color(f.Text().Hex)
	TextMuted = lipgloss.Color(f.Subtext0().Hex)
	TextDim = lipgloss.Color(f.Overlay0().Hex)

	Title = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Dim = lipgloss.NewStyle().Foreground(TextDim)
	Playing = lipgloss.NewStyle().Foreground(Secondary)
	Paused = lipgloss.NewStyle().Foreground(Warning)
	Selected = lipgloss.NewStyle().Background(Surface).Foreground(Text)
	ErrorText = lipgloss.NewStyle().Foreground(Error)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent int, width int) string {
	filled := percent * width / 100
	filled = max(0, min(filled, width))

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// Truncate shortens s to at most width terminal cells, ending in "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Pad truncates or right-pads s to exactly width cells.
func Pad(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// OrDash renders a missing tag value as "-".
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
