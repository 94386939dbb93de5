package tui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/tail"
	"github.com/tessro/crate/internal/tui/components"
	"github.com/tessro/crate/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelLibrary Panel = iota
	PanelNowPlaying
	PanelQueue
	PanelHistory

	panelCount
)

const (
	maxHistory    = 50
	noticeTimeout = 5 * time.Second
)

// Options configures the TUI.
type Options struct {
	RefreshInterval time.Duration
	Theme           string
}

// Model is the main TUI model
type Model struct {
	player      core.Player
	catalog     *core.Catalog
	refreshRate time.Duration

	width        int
	height       int
	focusedPanel Panel

	// Snapshot taken once per refresh; every panel renders from it.
	state   *core.PlaybackState
	queue   *core.Queue
	history []core.HistoryEntry

	// Components
	library     *components.Library
	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	historyView *components.History

	// Overlays
	showHelp    bool
	filtering   bool
	filterInput textinput.Model

	// Transient status line
	lastError   error
	notice      string
	noticeUntil time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(player core.Player, catalog *core.Catalog, opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 250 * time.Millisecond
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter by title, artist or album"
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		player:       player,
		catalog:      catalog,
		refreshRate:  opts.RefreshInterval,
		focusedPanel: PanelLibrary,
		library:      components.NewLibrary(catalog),
		nowPlaying:   components.NewNowPlaying(),
		queueView:    components.NewQueue(),
		historyView:  components.NewHistory(),
		filterInput:  ti,
	}
}

// Messages
type tickMsg time.Time
type changeMsg struct{}
type snapshotMsg struct {
	state *core.PlaybackState
	queue *core.Queue
}
type errMsg error
type noticeMsg string
type actionDoneMsg struct{}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks until the player reports a position change.
func (m Model) waitForChange() tea.Cmd {
	changes := m.player.Changes()
	return func() tea.Msg {
		<-changes
		return changeMsg{}
	}
}

func (m Model) snapshot() tea.Cmd {
	p := m.player
	return func() tea.Msg {
		return snapshotMsg{state: p.State(), queue: p.Queue()}
	}
}

// playFrom rebuilds the queue starting at catalog index and starts playback.
func (m Model) playFrom(index int) tea.Cmd {
	p, catalog := m.player, m.catalog
	return func() tea.Msg {
		if err := p.BuildQueue(catalog, index); err != nil {
			return errMsg(err)
		}
		p.Play()
		return actionDoneMsg{}
	}
}

func (m Model) togglePlay() tea.Cmd {
	p := m.player
	return func() tea.Msg {
		p.TogglePlay()
		return actionDoneMsg{}
	}
}

func (m Model) nextTrack() tea.Cmd {
	p := m.player
	return func() tea.Msg {
		p.Next()
		return actionDoneMsg{}
	}
}

func (m Model) prevTrack() tea.Cmd {
	p := m.player
	return func() tea.Msg {
		if err := p.Prev(); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{}
	}
}

// copyPath copies the now-playing file path, or the selected track's when
// nothing is playing.
func (m Model) copyPath() tea.Cmd {
	track := m.catalog.At(m.library.Selected())
	if m.state != nil && m.state.Track != nil {
		track = m.state.Track
	}
	return func() tea.Msg {
		if track == nil {
			return nil
		}
		if err := clipboard.WriteAll(track.Path); err != nil {
			return errMsg(err)
		}
		return noticeMsg("Copied " + track.Path)
	}
}

// Init starts the refresh loop
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForChange(),
		m.snapshot(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tick(), m.snapshot())

	case changeMsg:
		return m, tea.Batch(m.waitForChange(), m.snapshot())

	case actionDoneMsg:
		return m, m.snapshot()

	case snapshotMsg:
		if time.Now().After(m.noticeUntil) {
			m.lastError = nil
			m.notice = ""
		}
		m.recordHistory(msg.state)
		m.state = msg.state
		m.queue = msg.queue
		return m, nil

	case errMsg:
		m.lastError = msg
		m.noticeUntil = time.Now().Add(noticeTimeout)
		return m, m.snapshot()

	case noticeMsg:
		m.notice = string(msg)
		m.noticeUntil = time.Now().Add(noticeTimeout)
		return m, nil
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// recordHistory folds the transition to next into the session history.
func (m *Model) recordHistory(next *core.PlaybackState) {
	for _, e := range tail.Diff(m.state, next, m.refreshRate) {
		switch e.Type {
		case tail.EventTrackSkip:
			if len(m.history) > 0 {
				m.history[0].Skipped = true
			}
		case tail.EventTrackChange:
			entry := core.HistoryEntry{Track: e.Current.Track, PlayedAt: e.Timestamp}
			m.history = append([]core.HistoryEntry{entry}, m.history...)
			if len(m.history) > maxHistory {
				m.history = m.history[:maxHistory]
			}
		}
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.filtering {
		return m.handleFilterKeyPress(msg)
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.filtering = true
		m.focusedPanel = PanelLibrary
		m.filterInput.SetValue(m.library.Filter())
		m.filterInput.CursorEnd()
		cmd := m.filterInput.Focus()
		return m, cmd

	case "esc":
		if m.library.Filter() != "" {
			m.library.SetFilter("")
		}
		return m, nil

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.togglePlay()
	case "right", "n":
		return m, m.nextTrack()
	case "left", "p":
		return m, m.prevTrack()
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelQueue:
		switch msg.String() {
		case "j", "down":
			m.queueView.ScrollDown()
		case "k", "up":
			m.queueView.ScrollUp()
		case "f":
			m.queueView.Follow()
		}
	default:
		switch msg.String() {
		case "j", "down":
			m.library.Down()
		case "k", "up":
			m.library.Up()
		case "enter":
			if idx := m.library.Selected(); idx >= 0 {
				return m, m.playFrom(idx)
			}
		case "y":
			return m, m.copyPath()
		}
	}

	return m, nil
}

func (m Model) handleFilterKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.library.SetFilter("")
		return m, nil

	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil

	case "up", "ctrl+p":
		m.library.Up()
		return m, nil

	case "down", "ctrl+n":
		m.library.Down()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.library.SetFilter(m.filterInput.Value())
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Main layout: two columns
	// Left: Now Playing (top), Library (bottom)
	// Right: Queue (top), History (bottom)

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 35 / 100
	bottomHeight := m.height - topHeight - 3
	if m.filtering {
		bottomHeight--
	}

	playingPath := ""
	if m.state != nil && m.state.Track != nil {
		playingPath = m.state.Track.Path
	}

	nowPlaying := m.nowPlaying.Render(m.state, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	library := m.library.Render(leftWidth-2, bottomHeight-2, m.focusedPanel == PanelLibrary, playingPath)
	queueView := m.queueView.Render(m.queue, rightWidth-2, topHeight-2, m.focusedPanel == PanelQueue)
	historyView := m.historyView.Render(m.history, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, library)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, queueView, historyView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	rows := []string{main}
	if m.filtering {
		rows = append(rows, lipgloss.NewStyle().Padding(0, 1).Render(m.filterInput.View()))
	}
	rows = append(rows, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderStatusBar() string {
	text, style := "q:quit  ?:help  enter:play  space:play/pause  ←/→:prev/next  /:filter  y:copy path  tab:switch panel", styles.Dim

	switch {
	case m.lastError != nil:
		text, style = "Error: "+m.lastError.Error(), styles.ErrorText
	case m.notice != "":
		text, style = m.notice, styles.Highlight
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(style.Render(styles.Truncate(text, max(m.width-2, 1))))
}

func (m Model) renderHelp() string {
	title := "Crate - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Filter library
  Esc          Clear filter
  Tab          Next panel
  Shift+Tab    Previous panel

  Playback
  ────────
  Enter        Play from selected track
  Space        Play/Pause
  →, n         Next track
  ←, p         Previous track

  Library Panel
  ─────────────
  j/↓          Select next (wraps)
  k/↑          Select previous (wraps)
  y            Copy file path

  Queue Panel
  ───────────
  j/↓          Scroll down
  k/↑          Scroll up
  f            Follow current track

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the TUI application
func Run(player core.Player, catalog *core.Catalog, opts Options) error {
	styles.Use(opts.Theme)

	model := NewModel(player, catalog, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
