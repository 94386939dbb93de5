package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessro/crate/internal/audio"
	"github.com/tessro/crate/internal/core"
	crateerr "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/player"
	"github.com/tessro/crate/internal/tail"
	"github.com/tessro/crate/internal/tui"
)

var (
	playStart     int
	playHeadless  bool
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
	playStrict    bool
)

var playCmd = &cobra.Command{
	Use:   "play [dir]",
	Short: "Play a music directory",
	Long: `Scan a music directory and play it.

By default an interactive dashboard opens with the library, the current
track, the queue and this session's history. With --headless (or when
stdout is not a terminal) playback starts immediately and events are
printed as they happen, in the style of 'tail -f'.

Dashboard keys:
  ↑/k, ↓/j     Move the library cursor
  Enter        Play from the selected track
  Space        Play/Pause
  →/n, ←/p     Next/previous track
  /            Filter the library
  y            Copy the file path
  ?            Help
  q, Ctrl+C    Quit

Template variables for --format:
  {{.Type}}      Event type (track_change, track_complete, ...)
  {{.Title}}     Track title
  {{.Artist}}    Artist
  {{.Album}}     Album
  {{.Path}}      File path
  {{.Duration}}  Track length
  {{.Position}}  Queue position (1-based)
  {{.QueueLen}}  Queue length`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVarP(&playStart, "start", "s", 0, "catalog index to start from")
	playCmd.Flags().BoolVar(&playHeadless, "headless", false, "play without the dashboard and print events")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji in headless output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps in headless output")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom headless format template")
	playCmd.Flags().BoolVar(&playStrict, "strict", false, "fail on the first unreadable file")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if playFormat != "" {
		if _, err := tail.ParseTemplate(playFormat); err != nil {
			return fmt.Errorf("invalid --format: %w", err)
		}
	}

	headless := playHeadless || !term.IsTerminal(int(os.Stdout.Fd()))
	if !headless {
		if err := initLogger(true); err != nil {
			return err
		}
	}

	dir, err := libraryDir(args)
	if err != nil {
		return err
	}

	catalog, err := newScanner(playStrict).Scan(dir)
	if err != nil {
		return err
	}
	if catalog.Len() == 0 {
		return fmt.Errorf("%s: %w", dir, crateerr.ErrNoTracks)
	}

	startSet := cmd.Flags().Changed("start")
	if err := checkStart(playStart, catalog); err != nil {
		return err
	}

	log.Info().
		Str("library", catalog.Root).
		Int("tracks", catalog.Len()).
		Msg("library scanned")

	device, err := audio.OpenDevice(cfg.Playback)
	if err != nil {
		return err
	}
	defer func() { _ = device.Close() }()

	engine := player.New(device.Sink(), audio.FileOpener{},
		player.WithLogger(log),
		player.WithResampleQuality(cfg.Playback.ResampleQuality),
		player.WithSkipUnplayable(cfg.Playback.SkipUnplayable),
	)

	if headless {
		return runHeadless(cmd.Context(), engine, catalog, playStart)
	}

	if startSet {
		if err := engine.BuildQueue(catalog, playStart); err != nil {
			return err
		}
		engine.Play()
	}

	return tui.Run(engine, catalog, tui.Options{
		RefreshInterval: time.Duration(cfg.TUI.RefreshInterval) * time.Millisecond,
		Theme:           cfg.TUI.Theme,
	})
}

// checkStart rejects a --start index outside the catalog.
func checkStart(start int, catalog *core.Catalog) error {
	if start < 0 || start >= catalog.Len() {
		return crateerr.WithSuggestion(
			fmt.Errorf("--start %d: %w", start, crateerr.ErrStartOutOfRange),
			fmt.Sprintf("The library has %d tracks; use an index from 0 to %d ('crate scan' lists them)", catalog.Len(), catalog.Len()-1),
		)
	}
	return nil
}
