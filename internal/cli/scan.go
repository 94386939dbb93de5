package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/core"
	crateerr "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/library"
)

var scanStrict bool

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "List the tracks in a music directory",
	Long: `Scan a music directory and print the catalog in playback order.

The directory defaults to library.dir from the config file. Files that
cannot be read are listed as skipped unless --strict is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanStrict, "strict", false, "fail on the first unreadable file")
	rootCmd.AddCommand(scanCmd)
}

// libraryDir resolves the directory argument against library.dir.
func libraryDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Library.Dir == "" {
		return "", fmt.Errorf("no directory given: %w", crateerr.ErrLibraryNotFound)
	}
	return expandHome(cfg.Library.Dir), nil
}

func newScanner(strict bool) *library.Scanner {
	return library.NewScanner(
		library.WithExtensions(cfg.Library.Extensions),
		library.WithStrict(strict || cfg.Library.Strict),
		library.WithLogger(log),
	)
}

type scanTrack struct {
	Index    int     `json:"index"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist,omitempty"`
	Album    string  `json:"album,omitempty"`
	Path     string  `json:"path"`
	Duration float64 `json:"duration_seconds"`
}

type scanReport struct {
	Root          string      `json:"root"`
	Tracks        []scanTrack `json:"tracks"`
	TotalDuration float64     `json:"total_duration_seconds"`
	TotalBytes    uint64      `json:"total_bytes"`
	Fingerprint   string      `json:"fingerprint"`
	Skipped       []string    `json:"skipped,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	dir, err := libraryDir(args)
	if err != nil {
		return err
	}

	result, err := newScanner(scanStrict).ScanPartial(dir)
	if err != nil {
		return err
	}
	catalog := result.Data

	report := scanReport{
		Root:          catalog.Root,
		Tracks:        make([]scanTrack, 0, catalog.Len()),
		TotalDuration: catalog.TotalDuration().Seconds(),
		TotalBytes:    totalBytes(catalog),
	}
	if sum, err := catalog.Fingerprint(); err == nil {
		report.Fingerprint = strconv.FormatUint(sum, 16)
	}
	for i, t := range catalog.Tracks {
		report.Tracks = append(report.Tracks, scanTrack{
			Index:    i,
			Title:    t.Title,
			Artist:   t.Artist,
			Album:    t.Album,
			Path:     t.Path,
			Duration: t.Duration.Seconds(),
		})
	}
	for _, e := range result.Errors {
		report.Skipped = append(report.Skipped, e.Error())
	}

	if JSONOutput() {
		return printJSON(report)
	}

	if catalog.Len() == 0 {
		fmt.Printf("No tracks in %s\n", catalog.Root)
	} else {
		table := NewTable("#", "TITLE", "ARTIST", "ALBUM", "TIME")
		for i, t := range catalog.Tracks {
			table.Row(
				strconv.Itoa(i),
				TruncateString(t.Title, 40),
				TruncateString(orDash(t.Artist), 24),
				TruncateString(orDash(t.Album), 24),
				FormatDuration(t.Duration),
			)
		}
		table.Flush()
		fmt.Println()
	}

	fmt.Printf("%s tracks, %s, %s total\n",
		humanize.Comma(int64(catalog.Len())),
		humanize.Bytes(report.TotalBytes),
		FormatDuration(catalog.TotalDuration()))
	if report.Fingerprint != "" {
		fmt.Printf("fingerprint %s\n", report.Fingerprint)
	}
	if result.HasErrors() {
		fmt.Fprintf(os.Stderr, "\nSkipped %s:\n%s\n",
			humanize.Comma(int64(len(result.Errors))),
			strings.TrimRight(result.ErrorSummary(), "\n"))
	}

	return nil
}

func totalBytes(catalog *core.Catalog) uint64 {
	var total uint64
	for _, t := range catalog.Tracks {
		if info, err := os.Stat(t.Path); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}
