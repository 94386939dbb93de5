package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/config"
	crateerr "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/logger"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg       *config.Config
	log       = zerolog.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "crate",
	Short: "Play a directory of music in the terminal",
	Long: `Crate scans a music directory and plays it through the default audio
device, with an interactive dashboard or a headless event stream.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogger(false)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.craterc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		if _, statErr := os.Stat(cfgFile); os.IsNotExist(statErr) {
			return fmt.Errorf("%s: %w", cfgFile, crateerr.ErrConfigNotFound)
		}
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("%w: %w", crateerr.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", crateerr.ErrInvalidConfig, err)
	}

	return nil
}

// initLogger installs the process logger. When the terminal belongs to the
// dashboard, console output is discarded unless log.file is set.
func initLogger(ownsTerminal bool) error {
	lc := logger.Config{Output: "stderr", Level: cfg.Log.Level}
	if verbose {
		lc.Level = "debug"
	}
	switch {
	case cfg.Log.File != "":
		lc.Output, lc.File = "file", cfg.Log.File
	case ownsTerminal:
		lc.Output = "discard"
	}

	if logCloser != nil {
		_ = logCloser.Close()
	}
	closer, err := logger.Init(lc)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	logCloser = closer
	log = *zerolog.DefaultContextLogger
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, crateerr.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
