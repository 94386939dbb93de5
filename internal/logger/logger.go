// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config represents logger configuration.
type Config struct {
	Output string // "stdout", "stderr", "discard", or "file"
	Level  string // "debug", "info", "warn", "error"
	File   string // log file path (used when Output is "file")
}

// Session is the identifier attached to every log line of this process.
var Session = uuid.NewString()

// New builds a logger for cfg. The returned closer releases the log file,
// if one was opened, and is never nil.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level := parseLevel(cfg.Level)

	var writer io.Writer
	var closer io.Closer = nopCloser{}
	output := strings.ToLower(cfg.Output)
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	case "discard":
		return zerolog.Nop(), closer, nil
	default:
		if dir := filepath.Dir(cfg.File); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return zerolog.Nop(), closer, err
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		writer = f
		closer = f
	}

	var ctx zerolog.Context
	if output == "stdout" || output == "stderr" || output == "" {
		// Console output with colors
		cw := zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.TimeOnly,
		}
		if level == zerolog.DebugLevel {
			cw.PartsOrder = []string{"time", "level", "message", "caller"}
			cw.FormatCaller = func(i interface{}) string {
				return "(" + i.(string) + ")"
			}
		}
		ctx = zerolog.New(cw).With().Timestamp()
	} else {
		// JSON output for files
		ctx = zerolog.New(writer).With().Timestamp().Str("session", Session)
	}
	if level == zerolog.DebugLevel {
		ctx = ctx.Caller()
	}

	return ctx.Logger().Level(level), closer, nil
}

// Init builds a logger for cfg and installs it as the global zerolog logger.
func Init(cfg Config) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.CallerMarshalFunc = shortCaller

	logger, closer, err := New(cfg)
	if err != nil {
		return closer, err
	}
	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger
	return closer, nil
}

// shortCaller trims caller paths to their last two elements.
func shortCaller(pc uintptr, file string, line int) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 1 {
		return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// parseLevel parses the log level string.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
