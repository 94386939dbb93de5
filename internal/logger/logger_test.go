package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"":        zerolog.InfoLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestNewFileWritesJSONWithSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "crate.log")

	log, closer, err := New(Config{Output: "file", File: path, Level: "info"})
	require.NoError(t, err)

	log.Info().Str("track", "a.mp3").Msg("track started")
	log.Debug().Msg("filtered out")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "track started", entry["message"])
	assert.Equal(t, "a.mp3", entry["track"])
	assert.Equal(t, Session, entry["session"])
}

func TestNewDiscard(t *testing.T) {
	log, closer, err := New(Config{Output: "discard"})
	require.NoError(t, err)
	assert.NotNil(t, closer)
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
