package config

// DefaultExtensions lists the file types the decoder can play.
var DefaultExtensions = []string{".mp3", ".wav", ".flac", ".ogg"}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Extensions: append([]string(nil), DefaultExtensions...),
		},
		Playback: PlaybackConfig{
			SampleRate:      44100,
			BufferMS:        100,
			ResampleQuality: 4,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 250,
		},
		Tail: TailConfig{
			Interval: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Library
	if len(c.Library.Extensions) == 0 {
		c.Library.Extensions = d.Library.Extensions
	}

	// Playback
	if c.Playback.SampleRate == 0 {
		c.Playback.SampleRate = d.Playback.SampleRate
	}
	if c.Playback.BufferMS == 0 {
		c.Playback.BufferMS = d.Playback.BufferMS
	}
	if c.Playback.ResampleQuality == 0 {
		c.Playback.ResampleQuality = d.Playback.ResampleQuality
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
