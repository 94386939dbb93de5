package config

// Config is the root configuration structure.
type Config struct {
	Library  LibraryConfig  `toml:"library" json:"library"`
	Playback PlaybackConfig `toml:"playback" json:"playback"`
	TUI      TUIConfig      `toml:"tui" json:"tui"`
	Tail     TailConfig     `toml:"tail" json:"tail"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// LibraryConfig controls how the music directory is scanned.
type LibraryConfig struct {
	Dir        string   `toml:"dir" json:"dir"`
	Strict     bool     `toml:"strict" json:"strict"`
	Extensions []string `toml:"extensions" json:"extensions"`
}

// PlaybackConfig holds audio output settings.
type PlaybackConfig struct {
	SampleRate      int  `toml:"sample_rate" json:"sample_rate"`
	BufferMS        int  `toml:"buffer_ms" json:"buffer_ms"`
	ResampleQuality int  `toml:"resample_quality" json:"resample_quality"`
	SkipUnplayable  bool `toml:"skip_unplayable" json:"skip_unplayable"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"`
}

// TailConfig holds settings for headless mode.
type TailConfig struct {
	Interval int  `toml:"interval" json:"interval"`
	NoEmoji  bool `toml:"no_emoji" json:"no_emoji"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}
