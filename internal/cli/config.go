package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessro/crate/internal/config"
	crateerr "github.com/tessro/crate/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing crate configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file with default values. On a terminal a
short form asks for the music directory and theme first.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  library.dir                Music directory
  library.strict             Fail on unreadable files (true/false)
  library.extensions         Comma-separated extensions (.mp3,.flac)
  playback.sample_rate       Output sample rate in Hz
  playback.buffer_ms         Output buffer in milliseconds
  playback.resample_quality  Resampler quality (1-64)
  playback.skip_unplayable   Skip tracks that fail to open (true/false)
  tui.theme                  auto, dark or light
  tui.refresh_interval       Dashboard refresh in milliseconds
  tail.interval              Headless poll interval in milliseconds
  tail.no_emoji              Disable emoji in headless output (true/false)
  log.level                  debug, info, warn or error
  log.file                   Log file path

Examples:
  crate config set library.dir ~/Music
  crate config set tui.theme light`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configKinds lists the settable keys and how their values are typed.
var configKinds = map[string]string{
	"library.dir":               "string",
	"library.strict":            "bool",
	"library.extensions":        "list",
	"playback.sample_rate":      "int",
	"playback.buffer_ms":        "int",
	"playback.resample_quality": "int",
	"playback.skip_unplayable":  "bool",
	"tui.theme":                 "string",
	"tui.refresh_interval":      "int",
	"tail.interval":             "int",
	"tail.no_emoji":             "bool",
	"log.level":                 "string",
	"log.file":                  "string",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	if JSONOutput() {
		_, err := os.Stat(path)
		return printJSON(map[string]any{"path": path, "exists": err == nil})
	}
	fmt.Println(path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", configPath, crateerr.ErrConfigNotFound)
	}

	// Find editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return crateerr.WithSuggestion(fmt.Errorf("no editor found"), "Set the EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return crateerr.WithSuggestion(
			fmt.Errorf("config file already exists at %s", configPath),
			"Use 'crate config edit' or 'crate config set' to change it",
		)
	}

	newCfg := config.Default()
	if !JSONOutput() && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := askInitialSettings(newCfg); err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
	}
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", crateerr.ErrInvalidConfig, err)
	}

	if err := writeConfigFile(configPath, newCfg); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'crate scan' to check what will be played")
	fmt.Println("  2. Run 'crate play' to start listening")
	return nil
}

// askInitialSettings fills the interactive part of config init.
func askInitialSettings(c *config.Config) error {
	if home, err := os.UserHomeDir(); err == nil && c.Library.Dir == "" {
		c.Library.Dir = filepath.Join(home, "Music")
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Music directory").
				Description("Played by 'crate play' when no directory is given").
				Value(&c.Library.Dir).
				Validate(func(s string) error {
					info, err := os.Stat(expandHome(s))
					if err != nil || !info.IsDir() {
						return fmt.Errorf("not a directory")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Follow terminal", "auto"),
					huh.NewOption("Dark (Mocha)", "dark"),
					huh.NewOption("Light (Latte)", "light"),
				).
				Value(&c.TUI.Theme),
			huh.NewConfirm().
				Title("Skip tracks that fail to open?").
				Value(&c.Playback.SkipUnplayable),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}
	c.Library.Dir = expandHome(c.Library.Dir)
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", configPath, crateerr.ErrConfigNotFound)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var rawConfig map[string]any
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("%w: %w", crateerr.ErrInvalidConfig, err)
	}
	if rawConfig == nil {
		rawConfig = make(map[string]any)
	}

	typedValue, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := rawConfig[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		rawConfig[section] = sectionMap
	}
	sectionMap[field] = typedValue

	// Validate the result before touching the file
	updated, err := encodeRaw(rawConfig)
	if err != nil {
		return err
	}
	check := &config.Config{}
	if _, err := toml.Decode(updated, check); err != nil {
		return fmt.Errorf("%w: %w", crateerr.ErrInvalidConfig, err)
	}
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return fmt.Errorf("%w: %w", crateerr.ErrInvalidConfig, err)
	}

	if err := os.WriteFile(configPath, []byte(configHeader+updated), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

// parseConfigValue converts a command-line value to the TOML type of key.
func parseConfigValue(key, value string) (any, error) {
	kind, ok := configKinds[key]
	if !ok {
		return nil, crateerr.WithSuggestion(
			fmt.Errorf("unknown config key %q", key),
			"Run 'crate config set --help' for the list of keys",
		)
	}

	switch kind {
	case "int":
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	case "list":
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	}
	if key == "library.dir" || key == "log.file" {
		return expandHome(value), nil
	}
	return value, nil
}

const configHeader = "# Crate Configuration\n\n"

func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := encodeRaw(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(configHeader+body), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	return nil
}

func encodeRaw(v any) (string, error) {
	var sb strings.Builder
	encoder := toml.NewEncoder(&sb)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return sb.String(), nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
