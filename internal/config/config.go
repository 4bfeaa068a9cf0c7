// Package config loads .dloxrc.toml, the optional per-directory file that
// configures REPL behavior (history file and timing display).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const fileName = ".dloxrc.toml"

// Config holds REPL tuning knobs. Defaults() is the zero Config; Load
// returns Defaults() overlaid with whatever the file sets.
type Config struct {
	HistoryFile string `toml:"history_file"`
	ShowTiming  bool   `toml:"show_timing"`
}

// Defaults returns the configuration dlox uses when no .dloxrc.toml exists.
// HistoryFile is empty by default. The REPL substitutes
// DefaultHistoryPath() for an empty HistoryFile when its input is a
// terminal, so only a non-interactive run with no config skips history
// persistence.
func Defaults() Config {
	return Config{
		HistoryFile: "",
		ShowTiming:  false,
	}
}

// DefaultHistoryPath returns the conventional history file location
// (~/.dlox_history), for callers that want to opt into persistence without
// writing a .dloxrc.toml that names an explicit path.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dlox_history"
	}
	return filepath.Join(home, ".dlox_history")
}

// Load reads .dloxrc.toml from dir, falling back to Defaults() for any
// field the file doesn't set. A missing file is not an error.
func Load(dir string) (Config, error) {
	cfg := Defaults()
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
