// Package config loads traceview configuration from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all traceview configuration.
type Config struct {
	ProjectsDir string `toml:"projects_dir"`
	StateDir    string `toml:"state_dir"`

	Archive ArchiveConfig `toml:"archive"`
	Diff    DiffConfig    `toml:"diff"`
}

type ArchiveConfig struct {
	Dir      string `toml:"dir"`
	Compress bool   `toml:"compress"`
}

type DiffConfig struct {
	ContextLines int `toml:"context_lines"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ProjectsDir: "~/.claude/projects",
		StateDir:    "~/.local/state/traceview",
		Archive: ArchiveConfig{
			Dir:      "~/.local/share/traceview/archive",
			Compress: true,
		},
		Diff: DiffConfig{
			ContextLines: 3,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	// Expand ~ in paths
	cfg.ProjectsDir = expandHome(cfg.ProjectsDir)
	cfg.StateDir = expandHome(cfg.StateDir)
	cfg.Archive.Dir = expandHome(cfg.Archive.Dir)

	if cfg.Diff.ContextLines < 0 {
		cfg.Diff.ContextLines = DefaultConfig().Diff.ContextLines
	}

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "traceview", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "traceview", "config.toml"))
	}

	return paths
}

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

// IndexPath returns the sqlite session index location inside the state dir.
func (c Config) IndexPath() string {
	return filepath.Join(c.StateDir, "sessions.db")
}
