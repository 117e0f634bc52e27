// Package store reads and writes zipex user preferences.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the on-disk preference file. It never holds archive or session
// state.
type Config struct {
	// OutDir is where extracted entries are written. Empty means the current
	// directory.
	OutDir string `json:"outDir,omitempty"`
	// Overwrite replaces existing files instead of picking "name (n)".
	Overwrite bool `json:"overwrite,omitempty"`
	// Timeout bounds loads and single retrievals, in Go duration syntax
	// ("30s"). Empty or "0" means no limit.
	Timeout string `json:"timeout,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode" or "ascii").
	Glyphs string `json:"glyphs,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value is zero.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c == nil {
		return 0, nil
	}
	v := strings.TrimSpace(c.Timeout)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid timeout %q: %w", v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: negative timeout %q", v)
	}
	return d, nil
}

// Glyphs returns the configured glyph set, or "" when unset.
func (c *Config) Glyphs() string {
	if c == nil || c.TUI == nil {
		return ""
	}
	return strings.TrimSpace(c.TUI.Glyphs)
}

func ConfigDir() (string, error) {
	// Override keeps unit tests away from ~/.zipex.
	if v := strings.TrimSpace(os.Getenv("ZIPEX_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".zipex"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig reads the config file. A missing file yields an empty Config.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp name so a CLI and a TUI writing at once cannot interleave.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
