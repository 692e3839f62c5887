// Package config loads the user configuration for the interactive CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// AppEntry is a user-pinned application added to the picker shortlist.
type AppEntry struct {
	Name     string `toml:"name"`
	ClientID string `toml:"client_id"`
	Scope    string `toml:"scope"`
}

// Config holds the CLI defaults. Flags take precedence over file values.
type Config struct {
	Tenant       string     `toml:"tenant"`
	DefaultScope string     `toml:"default_scope"`
	CatalogPath  string     `toml:"catalog_path"`
	ScopeMapPath string     `toml:"scope_map_path"`
	Apps         []AppEntry `toml:"apps"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "entra-token-util", "config.toml")
}

// LoadFrom reads configuration from the given TOML file path. A missing file
// returns an empty config without error.
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	return cfg, nil
}
