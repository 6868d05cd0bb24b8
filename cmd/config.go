package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"finboard/internal/table"
)

const appDir = "finboard"

// Config holds CLI configuration. The yaml fields are read from the config
// file and overridden by env and flags.
type Config struct {
	Sources         []string      `yaml:"sources"`
	DBPath          string        `yaml:"db_path,omitempty"`
	Language        string        `yaml:"language,omitempty"`
	LogFile         string        `yaml:"log_file,omitempty"`
	Debug           bool          `yaml:"debug,omitempty"`
	PageSize        int           `yaml:"page_size,omitempty"`
	PageIncrement   int           `yaml:"page_increment,omitempty"`
	ScrollThreshold int           `yaml:"scroll_threshold,omitempty"`
	Currency        string        `yaml:"currency,omitempty"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout,omitempty"`

	// LanguageOverride is set from --lang or FINBOARD_LANG and wins over
	// the language stored in the database.
	LanguageOverride string `yaml:"-"`
	ConfigFile       string `yaml:"-"`
}

func defaultConfig() Config {
	return Config{
		PageSize:        table.DefaultInitialRowCount,
		PageIncrement:   table.DefaultRowIncrement,
		ScrollThreshold: table.DefaultScrollThreshold,
		Currency:        "EUR",
		FetchTimeout:    15 * time.Second,
	}
}

// DefaultConfigPath returns the config file under the XDG config home.
func DefaultConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(appDir, "config.yml"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// found reports whether it existed.
func LoadConfig(path string) (cfg Config, found bool, err error) {
	cfg = defaultConfig()
	cfg.ConfigFile = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, true, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, true, nil
}

// SaveConfig writes cfg to path, creating its directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// splitSources splits a FINBOARD_SOURCE value on commas and whitespace.
func splitSources(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FINBOARD_SOURCE"); v != "" {
		cfg.Sources = splitSources(v)
	}
	if v := os.Getenv("FINBOARD_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FINBOARD_LANG"); v != "" {
		cfg.LanguageOverride = v
	}
}

// fillPaths sets default database and log locations and the fallback
// language.
func fillPaths(cfg *Config) error {
	if cfg.DBPath == "" {
		path, err := xdg.DataFile(filepath.Join(appDir, "finboard.db"))
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
		cfg.DBPath = path
	}
	if cfg.LogFile == "" {
		path, err := xdg.StateFile(filepath.Join(appDir, "finboard.log"))
		if err != nil {
			return fmt.Errorf("failed to resolve log path: %w", err)
		}
		cfg.LogFile = path
	}
	if cfg.Language == "" {
		cfg.Language = systemLanguage()
	}
	return nil
}

func systemLanguage() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}
