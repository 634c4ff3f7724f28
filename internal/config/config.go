package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const configFile = ".modalkit/config.json"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MODALKIT_"

// Config holds user defaults for dialogs and the content server.
type Config struct {
	// Lang selects translations of built-in strings.
	Lang string `json:"lang,omitempty" env:"LANG"`
	// Speed is the default animation speed token.
	Speed string `json:"speed,omitempty" env:"SPEED"`
	// Theme is a class added to every dialog.
	Theme string `json:"theme,omitempty" env:"THEME"`
	// Debug enables diagnostic logging.
	Debug bool `json:"debug,omitempty" env:"DEBUG"`
	// DebugPrefix is the query-string key prefix that enables debugging.
	DebugPrefix string `json:"debug_prefix,omitempty" env:"DEBUG_PREFIX"`
	// Server is the base URL of a content server for fetch.
	Server string `json:"server,omitempty" env:"SERVER"`
	// Store is the dialog store path, relative to the base directory.
	Store string `json:"store,omitempty" env:"STORE"`
	// Addr is the listen address of the content server.
	Addr string `json:"addr,omitempty" env:"ADDR"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Speed:       "default",
		DebugPrefix: "modal_",
		Store:       ".modalkit/dialogs.db",
		Addr:        "127.0.0.1:7410",
	}
}

// Path returns the config file path under baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, configFile)
}

// Load reads the config from disk, fills unset fields from Defaults and
// applies MODALKIT_* environment overrides.
func Load(baseDir string) (*Config, error) {
	cfg, err := LoadFile(baseDir)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config from disk without environment overrides.
func LoadFile(baseDir string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(Path(baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with MODALKIT_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Save writes the config to disk
func Save(baseDir string, cfg *Config) error {
	configPath := Path(baseDir)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Set updates one field by its JSON name and saves.
func Set(baseDir, key, value string) error {
	cfg, err := LoadFile(baseDir)
	if err != nil {
		return err
	}
	switch key {
	case "lang":
		cfg.Lang = value
	case "speed":
		cfg.Speed = value
	case "theme":
		cfg.Theme = value
	case "debug":
		cfg.Debug = value == "true" || value == "1"
	case "debug_prefix":
		cfg.DebugPrefix = value
	case "server":
		cfg.Server = value
	case "store":
		cfg.Store = value
	case "addr":
		cfg.Addr = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return Save(baseDir, cfg)
}

// StorePath returns the absolute dialog store path.
func (c *Config) StorePath(baseDir string) string {
	if filepath.IsAbs(c.Store) {
		return c.Store
	}
	return filepath.Join(baseDir, c.Store)
}
