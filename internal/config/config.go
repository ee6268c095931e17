package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Fields FieldConfig  `toml:"fields"`
	Ingest IngestConfig `toml:"ingest"`
	Theme  ThemeConfig  `toml:"theme"`
}

// FieldConfig names the JSON keys holding the mandatory record fields
type FieldConfig struct {
	Timestamp string `toml:"timestamp"`
	Level     string `toml:"level"`
	Tag       string `toml:"tag"`
	Message   string `toml:"message"`
}

// IngestConfig tunes loading and tailing
type IngestConfig struct {
	ChunkSizeKB    int `toml:"chunk_size_kb"`
	PollIntervalMs int `toml:"poll_interval_ms"`
}

// ChunkSize returns the load chunk size in bytes
func (c IngestConfig) ChunkSize() int {
	return c.ChunkSizeKB * 1024
}

// PollInterval returns the tail poll fallback interval
func (c IngestConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// ThemeConfig defines output colors for each severity
type ThemeConfig struct {
	Levels     LevelColors `toml:"levels"`
	ParseError string      `toml:"parse_error"`
}

// LevelColors defines colors for each log level
type LevelColors struct {
	Debug   string `toml:"debug"`
	Info    string `toml:"info"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
	Fatal   string `toml:"fatal"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Fields: FieldConfig{
			Timestamp: "t",
			Level:     "level",
			Tag:       "tag",
			Message:   "message",
		},
		Ingest: IngestConfig{
			ChunkSizeKB:    64,
			PollIntervalMs: 500,
		},
		Theme: ThemeConfig{
			Levels: LevelColors{
				Debug:   "244", // Medium gray
				Info:    "250", // Light gray
				Warning: "214", // Orange
				Error:   "167", // Soft red
				Fatal:   "196", // Bright red
			},
			ParseError: "240", // Dark gray
		},
	}
}

// Load loads config from file, falling back to defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to file
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jlv", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "jlv", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
