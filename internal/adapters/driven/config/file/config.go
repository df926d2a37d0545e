// Package file provides the TOML configuration for docsight. The config
// lives in ~/.docsight/config.toml; a missing file yields defaults so a
// fresh install works without any setup.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultMaxPages     = 100
	DefaultMaxFileBytes = 50 * 1024 * 1024
	DefaultDPI          = 180
	DefaultTopK         = 3
	DefaultServeAddr    = "localhost:8000"
)

// Config is the full docsight configuration.
type Config struct {
	// DataDir holds the index, metadata database and document store.
	// Empty means ~/.docsight/data.
	DataDir string `toml:"data_dir"`

	Limits    LimitsConfig    `toml:"limits"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Answer    AnswerConfig    `toml:"answer"`
	Serve     ServeConfig     `toml:"serve"`
	Query     QueryConfig     `toml:"query"`
}

// LimitsConfig bounds what a single document may cost to ingest.
type LimitsConfig struct {
	MaxPages     int `toml:"max_pages"`
	MaxFileBytes int `toml:"max_file_bytes"`
	DPI          int `toml:"dpi"`
}

// EmbeddingConfig configures the CLIP embedding server.
type EmbeddingConfig struct {
	BaseURL    string  `toml:"base_url"`
	Model      string  `toml:"model"`
	Dimensions int     `toml:"dimensions"`
	RPS        float64 `toml:"rps"`
}

// AnswerConfig configures the question answering backend.
type AnswerConfig struct {
	// Provider selects the backend: "stub" (default) or "openai".
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// QueryConfig configures retrieval defaults.
type QueryConfig struct {
	TopK int `toml:"top_k"`
}

// DefaultDir returns the docsight home directory (~/.docsight).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".docsight"), nil
}

// defaults returns a config with every field populated.
func defaults(configDir string) *Config {
	return &Config{
		DataDir: filepath.Join(configDir, "data"),
		Limits: LimitsConfig{
			MaxPages:     DefaultMaxPages,
			MaxFileBytes: DefaultMaxFileBytes,
			DPI:          DefaultDPI,
		},
		Embedding: EmbeddingConfig{},
		Answer:    AnswerConfig{Provider: "stub"},
		Serve:     ServeConfig{Addr: DefaultServeAddr},
		Query:     QueryConfig{TopK: DefaultTopK},
	}
}

// Load reads the config from configDir/config.toml. A missing file
// returns defaults; a malformed file is an error, not silently replaced.
// If configDir is empty, DefaultDir is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	cfg := defaults(configDir)

	data, err := os.ReadFile(Path(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Absent sections fall back field by field.
	applyDefaults(cfg, configDir)
	return cfg, nil
}

// Save writes the config to configDir/config.toml with restricted
// permissions; it may hold an API key.
func Save(configDir string, cfg *Config) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(Path(configDir), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Path returns the config file path for a config directory.
func Path(configDir string) string {
	return filepath.Join(configDir, "config.toml")
}

// applyDefaults fills zero-valued fields after unmarshalling.
func applyDefaults(cfg *Config, configDir string) {
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(configDir, "data")
	}
	if cfg.Limits.MaxPages == 0 {
		cfg.Limits.MaxPages = DefaultMaxPages
	}
	if cfg.Limits.MaxFileBytes == 0 {
		cfg.Limits.MaxFileBytes = DefaultMaxFileBytes
	}
	if cfg.Limits.DPI == 0 {
		cfg.Limits.DPI = DefaultDPI
	}
	if cfg.Answer.Provider == "" {
		cfg.Answer.Provider = "stub"
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = DefaultServeAddr
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = DefaultTopK
	}
}
