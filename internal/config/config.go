// Package config provides configuration loading and structs for the kiji server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/kiji/internal/ranking"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool                  `yaml:"debug"`
	Server    ServerConfig          `yaml:"server"`
	Storage   StorageConfig         `yaml:"storage"`
	Corpus    CorpusConfig          `yaml:"corpus"`
	Search    SearchConfig          `yaml:"search"`
	Ranking   ranking.RankingConfig `yaml:"ranking"`
	Highlight HighlightConfig       `yaml:"highlight"`
	Watch     WatchConfig           `yaml:"watch"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RequestTimeout is the per-request timeout in seconds.
	RequestTimeout int `yaml:"request_timeout"`
}

// StorageConfig holds paths for the database and the document link index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// CorpusConfig controls how extracted text is cut into passages.
type CorpusConfig struct {
	// SplitMode is one of "block", "line", "delimiter" or "document".
	SplitMode string `yaml:"split_mode"`
	// Delimiter separates passages when SplitMode is "delimiter".
	Delimiter string `yaml:"delimiter"`
	// Workers bounds concurrent extraction during directory indexing.
	Workers int `yaml:"workers"`
}

// SearchConfig holds search and document link settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	// LinkExtensions restricts document links to these file extensions.
	LinkExtensions []string `yaml:"link_extensions"`
	MaxLinks       int      `yaml:"max_links"`
	// CacheSize is the number of ranked queries kept per corpus version; negative disables.
	CacheSize int `yaml:"cache_size"`
}

// HighlightConfig holds match highlighting settings.
type HighlightConfig struct {
	Default bool   `yaml:"default"`
	Open    string `yaml:"open"`
	Close   string `yaml:"close"`
}

// Load reads and parses the config file at path, applies environment overrides,
// expands paths, and applies defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides reads KIJI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KIJI_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("KIJI_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("KIJI_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}
	if v := os.Getenv("KIJI_DATABASE_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("KIJI_BLEVE_INDEX_PATH"); v != "" {
		cfg.Storage.BleveIndexPath = v
	}
	if v := os.Getenv("KIJI_SPLIT_MODE"); v != "" {
		cfg.Corpus.SplitMode = strings.ToLower(v)
	}
	if v := os.Getenv("KIJI_WATCH_DIRECTORIES"); v != "" {
		cfg.Watch.Directories = strings.Split(v, ",")
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
