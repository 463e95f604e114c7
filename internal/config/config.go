// Package config provides configuration loading for sage.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/sage/internal/graph"
	"github.com/agentic-research/sage/internal/ingest"
)

// ProjectConfigFile is picked up from the working directory when no
// explicit config path is given.
const ProjectConfigFile = "sage.yaml"

// Config represents the complete sage configuration
type Config struct {
	Ingest IngestConfig `yaml:"ingest"`
	Log    LogConfig    `yaml:"log"`
}

// IngestConfig configures how documents become scope trees
type IngestConfig struct {
	// TypeKey is the reserved key whose string value becomes a scope's type tag
	TypeKey string `yaml:"type_key"`
	// MaxDepth bounds container nesting; the root object is depth 1
	MaxDepth int `yaml:"max_depth"`
	// SkipKeys are dropped during ingestion (e.g. "@context")
	SkipKeys []string `yaml:"skip_keys"`
	// StableIDs swaps UUIDs for a deterministic sequence
	StableIDs bool `yaml:"stable_ids"`
	// IDPrefix prefixes stable ids (default "s")
	IDPrefix string `yaml:"id_prefix"`
}

// LogConfig configures diagnostics
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			TypeKey:  ingest.DefaultTypeKey,
			MaxDepth: ingest.DefaultMaxDepth,
			IDPrefix: "s",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Ingest.TypeKey == "" {
		return fmt.Errorf("ingest.type_key is required")
	}
	if c.Ingest.MaxDepth < 1 || c.Ingest.MaxDepth > ingest.MaxAllowedDepth {
		return fmt.Errorf("ingest.max_depth must be between 1 and %d, got %d", ingest.MaxAllowedDepth, c.Ingest.MaxDepth)
	}
	for _, k := range c.Ingest.SkipKeys {
		if k == c.Ingest.TypeKey {
			return fmt.Errorf("ingest.skip_keys must not contain the type key %q", k)
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load resolves the effective configuration. An explicit path must exist;
// otherwise ProjectConfigFile in the working directory is used if present,
// and the defaults if not.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != "" {
		cfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded config", slog.String("path", path))
		return cfg, nil
	}

	cfg, err := LoadFromFile(ProjectConfigFile)
	switch {
	case err == nil:
		logger.Debug("loaded project config", slog.String("path", ProjectConfigFile))
		return cfg, nil
	case errors.Is(err, fs.ErrNotExist):
		return DefaultConfig(), nil
	default:
		return nil, err
	}
}

// EngineConfig translates the ingest section into an ingest.Config.
func (c *Config) EngineConfig() ingest.Config {
	cfg := ingest.Config{
		TypeKey:  c.Ingest.TypeKey,
		MaxDepth: c.Ingest.MaxDepth,
		SkipKeys: append([]string(nil), c.Ingest.SkipKeys...),
	}
	if c.Ingest.StableIDs {
		prefix := c.Ingest.IDPrefix
		if prefix == "" {
			prefix = "s"
		}
		cfg.IDs = graph.SequentialIDs(prefix)
	}
	return cfg
}

// ParseLevel maps a level name to a slog.Level. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
