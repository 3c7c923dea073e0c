// Package config loads application configuration from a YAML file, falling
// back to built-in defaults when no file exists.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/svnscha/knowledge/pipeline"
	"github.com/svnscha/knowledge/search"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the knowledge service.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig holds embedding service configuration.
type EmbeddingConfig struct {
	Host      string `yaml:"host"`  // e.g. "http://localhost:11434"
	Model     string `yaml:"model"` // e.g. "embeddinggemma"
	Dimension int    `yaml:"dimension"`
}

// PipelineConfig holds background pipeline configuration.
// Delays are duration strings such as "10s" or "500ms".
type PipelineConfig struct {
	BatchSize    int    `yaml:"batch_size"`
	CycleDelay   string `yaml:"cycle_delay"`
	StartupDelay string `yaml:"startup_delay"`
}

// SearchConfig holds similarity search configuration.
type SearchConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float32 `yaml:"min_score"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "knowledge.db",
		},
		Embedding: EmbeddingConfig{
			Host:      "http://localhost:11434",
			Model:     "embeddinggemma",
			Dimension: 768,
		},
		Pipeline: PipelineConfig{
			BatchSize:    10,
			CycleDelay:   "10s",
			StartupDelay: "5s",
		},
		Search: SearchConfig{
			TopK:     10,
			MinScore: 0.40,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file is not an error; defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// PipelineConfig converts the YAML pipeline section into the pipeline
// package's Config, parsing the duration strings.
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	out := pipeline.DefaultConfig()
	if c.Pipeline.BatchSize > 0 {
		out.BatchSize = c.Pipeline.BatchSize
	}
	if c.Pipeline.CycleDelay != "" {
		d, err := time.ParseDuration(c.Pipeline.CycleDelay)
		if err != nil {
			return out, fmt.Errorf("invalid cycle_delay: %w", err)
		}
		out.CycleDelay = d
	}
	if c.Pipeline.StartupDelay != "" {
		d, err := time.ParseDuration(c.Pipeline.StartupDelay)
		if err != nil {
			return out, fmt.Errorf("invalid startup_delay: %w", err)
		}
		out.StartupDelay = d
	}
	return out, out.Validate()
}

// SearchConfig converts the YAML search section into the search package's
// Config.
func (c *Config) SearchConfig() (search.Config, error) {
	out := search.DefaultConfig()
	if c.Search.TopK > 0 {
		out.TopK = c.Search.TopK
	}
	if c.Search.MinScore > 0 {
		out.MinScore = c.Search.MinScore
	}
	return out, out.Validate()
}
