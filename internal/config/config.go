// Package config loads ragtime configuration from defaults, an optional
// YAML file, and RAGTIME_* environment overrides, in that precedence
// order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
)

// FileName is the per-directory config file.
const FileName = ".ragtime.yaml"

// Config is the complete ragtime configuration.
type Config struct {
	// DataDir holds documents to index: local files plus a links/
	// subfolder of *.txt URL lists.
	DataDir string `yaml:"data_dir"`

	// StorePath is the SQLite database location. Empty means
	// <data_dir>/ragtime.db.
	StorePath string `yaml:"store_path"`

	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Budgets   BudgetsConfig   `yaml:"budgets"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbedderConfig configures the embedding backend.
type EmbedderConfig struct {
	Host       string        `yaml:"host"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	BatchSize  int           `yaml:"batch_size"`
	CacheSize  int           `yaml:"cache_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// GeneratorConfig configures the generation backend.
type GeneratorConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// RetrievalConfig tunes document retrieval.
type RetrievalConfig struct {
	TopK          int     `yaml:"top_k"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// BudgetsConfig holds the token budgets of the pipeline.
type BudgetsConfig struct {
	MaxTokens        int `yaml:"max_tokens"`
	SummaryBudget    int `yaml:"summary_budget"`
	MaxPromptTokens  int `yaml:"max_prompt_tokens"`
	MaxHistoryTokens int `yaml:"max_history_tokens"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		DataDir: "data",
		Embedder: EmbedderConfig{
			Host:      "http://localhost:11434",
			Model:     "mxbai-embed-large",
			BatchSize: 32,
			CacheSize: 1000,
			Timeout:   60 * time.Second,
		},
		Generator: GeneratorConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.1",
		},
		Retrieval: RetrievalConfig{
			TopK:          3,
			MinSimilarity: 0.3,
		},
		Budgets: BudgetsConfig{
			MaxTokens:        512,
			SummaryBudget:    3000,
			MaxPromptTokens:  2048,
			MaxHistoryTokens: 8192,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration for a run: defaults, then the config
// file in dir (if present), then environment overrides.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile merges the YAML file at <dir>/.ragtime.yaml into the
// config. A missing file is not an error.
func (c *Config) loadFromFile(dir string) error {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ragerr.ConfigError(fmt.Sprintf("cannot read config file %s", path), err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid YAML in %s", path), err).
			WithSuggestion("Check the config file syntax")
	}
	return nil
}

// applyEnvOverrides applies RAGTIME_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RAGTIME_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("RAGTIME_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("RAGTIME_OLLAMA_HOST"); v != "" {
		c.Embedder.Host = v
		c.Generator.Host = v
	}
	if v := os.Getenv("RAGTIME_EMBED_MODEL"); v != "" {
		c.Embedder.Model = v
	}
	if v := os.Getenv("RAGTIME_GEN_MODEL"); v != "" {
		c.Generator.Model = v
	}
	if v := os.Getenv("RAGTIME_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.TopK = n
		}
	}
	if v := os.Getenv("RAGTIME_MIN_SIMILARITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retrieval.MinSimilarity = f
		}
	}
	if v := os.Getenv("RAGTIME_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ResolvedStorePath returns the effective database path.
func (c *Config) ResolvedStorePath() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	return filepath.Join(c.DataDir, "ragtime.db")
}

// Validate checks the final configuration for values the pipeline cannot
// work with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ragerr.New(ragerr.ErrCodeConfigInvalid, "data_dir must not be empty", nil)
	}
	if c.Retrieval.TopK <= 0 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			fmt.Sprintf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK), nil)
	}
	if c.Retrieval.MinSimilarity < -1 || c.Retrieval.MinSimilarity > 1 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			fmt.Sprintf("retrieval.min_similarity must be within [-1, 1], got %g", c.Retrieval.MinSimilarity), nil)
	}
	if c.Budgets.MaxTokens <= 8 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			fmt.Sprintf("budgets.max_tokens must exceed the token overhead, got %d", c.Budgets.MaxTokens), nil)
	}
	if c.Budgets.MaxPromptTokens <= 8 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			fmt.Sprintf("budgets.max_prompt_tokens must exceed the token overhead, got %d", c.Budgets.MaxPromptTokens), nil)
	}
	return nil
}

// Save writes the configuration to <dir>/.ragtime.yaml.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ragerr.ConfigError("cannot marshal config", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ragerr.ConfigError(fmt.Sprintf("cannot write config file %s", path), err)
	}
	return nil
}
