// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/medisearch/ai"
	"github.com/poiesic/medisearch/chunker"
)

// EmbeddingConfig configures the embedding service connection and the
// orchestrator in front of it.
type EmbeddingConfig struct {
	Host          string `yaml:"host"`
	Model         string `yaml:"model"`
	Dimension     int    `yaml:"dimension"`
	BatchSize     int    `yaml:"batch_size"`
	BatchDelayMS  int    `yaml:"batch_delay_ms"`
	MaxTextLength int    `yaml:"max_text_length"`
}

// ExtractorConfig configures the entity tagging service.
type ExtractorConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// ChunkerConfig configures how document text is split into word windows.
type ChunkerConfig struct {
	ChunkSize     int `yaml:"chunk_size"`
	Overlap       int `yaml:"overlap"`
	MinChunkChars int `yaml:"min_chunk_chars"`
}

// SearchConfig configures result limits and score fusion.
type SearchConfig struct {
	DefaultLimit     int     `yaml:"default_limit"`
	VectorWeight     float32 `yaml:"vector_weight"`
	TextWeight       float32 `yaml:"text_weight"`
	RelaxedThreshold float32 `yaml:"relaxed_threshold"`
}

// FormatConfig configures result formatting for presentation.
type FormatConfig struct {
	SearchPreviewLength int `yaml:"search_preview_length"`
	ListPreviewLength   int `yaml:"list_preview_length"`
	MaxEntities         int `yaml:"max_entities"`
}

// Config is the root application configuration.
type Config struct {
	DatabasePath string          `yaml:"database_path"`
	Embedding    EmbeddingConfig `yaml:"embedding"`
	Extractor    ExtractorConfig `yaml:"extractor"`
	Chunker      ChunkerConfig   `yaml:"chunker"`
	Search       SearchConfig    `yaml:"search"`
	Format       FormatConfig    `yaml:"format"`
}

// Default returns a Config suitable for a local OpenAI-compatible model
// server and an on-disk store under the user's home directory.
func Default() *Config {
	cfg := &Config{
		Embedding: EmbeddingConfig{
			Host:      "http://localhost:11434/v1",
			Model:     "embeddinggemma",
			Dimension: 384,
		},
		Extractor: ExtractorConfig{
			Host:  "http://localhost:11434/v1",
			Model: "qwen2.5:3b",
		},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from path. A missing file yields defaults rather than
// an error so that first runs work without setup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./medisearch.yaml first, then
// ~/.config/medisearch/config.yaml, and falls back to defaults when neither
// exists. It returns the path the config was loaded from, or "" for defaults.
func LoadDefault() (*Config, string, error) {
	cwdPath := "medisearch.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}

	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}

	return Default(), "", nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// AIConfig converts the embedding and extractor sections into the provider
// configuration consumed by the ai package.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithExtractorHost(c.Extractor.Host),
		ai.WithEmbeddingModel(c.Embedding.Model, c.Embedding.Dimension),
		ai.WithExtractorModel(c.Extractor.Model),
	)
}

// ChunkerOptions converts the chunker section into chunker options.
func (c *Config) ChunkerOptions() []chunker.Option {
	return []chunker.Option{
		chunker.WithChunkSize(c.Chunker.ChunkSize),
		chunker.WithOverlap(c.Chunker.Overlap),
		chunker.WithMinChunkChars(c.Chunker.MinChunkChars),
	}
}

// BatchDelay reports the configured inter-batch delay as a duration.
func (c *EmbeddingConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "medisearch", "config.yaml"), nil
}

func applyDefaults(cfg *Config) {
	if cfg.DatabasePath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DatabasePath = filepath.Join(home, ".medisearch", "db")
		} else {
			cfg.DatabasePath = "medisearch-db"
		}
	}
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = "http://localhost:11434/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "embeddinggemma"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 384
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 5
	}
	if cfg.Embedding.BatchDelayMS == 0 {
		cfg.Embedding.BatchDelayMS = 100
	}
	if cfg.Embedding.MaxTextLength == 0 {
		cfg.Embedding.MaxTextLength = 8000
	}
	if cfg.Extractor.Host == "" {
		cfg.Extractor.Host = cfg.Embedding.Host
	}
	if cfg.Extractor.Model == "" {
		cfg.Extractor.Model = "qwen2.5:3b"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = chunker.DefaultChunkSize
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = chunker.DefaultOverlap
	}
	if cfg.Chunker.MinChunkChars == 0 {
		cfg.Chunker.MinChunkChars = chunker.DefaultMinChunkChars
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.VectorWeight == 0 {
		cfg.Search.VectorWeight = 0.7
	}
	if cfg.Search.TextWeight == 0 {
		cfg.Search.TextWeight = 0.3
	}
	if cfg.Search.RelaxedThreshold == 0 {
		cfg.Search.RelaxedThreshold = 0.5
	}
	if cfg.Format.SearchPreviewLength == 0 {
		cfg.Format.SearchPreviewLength = 500
	}
	if cfg.Format.ListPreviewLength == 0 {
		cfg.Format.ListPreviewLength = 200
	}
	if cfg.Format.MaxEntities == 0 {
		cfg.Format.MaxEntities = 5
	}
}
