package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "embeddinggemma", cfg.Embedding.Model)
		assert.Equal(t, 384, cfg.Embedding.Dimension)
		assert.Equal(t, 500, cfg.Chunker.ChunkSize)
	})

	t.Run("partial file gets defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "embedding:\n  model: custom-embed\n  dimension: 768\nchunker:\n  chunk_size: 200\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "custom-embed", cfg.Embedding.Model)
		assert.Equal(t, 768, cfg.Embedding.Dimension)
		assert.Equal(t, 200, cfg.Chunker.ChunkSize)
		assert.Equal(t, 50, cfg.Chunker.Overlap)
		assert.Equal(t, 5, cfg.Embedding.BatchSize)
		assert.Equal(t, float32(0.7), cfg.Search.VectorWeight)
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("embedding: [not a map"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("extractor host defaults to embedding host", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "embedding:\n  host: http://models.internal:8080/v1\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://models.internal:8080/v1", cfg.Extractor.Host)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Embedding.Model = "text-embedding-3-small"
	cfg.Embedding.Dimension = 1536
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Embedding.Model, loaded.Embedding.Model)
	assert.Equal(t, cfg.Embedding.Dimension, loaded.Embedding.Dimension)
	assert.Equal(t, cfg.Chunker, loaded.Chunker)
}

func TestAIConfig(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Host = "http://localhost:9999"
	cfg.Extractor.Model = "llama3.2:3b"

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://localhost:9999/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "llama3.2:3b", aiCfg.ExtractorModel)
	assert.Equal(t, 384, aiCfg.EmbeddingDimension)
}

func TestBatchDelay(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "100ms", cfg.Embedding.BatchDelay().String())
}
