package reindex

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medisearch/ai/mock"
	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/embedding"
	"github.com/poiesic/medisearch/storage"
	"github.com/poiesic/medisearch/storage/badger"
)

func seedDocuments(t *testing.T, docs storage.DocumentRepository, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := docs.AddDocuments(ctx, &core.Document{
			Title:   "Note " + strings.Repeat("x", i+1),
			Content: "Clinical content awaiting re-embedding.",
		})
		require.NoError(t, err)
	}
}

func TestReindexer_Run(t *testing.T) {
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedDocuments(t, docs, 7)

	embedder := mock.NewMockEmbedder()
	orchestrator := embedding.NewOrchestratorFor(embedder, embedding.WithBatchDelay(0))

	var out bytes.Buffer
	reindexer := NewReindexer(docs, orchestrator, &Config{
		BatchSize:      3,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		Workers:        2,
	}, &out)

	require.NoError(t, reindexer.Run(context.Background()))

	listed, err := docs.ListDocuments(context.Background(), 0, 10, nil)
	require.NoError(t, err)
	require.Len(t, listed, 7)
	for _, doc := range listed {
		assert.Len(t, doc.Vector, 384)
		assert.True(t, doc.Metadata.Processed)
	}
	assert.Contains(t, out.String(), "Reindex complete")
}

func TestReindexer_EmptyDatabase(t *testing.T) {
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	orchestrator := embedding.NewOrchestratorFor(mock.NewMockEmbedder(), embedding.WithBatchDelay(0))

	var out bytes.Buffer
	reindexer := NewReindexer(docs, orchestrator, nil, &out)
	require.NoError(t, reindexer.Run(context.Background()))
	assert.Contains(t, out.String(), "No documents found")
}

func TestReindexer_BatchFailureSurfaces(t *testing.T) {
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedDocuments(t, docs, 4)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	orchestrator := embedding.NewOrchestratorFor(embedder, embedding.WithBatchDelay(0))

	var out bytes.Buffer
	reindexer := NewReindexer(docs, orchestrator, &Config{
		BatchSize:  2,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Workers:    1,
	}, &out)

	err = reindexer.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmbedding)
}
