package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medisearch/core"
)

func TestChunkRepository_AddAndGetByDocument(t *testing.T) {
	_, chunks, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	docID := core.ID(42)

	var toAdd []*core.Chunk
	for i := 0; i < 3; i++ {
		toAdd = append(toAdd, &core.Chunk{
			DocumentId:  docID,
			ChunkIndex:  i,
			TotalChunks: 3,
			Text:        []string{"first chunk body", "second chunk body", "third chunk body"}[i],
			WordCount:   3,
		})
	}

	added, err := chunks.AddChunks(ctx, toAdd...)
	require.NoError(t, err)
	for _, chunk := range added {
		assert.NotZero(t, chunk.Id)
	}

	got, err := chunks.GetChunksByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by chunk index
	for i, chunk := range got {
		assert.Equal(t, i, chunk.ChunkIndex)
	}
}

func TestChunkRepository_GetEmptyDocument(t *testing.T) {
	_, chunks, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	got, err := chunks.GetChunksByDocument(context.Background(), core.ID(7))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChunkRepository_DeleteByDocument(t *testing.T) {
	_, chunks, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	docID := core.ID(99)
	otherDocID := core.ID(100)

	_, err = chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: docID, ChunkIndex: 0, TotalChunks: 2, Text: "kept nowhere"},
		&core.Chunk{DocumentId: docID, ChunkIndex: 1, TotalChunks: 2, Text: "also removed"},
		&core.Chunk{DocumentId: otherDocID, ChunkIndex: 0, TotalChunks: 1, Text: "survives deletion"},
	)
	require.NoError(t, err)

	require.NoError(t, chunks.DeleteChunksByDocument(ctx, docID))

	gone, err := chunks.GetChunksByDocument(ctx, docID)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := chunks.GetChunksByDocument(ctx, otherDocID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	t.Run("deleting an empty set is not an error", func(t *testing.T) {
		assert.NoError(t, chunks.DeleteChunksByDocument(ctx, docID))
	})
}

func TestChunkRepository_BulkReplace(t *testing.T) {
	_, chunks, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	docID := core.ID(11)

	_, err = chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: docID, ChunkIndex: 0, TotalChunks: 2, Text: "old first"},
		&core.Chunk{DocumentId: docID, ChunkIndex: 1, TotalChunks: 2, Text: "old second"},
	)
	require.NoError(t, err)

	// Re-ingestion path: wipe then write the fresh set
	require.NoError(t, chunks.DeleteChunksByDocument(ctx, docID))
	_, err = chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: docID, ChunkIndex: 0, TotalChunks: 1, Text: "new only"},
	)
	require.NoError(t, err)

	got, err := chunks.GetChunksByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new only", got[0].Text)
}
