package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/storage"
)

func testDocument(title, content string, meta core.DocumentMetadata) *core.Document {
	return &core.Document{
		Title:    title,
		Content:  content,
		Metadata: meta,
	}
}

func TestDocumentRepository_AddAndGet(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	doc := testDocument("Annual physical", "Patient in good health. Blood pressure normal.", core.DocumentMetadata{
		PatientID:    "p-100",
		DocumentType: core.DocumentTypeClinicalNote,
	})

	added, err := docs.AddDocuments(ctx, doc)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotZero(t, added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())
	assert.False(t, added[0].Metadata.UploadedAt.IsZero())

	got, err := docs.GetDocument(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Annual physical", got.Title)
	assert.Equal(t, "p-100", got.Metadata.PatientID)
}

func TestDocumentRepository_ContentBasedIDs(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	first, err := docs.AddDocuments(ctx, testDocument("Note", "Same content.", core.DocumentMetadata{}))
	require.NoError(t, err)
	second, err := docs.AddDocuments(ctx, testDocument("Note", "Same content.", core.DocumentMetadata{}))
	require.NoError(t, err)

	// Identical title and content derive the same ID, so re-ingestion overwrites
	assert.Equal(t, first[0].Id, second[0].Id)

	count, err := docs.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The first add's date index entry must not linger as a second listing
	listed, err := docs.ListDocuments(ctx, 0, 10, nil)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first[0].Id, listed[0].Id)
}

func TestDocumentRepository_GetMissing(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = docs.GetDocument(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentRepository_Delete(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	added, err := docs.AddDocuments(ctx, testDocument("To delete", "Short-lived record.", core.DocumentMetadata{
		PatientID: "p-200",
	}))
	require.NoError(t, err)

	require.NoError(t, docs.DeleteDocuments(ctx, added[0].Id))

	_, err = docs.GetDocument(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	t.Run("deleting again reports not found", func(t *testing.T) {
		err := docs.DeleteDocuments(ctx, added[0].Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDocumentRepository_Update(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	added, err := docs.AddDocuments(ctx, testDocument("Lab results", "WBC elevated.", core.DocumentMetadata{}))
	require.NoError(t, err)

	added[0].Vector = []float32{0.1, 0.2, 0.3}
	added[0].Metadata.Processed = true
	updated, err := docs.UpdateDocuments(ctx, added[0])
	require.NoError(t, err)

	got, err := docs.GetDocument(ctx, updated[0].Id)
	require.NoError(t, err)
	assert.True(t, got.Metadata.Processed)
	assert.Len(t, got.Vector, 3)
	assert.False(t, got.UpdatedAt.Before(got.InsertedAt))

	t.Run("updating missing document fails", func(t *testing.T) {
		missing := testDocument("Ghost", "Not stored.", core.DocumentMetadata{})
		missing.Id = core.ID(999)
		_, err := docs.UpdateDocuments(ctx, missing)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDocumentRepository_ListDocuments(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		doc := testDocument(
			[]string{"First", "Second", "Third", "Fourth", "Fifth"}[i],
			"Clinical content for listing order checks.",
			core.DocumentMetadata{
				UploadedAt:   base.Add(time.Duration(i) * time.Hour),
				PatientID:    "p-300",
				DocumentType: core.DocumentTypeClinicalNote,
			},
		)
		_, err := docs.AddDocuments(ctx, doc)
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		listed, err := docs.ListDocuments(ctx, 0, 10, nil)
		require.NoError(t, err)
		require.Len(t, listed, 5)
		assert.Equal(t, "Fifth", listed[0].Title)
		assert.Equal(t, "First", listed[4].Title)
	})

	t.Run("offset and limit paginate", func(t *testing.T) {
		listed, err := docs.ListDocuments(ctx, 1, 2, nil)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "Fourth", listed[0].Title)
		assert.Equal(t, "Third", listed[1].Title)
	})

	t.Run("filter by date range", func(t *testing.T) {
		filter := &core.SearchFilter{
			From: base.Add(90 * time.Minute),
			To:   base.Add(4 * time.Hour),
		}
		listed, err := docs.ListDocuments(ctx, 0, 10, filter)
		require.NoError(t, err)
		require.Len(t, listed, 3)
	})

	t.Run("filter by patient excludes others", func(t *testing.T) {
		_, err := docs.AddDocuments(ctx, testDocument("Other patient", "Unrelated record content.", core.DocumentMetadata{
			UploadedAt: base.Add(10 * time.Hour),
			PatientID:  "p-999",
		}))
		require.NoError(t, err)

		filter := &core.SearchFilter{PatientID: "p-300"}
		listed, err := docs.ListDocuments(ctx, 0, 10, filter)
		require.NoError(t, err)
		assert.Len(t, listed, 5)
		for _, doc := range listed {
			assert.Equal(t, "p-300", doc.Metadata.PatientID)
		}
	})
}

func TestDocumentRepository_FindSimilar(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	vectors := map[string][]float32{
		"Exact match":    {1.0, 0.0, 0.0},
		"Close match":    {0.9, 0.1, 0.0},
		"Unrelated":      {0.0, 0.0, 1.0},
		"Wrong model":    {1.0, 0.0, 0.0, 0.0},
		"No vector":      nil,
	}
	for title, vector := range vectors {
		doc := testDocument(title, "Vector search fixture content.", core.DocumentMetadata{})
		doc.Vector = vector
		_, err := docs.AddDocuments(ctx, doc)
		require.NoError(t, err)
	}

	query := []float32{1.0, 0.0, 0.0}

	t.Run("orders by similarity and skips mismatched dimensions", func(t *testing.T) {
		results, err := docs.FindSimilar(ctx, query, 0.5, 10, 100, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Exact match", results[0].Document.Title)
		assert.Equal(t, "Close match", results[1].Document.Title)
	})

	t.Run("threshold is monotonic", func(t *testing.T) {
		loose, err := docs.FindSimilar(ctx, query, 0.1, 10, 100, nil)
		require.NoError(t, err)
		strict, err := docs.FindSimilar(ctx, query, 0.95, 10, 100, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(loose), len(strict))
	})

	t.Run("limit truncates", func(t *testing.T) {
		results, err := docs.FindSimilar(ctx, query, 0.0, 1, 100, nil)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestDocumentRepository_SearchText(t *testing.T) {
	docs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	fixtures := []*core.Document{
		testDocument("Diabetes management plan", "Metformin dosage adjusted for type 2 diabetes.", core.DocumentMetadata{PatientID: "p-1"}),
		testDocument("Cardiology consult", "Patient reports chest pain. Diabetes noted in history.", core.DocumentMetadata{PatientID: "p-2"}),
		testDocument("Dermatology note", "Rash on left forearm, topical treatment prescribed.", core.DocumentMetadata{PatientID: "p-3"}),
	}
	for _, doc := range fixtures {
		_, err := docs.AddDocuments(ctx, doc)
		require.NoError(t, err)
	}

	t.Run("title matches outrank content matches", func(t *testing.T) {
		results, err := docs.SearchText(ctx, "diabetes", 10, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Diabetes management plan", results[0].Document.Title)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("no matches yields empty", func(t *testing.T) {
		results, err := docs.SearchText(ctx, "appendectomy", 10, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("filter narrows results", func(t *testing.T) {
		filter := &core.SearchFilter{PatientID: "p-2"}
		results, err := docs.SearchText(ctx, "diabetes", 10, filter)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Cardiology consult", results[0].Document.Title)
	})
}
