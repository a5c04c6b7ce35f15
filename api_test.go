package medisearch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medisearch/core"
)

const apiSampleNote = `Patient presents with persistent fever and cough lasting nine days.
History of hypertension managed with lisinopril 10mg daily. Blood pressure
measured at 150/95 on arrival. Recommended chest radiograph to rule out
pneumonia and adjusted antihypertensive dosing pending follow-up.`

func uploadSample(t *testing.T, db *Database) core.ID {
	t.Helper()
	resp := db.UploadDocument(context.Background(), &UploadRequest{
		Title:        "Acute visit note",
		Content:      apiSampleNote,
		PatientID:    "patient-7",
		DocumentType: "clinical_note",
	})
	require.True(t, resp.Success, resp.Error)
	require.NotZero(t, resp.DocumentId)
	return resp.DocumentId
}

func TestUploadDocument(t *testing.T) {
	db := newTestDatabase(t)

	t.Run("success", func(t *testing.T) {
		id := uploadSample(t, db)

		got := db.GetDocument(context.Background(), id)
		require.True(t, got.Success)
		require.Len(t, got.Documents, 1)
		assert.Equal(t, "Acute visit note", got.Documents[0].Title)
		assert.True(t, got.Documents[0].Processed)
	})

	t.Run("invalid document type", func(t *testing.T) {
		resp := db.UploadDocument(context.Background(), &UploadRequest{
			Title:        "Bad type",
			Content:      apiSampleNote,
			DocumentType: "telegram",
		})
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "telegram")
	})

	t.Run("missing title", func(t *testing.T) {
		resp := db.UploadDocument(context.Background(), &UploadRequest{Content: apiSampleNote})
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestChunkAndEmbedDocument(t *testing.T) {
	db := newTestDatabase(t)

	longNote := strings.Repeat(apiSampleNote+" ", 20)
	resp := db.ChunkAndEmbedDocument(context.Background(), &UploadRequest{
		Title:        "Long discharge summary",
		Content:      longNote,
		DocumentType: "discharge_summary",
	})
	require.True(t, resp.Success, resp.Error)
	require.NotNil(t, resp.Report)
	assert.Equal(t, resp.DocumentId, resp.Report.DocumentId)
	assert.Greater(t, resp.Report.TotalChunks, 0)
	assert.Equal(t, resp.Report.TotalChunks, resp.Report.SuccessfulChunks)
	assert.Empty(t, resp.Report.FailedChunks)

	chunks, err := db.ChunkRepository().GetChunksByDocument(context.Background(), resp.DocumentId)
	require.NoError(t, err)
	assert.Len(t, chunks, resp.Report.TotalChunks)
}

func TestSearchDocuments(t *testing.T) {
	db := newTestDatabase(t)
	uploadSample(t, db)

	t.Run("hybrid finds uploaded document", func(t *testing.T) {
		resp := db.SearchDocuments(context.Background(), &SearchRequest{Query: "hypertension treatment"})
		require.True(t, resp.Success, resp.Error)
		require.NotEmpty(t, resp.Results)
		assert.Equal(t, "Acute visit note", resp.Results[0].Title)
		assert.NotEmpty(t, resp.Strategy)
		assert.Equal(t, len(resp.Results), resp.Count)
	})

	t.Run("query too short", func(t *testing.T) {
		resp := db.SearchDocuments(context.Background(), &SearchRequest{Query: "flu"})
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("patient filter excludes others", func(t *testing.T) {
		resp := db.SearchDocuments(context.Background(), &SearchRequest{
			Query:     "hypertension treatment",
			PatientID: "someone-else",
		})
		require.True(t, resp.Success, resp.Error)
		assert.Empty(t, resp.Results)
	})

	t.Run("lexical mode", func(t *testing.T) {
		resp := db.LexicalSearch(context.Background(), &SearchRequest{Query: "lisinopril dosing"})
		require.True(t, resp.Success, resp.Error)
		require.NotEmpty(t, resp.Results)
	})

	t.Run("semantic mode", func(t *testing.T) {
		resp := db.SemanticSearch(context.Background(), &SearchRequest{Query: "blood pressure medication"})
		require.True(t, resp.Success, resp.Error)
	})

	t.Run("mode dispatch", func(t *testing.T) {
		resp := db.SearchDocuments(context.Background(), &SearchRequest{
			Query: "lisinopril dosing",
			Mode:  "lexical",
		})
		require.True(t, resp.Success, resp.Error)
		require.NotEmpty(t, resp.Results)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		resp := db.SearchDocuments(context.Background(), &SearchRequest{
			Query: "hypertension treatment",
			Mode:  "telepathic",
		})
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "telepathic")
	})
}

func TestListAndDeleteDocuments(t *testing.T) {
	db := newTestDatabase(t)
	id := uploadSample(t, db)

	listed := db.ListDocuments(context.Background(), &ListRequest{Limit: 10})
	require.True(t, listed.Success, listed.Error)
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, id, listed.Documents[0].DocumentId)

	deleted := db.DeleteDocument(context.Background(), id)
	require.True(t, deleted.Success, deleted.Error)

	after := db.ListDocuments(context.Background(), &ListRequest{Limit: 10})
	require.True(t, after.Success)
	assert.Zero(t, after.Count)

	missing := db.GetDocument(context.Background(), id)
	assert.False(t, missing.Success)
}

func TestGenerateEmbedding(t *testing.T) {
	db := newTestDatabase(t)

	resp := db.GenerateEmbedding(context.Background(), "chronic kidney disease stage three")
	require.True(t, resp.Success, resp.Error)
	assert.Len(t, resp.Embedding, 384)
}
