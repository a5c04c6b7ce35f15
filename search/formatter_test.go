package search

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medisearch/core"
)

func formatterDocument(content string, entities int) *core.Document {
	doc := &core.Document{
		Id:      42,
		Title:   "Cardiology consult",
		Content: content,
		Metadata: core.DocumentMetadata{
			PatientID:    "patient-9",
			DocumentType: core.DocumentTypeClinicalNote,
			Tags:         []string{"cardiology"},
			UploadedAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			Processed:    true,
		},
	}
	for i := 0; i < entities; i++ {
		doc.Entities = append(doc.Entities, core.MedicalEntity{
			Text:  "entity",
			Label: "CONDITION",
			Start: i,
			End:   i + 6,
		})
	}
	return doc
}

func TestFormatResults(t *testing.T) {
	formatter := NewFormatter()

	t.Run("long content truncated with marker", func(t *testing.T) {
		long := strings.Repeat("cardiac findings ", 100)
		results := formatter.FormatResults([]*core.SearchResult{
			{Document: formatterDocument(long, 0), Score: 0.91},
		})
		require.Len(t, results, 1)
		assert.True(t, strings.HasSuffix(results[0].Preview, "..."))
		assert.LessOrEqual(t, len(results[0].Preview), SearchPreviewLength+3)
		assert.Equal(t, float32(0.91), results[0].Score)
	})

	t.Run("short content kept verbatim", func(t *testing.T) {
		results := formatter.FormatResults([]*core.SearchResult{
			{Document: formatterDocument("brief note", 0), Score: 0.5},
		})
		require.Len(t, results, 1)
		assert.Equal(t, "brief note", results[0].Preview)
	})

	t.Run("entities capped", func(t *testing.T) {
		results := formatter.FormatResults([]*core.SearchResult{
			{Document: formatterDocument("brief note", 9), Score: 0.5},
		})
		require.Len(t, results, 1)
		assert.Len(t, results[0].Entities, MaxEntitiesPerResult)
	})

	t.Run("relevant entities preferred over document entities", func(t *testing.T) {
		doc := formatterDocument("brief note", 3)
		results := formatter.FormatResults([]*core.SearchResult{
			{
				Document: doc,
				Score:    0.5,
				RelevantEntities: []core.MedicalEntity{
					{Text: "lisinopril", Label: "MEDICATION"},
				},
			},
		})
		require.Len(t, results, 1)
		require.Len(t, results[0].Entities, 1)
		assert.Equal(t, "lisinopril", results[0].Entities[0].Text)
	})

	t.Run("stored record never mutated", func(t *testing.T) {
		long := strings.Repeat("cardiac findings ", 100)
		doc := formatterDocument(long, 9)
		formatter.FormatResults([]*core.SearchResult{{Document: doc, Score: 0.5}})
		assert.Equal(t, long, doc.Content)
		assert.Len(t, doc.Entities, 9)
	})
}

func TestFormatDocuments(t *testing.T) {
	formatter := NewFormatter()

	t.Run("listing preview shorter than search preview", func(t *testing.T) {
		long := strings.Repeat("cardiac findings ", 100)
		docs := formatter.FormatDocuments([]*core.Document{formatterDocument(long, 0)})
		require.Len(t, docs, 1)
		assert.True(t, strings.HasSuffix(docs[0].Preview, "..."))
		assert.LessOrEqual(t, len(docs[0].Preview), ListPreviewLength+3)
	})

	t.Run("metadata carried through", func(t *testing.T) {
		docs := formatter.FormatDocuments([]*core.Document{formatterDocument("brief note", 0)})
		require.Len(t, docs, 1)
		assert.Equal(t, core.ID(42), docs[0].DocumentId)
		assert.Equal(t, "patient-9", docs[0].PatientID)
		assert.Equal(t, core.DocumentTypeClinicalNote, docs[0].DocumentType)
		assert.Equal(t, []string{"cardiology"}, docs[0].Tags)
		assert.True(t, docs[0].Processed)
	})

	t.Run("custom preview lengths", func(t *testing.T) {
		custom := NewFormatter(WithPreviewLengths(20, 10))
		long := strings.Repeat("x", 100)
		results := custom.FormatResults([]*core.SearchResult{
			{Document: formatterDocument(long, 0), Score: 1},
		})
		docs := custom.FormatDocuments([]*core.Document{formatterDocument(long, 0)})
		assert.Equal(t, strings.Repeat("x", 20)+"...", results[0].Preview)
		assert.Equal(t, strings.Repeat("x", 10)+"...", docs[0].Preview)
	})
}
