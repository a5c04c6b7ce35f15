package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	valid := func() *Document {
		return &Document{
			Title:   "Clinical Note",
			Content: "Patient presents with persistent cough.",
			Metadata: DocumentMetadata{
				UploadedAt:   time.Now().UTC(),
				DocumentType: DocumentTypeClinicalNote,
			},
		}
	}

	t.Run("valid document", func(t *testing.T) {
		require.NoError(t, ValidateDocument(valid()))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateDocument(nil)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("empty title", func(t *testing.T) {
		doc := valid()
		doc.Title = "   "
		err := ValidateDocument(doc)
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("empty content", func(t *testing.T) {
		doc := valid()
		doc.Content = ""
		err := ValidateDocument(doc)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("unknown document type", func(t *testing.T) {
		doc := valid()
		doc.Metadata.DocumentType = "radiology_scan"
		err := ValidateDocument(doc)
		assert.ErrorIs(t, err, ErrInvalidDocumentType)
	})

	t.Run("empty document type allowed", func(t *testing.T) {
		doc := valid()
		doc.Metadata.DocumentType = ""
		assert.NoError(t, ValidateDocument(doc))
	})

	t.Run("future timestamp", func(t *testing.T) {
		doc := valid()
		doc.Metadata.UploadedAt = time.Now().Add(time.Hour)
		err := ValidateDocument(doc)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})
}

func TestValidateQuery(t *testing.T) {
	t.Run("valid query", func(t *testing.T) {
		assert.NoError(t, ValidateQuery("diabetes medication"))
	})

	t.Run("empty query", func(t *testing.T) {
		err := ValidateQuery("")
		assert.ErrorIs(t, err, ErrQueryTooShort)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("whitespace only", func(t *testing.T) {
		assert.ErrorIs(t, ValidateQuery("    "), ErrQueryTooShort)
	})

	t.Run("below minimum", func(t *testing.T) {
		assert.ErrorIs(t, ValidateQuery("ecg"), ErrQueryTooShort)
	})

	t.Run("exactly minimum", func(t *testing.T) {
		assert.NoError(t, ValidateQuery("edema"))
	})
}

func TestValidateChunkSource(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		err := ValidateChunkSource("short note")
		assert.ErrorIs(t, err, ErrContentTooShort)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("long enough", func(t *testing.T) {
		text := make([]byte, MinChunkSourceLength)
		for i := range text {
			text[i] = 'a'
		}
		assert.NoError(t, ValidateChunkSource(string(text)))
	})
}

func TestValidateDocumentType(t *testing.T) {
	for _, dt := range DocumentTypes {
		assert.NoError(t, ValidateDocumentType(dt))
	}
	assert.ErrorIs(t, ValidateDocumentType("imaging"), ErrInvalidDocumentType)
}
