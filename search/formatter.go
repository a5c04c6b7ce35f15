package search

import (
	"time"

	"github.com/poiesic/medisearch/core"
)

const (
	// SearchPreviewLength is the content preview length for search results.
	SearchPreviewLength = 500

	// ListPreviewLength is the content preview length for document listings.
	ListPreviewLength = 200

	// MaxEntitiesPerResult caps the entities shown on a formatted result.
	MaxEntitiesPerResult = 5
)

// FormattedResult is the presentation shape of a search hit.
type FormattedResult struct {
	DocumentId   core.ID              `json:"document_id"`
	Title        string               `json:"title"`
	Preview      string               `json:"preview"`
	Score        float32              `json:"score"`
	PatientID    string               `json:"patient_id,omitempty"`
	DocumentType core.DocumentType    `json:"document_type,omitempty"`
	UploadedAt   time.Time            `json:"uploaded_at"`
	Entities     []core.MedicalEntity `json:"entities,omitempty"`
}

// FormattedDocument is the presentation shape of a listing entry.
type FormattedDocument struct {
	DocumentId   core.ID           `json:"document_id"`
	Title        string            `json:"title"`
	Preview      string            `json:"preview"`
	PatientID    string            `json:"patient_id,omitempty"`
	DocumentType core.DocumentType `json:"document_type,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	UploadedAt   time.Time         `json:"uploaded_at"`
	Processed    bool              `json:"processed"`
}

// Formatter shapes stored records for presentation. It only copies; stored
// documents are never mutated.
type Formatter struct {
	searchPreviewLength int
	listPreviewLength   int
	maxEntities         int
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithPreviewLengths overrides the search and listing preview lengths.
func WithPreviewLengths(search, list int) FormatterOption {
	return func(f *Formatter) {
		if search > 0 {
			f.searchPreviewLength = search
		}
		if list > 0 {
			f.listPreviewLength = list
		}
	}
}

// WithMaxEntities overrides the entity cap per result.
func WithMaxEntities(n int) FormatterOption {
	return func(f *Formatter) {
		if n >= 0 {
			f.maxEntities = n
		}
	}
}

// NewFormatter creates a Formatter with default preview lengths.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		searchPreviewLength: SearchPreviewLength,
		listPreviewLength:   ListPreviewLength,
		maxEntities:         MaxEntitiesPerResult,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatResults shapes search results for presentation.
func (f *Formatter) FormatResults(results []*core.SearchResult) []FormattedResult {
	formatted := make([]FormattedResult, 0, len(results))
	for _, result := range results {
		doc := result.Document
		entities := result.RelevantEntities
		if len(entities) == 0 {
			entities = doc.Entities
		}
		formatted = append(formatted, FormattedResult{
			DocumentId:   doc.Id,
			Title:        doc.Title,
			Preview:      truncate(doc.Content, f.searchPreviewLength),
			Score:        result.Score,
			PatientID:    doc.Metadata.PatientID,
			DocumentType: doc.Metadata.DocumentType,
			UploadedAt:   doc.Metadata.UploadedAt,
			Entities:     capEntities(entities, f.maxEntities),
		})
	}
	return formatted
}

// FormatDocuments shapes listing entries for presentation.
func (f *Formatter) FormatDocuments(documents []*core.Document) []FormattedDocument {
	formatted := make([]FormattedDocument, 0, len(documents))
	for _, doc := range documents {
		formatted = append(formatted, FormattedDocument{
			DocumentId:   doc.Id,
			Title:        doc.Title,
			Preview:      truncate(doc.Content, f.listPreviewLength),
			PatientID:    doc.Metadata.PatientID,
			DocumentType: doc.Metadata.DocumentType,
			Tags:         doc.Metadata.Tags,
			UploadedAt:   doc.Metadata.UploadedAt,
			Processed:    doc.Metadata.Processed,
		})
	}
	return formatted
}

// truncate cuts text to at most n runes, appending a marker when cut.
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// capEntities copies at most n entities.
func capEntities(entities []core.MedicalEntity, n int) []core.MedicalEntity {
	if len(entities) <= n {
		return append([]core.MedicalEntity(nil), entities...)
	}
	return append([]core.MedicalEntity(nil), entities[:n]...)
}
