package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated by content-based hashing so identical content
// maps to the same record.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentType classifies a medical document.
type DocumentType string

const (
	DocumentTypeClinicalNote     DocumentType = "clinical_note"
	DocumentTypeLabReport        DocumentType = "lab_report"
	DocumentTypePrescription     DocumentType = "prescription"
	DocumentTypeDischargeSummary DocumentType = "discharge_summary"
	DocumentTypeOther            DocumentType = "other"
)

// DocumentTypes lists the valid document type values.
var DocumentTypes = []DocumentType{
	DocumentTypeClinicalNote,
	DocumentTypeLabReport,
	DocumentTypePrescription,
	DocumentTypeDischargeSummary,
	DocumentTypeOther,
}

// MedicalEntity is a labeled span of text tagged by the NER collaborator.
// Labels normally come from a closed set (MEDICATION, CONDITION, PROCEDURE,
// ANATOMY, SYMPTOM, PERSON, DATE, MEASUREMENT) but unknown labels are stored
// as-is rather than rejected.
type MedicalEntity struct {
	Text       string
	Label      string
	Confidence float32
	Start      int
	End        int
}

// DocumentMetadata carries caller-supplied and pipeline-maintained metadata.
type DocumentMetadata struct {
	UploadedAt   time.Time
	PatientID    string
	DocumentType DocumentType
	Tags         []string
	Processed    bool // true only after text, entities, and embedding all succeeded
}

// Document represents an ingested medical document.
// It may be enriched with an embedding and entities during processing.
type Document struct {
	Id         ID
	Title      string
	Content    string
	Vector     []float32 // Whole-document embedding (populated by the pipeline)
	Entities   []MedicalEntity
	Metadata   DocumentMetadata
	InsertedAt time.Time // When the record was inserted into the database
	UpdatedAt  time.Time // When the record was last updated
}

// ContentKey returns the string hashed to derive the document ID.
func (d *Document) ContentKey() string {
	return d.Title + "\n" + d.Content
}

// EmbeddingText composes the representation used for whole-document
// embeddings: title, content, and a flattened "label: text" rendering of
// the tagged entities.
func (d *Document) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(d.Title)
	b.WriteString("\n\n")
	b.WriteString(d.Content)
	for _, e := range d.Entities {
		b.WriteString("\n")
		b.WriteString(e.Label)
		b.WriteString(": ")
		b.WriteString(e.Text)
	}
	return b.String()
}

// ChunkMetadata is the subset of document metadata carried by each chunk,
// plus the embedding model that produced the chunk's vector.
type ChunkMetadata struct {
	PatientID      string
	DocumentType   DocumentType
	EmbeddingModel string
	Dimension      int
	CreatedAt      time.Time
}

// Chunk is a bounded word-window slice of a document's text, embedded
// independently of the parent document. Chunks are immutable once written;
// re-running chunked ingestion bulk-replaces a document's chunks.
type Chunk struct {
	Id          ID
	DocumentId  ID
	ChunkIndex  int // 0-based
	TotalChunks int
	Text        string
	Vector      []float32
	WordCount   int
	Metadata    ChunkMetadata
}

// ChunkID generates a deterministic ID for a chunk of a document.
func ChunkID(documentID ID, chunkIndex int, text string) ID {
	return IDFromContent(fmt.Sprintf("%d:%d:%s", documentID, chunkIndex, text))
}

// SearchResult represents a document match with a relevance score.
// Scores are ordering keys: hybrid fusion adds weighted scores when a
// document is found by more than one strategy, so they may exceed 1.0.
type SearchResult struct {
	Document         *Document
	Score            float32
	RelevantEntities []MedicalEntity
}

// SearchFilter enumerates the supported filter dimensions. All fields are
// optional; zero values mean "no constraint". From and To bound the upload
// time inclusively on both ends. Unrecognized filter keys have no
// representation here and are rejected at the API boundary.
type SearchFilter struct {
	PatientID    string
	DocumentType DocumentType
	Tags         []string
	From         time.Time
	To           time.Time
}

// IsZero reports whether the filter constrains nothing.
func (f *SearchFilter) IsZero() bool {
	return f == nil ||
		(f.PatientID == "" && f.DocumentType == "" && len(f.Tags) == 0 &&
			f.From.IsZero() && f.To.IsZero())
}

// Matches reports whether a document satisfies every set constraint.
func (f *SearchFilter) Matches(doc *Document) bool {
	if f.IsZero() {
		return true
	}
	if f.PatientID != "" && doc.Metadata.PatientID != f.PatientID {
		return false
	}
	if f.DocumentType != "" && doc.Metadata.DocumentType != f.DocumentType {
		return false
	}
	if !f.From.IsZero() && doc.Metadata.UploadedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && f.To.Before(doc.Metadata.UploadedAt) {
		return false
	}
	if len(f.Tags) > 0 {
		tagSet := make(map[string]bool, len(doc.Metadata.Tags))
		for _, t := range doc.Metadata.Tags {
			tagSet[t] = true
		}
		for _, want := range f.Tags {
			if !tagSet[want] {
				return false
			}
		}
	}
	return true
}
