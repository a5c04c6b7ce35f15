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


package medisearch

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/ingestion"
	"github.com/poiesic/medisearch/search"
)

// Response is the uniform envelope for API operations. Failures are reported
// through Success and Error rather than raised, so callers at a process or
// serialization boundary get one shape either way.
type Response struct {
	Success    bool                       `json:"success"`
	Error      string                     `json:"error,omitempty"`
	DocumentId core.ID                    `json:"document_id,omitempty"`
	Results    []search.FormattedResult   `json:"results,omitempty"`
	Documents  []search.FormattedDocument `json:"documents,omitempty"`
	Report     *ingestion.ChunkReport     `json:"report,omitempty"`
	Strategy   string                     `json:"strategy,omitempty"`
	Degraded   bool                       `json:"degraded,omitempty"`
	Embedding  []float32                  `json:"embedding,omitempty"`
	Count      int                        `json:"count,omitempty"`
}

// UploadRequest describes a document to ingest.
type UploadRequest struct {
	Title        string
	Content      string
	FileRef      string
	FileHint     string
	PatientID    string
	DocumentType string
	Tags         []string
	UploadedAt   time.Time
}

// SearchRequest describes a retrieval query.
type SearchRequest struct {
	Query        string
	Limit        int
	Threshold    float32
	Mode         string
	Context      string
	PatientID    string
	DocumentType string
	Tags         []string
	From         time.Time
	To           time.Time
}

// ListRequest describes a listing page.
type ListRequest struct {
	Offset       int
	Limit        int
	PatientID    string
	DocumentType string
	Tags         []string
	From         time.Time
	To           time.Time
}

func failure(err error) *Response {
	return &Response{Success: false, Error: err.Error()}
}

// UploadDocument ingests a document as a single embedded record.
func (db *Database) UploadDocument(ctx context.Context, req *UploadRequest) *Response {
	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return failure(err)
	}

	ingestReq, err := toIngestRequest(req)
	if err != nil {
		return failure(err)
	}

	id, err := pipeline.Ingest(ctx, ingestReq)
	if err != nil {
		return failure(err)
	}
	return &Response{Success: true, DocumentId: id}
}

// ChunkAndEmbedDocument ingests a document as overlapping embedded chunks
// alongside the parent record.
func (db *Database) ChunkAndEmbedDocument(ctx context.Context, req *UploadRequest) *Response {
	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return failure(err)
	}

	ingestReq, err := toIngestRequest(req)
	if err != nil {
		return failure(err)
	}

	report, err := pipeline.IngestChunked(ctx, ingestReq)
	if err != nil {
		return failure(err)
	}
	return &Response{Success: true, DocumentId: report.DocumentId, Report: report}
}

// SearchDocuments runs retrieval in the requested mode (hybrid, vector, or
// lexical). An empty mode means hybrid with the full fallback ladder.
func (db *Database) SearchDocuments(ctx context.Context, req *SearchRequest) *Response {
	switch req.Mode {
	case "", "hybrid":
		return db.searchWithMode(ctx, req, search.ModeHybrid)
	case "vector", "semantic":
		return db.searchWithMode(ctx, req, search.ModeVector)
	case "lexical", "text":
		return db.searchWithMode(ctx, req, search.ModeLexical)
	default:
		return failure(fmt.Errorf("%w: unknown search mode %q", core.ErrValidation, req.Mode))
	}
}

// HybridSearch runs hybrid retrieval with the full fallback ladder.
func (db *Database) HybridSearch(ctx context.Context, req *SearchRequest) *Response {
	return db.searchWithMode(ctx, req, search.ModeHybrid)
}

// SemanticSearch runs vector-only retrieval with lexical fallback.
func (db *Database) SemanticSearch(ctx context.Context, req *SearchRequest) *Response {
	return db.searchWithMode(ctx, req, search.ModeVector)
}

// LexicalSearch runs keyword retrieval with substring fallback.
func (db *Database) LexicalSearch(ctx context.Context, req *SearchRequest) *Response {
	return db.searchWithMode(ctx, req, search.ModeLexical)
}

func (db *Database) searchWithMode(ctx context.Context, req *SearchRequest, mode search.Mode) *Response {
	searcher, err := db.NewSearcher()
	if err != nil {
		return failure(err)
	}

	filter, err := buildFilter(req.PatientID, req.DocumentType, req.Tags, req.From, req.To)
	if err != nil {
		return failure(err)
	}

	outcome, err := searcher.Search(ctx, req.Query, &search.Options{
		Limit:     req.Limit,
		Threshold: req.Threshold,
		Filter:    filter,
		Mode:      mode,
		Context:   req.Context,
	})
	if err != nil {
		return failure(err)
	}

	return &Response{
		Success:  true,
		Results:  db.NewFormatter().FormatResults(outcome.Results),
		Strategy: outcome.Strategy,
		Degraded: outcome.Degraded,
		Count:    len(outcome.Results),
	}
}

// ListDocuments returns a formatted page of stored documents, newest first.
func (db *Database) ListDocuments(ctx context.Context, req *ListRequest) *Response {
	filter, err := buildFilter(req.PatientID, req.DocumentType, req.Tags, req.From, req.To)
	if err != nil {
		return failure(err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}

	documents, err := db.documents.ListDocuments(ctx, req.Offset, limit, filter)
	if err != nil {
		return failure(err)
	}

	return &Response{
		Success:   true,
		Documents: db.NewFormatter().FormatDocuments(documents),
		Count:     len(documents),
	}
}

// GetDocument returns a single formatted document by ID.
func (db *Database) GetDocument(ctx context.Context, id core.ID) *Response {
	document, err := db.documents.GetDocument(ctx, id)
	if err != nil {
		return failure(err)
	}
	return &Response{
		Success:    true,
		DocumentId: document.Id,
		Documents:  db.NewFormatter().FormatDocuments([]*core.Document{document}),
		Count:      1,
	}
}

// DeleteDocument removes a document and its chunks.
func (db *Database) DeleteDocument(ctx context.Context, id core.ID) *Response {
	if err := db.chunks.DeleteChunksByDocument(ctx, id); err != nil {
		return failure(err)
	}
	if err := db.documents.DeleteDocuments(ctx, id); err != nil {
		return failure(err)
	}
	return &Response{Success: true, DocumentId: id}
}

// GenerateEmbedding preprocesses and embeds a single text.
func (db *Database) GenerateEmbedding(ctx context.Context, text string) *Response {
	vector, err := db.orchestrator.EmbedText(ctx, text)
	if err != nil {
		return failure(err)
	}
	return &Response{Success: true, Embedding: vector}
}

func toIngestRequest(req *UploadRequest) (*ingestion.IngestRequest, error) {
	documentType := core.DocumentType(req.DocumentType)
	if documentType != "" {
		if err := core.ValidateDocumentType(documentType); err != nil {
			return nil, err
		}
	}
	return &ingestion.IngestRequest{
		Title:    req.Title,
		Content:  req.Content,
		FileRef:  req.FileRef,
		FileHint: req.FileHint,
		Metadata: core.DocumentMetadata{
			PatientID:    req.PatientID,
			DocumentType: documentType,
			Tags:         req.Tags,
			UploadedAt:   req.UploadedAt,
		},
	}, nil
}

func buildFilter(patientID, documentType string, tags []string, from, to time.Time) (*core.SearchFilter, error) {
	dt := core.DocumentType(documentType)
	if dt != "" {
		if err := core.ValidateDocumentType(dt); err != nil {
			return nil, err
		}
	}
	filter := &core.SearchFilter{
		PatientID:    patientID,
		DocumentType: dt,
		Tags:         tags,
		From:         from,
		To:           to,
	}
	if filter.IsZero() {
		return nil, nil
	}
	return filter, nil
}
