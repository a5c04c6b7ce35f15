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


package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinQueryLength is the minimum character count for a search query.
	MinQueryLength = 5

	// MinChunkSourceLength is the minimum character count for a document
	// to be eligible for chunked ingestion.
	MinChunkSourceLength = 100
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Title and Content must not be empty
//   - DocumentType, if set, must be one of the closed enum values
//   - UploadedAt must not be in the future
//
// NOT validated (populated by the pipeline):
//   - Vector (empty until the embedding step runs)
//   - Entities (empty until the tagging step runs)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if strings.TrimSpace(doc.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if doc.Metadata.DocumentType != "" {
		if err := ValidateDocumentType(doc.Metadata.DocumentType); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}

	if !IsValidTimestamp(doc.Metadata.UploadedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateDocumentType validates that a document type is in the closed enum.
func ValidateDocumentType(dt DocumentType) error {
	for _, valid := range DocumentTypes {
		if dt == valid {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidDocumentType, dt)
}

// ValidateQuery validates a search query. Empty or near-empty queries are a
// caller input error, never treated as "match everything".
func ValidateQuery(query string) error {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return fmt.Errorf("%w: %w: minimum %d characters", ErrValidation, ErrQueryTooShort, MinQueryLength)
	}
	return nil
}

// ValidateChunkSource validates text destined for chunked ingestion.
func ValidateChunkSource(text string) error {
	if len(strings.TrimSpace(text)) < MinChunkSourceLength {
		return fmt.Errorf("%w: %w: minimum %d characters", ErrValidation, ErrContentTooShort, MinChunkSourceLength)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// A zero timestamp is valid; the pipeline fills it in at ingestion time.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
