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

import "errors"

// Error taxonomy shared across the pipeline. Callers classify failures with
// errors.Is against these sentinels; specific causes wrap them.
var (
	// ErrExtraction indicates no usable text could be extracted from a source.
	ErrExtraction = errors.New("extraction produced no usable text")

	// ErrEmbedding indicates an embedding model or API failure.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates two vectors of different lengths were compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrValidation indicates input that fails domain validation.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidDocumentType indicates a document type outside the closed enum.
	ErrInvalidDocumentType = errors.New("invalid document type")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrQueryTooShort indicates a search query below the minimum length.
	ErrQueryTooShort = errors.New("query too short")

	// ErrContentTooShort indicates chunk source text below the minimum length.
	ErrContentTooShort = errors.New("content too short for chunked ingestion")
)
