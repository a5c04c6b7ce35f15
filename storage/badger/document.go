package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (r *DocumentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, document := range documents {
			// Content-based IDs make re-ingestion of identical documents idempotent
			if document.Id == 0 {
				document.Id = core.IDFromContent(document.ContentKey())
			}

			document.InsertedAt = time.Now().UTC()
			document.UpdatedAt = document.InsertedAt
			if document.Metadata.UploadedAt.IsZero() {
				document.Metadata.UploadedAt = document.InsertedAt
			}

			key := makeDocumentKey(document.Id)

			// Re-adding the same content overwrites the prior record; its
			// index entries carry the old upload time and must go with it
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := r.deleteIndexes(tx, old); err != nil {
					return err
				}
			}

			// Store primary record
			value := storage.MarshalDocument(document)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update indexes
			if err := r.setIndexes(tx, document); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return documents, err
}

// UpdateDocuments updates existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, document := range documents {
			key := makeDocumentKey(document.Id)

			// Read old record to detect index changes
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			document.UpdatedAt = time.Now().UTC()
			if document.Metadata.UploadedAt.IsZero() {
				document.Metadata.UploadedAt = old.Metadata.UploadedAt
			}

			value := storage.MarshalDocument(document)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if err := r.deleteIndexes(tx, old); err != nil {
				return err
			}
			if err := r.setIndexes(tx, document); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return documents, err
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			// Read record to get metadata for index cleanup
			document, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if document == nil {
				return storage.ErrNotFound
			}

			if err := r.deleteIndexes(tx, document); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		var err error
		result, err = r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			document, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if document != nil {
				result = append(result, document)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments retrieves documents ordered by upload date descending.
func (r *DocumentRepository) ListDocuments(ctx context.Context, offset, limit int, filter *core.SearchFilter) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible date key, then walk backwards
		startKey := makePartialDocumentDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(documentDatePrefix + ":")

		skipped := 0
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var documentID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				documentID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			document, err := r.readDocument(tx, makeDocumentKey(documentID))
			if err != nil {
				return err
			}
			if document == nil {
				continue
			}
			if !matchesFilter(document, filter) {
				continue
			}

			if skipped < offset {
				skipped++
				continue
			}
			results = append(results, document)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

// CountDocuments reports the total number of stored documents.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilar finds documents whose vectors are similar to the given vector.
// Stored vectors with a different dimension come from a different model and
// are skipped rather than compared.
func (r *DocumentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, numCandidates int, filter *core.SearchFilter) ([]*core.SearchResult, error) {
	var results []*core.SearchResult

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		scanned := 0
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if numCandidates > 0 && scanned >= numCandidates {
				break
			}

			var document *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				document, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if document == nil {
				continue
			}

			// Skip documents without embeddings
			if len(document.Vector) == 0 {
				continue
			}
			// Skip vectors from a different embedding model
			if len(document.Vector) != len(vector) {
				continue
			}
			if !matchesFilter(document, filter) {
				continue
			}
			scanned++

			similarity := cosineSimilarity(vector, document.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{
					Document: document,
					Score:    similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// SearchText performs scored keyword search over title and content.
func (r *DocumentRepository) SearchText(ctx context.Context, query string, limit int, filter *core.SearchFilter) ([]*core.SearchResult, error) {
	terms := tokenizeAndFilter(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var document *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				document, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if document == nil {
				continue
			}
			if !matchesFilter(document, filter) {
				continue
			}

			score := scoreKeywords(document, terms)
			if score > 0 {
				results = append(results, &core.SearchResult{
					Document: document,
					Score:    score,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Helper methods

// readDocument reads a document from the transaction.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var document *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		document, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return document, err
}

// setIndexes adds index entries for a document.
func (r *DocumentRepository) setIndexes(tx *badger.Txn, document *core.Document) error {
	idValue := storage.MarshalID(document.Id)

	dateKey := makeDocumentDateKey(document.Metadata.UploadedAt, document.Id)
	if err := tx.Set(dateKey, idValue); err != nil {
		return err
	}
	if document.Metadata.PatientID != "" {
		patientKey := makeDocumentPatientKey(document.Metadata.PatientID, document.Id)
		if err := tx.Set(patientKey, idValue); err != nil {
			return err
		}
	}
	if document.Metadata.DocumentType != "" {
		typeKey := makeDocumentTypeKey(string(document.Metadata.DocumentType), document.Id)
		if err := tx.Set(typeKey, idValue); err != nil {
			return err
		}
	}
	return nil
}

// deleteIndexes removes index entries for a document.
func (r *DocumentRepository) deleteIndexes(tx *badger.Txn, document *core.Document) error {
	dateKey := makeDocumentDateKey(document.Metadata.UploadedAt, document.Id)
	if err := tx.Delete(dateKey); err != nil {
		return err
	}
	if document.Metadata.PatientID != "" {
		patientKey := makeDocumentPatientKey(document.Metadata.PatientID, document.Id)
		if err := tx.Delete(patientKey); err != nil {
			return err
		}
	}
	if document.Metadata.DocumentType != "" {
		typeKey := makeDocumentTypeKey(string(document.Metadata.DocumentType), document.Id)
		if err := tx.Delete(typeKey); err != nil {
			return err
		}
	}
	return nil
}

// matchesFilter reports whether a document passes an optional filter.
func matchesFilter(document *core.Document, filter *core.SearchFilter) bool {
	if filter == nil || filter.IsZero() {
		return true
	}
	return filter.Matches(document)
}

// cosineSimilarity calculates the cosine similarity of two equal-length vectors.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
