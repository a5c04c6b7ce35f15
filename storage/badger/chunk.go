package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.Id == 0 {
				chunk.Id = core.ChunkID(chunk.DocumentId, chunk.ChunkIndex, chunk.Text)
			}

			key := makeChunkKey(chunk.Id)
			value := storage.MarshalChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Index by parent document so chunk sets iterate in chunk order
			indexKey := makeChunkDocumentKey(chunk.DocumentId, chunk.ChunkIndex)
			if err := tx.Set(indexKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunksByDocument retrieves all chunks of a document, ordered by chunk index.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkDocumentKey(documentID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := r.readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteChunksByDocument removes all chunks of a document.
func (r *ChunkRepository) DeleteChunksByDocument(ctx context.Context, documentID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkDocumentKey(documentID)

		// Collect keys first; deleting while iterating invalidates the iterator
		var indexKeys [][]byte
		var chunkKeys [][]byte

		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}

			indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))
			chunkKeys = append(chunkKeys, makeChunkKey(chunkID))
		}
		iter.Close()

		for i := range indexKeys {
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
			if err := tx.Delete(chunkKeys[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readChunk reads a chunk from the transaction.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
