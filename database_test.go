package medisearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medisearch/ai/mock"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	t.Run("on disk", func(t *testing.T) {
		db, err := NewDatabase(t.TempDir() + "/db")
		require.NoError(t, err)
		require.NotNil(t, db.DocumentRepository())
		require.NotNil(t, db.ChunkRepository())
		require.NoError(t, db.Close())
	})

	t.Run("pipeline factories", func(t *testing.T) {
		db := newTestDatabase(t)

		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		assert.NotNil(t, pipeline)

		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		assert.NotNil(t, searcher)

		assert.NotNil(t, db.NewFormatter())
		assert.NotNil(t, db.NewReindexer(nil))
	})
}
