package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/medisearch/core"
)

// Key prefixes for different data types
const (
	documentPrefix        = "medrec"
	documentDatePrefix    = "medrecd"
	documentPatientPrefix = "medrecp"
	documentTypePrefix    = "medrect"
	chunkPrefix           = "chkrec"
	chunkDocumentPrefix   = "chkrecd"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentDateKey generates a partial key for date range seeks.
// Format: prefix:timestamp
func makePartialDocumentDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeDocumentPatientKey generates a composite key for the patient index.
// Format: prefix:patientID:id
func makeDocumentPatientKey(patientID string, id core.ID) []byte {
	prefix := documentPatientPrefix + ":" + patientID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeDocumentTypeKey generates a composite key for the document type index.
// Format: prefix:type:id
func makeDocumentTypeKey(documentType string, id core.ID) []byte {
	prefix := documentTypePrefix + ":" + documentType + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the chunk-by-document index.
// Format: prefix:documentID:chunkIndex
func makeChunkDocumentKey(documentID core.ID, chunkIndex int) []byte {
	prefix := chunkDocumentPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// BigEndian so iteration returns chunks in index order
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

// makePartialChunkDocumentKey generates a partial key for per-document chunk scans.
// Format: prefix:documentID
func makePartialChunkDocumentKey(documentID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
