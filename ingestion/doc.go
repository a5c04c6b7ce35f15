// Package ingestion provides pipeline orchestration for processing medical documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Resolving text from inline content or referenced files
//   - Tagging medical entities
//   - Generating embeddings for the composed document representation
//   - Persisting documents, and optionally per-chunk embeddings
//
// Stages run sequentially and each failure surfaces to the caller; a document
// is marked processed only after every stage has succeeded. Chunked ingestion
// is best-effort per chunk and reports which chunk indexes failed.
package ingestion
