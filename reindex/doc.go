// Package reindex re-embeds the whole document corpus in bulk.
//
// Switching embedding models invalidates every stored vector; the Reindexer
// walks all documents in batches, re-embeds them through the orchestrator on
// a bounded worker pool, normalizes the resulting vectors, and writes the
// updates back. Transient embedding failures are retried with exponential
// backoff, and progress is reported to a writer as the run advances.
package reindex
