// Package search provides hybrid retrieval over ingested medical documents.
//
// The Searcher runs a query through an ordered strategy ladder. Hybrid mode
// fuses vector similarity with keyword scoring; when a tier fails or comes up
// empty, the ladder degrades through relaxed vector retrieval, lexical
// scoring, and finally a plain substring scan. Degradation is observable
// through the Monitor hooks and the Outcome's strategy name, never silent.
//
// The Formatter shapes stored records into presentation structs with bounded
// previews and a capped entity list.
package search
