// Package embedding coordinates text preparation and vector generation.
//
// The Orchestrator sits between callers and the ai.Embedder collaborator.
// It normalizes text before every call, splits large workloads into small
// batches with a pause in between, and defers collaborator construction
// until the first embedding is requested so that opening a database never
// pays a model load it might not need.
package embedding
