package search

import "github.com/poiesic/medisearch/core"

// Monitor provides hooks to observe the search process.
// Implement this interface to track intermediate tiers and degradation
// during retrieval.
type Monitor interface {
	Start(query string)
	AfterVectorSearch(results []*core.SearchResult)
	AfterLexicalSearch(results []*core.SearchResult)
	Degraded(from, to, reason string)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.SearchResult)  {}
func (n *noopMonitor) AfterLexicalSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) Degraded(_, _, _ string)                   {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)             {}
