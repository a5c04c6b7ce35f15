package search

import (
	"context"
	"strings"

	"github.com/poiesic/medisearch/core"
)

// substringPageSize is the listing page size used by the terminal scan.
const substringPageSize = 100

// substringSearch is the terminal rung of the fallback ladder: a
// case-insensitive containment scan over title and content via the paginated
// listing. Matches carry a fixed low score since containment says nothing
// about relevance strength. An empty result here is final.
func (s *Searcher) substringSearch(ctx context.Context, query string, opts *Options, _ Monitor) ([]*core.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	// The fixed score must still clear the caller's floor
	if s.weights.SubstringScore < opts.Threshold {
		return nil, nil
	}

	var results []*core.SearchResult
	for offset := 0; ; offset += substringPageSize {
		page, err := s.documents.ListDocuments(ctx, offset, substringPageSize, opts.Filter)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, document := range page {
			if !containsFold(document.Title, needle) && !containsFold(document.Content, needle) {
				continue
			}
			results = append(results, &core.SearchResult{
				Document: document,
				Score:    s.weights.SubstringScore,
			})
			if len(results) >= opts.Limit {
				return results, nil
			}
		}

		if len(page) < substringPageSize {
			break
		}
	}

	return results, nil
}

// containsFold reports whether haystack contains an already-lowercased needle.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
