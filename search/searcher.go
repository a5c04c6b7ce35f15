package search

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/embedding"
	"github.com/poiesic/medisearch/storage"
)

// Mode selects the retrieval strategy ladder.
type Mode string

const (
	// ModeVector retrieves by embedding similarity, falling back to lexical
	// and substring search when the vector tier fails or comes up empty.
	ModeVector Mode = "vector"

	// ModeLexical retrieves by keyword scoring only.
	ModeLexical Mode = "lexical"

	// ModeHybrid fuses vector and lexical scores. This is the default.
	ModeHybrid Mode = "hybrid"
)

// Weights holds the tunable constants of hybrid retrieval. Fused scores are
// ordering keys, not probabilities: a document that both tiers agree on
// compounds additively and may exceed 1.0.
type Weights struct {
	// Vector is the multiplier applied to similarity scores during fusion.
	Vector float32
	// Text is the multiplier applied to lexical scores during fusion.
	Text float32
	// HybridVectorThreshold is the similarity floor for the vector tier
	// inside hybrid search.
	HybridVectorThreshold float32
	// RelaxedThreshold is the similarity floor used when retrying
	// vector-only after a hybrid vector failure.
	RelaxedThreshold float32
	// SubstringScore is the fixed score of terminal substring matches.
	SubstringScore float32
}

// DefaultWeights returns the standard retrieval weights.
func DefaultWeights() Weights {
	return Weights{
		Vector:                0.7,
		Text:                  0.3,
		HybridVectorThreshold: 0.1,
		RelaxedThreshold:      0.5,
		SubstringScore:        0.3,
	}
}

const (
	// DefaultLimit is the result count when the caller does not set one.
	DefaultLimit = 10

	// minCandidatePool is the smallest candidate scan used for vector search.
	minCandidatePool = 100
)

// Options holds per-search parameters.
type Options struct {
	// Limit caps the result count. Defaults to DefaultLimit.
	Limit int
	// Threshold is the minimum score. For hybrid search it applies to the
	// fused score so that tightening it never adds results.
	Threshold float32
	// Filter narrows results by patient, document type, tags, or date range.
	Filter *core.SearchFilter
	// Mode selects the strategy ladder. Defaults to ModeHybrid.
	Mode Mode
	// Context optionally steers query embedding.
	Context string
	// Monitor observes the search. Defaults to a no-op.
	Monitor Monitor
}

// Outcome carries search results along with the strategy that actually
// produced them, so callers can observe degradation.
type Outcome struct {
	Results  []*core.SearchResult
	Strategy string
	Degraded bool
}

// Searcher provides hybrid vector and lexical retrieval over documents with
// a cascading fallback ladder.
type Searcher struct {
	documents    storage.DocumentRepository
	orchestrator *embedding.Orchestrator
	weights      Weights
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithWeights overrides the retrieval weights.
func WithWeights(weights Weights) Option {
	return func(s *Searcher) error {
		s.weights = weights
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documents storage.DocumentRepository,
	orchestrator *embedding.Orchestrator,
	opts ...Option,
) (*Searcher, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}

	s := &Searcher{
		documents:    documents,
		orchestrator: orchestrator,
		weights:      DefaultWeights(),
		logger:       slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs the query through the strategy ladder for the selected mode.
// The outcome names the strategy that produced the results; falling past the
// first rung is reported through the monitor and the Degraded flag, never as
// an error.
func (s *Searcher) Search(ctx context.Context, query string, opts *Options) (*Outcome, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Mode == "" {
		opts.Mode = ModeHybrid
	}
	monitor := opts.Monitor
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	monitor.Start(query)

	ladder := s.ladderFor(opts.Mode)
	outcome, err := s.runLadder(ctx, ladder, query, opts, monitor)
	if err != nil {
		return nil, err
	}

	monitor.Finish(outcome.Results)
	return outcome, nil
}

// ladderFor returns the ordered strategies for a mode.
func (s *Searcher) ladderFor(mode Mode) []strategy {
	switch mode {
	case ModeVector:
		return []strategy{
			{name: StrategyVector, run: s.vectorSearch},
			{name: StrategyLexical, run: s.lexicalSearch},
			{name: StrategySubstring, run: s.substringSearch},
		}
	case ModeLexical:
		return []strategy{
			{name: StrategyLexical, run: s.lexicalSearch},
			{name: StrategySubstring, run: s.substringSearch},
		}
	default:
		return []strategy{
			{name: StrategyHybrid, run: s.hybridSearch},
			{name: StrategyRelaxedVector, run: s.relaxedVectorSearch},
			{name: StrategyLexical, run: s.lexicalSearch},
			{name: StrategySubstring, run: s.substringSearch},
		}
	}
}

// runLadder executes strategies in order, falling to the next rung only when
// a strategy fails to execute. An empty result from a strategy that ran
// successfully is final: lower rungs score differently, so falling through on
// emptiness would let a tighter threshold surface more results.
func (s *Searcher) runLadder(ctx context.Context, ladder []strategy, query string, opts *Options, monitor Monitor) (*Outcome, error) {
	for i, strat := range ladder {
		results, err := strat.run(ctx, query, opts, monitor)
		if err != nil {
			s.logger.Warn("search strategy failed",
				"strategy", strat.name,
				"err", err)
			if i == len(ladder)-1 {
				return nil, err
			}
			monitor.Degraded(strat.name, ladder[i+1].name, "strategy error: "+err.Error())
			continue
		}

		return &Outcome{
			Results:  results,
			Strategy: strat.name,
			Degraded: i > 0,
		}, nil
	}

	return nil, nil
}

// vectorSearch embeds the query and retrieves by similarity. The candidate
// pool scales with the requested limit so small queries stay cheap without
// starving recall on large ones.
func (s *Searcher) vectorSearch(ctx context.Context, query string, opts *Options, monitor Monitor) ([]*core.SearchResult, error) {
	return s.vectorSearchAt(ctx, query, opts, monitor, opts.Threshold, opts.Limit)
}

// relaxedVectorSearch retries vector-only retrieval at a high similarity
// floor after a hybrid failure.
func (s *Searcher) relaxedVectorSearch(ctx context.Context, query string, opts *Options, monitor Monitor) ([]*core.SearchResult, error) {
	return s.vectorSearchAt(ctx, query, opts, monitor, s.weights.RelaxedThreshold, opts.Limit)
}

func (s *Searcher) vectorSearchAt(ctx context.Context, query string, opts *Options, monitor Monitor, threshold float32, limit int) ([]*core.SearchResult, error) {
	vector, err := s.orchestrator.EmbedQuery(ctx, query, opts.Context)
	if err != nil {
		return nil, err
	}

	numCandidates := opts.Limit * 10
	if numCandidates < minCandidatePool {
		numCandidates = minCandidatePool
	}

	// Over-retrieve, then truncate after thresholding
	results, err := s.documents.FindSimilar(ctx, vector, threshold, limit*2, numCandidates, opts.Filter)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(results)

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// lexicalSearch retrieves by keyword scoring.
func (s *Searcher) lexicalSearch(ctx context.Context, query string, opts *Options, monitor Monitor) ([]*core.SearchResult, error) {
	results, err := s.documents.SearchText(ctx, query, opts.Limit, opts.Filter)
	if err != nil {
		return nil, err
	}
	monitor.AfterLexicalSearch(results)

	filtered := results[:0]
	for _, result := range results {
		if result.Score >= opts.Threshold {
			filtered = append(filtered, result)
		}
	}
	return filtered, nil
}

// hybridSearch fuses vector and lexical retrieval. Vector hits seed the
// fusion map; lexical hits merge in, adding their weighted score on
// collision so agreement between tiers compounds. A vector failure here is
// an error, letting the ladder degrade to the relaxed retry.
func (s *Searcher) hybridSearch(ctx context.Context, query string, opts *Options, monitor Monitor) ([]*core.SearchResult, error) {
	vectorLimit := int(math.Ceil(float64(opts.Limit) * 0.7))
	lexicalLimit := int(math.Ceil(float64(opts.Limit) * 0.5))

	vectorResults, err := s.vectorSearchAt(ctx, query, opts, monitor, s.weights.HybridVectorThreshold, vectorLimit)
	if err != nil {
		return nil, err
	}

	lexicalResults, err := s.documents.SearchText(ctx, query, lexicalLimit, opts.Filter)
	if err != nil {
		// The vector tier already delivered; lexical enrichment is optional
		s.logger.Warn("lexical tier failed inside hybrid search", "err", err)
		lexicalResults = nil
	} else {
		monitor.AfterLexicalSearch(lexicalResults)
	}

	// Fuse in insertion order so ties break deterministically
	fusedOrder := make([]core.ID, 0, len(vectorResults)+len(lexicalResults))
	fused := make(map[core.ID]*core.SearchResult, len(vectorResults)+len(lexicalResults))

	for _, result := range vectorResults {
		id := result.Document.Id
		fusedOrder = append(fusedOrder, id)
		fused[id] = &core.SearchResult{
			Document:         result.Document,
			Score:            result.Score * s.weights.Vector,
			RelevantEntities: result.RelevantEntities,
		}
	}
	for _, result := range lexicalResults {
		id := result.Document.Id
		if existing, ok := fused[id]; ok {
			existing.Score += result.Score * s.weights.Text
			continue
		}
		fusedOrder = append(fusedOrder, id)
		fused[id] = &core.SearchResult{
			Document:         result.Document,
			Score:            result.Score * s.weights.Text,
			RelevantEntities: result.RelevantEntities,
		}
	}

	results := make([]*core.SearchResult, 0, len(fusedOrder))
	for _, id := range fusedOrder {
		result := fused[id]
		if result.Score >= opts.Threshold {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// strategy is one rung of the fallback ladder.
type strategy struct {
	name string
	run  func(ctx context.Context, query string, opts *Options, monitor Monitor) ([]*core.SearchResult, error)
}

// Strategy names reported in outcomes and monitor callbacks.
const (
	StrategyVector        = "vector"
	StrategyRelaxedVector = "vector-relaxed"
	StrategyLexical       = "lexical"
	StrategyHybrid        = "hybrid"
	StrategySubstring     = "substring"
)
