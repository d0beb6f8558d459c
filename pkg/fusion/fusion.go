// Package fusion merges vector, graph, and keyword retrieval into one ranked
// result list.
//
// The three branches run concurrently and are joined before reranking. A
// branch whose backing store fails degrades to an empty contribution instead
// of failing the whole query. Reranking multiplies vector and graph scores by
// configurable weights, encoding a prior that embedding and graph evidence
// outrank raw lexical overlap.
//
// Queries with analytical intent bypass the fused pipeline entirely and route
// to a deeper graph-only expansion.
package fusion

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/soundprediction/legame/pkg/analyzer"
	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/index"
	"github.com/soundprediction/legame/pkg/types"
)

// Config holds fusion weights and graph expansion settings.
type Config struct {
	// VectorWeight multiplies vector branch scores during reranking.
	VectorWeight float64
	// GraphWeight multiplies graph branch scores during reranking.
	GraphWeight float64
	// MentionScore is the raw score for a query entity found in the graph.
	MentionScore float64
	// RelatedScore is the raw score for entities reached by expansion.
	RelatedScore float64
	// MultiHopDepth is the expansion depth for analytical queries.
	MultiHopDepth int
}

// WithDefaults fills zero-valued fields with defaults.
func (c *Config) WithDefaults() *Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.VectorWeight == 0 {
		out.VectorWeight = 1.2
	}
	if out.GraphWeight == 0 {
		out.GraphWeight = 1.1
	}
	if out.MentionScore == 0 {
		out.MentionScore = 1.0
	}
	if out.RelatedScore == 0 {
		out.RelatedScore = 0.8
	}
	if out.MultiHopDepth == 0 {
		out.MultiHopDepth = 3
	}
	return &out
}

// Engine runs hybrid retrieval over a document index, an embedding client,
// and a graph reasoner.
type Engine struct {
	index    index.Index
	embedder embedder.Client
	graph    *graph.Graph
	reasoner *graph.Reasoner
	analyzer *analyzer.Analyzer
	config   *Config
	logger   *slog.Logger
}

// NewEngine creates a fusion engine. Any of idx and embed may be nil, in
// which case the branches that need them contribute nothing.
func NewEngine(idx index.Index, embed embedder.Client, g *graph.Graph, reasoner *graph.Reasoner, a *analyzer.Analyzer, config *Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if a == nil {
		a = analyzer.New(nil, logger)
	}
	return &Engine{
		index:    idx,
		embedder: embed,
		graph:    g,
		reasoner: reasoner,
		analyzer: a,
		config:   config.WithDefaults(),
		logger:   logger,
	}
}

// Retrieve analyzes the query and returns a fused, reranked result list of at
// most opts.TopK entries. Analytical queries route to a graph-only multi-hop
// expansion instead of the fused pipeline.
func (e *Engine) Retrieve(ctx context.Context, query string, opts *types.RetrieveOptions) ([]*types.SearchResult, error) {
	analysis := e.analyzer.Analyze(query)
	return e.RetrieveAnalyzed(ctx, analysis, opts)
}

// RetrieveAnalyzed runs retrieval for an already-analyzed query.
func (e *Engine) RetrieveAnalyzed(ctx context.Context, analysis *types.QueryAnalysis, opts *types.RetrieveOptions) ([]*types.SearchResult, error) {
	if analysis == nil {
		return []*types.SearchResult{}, nil
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if analysis.Intent == types.IntentAnalytical {
		return e.multiHop(analysis, opts), nil
	}
	return e.fuse(ctx, analysis, opts)
}

// fuse runs the three branches concurrently, joins them, reranks, and
// truncates to opts.TopK.
func (e *Engine) fuse(ctx context.Context, analysis *types.QueryAnalysis, opts *types.RetrieveOptions) ([]*types.SearchResult, error) {
	var vector, graphHits, keyword []*types.SearchResult

	g, gctx := errgroup.WithContext(ctx)
	if e.branchEnabled(opts, types.ResultTypeVector) {
		g.Go(func() error {
			results, err := e.vectorBranch(gctx, analysis.Query, opts.TopK)
			if err != nil {
				if isCancellation(err) {
					return err
				}
				e.logger.Warn("vector branch degraded to empty", "error", err)
				return nil
			}
			vector = results
			return nil
		})
	}
	if e.branchEnabled(opts, types.ResultTypeGraph) {
		g.Go(func() error {
			graphHits = e.graphBranch(analysis.Entities, opts.GraphDepth)
			return nil
		})
	}
	if e.branchEnabled(opts, types.ResultTypeKeyword) {
		g.Go(func() error {
			results, err := e.keywordBranch(gctx, analysis.Keywords, opts.TopK)
			if err != nil {
				if isCancellation(err) {
					return err
				}
				e.logger.Warn("keyword branch degraded to empty", "error", err)
				return nil
			}
			keyword = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]*types.SearchResult, 0, len(vector)+len(graphHits)+len(keyword))
	merged = append(merged, vector...)
	merged = append(merged, graphHits...)
	merged = append(merged, keyword...)

	e.rerank(merged)
	sortByScore(merged)
	if len(merged) > opts.TopK {
		merged = merged[:opts.TopK]
	}

	e.logger.Debug("fused retrieval",
		"query", analysis.Query,
		"vector", len(vector),
		"graph", len(graphHits),
		"keyword", len(keyword),
		"returned", len(merged))
	return merged, nil
}

// vectorBranch embeds the query and searches the index by similarity.
func (e *Engine) vectorBranch(ctx context.Context, query string, limit int) ([]*types.SearchResult, error) {
	if e.index == nil || e.embedder == nil || query == "" {
		return nil, nil
	}
	vector, err := e.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.index.SearchByVector(ctx, vector, limit)
}

// graphBranch expands each entity mention through the reasoner. Mentions not
// present in the graph are dropped, which keeps the capitalized-token noise
// from the analyzer out of the results.
func (e *Engine) graphBranch(mentions []string, depth int) []*types.SearchResult {
	if e.graph == nil || e.reasoner == nil || len(mentions) == 0 {
		return nil
	}

	var results []*types.SearchResult
	seen := make(map[string]bool)
	emit := func(name string, score float64) {
		if seen[name] {
			return
		}
		seen[name] = true
		results = append(results, &types.SearchResult{
			Content:    name,
			Score:      score,
			ResultType: types.ResultTypeGraph,
			Entity:     name,
		})
	}

	for _, mention := range mentions {
		canonical, ok := e.graph.Resolve(mention)
		if !ok {
			continue
		}
		emit(canonical, e.config.MentionScore)
		for _, related := range flattenByHop(e.reasoner.RelatedEntities(canonical, depth)) {
			emit(related.Name, e.config.RelatedScore)
		}
	}
	return results
}

// keywordBranch searches the index lexically. The score of each hit is the
// fraction of query keywords its content matched.
func (e *Engine) keywordBranch(ctx context.Context, keywords []string, limit int) ([]*types.SearchResult, error) {
	if e.index == nil || len(keywords) == 0 {
		return nil, nil
	}
	return e.index.SearchByKeywords(ctx, keywords, limit)
}

// multiHop is the analytical-intent path: a deeper graph-only expansion with
// raw branch scores, no fusion and no reranking.
func (e *Engine) multiHop(analysis *types.QueryAnalysis, opts *types.RetrieveOptions) []*types.SearchResult {
	results := e.graphBranch(analysis.Entities, e.config.MultiHopDepth)
	sortByScore(results)
	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	e.logger.Debug("multi-hop retrieval",
		"query", analysis.Query,
		"depth", e.config.MultiHopDepth,
		"returned", len(results))
	return results
}

// rerank scales scores in place by branch weight.
func (e *Engine) rerank(results []*types.SearchResult) {
	for _, r := range results {
		switch r.ResultType {
		case types.ResultTypeVector:
			r.Score *= e.config.VectorWeight
		case types.ResultTypeGraph:
			r.Score *= e.config.GraphWeight
		}
	}
}

// branchEnabled reports whether the branch is selected by the options.
// An empty Branches list selects all branches.
func (e *Engine) branchEnabled(opts *types.RetrieveOptions, branch types.ResultType) bool {
	if len(opts.Branches) == 0 {
		return true
	}
	for _, b := range opts.Branches {
		if b == branch {
			return true
		}
	}
	return false
}

// flattenByHop orders hop-grouped related entities by increasing hop
// distance, so nearer entities are emitted (and deduplicated) first.
func flattenByHop(byHop map[int][]types.RelatedEntity) []types.RelatedEntity {
	hops := make([]int, 0, len(byHop))
	for hop := range byHop {
		hops = append(hops, hop)
	}
	sort.Ints(hops)

	var flat []types.RelatedEntity
	for _, hop := range hops {
		flat = append(flat, byHop[hop]...)
	}
	return flat
}

// sortByScore orders results by descending score, preserving the merge order
// of equal-scored entries.
func sortByScore(results []*types.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
