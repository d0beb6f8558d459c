// Package processor routes queries to a graph reasoning strategy and wraps
// every outcome in the same response envelope.
//
// Classification is an ordered marker table: the first family whose marker
// appears in the lowercased query wins, and a query matching no family takes
// the fallback path. A family whose precondition is not met, for example a
// relationship query naming fewer than two entities, answers with an empty
// envelope carrying an explanation. No query is ever a failure.
package processor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/soundprediction/legame/pkg/analyzer"
	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/types"
)

// Config holds strategy bounds and fallback scoring.
type Config struct {
	// MultiHopMaxHops bounds path search for multi-hop queries.
	MultiHopMaxHops int
	// TopPaths caps how many reasoning paths a multi-hop answer keeps.
	TopPaths int
	// ExploreMaxHops bounds expansion for entity exploration.
	ExploreMaxHops int
	// FallbackDepth bounds expansion for fallback query enrichment.
	FallbackDepth int
	// FallbackMinConfidence filters weak related terms out of fallback
	// expansion.
	FallbackMinConfidence float64
	// FallbackScore is the flat score assigned to fallback entity links.
	FallbackScore float64
}

// WithDefaults fills zero-valued fields with defaults.
func (c *Config) WithDefaults() *Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.MultiHopMaxHops == 0 {
		out.MultiHopMaxHops = 4
	}
	if out.TopPaths == 0 {
		out.TopPaths = 5
	}
	if out.ExploreMaxHops == 0 {
		out.ExploreMaxHops = 3
	}
	if out.FallbackDepth == 0 {
		out.FallbackDepth = 2
	}
	if out.FallbackMinConfidence == 0 {
		out.FallbackMinConfidence = 0.5
	}
	if out.FallbackScore == 0 {
		out.FallbackScore = 0.7
	}
	return &out
}

// family pairs a strategy with the query markers that select it.
type family struct {
	strategy types.Strategy
	markers  []string
}

// families is checked in order; earlier entries take precedence.
var families = []family{
	{types.StrategyRelationship, []string{"relationship", "related", "connection", "connected", "linked", "between"}},
	{types.StrategyMultiHop, []string{"path", "chain", "through", "via", "indirect"}},
	{types.StrategyEntityExploration, []string{"about", "explore", "overview", "tell me"}},
}

// Processor answers queries by dispatching to the reasoning strategy the
// query's phrasing selects.
type Processor struct {
	analyzer *analyzer.Analyzer
	graph    *graph.Graph
	reasoner *graph.Reasoner
	config   *Config
	logger   *slog.Logger
}

// New creates a processor over the given graph and reasoner. Nil arguments
// fall back to empty defaults, so an unbuilt graph answers like one with no
// nodes rather than panicking.
func New(a *analyzer.Analyzer, g *graph.Graph, r *graph.Reasoner, config *Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if a == nil {
		a = analyzer.New(nil, logger)
	}
	if g == nil {
		g = graph.New(logger)
	}
	if r == nil {
		r = graph.NewReasoner(g, nil, logger)
	}
	return &Processor{
		analyzer: a,
		graph:    g,
		reasoner: r,
		config:   config.WithDefaults(),
		logger:   logger,
	}
}

// Classify returns the strategy the query's phrasing selects.
func Classify(query string) types.Strategy {
	lowered := strings.ToLower(query)
	for _, f := range families {
		for _, marker := range f.markers {
			if strings.Contains(lowered, marker) {
				return f.strategy
			}
		}
	}
	return types.StrategyFallback
}

// Process analyzes the query, selects a strategy, and runs its handler.
func (p *Processor) Process(query string) *types.QueryResponse {
	return p.ProcessAnalyzed(p.analyzer.Analyze(query))
}

// ProcessAnalyzed runs strategy dispatch for an already-analyzed query.
func (p *Processor) ProcessAnalyzed(analysis *types.QueryAnalysis) *types.QueryResponse {
	if analysis == nil {
		resp := types.NewQueryResponse("", types.StrategyFallback)
		resp.Explanation = append(resp.Explanation, "Nothing to process: no query analysis.")
		return resp
	}

	strategy := Classify(analysis.Query)
	resp := types.NewQueryResponse(analysis.Query, strategy)

	switch strategy {
	case types.StrategyRelationship:
		p.relationshipQuery(analysis, resp)
	case types.StrategyMultiHop:
		p.multiHopQuery(analysis, resp)
	case types.StrategyEntityExploration:
		p.entityExploration(analysis, resp)
	default:
		p.fallback(analysis, resp)
	}

	p.logger.Debug("processed query",
		"query", analysis.Query,
		"strategy", string(strategy),
		"results", len(resp.Results),
		"paths", len(resp.ReasoningPaths),
		"confidence", resp.Confidence)
	return resp
}

// relationshipQuery explains how the first two mentioned entities connect.
func (p *Processor) relationshipQuery(analysis *types.QueryAnalysis, resp *types.QueryResponse) {
	if len(analysis.Entities) < 2 {
		resp.Explanation = append(resp.Explanation,
			fmt.Sprintf("Relationship queries need at least two entities; found %d.", len(analysis.Entities)))
		return
	}

	explanation := p.reasoner.Explain(analysis.Entities[0], analysis.Entities[1])
	resp.ReasoningPaths = explanation.Paths
	resp.InferredRelationships = explanation.InferredRelationships
	resp.Explanation = append(resp.Explanation, explanation.ReasoningSteps...)
	resp.Confidence = explanation.Confidence
}

// multiHopQuery finds the strongest paths between the first two mentioned
// entities and the relationships those paths imply.
func (p *Processor) multiHopQuery(analysis *types.QueryAnalysis, resp *types.QueryResponse) {
	if len(analysis.Entities) < 2 {
		resp.Explanation = append(resp.Explanation,
			fmt.Sprintf("Multi-hop queries need at least two entities; found %d.", len(analysis.Entities)))
		return
	}

	source, target := analysis.Entities[0], analysis.Entities[1]
	paths := p.reasoner.FindPaths(source, target, p.config.MultiHopMaxHops)
	if len(paths) == 0 {
		resp.Explanation = append(resp.Explanation,
			fmt.Sprintf("No paths found between %s and %s within %d hops.",
				source, target, p.config.MultiHopMaxHops))
		return
	}
	if len(paths) > p.config.TopPaths {
		paths = paths[:p.config.TopPaths]
	}

	resp.ReasoningPaths = paths
	resp.InferredRelationships = p.reasoner.InferRelationships(source, target, p.config.MultiHopMaxHops)
	resp.Confidence = paths[0].Confidence

	resp.Explanation = append(resp.Explanation,
		fmt.Sprintf("Found %d path(s) between %s and %s within %d hops.",
			len(paths), paths[0].Source, paths[0].Target, p.config.MultiHopMaxHops))
	for i, path := range paths {
		resp.Explanation = append(resp.Explanation,
			fmt.Sprintf("Path %d: %s (confidence %.2f)", i+1, path, path.Confidence))
	}
}

// entityExploration expands the first mentioned entity's neighborhood and
// weights each neighbor by its structural centrality.
func (p *Processor) entityExploration(analysis *types.QueryAnalysis, resp *types.QueryResponse) {
	if len(analysis.Entities) == 0 {
		resp.Explanation = append(resp.Explanation,
			"Entity exploration needs at least one entity; found none.")
		return
	}

	entity := analysis.Entities[0]
	byHop := p.reasoner.RelatedEntities(entity, p.config.ExploreMaxHops)
	if len(byHop) == 0 {
		resp.Explanation = append(resp.Explanation,
			fmt.Sprintf("No related entities found for %s within %d hops.",
				entity, p.config.ExploreMaxHops))
		return
	}

	total := 0
	for hop, related := range byHop {
		boosted := make([]types.RelatedEntity, len(related))
		for i, r := range related {
			boosted[i] = types.RelatedEntity{
				Name:       r.Name,
				Confidence: p.centralityBoost(r),
			}
		}
		sort.SliceStable(boosted, func(i, j int) bool {
			return boosted[i].Confidence > boosted[j].Confidence
		})
		resp.EntityClusters[hop] = boosted
		total += len(boosted)
	}

	if first, ok := resp.EntityClusters[1]; ok && len(first) > 0 {
		resp.Confidence = first[0].Confidence
	}
	resp.Explanation = append(resp.Explanation,
		fmt.Sprintf("Found %d entit(ies) related to %s within %d hops, ranked by centrality-weighted confidence.",
			total, entity, p.config.ExploreMaxHops))
}

// centralityBoost lifts a neighbor's expansion confidence by its structural
// centrality, capped at 1.
func (p *Processor) centralityBoost(r types.RelatedEntity) float64 {
	confidence := r.Confidence
	if c, ok := p.reasoner.CentralityOf(r.Name); ok {
		confidence *= 1 + c.Score
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// fallback enriches a general query with graph context: related terms of
// each mentioned entity become weak entity-link results.
func (p *Processor) fallback(analysis *types.QueryAnalysis, resp *types.QueryResponse) {
	seen := make(map[string]bool)
	for _, mention := range analysis.Entities {
		canonical, ok := p.graph.Resolve(mention)
		if !ok {
			continue
		}
		byHop := p.reasoner.RelatedEntities(canonical, p.config.FallbackDepth)
		hops := make([]int, 0, len(byHop))
		for hop := range byHop {
			hops = append(hops, hop)
		}
		sort.Ints(hops)
		for _, hop := range hops {
			for _, related := range byHop[hop] {
				if related.Confidence <= p.config.FallbackMinConfidence || seen[related.Name] {
					continue
				}
				seen[related.Name] = true
				resp.Results = append(resp.Results, &types.SearchResult{
					Content:    related.Name,
					Score:      p.config.FallbackScore,
					ResultType: types.ResultTypeGraph,
					Entity:     related.Name,
				})
			}
		}
	}

	if len(resp.Results) == 0 {
		resp.Explanation = append(resp.Explanation,
			"No graph context found; the query carries no known entities.")
		return
	}
	resp.Confidence = p.config.FallbackScore
	resp.Explanation = append(resp.Explanation,
		fmt.Sprintf("Expanded the query with %d related term(s) from the graph.", len(resp.Results)))
}
