package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/types"
)

// testProcessor builds Honda -> Toyota -> Acura with competes_with edges.
func testProcessor(t *testing.T) *Processor {
	t.Helper()
	g := graph.New(nil)
	entities := []*types.Entity{
		{Name: "Honda", Type: "organization", Confidence: 1},
		{Name: "Toyota", Type: "organization", Confidence: 1},
		{Name: "Acura", Type: "organization", Confidence: 1},
	}
	relationships := []*types.Relationship{
		{Source: "Honda", Target: "Toyota", Type: "competes_with", Confidence: 0.9},
		{Source: "Toyota", Target: "Acura", Type: "competes_with", Confidence: 0.8},
	}
	g.Build(entities, relationships)
	return New(nil, g, graph.NewReasoner(g, nil, nil), nil, nil)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  types.Strategy
	}{
		{"how is Honda related to Toyota", types.StrategyRelationship},
		{"what is the connection between Honda and Acura", types.StrategyRelationship},
		{"trace the chain from Honda to Acura", types.StrategyMultiHop},
		{"what runs through Toyota", types.StrategyMultiHop},
		{"explore Honda", types.StrategyEntityExploration},
		{"tell me more on Honda", types.StrategyEntityExploration},
		{"Honda maintenance costs", types.StrategyFallback},
		{"", types.StrategyFallback},
		// Earlier families win when markers overlap.
		{"explore the relationship of Honda and Acura", types.StrategyRelationship},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.query), "query %q", tt.query)
	}
}

func TestProcessRelationshipQuery(t *testing.T) {
	p := testProcessor(t)

	resp := p.Process("how is Honda related to Toyota")
	assert.Equal(t, types.StrategyRelationship, resp.Strategy)
	require.Len(t, resp.ReasoningPaths, 1)
	assert.Equal(t, []string{"Honda", "Toyota"}, resp.ReasoningPaths[0].Path)
	assert.InDelta(t, 0.9, resp.Confidence, 1e-9)
	assert.Empty(t, resp.InferredRelationships)
	require.NotEmpty(t, resp.Explanation)
	assert.Contains(t, resp.Explanation[0], "Found 1 path(s) between Honda and Toyota")
}

func TestProcessRelationshipQueryUnmet(t *testing.T) {
	p := testProcessor(t)

	resp := p.Process("what is the relationship")
	assert.Equal(t, types.StrategyRelationship, resp.Strategy)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.ReasoningPaths)
	assert.Zero(t, resp.Confidence)
	require.Len(t, resp.Explanation, 1)
	assert.Equal(t, "Relationship queries need at least two entities; found 0.", resp.Explanation[0])
}

func TestProcessMultiHopQuery(t *testing.T) {
	p := testProcessor(t)

	resp := p.Process("trace the chain from Honda to Acura")
	assert.Equal(t, types.StrategyMultiHop, resp.Strategy)
	require.Len(t, resp.ReasoningPaths, 1)
	assert.Equal(t, []string{"Honda", "Toyota", "Acura"}, resp.ReasoningPaths[0].Path)
	assert.InDelta(t, 0.72, resp.Confidence, 1e-9)

	require.Len(t, resp.InferredRelationships, 1)
	inferred := resp.InferredRelationships[0]
	assert.Equal(t, "Honda", inferred.Source)
	assert.Equal(t, "Acura", inferred.Target)
	assert.Equal(t, "competes_with", inferred.Type)
	assert.True(t, inferred.Inferred)
	assert.Equal(t, []string{"Toyota"}, inferred.Via)

	require.GreaterOrEqual(t, len(resp.Explanation), 2)
	assert.Contains(t, resp.Explanation[1], "Honda -[competes_with]-> Toyota -[competes_with]-> Acura")
}

func TestProcessMultiHopNoPaths(t *testing.T) {
	p := testProcessor(t)

	// Edges point Honda -> Toyota -> Acura, so the reverse has no route.
	resp := p.Process("trace the chain from Acura to Honda")
	assert.Equal(t, types.StrategyMultiHop, resp.Strategy)
	assert.Empty(t, resp.ReasoningPaths)
	assert.Zero(t, resp.Confidence)
	require.Len(t, resp.Explanation, 1)
	assert.Equal(t, "No paths found between Acura and Honda within 4 hops.", resp.Explanation[0])
}

func TestProcessEntityExploration(t *testing.T) {
	p := testProcessor(t)

	resp := p.Process("explore Honda")
	assert.Equal(t, types.StrategyEntityExploration, resp.Strategy)
	require.Len(t, resp.EntityClusters, 2)

	// Toyota touches every other node, so its centrality boost caps out.
	require.Len(t, resp.EntityClusters[1], 1)
	assert.Equal(t, "Toyota", resp.EntityClusters[1][0].Name)
	assert.InDelta(t, 1.0, resp.EntityClusters[1][0].Confidence, 1e-9)

	require.Len(t, resp.EntityClusters[2], 1)
	assert.Equal(t, "Acura", resp.EntityClusters[2][0].Name)
	assert.InDelta(t, 0.96, resp.EntityClusters[2][0].Confidence, 1e-9)

	assert.InDelta(t, 1.0, resp.Confidence, 1e-9)
	require.NotEmpty(t, resp.Explanation)
	assert.Contains(t, resp.Explanation[0], "related to Honda")
}

func TestProcessExplorationUnknownEntity(t *testing.T) {
	p := testProcessor(t)

	resp := p.Process("explore Zebra")
	assert.Equal(t, types.StrategyEntityExploration, resp.Strategy)
	assert.Empty(t, resp.EntityClusters)
	assert.Zero(t, resp.Confidence)
	require.Len(t, resp.Explanation, 1)
	assert.Equal(t, "No related entities found for Zebra within 3 hops.", resp.Explanation[0])
}

func TestProcessFallback(t *testing.T) {
	p := testProcessor(t)

	resp := p.Process("Honda maintenance costs")
	assert.Equal(t, types.StrategyFallback, resp.Strategy)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "Toyota", resp.Results[0].Content)
	assert.Equal(t, "Acura", resp.Results[1].Content)
	for _, r := range resp.Results {
		assert.InDelta(t, 0.7, r.Score, 1e-9)
		assert.Equal(t, types.ResultTypeGraph, r.ResultType)
	}
	assert.InDelta(t, 0.7, resp.Confidence, 1e-9)
	require.Len(t, resp.Explanation, 1)
	assert.Equal(t, "Expanded the query with 2 related term(s) from the graph.", resp.Explanation[0])
}

func TestProcessFallbackNoEntities(t *testing.T) {
	p := testProcessor(t)

	resp := p.Process("generic question with no names")
	assert.Equal(t, types.StrategyFallback, resp.Strategy)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Confidence)
	require.Len(t, resp.Explanation, 1)
	assert.Equal(t, "No graph context found; the query carries no known entities.", resp.Explanation[0])
}

func TestProcessOnEmptyGraph(t *testing.T) {
	p := New(nil, nil, nil, nil, nil)

	resp := p.Process("how is Honda related to Toyota")
	assert.Equal(t, types.StrategyRelationship, resp.Strategy)
	assert.Empty(t, resp.ReasoningPaths)
	assert.Zero(t, resp.Confidence)
	require.NotEmpty(t, resp.Explanation)
	assert.Contains(t, resp.Explanation[0], "No relationship found between Honda and Toyota")
}

func TestProcessAnalyzedNil(t *testing.T) {
	p := testProcessor(t)

	resp := p.ProcessAnalyzed(nil)
	assert.Equal(t, types.StrategyFallback, resp.Strategy)
	require.Len(t, resp.Explanation, 1)
	assert.Equal(t, "Nothing to process: no query analysis.", resp.Explanation[0])
}

func TestProcessEnvelopeAlwaysInitialized(t *testing.T) {
	p := testProcessor(t)

	queries := []string{
		"how is Honda related to Toyota",
		"what is the relationship",
		"trace the chain from Acura to Honda",
		"explore Zebra",
		"generic question",
		"",
	}
	for _, query := range queries {
		resp := p.Process(query)
		assert.NotNil(t, resp.Results, "query %q", query)
		assert.NotNil(t, resp.ReasoningPaths, "query %q", query)
		assert.NotNil(t, resp.InferredRelationships, "query %q", query)
		assert.NotNil(t, resp.EntityClusters, "query %q", query)
		assert.NotNil(t, resp.Explanation, "query %q", query)
	}
}
