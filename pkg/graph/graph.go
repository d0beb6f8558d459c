// Package graph holds the relationship graph and its reasoning operations:
// bounded-depth path search, transitive relationship inference, neighborhood
// expansion, centrality, community detection, and relationship explanation.
//
// The graph is rebuilt wholesale and swapped atomically, so readers always
// observe either the previous complete graph or the new one, never a
// half-built state. Query operations are defined on the empty graph too and
// return empty results rather than errors.
package graph

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soundprediction/legame/pkg/lexical"
	"github.com/soundprediction/legame/pkg/types"
)

// state is one immutable built graph. A new state is assembled off to the
// side and published with a single pointer swap.
type state struct {
	// canonical maps normalized entity names to their display form.
	canonical map[string]string
	// out holds admitted relationships keyed by canonical source name.
	out map[string][]*types.Relationship
	// neighbors is the undirected view with parallel-edge counts, used by
	// expansion, centrality, and community detection.
	neighbors map[string]map[string]int
	// relationships holds every admitted edge in admission order.
	relationships []*types.Relationship
	builtAt       time.Time
}

func emptyState() *state {
	return &state{
		canonical: make(map[string]string),
		out:       make(map[string][]*types.Relationship),
		neighbors: make(map[string]map[string]int),
	}
}

// Stats summarizes a build: what was admitted and what was skipped.
type Stats struct {
	Nodes        int       `json:"nodes"`
	Edges        int       `json:"edges"`
	SkippedEdges int       `json:"skipped_edges"`
	BuiltAt      time.Time `json:"built_at"`
}

// Graph is the process-wide relationship graph. Build replaces the whole
// graph; every query operation reads a consistent snapshot.
type Graph struct {
	current atomic.Pointer[state]
	logger  *slog.Logger
}

// New creates an empty graph. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Graph{logger: logger}
	g.current.Store(emptyState())
	return g
}

// Build assembles a fresh graph from resolved entities and their
// relationships and atomically replaces the current one. Nodes are the
// canonical entity names. A relationship is admitted only when it validates,
// its normalized source and target differ, and both endpoints resolve to a
// known entity; everything else is skipped and counted, never fatal.
// Duplicate (source, target, type) edges collapse to the highest confidence.
func (g *Graph) Build(entities []*types.Entity, relationships []*types.Relationship) *Stats {
	next := emptyState()
	next.builtAt = time.Now().UTC()

	for _, entity := range entities {
		if entity == nil || entity.Validate() != nil {
			continue
		}
		norm := lexical.NormalizeName(entity.Name)
		if _, ok := next.canonical[norm]; !ok {
			next.canonical[norm] = entity.Name
			next.neighbors[entity.Name] = make(map[string]int)
		}
	}

	skipped := 0
	admitted := make(map[[3]string]*types.Relationship)
	for _, rel := range relationships {
		if rel == nil || rel.Validate() != nil {
			skipped++
			continue
		}
		srcNorm := lexical.NormalizeName(rel.Source)
		dstNorm := lexical.NormalizeName(rel.Target)
		if srcNorm == dstNorm {
			skipped++
			continue
		}
		source, okSrc := next.canonical[srcNorm]
		target, okDst := next.canonical[dstNorm]
		if !okSrc || !okDst {
			skipped++
			continue
		}

		key := [3]string{source, target, rel.Type}
		if existing, ok := admitted[key]; ok {
			if rel.Confidence > existing.Confidence {
				existing.Confidence = rel.Confidence
				existing.Context = rel.Context
			}
			continue
		}

		edge := &types.Relationship{
			Source:     source,
			Target:     target,
			Type:       rel.Type,
			Context:    rel.Context,
			Confidence: rel.Confidence,
			Metadata:   rel.Metadata,
		}
		admitted[key] = edge
		next.out[source] = append(next.out[source], edge)
		next.relationships = append(next.relationships, edge)
		next.neighbors[source][target]++
		next.neighbors[target][source]++
	}

	g.current.Store(next)
	stats := &Stats{
		Nodes:        len(next.canonical),
		Edges:        len(next.relationships),
		SkippedEdges: skipped,
		BuiltAt:      next.builtAt,
	}
	g.logger.Info("graph built",
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"skipped_edges", stats.SkippedEdges)
	return stats
}

// Clear resets the graph to its empty state.
func (g *Graph) Clear() {
	g.current.Store(emptyState())
}

// Stats reports the size of the current graph.
func (g *Graph) Stats() *Stats {
	s := g.current.Load()
	return &Stats{
		Nodes:   len(s.canonical),
		Edges:   len(s.relationships),
		BuiltAt: s.builtAt,
	}
}

// Nodes returns the canonical names of all graph nodes.
func (g *Graph) Nodes() []string {
	s := g.current.Load()
	nodes := make([]string, 0, len(s.canonical))
	for _, name := range s.canonical {
		nodes = append(nodes, name)
	}
	return nodes
}

// Relationships returns every admitted edge of the current graph.
func (g *Graph) Relationships() []*types.Relationship {
	s := g.current.Load()
	result := make([]*types.Relationship, len(s.relationships))
	copy(result, s.relationships)
	return result
}

// HasNode reports whether the entity name resolves to a graph node.
func (g *Graph) HasNode(name string) bool {
	s := g.current.Load()
	_, ok := s.canonical[lexical.NormalizeName(name)]
	return ok
}

// Resolve maps an entity mention to its canonical node name.
func (g *Graph) Resolve(name string) (string, bool) {
	return g.current.Load().resolve(name)
}

// resolve maps an entity name to its canonical node name in the snapshot.
func (s *state) resolve(name string) (string, bool) {
	canonical, ok := s.canonical[lexical.NormalizeName(name)]
	return canonical, ok
}
