package graph

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/soundprediction/legame/pkg/community"
	"github.com/soundprediction/legame/pkg/types"
)

// Config holds the reasoning bounds and decay rates.
type Config struct {
	// RelatedDecay is the per-hop confidence decay applied during
	// neighborhood expansion.
	RelatedDecay float64
	// MaxPaths caps how many paths one query may enumerate.
	MaxPaths int
	// ExplainHops is the search depth Explain uses.
	ExplainHops int
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	if c == nil {
		return &Config{
			RelatedDecay: 0.8,
			MaxPaths:     100,
			ExplainHops:  3,
		}
	}
	result := *c
	if result.RelatedDecay == 0 {
		result.RelatedDecay = 0.8
	}
	if result.MaxPaths == 0 {
		result.MaxPaths = 100
	}
	if result.ExplainHops == 0 {
		result.ExplainHops = 3
	}
	return &result
}

// Reasoner runs multi-hop queries over a Graph. It never mutates the graph,
// so any number of reasoners can share one.
type Reasoner struct {
	graph  *Graph
	config *Config
	logger *slog.Logger
}

// NewReasoner creates a reasoner over the given graph. A nil config uses
// defaults and a nil logger falls back to slog.Default().
func NewReasoner(graph *Graph, config *Config, logger *slog.Logger) *Reasoner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reasoner{
		graph:  graph,
		config: config.WithDefaults(),
		logger: logger,
	}
}

// FindPaths enumerates simple directed paths from source to target of at
// most maxHops edges. A path's confidence is the product of its edge
// confidences, so it never exceeds the weakest edge. Results are sorted by
// confidence descending, ties going to the shorter path. Unknown endpoints
// or no route yield an empty slice, not an error.
func (r *Reasoner) FindPaths(source, target string, maxHops int) []*types.ReasoningPath {
	paths := []*types.ReasoningPath{}
	s := r.graph.current.Load()
	src, okSrc := s.resolve(source)
	dst, okDst := s.resolve(target)
	if !okSrc || !okDst || src == dst || maxHops <= 0 {
		return paths
	}

	visited := map[string]bool{src: true}
	nodePath := []string{src}
	relPath := []string{}

	var dfs func(current string, confidence float64)
	dfs = func(current string, confidence float64) {
		hops := len(nodePath) - 1
		for _, edge := range s.out[current] {
			if len(paths) >= r.config.MaxPaths {
				return
			}
			if edge.Target == dst {
				if hops+1 <= maxHops {
					path := make([]string, len(nodePath), len(nodePath)+1)
					copy(path, nodePath)
					path = append(path, dst)
					rels := make([]string, len(relPath), len(relPath)+1)
					copy(rels, relPath)
					rels = append(rels, edge.Type)
					paths = append(paths, &types.ReasoningPath{
						Source:        src,
						Target:        dst,
						Path:          path,
						Relationships: rels,
						Confidence:    confidence * edge.Confidence,
						PathLength:    len(path) - 1,
					})
				}
				continue
			}
			// Going through this neighbor costs one hop and reaching the
			// target costs at least one more.
			if visited[edge.Target] || hops+1 >= maxHops {
				continue
			}
			visited[edge.Target] = true
			nodePath = append(nodePath, edge.Target)
			relPath = append(relPath, edge.Type)
			dfs(edge.Target, confidence*edge.Confidence)
			nodePath = nodePath[:len(nodePath)-1]
			relPath = relPath[:len(relPath)-1]
			delete(visited, edge.Target)
		}
	}
	dfs(src, 1.0)

	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].Confidence != paths[j].Confidence {
			return paths[i].Confidence > paths[j].Confidence
		}
		return paths[i].PathLength < paths[j].PathLength
	})
	return paths
}

// InferRelationships derives indirect relationships from multi-hop paths:
// a chain whose edges all share one type infers a transitive edge of that
// type from source to target, carrying the path confidence. Direct edges
// are observations, not inferences, so single-hop paths are ignored. One
// relationship is reported per type, backed by its strongest chain.
func (r *Reasoner) InferRelationships(source, target string, maxHops int) []*types.Relationship {
	best := make(map[string]*types.Relationship)
	for _, path := range r.FindPaths(source, target, maxHops) {
		if path.PathLength < 2 || !uniformType(path.Relationships) {
			continue
		}
		relType := path.Relationships[0]
		if existing, ok := best[relType]; ok && existing.Confidence >= path.Confidence {
			continue
		}
		via := make([]string, len(path.Path)-2)
		copy(via, path.Path[1:len(path.Path)-1])
		best[relType] = &types.Relationship{
			Source:     path.Source,
			Target:     path.Target,
			Type:       relType,
			Confidence: path.Confidence,
			Inferred:   true,
			Via:        via,
		}
	}

	inferred := make([]*types.Relationship, 0, len(best))
	for _, rel := range best {
		inferred = append(inferred, rel)
	}
	sort.SliceStable(inferred, func(i, j int) bool {
		if inferred[i].Confidence != inferred[j].Confidence {
			return inferred[i].Confidence > inferred[j].Confidence
		}
		return inferred[i].Type < inferred[j].Type
	})
	return inferred
}

func uniformType(relTypes []string) bool {
	for _, t := range relTypes[1:] {
		if t != relTypes[0] {
			return false
		}
	}
	return true
}

// RelatedEntities expands the undirected neighborhood of an entity up to
// maxHops, grouping discoveries by hop distance. Confidence decays
// geometrically with distance, so a hop-2 neighbor always scores below a
// hop-1 neighbor. Unknown entities yield an empty map.
func (r *Reasoner) RelatedEntities(entity string, maxHops int) map[int][]types.RelatedEntity {
	result := make(map[int][]types.RelatedEntity)
	s := r.graph.current.Load()
	start, ok := s.resolve(entity)
	if !ok || maxHops <= 0 {
		return result
	}

	visited := map[string]bool{start: true}
	frontier := []string{start}
	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		confidence := math.Pow(r.config.RelatedDecay, float64(hop))
		var next []string
		for _, node := range frontier {
			for neighbor := range s.neighbors[node] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
				result[hop] = append(result[hop], types.RelatedEntity{
					Name:       neighbor,
					Confidence: confidence,
				})
			}
		}
		if related, ok := result[hop]; ok {
			sort.Slice(related, func(i, j int) bool { return related[i].Name < related[j].Name })
		}
		frontier = next
	}
	return result
}

// Centrality scores every node by normalized degree: the share of other
// nodes it touches, directions ignored. A singleton graph scores 0.
func (r *Reasoner) Centrality() map[string]*types.Centrality {
	s := r.graph.current.Load()
	n := len(s.canonical)
	result := make(map[string]*types.Centrality, n)
	for _, name := range s.canonical {
		degree := len(s.neighbors[name])
		score := 0.0
		if n > 1 {
			score = float64(degree) / float64(n-1)
		}
		result[name] = &types.Centrality{Entity: name, Degree: degree, Score: score}
	}
	return result
}

// CentralityOf returns the centrality of a single entity, or false when the
// entity is not in the graph.
func (r *Reasoner) CentralityOf(entity string) (*types.Centrality, bool) {
	s := r.graph.current.Load()
	name, ok := s.resolve(entity)
	if !ok {
		return nil, false
	}
	n := len(s.canonical)
	degree := len(s.neighbors[name])
	score := 0.0
	if n > 1 {
		score = float64(degree) / float64(n-1)
	}
	return &types.Centrality{Entity: name, Degree: degree, Score: score}, true
}

// Communities finds structural communities: groups of nodes that link
// densely to each other regardless of what the entities are. This is
// distinct from identity clustering, which groups records of the same
// real-world thing. Only groups of at least two nodes are reported, with
// members sorted for stable output.
func (r *Reasoner) Communities() []*types.Community {
	s := r.graph.current.Load()
	groups := community.Detect(s.neighbors)

	communities := make([]*types.Community, 0, len(groups))
	for _, members := range groups {
		sorted := make([]string, len(members))
		copy(sorted, members)
		sort.Strings(sorted)
		communities = append(communities, &types.Community{Members: sorted})
	}
	sort.Slice(communities, func(i, j int) bool {
		if len(communities[i].Members) != len(communities[j].Members) {
			return len(communities[i].Members) > len(communities[j].Members)
		}
		return communities[i].Members[0] < communities[j].Members[0]
	})
	for i, c := range communities {
		c.ID = i
	}
	return communities
}

// Explain composes path finding and relationship inference into a
// human-readable account of how source and target connect. When nothing
// connects them the explanation says so with zero confidence; that is a
// valid answer, not a failure.
func (r *Reasoner) Explain(source, target string) *types.RelationshipExplanation {
	explanation := &types.RelationshipExplanation{
		Source:                source,
		Target:                target,
		Paths:                 []*types.ReasoningPath{},
		InferredRelationships: []*types.Relationship{},
		ReasoningSteps:        []string{},
	}

	s := r.graph.current.Load()
	if src, ok := s.resolve(source); ok {
		explanation.Source = src
	}
	if dst, ok := s.resolve(target); ok {
		explanation.Target = dst
	}

	paths := r.FindPaths(source, target, r.config.ExplainHops)
	if len(paths) == 0 {
		explanation.ReasoningSteps = append(explanation.ReasoningSteps,
			fmt.Sprintf("No relationship found between %s and %s within %d hops.",
				explanation.Source, explanation.Target, r.config.ExplainHops))
		return explanation
	}

	explanation.Paths = paths
	explanation.InferredRelationships = r.InferRelationships(source, target, r.config.ExplainHops)
	explanation.Confidence = paths[0].Confidence

	explanation.ReasoningSteps = append(explanation.ReasoningSteps,
		fmt.Sprintf("Found %d path(s) between %s and %s within %d hops.",
			len(paths), explanation.Source, explanation.Target, r.config.ExplainHops))
	for i, path := range paths {
		explanation.ReasoningSteps = append(explanation.ReasoningSteps,
			fmt.Sprintf("Path %d: %s (confidence %.2f)", i+1, path, path.Confidence))
	}
	for _, rel := range explanation.InferredRelationships {
		explanation.ReasoningSteps = append(explanation.ReasoningSteps,
			fmt.Sprintf("Inferred transitive %q from %s to %s via %s (confidence %.2f)",
				rel.Type, rel.Source, rel.Target, strings.Join(rel.Via, ", "), rel.Confidence))
	}
	return explanation
}
