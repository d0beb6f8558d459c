package graph

import (
	"math"
	"testing"

	"github.com/soundprediction/legame/pkg/types"
)

func builtReasoner(t *testing.T, ents []*types.Entity, rels []*types.Relationship) *Reasoner {
	t.Helper()
	g := New(nil)
	g.Build(ents, rels)
	return NewReasoner(g, nil, nil)
}

func TestFindPathsSingleHop(t *testing.T) {
	r := builtReasoner(t,
		entities("Honda Civic", "engine"),
		[]*types.Relationship{rel("Honda Civic", "engine", "contains", 0.9)},
	)

	paths := r.FindPaths("Honda Civic", "engine", 1)
	if len(paths) != 1 {
		t.Fatalf("FindPaths() returned %d paths, want 1", len(paths))
	}
	p := paths[0]
	if p.PathLength != 1 {
		t.Errorf("path length = %d, want 1", p.PathLength)
	}
	if math.Abs(p.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %f, want 0.9", p.Confidence)
	}
	if p.Source != "Honda Civic" || p.Target != "engine" {
		t.Errorf("endpoints = %s -> %s", p.Source, p.Target)
	}
	if len(p.Relationships) != 1 || p.Relationships[0] != "contains" {
		t.Errorf("relationships = %v, want [contains]", p.Relationships)
	}
}

func TestFindPathsRespectsMaxHops(t *testing.T) {
	r := builtReasoner(t,
		entities("a1", "b1", "c1", "d1"),
		[]*types.Relationship{
			rel("a1", "b1", "links", 0.9),
			rel("b1", "c1", "links", 0.8),
			rel("c1", "d1", "links", 0.7),
		},
	)

	if paths := r.FindPaths("a1", "d1", 2); len(paths) != 0 {
		t.Errorf("FindPaths() with 2 hops = %d paths, want 0", len(paths))
	}

	paths := r.FindPaths("a1", "d1", 3)
	if len(paths) != 1 {
		t.Fatalf("FindPaths() with 3 hops = %d paths, want 1", len(paths))
	}
	want := 0.9 * 0.8 * 0.7
	if math.Abs(paths[0].Confidence-want) > 1e-9 {
		t.Errorf("confidence = %f, want %f", paths[0].Confidence, want)
	}
	if paths[0].Confidence > 0.7 {
		t.Error("path confidence should not exceed its weakest edge")
	}
}

func TestFindPathsSortedByConfidence(t *testing.T) {
	r := builtReasoner(t,
		entities("a1", "b1", "c1", "d1"),
		[]*types.Relationship{
			rel("a1", "b1", "links", 0.9),
			rel("b1", "d1", "links", 0.5),
			rel("a1", "c1", "links", 0.6),
			rel("c1", "d1", "links", 0.9),
		},
	)

	paths := r.FindPaths("a1", "d1", 3)
	if len(paths) != 2 {
		t.Fatalf("FindPaths() = %d paths, want 2", len(paths))
	}
	for i := 1; i < len(paths); i++ {
		if paths[i].Confidence > paths[i-1].Confidence {
			t.Errorf("paths not sorted descending at %d", i)
		}
	}
	if paths[0].Path[1] != "c1" {
		t.Errorf("strongest path goes via %q, want c1", paths[0].Path[1])
	}
}

func TestFindPathsTieBreaksShorter(t *testing.T) {
	r := builtReasoner(t,
		entities("a1", "b1", "d1"),
		[]*types.Relationship{
			rel("a1", "d1", "links", 0.45),
			rel("a1", "b1", "links", 0.9),
			rel("b1", "d1", "links", 0.5),
		},
	)

	paths := r.FindPaths("a1", "d1", 2)
	if len(paths) != 2 {
		t.Fatalf("FindPaths() = %d paths, want 2", len(paths))
	}
	if paths[0].PathLength != 1 {
		t.Errorf("equal confidence should prefer the shorter path, got length %d first", paths[0].PathLength)
	}
}

func TestFindPathsNeverRevisits(t *testing.T) {
	r := builtReasoner(t,
		entities("a1", "b1", "c1"),
		[]*types.Relationship{
			rel("a1", "b1", "links", 0.9),
			rel("b1", "a1", "links", 0.9),
			rel("b1", "c1", "links", 0.9),
		},
	)

	paths := r.FindPaths("a1", "c1", 4)
	if len(paths) != 1 {
		t.Fatalf("FindPaths() = %d paths, want 1", len(paths))
	}
	seen := map[string]bool{}
	for _, node := range paths[0].Path {
		if seen[node] {
			t.Errorf("path revisits node %q", node)
		}
		seen[node] = true
	}
}

func TestFindPathsUnknownEndpoints(t *testing.T) {
	r := builtReasoner(t,
		entities("Honda Civic", "engine"),
		[]*types.Relationship{rel("Honda Civic", "engine", "contains", 0.9)},
	)

	if paths := r.FindPaths("Honda Civic", "phantom", 3); len(paths) != 0 {
		t.Errorf("unknown target returned %d paths, want 0", len(paths))
	}
	if paths := r.FindPaths("phantom", "engine", 3); len(paths) != 0 {
		t.Errorf("unknown source returned %d paths, want 0", len(paths))
	}
	if paths := r.FindPaths("Honda Civic", "engine", 0); len(paths) != 0 {
		t.Errorf("zero hops returned %d paths, want 0", len(paths))
	}
}

func TestInferRelationships(t *testing.T) {
	r := builtReasoner(t,
		entities("piston", "engine", "Honda Civic", "dashboard"),
		[]*types.Relationship{
			rel("piston", "engine", "part_of", 0.9),
			rel("engine", "Honda Civic", "part_of", 0.8),
			rel("piston", "dashboard", "near", 0.9),
			rel("dashboard", "Honda Civic", "part_of", 0.9),
		},
	)

	inferred := r.InferRelationships("piston", "Honda Civic", 3)
	if len(inferred) != 1 {
		t.Fatalf("InferRelationships() = %d, want 1 (mixed-type chain must not infer)", len(inferred))
	}
	got := inferred[0]
	if got.Type != "part_of" {
		t.Errorf("inferred type = %q, want part_of", got.Type)
	}
	if !got.Inferred {
		t.Error("relationship should be tagged as inferred")
	}
	want := 0.9 * 0.8
	if math.Abs(got.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %f, want %f", got.Confidence, want)
	}
	if len(got.Via) != 1 || got.Via[0] != "engine" {
		t.Errorf("via = %v, want [engine]", got.Via)
	}
}

func TestInferRelationshipsIgnoresDirectEdges(t *testing.T) {
	r := builtReasoner(t,
		entities("Honda Civic", "engine"),
		[]*types.Relationship{rel("Honda Civic", "engine", "contains", 0.9)},
	)
	if inferred := r.InferRelationships("Honda Civic", "engine", 3); len(inferred) != 0 {
		t.Errorf("direct edge inferred %d relationships, want 0", len(inferred))
	}
}

func TestRelatedEntitiesDecay(t *testing.T) {
	r := builtReasoner(t,
		entities("hub", "x1", "y1", "z1", "w1"),
		[]*types.Relationship{
			rel("hub", "x1", "links", 0.9),
			rel("hub", "y1", "links", 0.9),
			rel("z1", "hub", "links", 0.9),
			rel("x1", "w1", "links", 0.9),
		},
	)

	related := r.RelatedEntities("hub", 2)
	if len(related[1]) != 3 {
		t.Fatalf("hop 1 has %d entities, want 3 (expansion is undirected)", len(related[1]))
	}
	if len(related[2]) != 1 || related[2][0].Name != "w1" {
		t.Fatalf("hop 2 = %v, want [w1]", related[2])
	}

	hop1 := related[1][0].Confidence
	hop2 := related[2][0].Confidence
	if math.Abs(hop1-0.8) > 1e-9 {
		t.Errorf("hop 1 confidence = %f, want 0.8", hop1)
	}
	if math.Abs(hop2-0.64) > 1e-9 {
		t.Errorf("hop 2 confidence = %f, want 0.64", hop2)
	}
	if hop2 >= hop1 {
		t.Error("confidence must decay with hop distance")
	}
}

func TestRelatedEntitiesUnknown(t *testing.T) {
	r := builtReasoner(t,
		entities("Honda Civic", "engine"),
		[]*types.Relationship{rel("Honda Civic", "engine", "contains", 0.9)},
	)
	if related := r.RelatedEntities("phantom", 2); len(related) != 0 {
		t.Errorf("unknown entity returned %v, want empty map", related)
	}
	if related := r.RelatedEntities("Honda Civic", 0); len(related) != 0 {
		t.Errorf("zero hops returned %v, want empty map", related)
	}
}

func TestCentrality(t *testing.T) {
	r := builtReasoner(t,
		entities("a1", "b1", "c1", "d1"),
		[]*types.Relationship{
			rel("a1", "b1", "links", 0.9),
			rel("b1", "c1", "links", 0.9),
			rel("a1", "c1", "links", 0.9),
			rel("c1", "d1", "links", 0.9),
		},
	)

	scores := r.Centrality()
	if len(scores) != 4 {
		t.Fatalf("Centrality() covers %d nodes, want 4", len(scores))
	}
	if got := scores["c1"].Score; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("c1 score = %f, want 1.0", got)
	}
	if got := scores["d1"].Score; math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("d1 score = %f, want 1/3", got)
	}
	if scores["c1"].Degree != 3 {
		t.Errorf("c1 degree = %d, want 3", scores["c1"].Degree)
	}

	c, ok := r.CentralityOf("  C1 ")
	if !ok {
		t.Fatal("CentralityOf() should resolve normalized names")
	}
	if c.Entity != "c1" {
		t.Errorf("entity = %q, want c1", c.Entity)
	}
	if _, ok := r.CentralityOf("phantom"); ok {
		t.Error("CentralityOf() on unknown entity should report false")
	}
}

func TestCommunities(t *testing.T) {
	r := builtReasoner(t,
		entities("a1", "b1", "c1", "d1", "e1", "f1"),
		[]*types.Relationship{
			rel("a1", "b1", "links", 0.9),
			rel("b1", "c1", "links", 0.9),
			rel("a1", "c1", "links", 0.9),
			rel("d1", "e1", "links", 0.9),
			rel("e1", "f1", "links", 0.9),
			rel("d1", "f1", "links", 0.9),
			rel("c1", "d1", "links", 0.9),
		},
	)

	communities := r.Communities()
	if len(communities) != 2 {
		t.Fatalf("Communities() = %d, want 2", len(communities))
	}
	for i, c := range communities {
		if c.ID != i {
			t.Errorf("community %d has ID %d", i, c.ID)
		}
		if len(c.Members) != 3 {
			t.Errorf("community %d has %d members, want 3", i, len(c.Members))
		}
	}
}

func TestExplainRelationship(t *testing.T) {
	r := builtReasoner(t,
		entities("piston", "engine", "Honda Civic"),
		[]*types.Relationship{
			rel("piston", "engine", "part_of", 0.9),
			rel("engine", "Honda Civic", "part_of", 0.8),
		},
	)

	explanation := r.Explain("piston", "Honda Civic")
	if len(explanation.Paths) != 1 {
		t.Fatalf("explanation has %d paths, want 1", len(explanation.Paths))
	}
	if len(explanation.InferredRelationships) != 1 {
		t.Errorf("explanation has %d inferred relationships, want 1", len(explanation.InferredRelationships))
	}
	want := 0.9 * 0.8
	if math.Abs(explanation.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %f, want %f", explanation.Confidence, want)
	}
	if len(explanation.ReasoningSteps) < 2 {
		t.Errorf("reasoning steps = %v, want at least the summary and one path", explanation.ReasoningSteps)
	}
}

func TestExplainNoRelationship(t *testing.T) {
	r := builtReasoner(t,
		entities("Honda Civic", "engine", "submarine"),
		[]*types.Relationship{rel("Honda Civic", "engine", "contains", 0.9)},
	)

	explanation := r.Explain("Honda Civic", "submarine")
	if explanation.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", explanation.Confidence)
	}
	if len(explanation.Paths) != 0 {
		t.Errorf("paths = %v, want empty", explanation.Paths)
	}
	if len(explanation.ReasoningSteps) != 1 {
		t.Fatalf("reasoning steps = %v, want exactly one", explanation.ReasoningSteps)
	}
}

func TestReasonerOnEmptyGraph(t *testing.T) {
	r := NewReasoner(New(nil), nil, nil)
	if paths := r.FindPaths("a1", "b1", 3); len(paths) != 0 {
		t.Errorf("FindPaths() on empty graph = %v", paths)
	}
	if related := r.RelatedEntities("a1", 2); len(related) != 0 {
		t.Errorf("RelatedEntities() on empty graph = %v", related)
	}
	if scores := r.Centrality(); len(scores) != 0 {
		t.Errorf("Centrality() on empty graph = %v", scores)
	}
	if communities := r.Communities(); len(communities) != 0 {
		t.Errorf("Communities() on empty graph = %v", communities)
	}
	explanation := r.Explain("a1", "b1")
	if explanation.Confidence != 0 || len(explanation.Paths) != 0 {
		t.Errorf("Explain() on empty graph = %+v", explanation)
	}
}
