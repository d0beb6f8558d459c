package lexical

import (
	"math"
	"testing"
)

func TestVectorizerEmptyCorpus(t *testing.T) {
	t.Parallel()
	v := NewVectorizer(nil)
	if v.Vocabulary() != 0 {
		t.Errorf("Vocabulary() = %d, want 0", v.Vocabulary())
	}
	if vec := v.Vector("honda civic"); len(vec) != 0 {
		t.Errorf("Vector() = %v, want empty", vec)
	}
	if sim := v.Similarity("honda", "honda"); sim != 0 {
		t.Errorf("Similarity() = %f, want 0", sim)
	}
}

func TestVectorizerVocabulary(t *testing.T) {
	t.Parallel()
	v := NewVectorizer([]string{"honda civic", "civic engine"})
	if v.Vocabulary() != 3 {
		t.Errorf("Vocabulary() = %d, want 3", v.Vocabulary())
	}
}

func TestVectorSelfSimilarity(t *testing.T) {
	t.Parallel()
	v := NewVectorizer([]string{
		"honda civic car compact sedan",
		"toyota corolla car compact sedan",
		"boeing 747 airplane wide body jet",
	})

	sim := v.Similarity("honda civic car", "honda civic car")
	if math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("self similarity = %f, want 1.0", sim)
	}
}

func TestVectorizerRanking(t *testing.T) {
	t.Parallel()
	v := NewVectorizer([]string{
		"honda civic car reliable engine",
		"toyota corolla car paint colors",
		"boeing 747 airplane jet engine",
	})

	related := v.Similarity("reliable engine", "honda civic car reliable engine")
	unrelated := v.Similarity("reliable engine", "toyota corolla car paint colors")
	if related <= unrelated {
		t.Errorf("related = %f, unrelated = %f, want related > unrelated", related, unrelated)
	}
}

func TestVectorOutOfVocabulary(t *testing.T) {
	t.Parallel()
	v := NewVectorizer([]string{"honda civic"})
	if vec := v.Vector("submarine periscope"); len(vec) != 0 {
		t.Errorf("Vector() on out-of-vocabulary text = %v, want empty", vec)
	}
}

func TestCosineEdgeCases(t *testing.T) {
	t.Parallel()
	if got := Cosine(SparseVector{}, SparseVector{0: 1}); got != 0 {
		t.Errorf("Cosine() with empty vector = %f, want 0", got)
	}
	if got := Cosine(SparseVector{0: 1}, SparseVector{1: 1}); got != 0 {
		t.Errorf("Cosine() with disjoint vectors = %f, want 0", got)
	}
	got := Cosine(SparseVector{0: 0.6, 1: 0.8}, SparseVector{0: 0.6, 1: 0.8})
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Cosine() with identical vectors = %f, want 1.0", got)
	}
}
