// Package rerank refines fused retrieval results with a second scoring pass.
//
// Rerankers are optional: the fusion weights already order results well
// enough for most corpora, so callers opt in when they want query relevance
// re-measured against result content. TermFrequency works purely lexically;
// Embedding trades an extra embedding round-trip for semantic scoring with a
// diversity penalty.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/lexical"
	"github.com/soundprediction/legame/pkg/types"
	"github.com/soundprediction/legame/pkg/utils"
)

// DefaultLambda balances relevance against the opposing term in both
// rerankers.
const DefaultLambda = 0.5

// Reranker re-scores and reorders search results by query relevance.
// Implementations return fresh result values and leave the input untouched.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []*types.SearchResult) ([]*types.SearchResult, error)
}

// TermFrequency re-scores results by TF-IDF cosine between the query and
// each result's content, blended with the original score:
// lambda*similarity + (1-lambda)*score.
type TermFrequency struct {
	lambda float64
}

// NewTermFrequency creates a lexical reranker. A zero lambda uses
// DefaultLambda; lambda 1 ranks purely by query similarity.
func NewTermFrequency(lambda float64) *TermFrequency {
	if lambda == 0 {
		lambda = DefaultLambda
	}
	return &TermFrequency{lambda: lambda}
}

// Rerank blends TF-IDF query similarity into the result scores. It never
// fails; a query with no vocabulary overlap leaves only the original scores
// weighted down.
func (t *TermFrequency) Rerank(ctx context.Context, query string, results []*types.SearchResult) ([]*types.SearchResult, error) {
	if len(results) == 0 {
		return []*types.SearchResult{}, nil
	}

	corpus := make([]string, 0, len(results)+1)
	for _, r := range results {
		corpus = append(corpus, r.Content)
	}
	corpus = append(corpus, query)

	vectorizer := lexical.NewVectorizer(corpus)
	queryVec := vectorizer.Vector(query)

	out := make([]*types.SearchResult, len(results))
	for i, r := range results {
		similarity := lexical.Cosine(queryVec, vectorizer.Vector(r.Content))
		rescored := *r
		rescored.Score = t.lambda*similarity + (1-t.lambda)*r.Score
		out[i] = &rescored
	}
	sortByScore(out)
	return out, nil
}

// Embedding re-scores results by embedding cosine with a maximal marginal
// relevance penalty: lambda*querySimilarity - (1-lambda)*maxSimilarityToany
// other result. Near-duplicate results push each other down, so the top of
// the list stays diverse.
type Embedding struct {
	client embedder.Client
	lambda float64
}

// NewEmbedding creates an embedding reranker. A zero lambda uses
// DefaultLambda; lambda 1 ranks purely by query similarity.
func NewEmbedding(client embedder.Client, lambda float64) *Embedding {
	if lambda == 0 {
		lambda = DefaultLambda
	}
	return &Embedding{client: client, lambda: lambda}
}

// Rerank embeds the query and every result content in one batch and assigns
// marginal relevance scores.
func (e *Embedding) Rerank(ctx context.Context, query string, results []*types.SearchResult) ([]*types.SearchResult, error) {
	if len(results) == 0 {
		return []*types.SearchResult{}, nil
	}

	texts := make([]string, 0, len(results)+1)
	texts = append(texts, query)
	for _, r := range results {
		texts = append(texts, r.Content)
	}

	embeddings, err := e.client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed rerank candidates: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}

	queryVec := utils.NormalizeL2(embeddings[0])
	docVecs := make([][]float32, len(results))
	for i := range results {
		docVecs[i] = utils.NormalizeL2(embeddings[i+1])
	}

	out := make([]*types.SearchResult, len(results))
	for i, r := range results {
		querySim := utils.CosineSimilarity(queryVec, docVecs[i])
		maxOther := 0.0
		for j := range docVecs {
			if j == i {
				continue
			}
			if sim := utils.CosineSimilarity(docVecs[i], docVecs[j]); sim > maxOther {
				maxOther = sim
			}
		}
		rescored := *r
		rescored.Score = e.lambda*querySim - (1-e.lambda)*maxOther
		out[i] = &rescored
	}
	sortByScore(out)
	return out, nil
}

// sortByScore orders results by descending score, keeping the input order
// for ties.
func sortByScore(results []*types.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
