package legame

import (
	"context"
	"fmt"

	"github.com/soundprediction/legame/pkg/index"
	"github.com/soundprediction/legame/pkg/types"
)

// Retrieve performs hybrid retrieval: vector similarity, graph expansion,
// and keyword overlap run as independent branches, then the fused list is
// reranked by branch weight and truncated to topK. A failing branch
// contributes nothing instead of aborting the query. A topK of zero selects
// the default limit.
func (c *Client) Retrieve(ctx context.Context, query string, topK int) ([]*types.SearchResult, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	results, err := c.engine.Retrieve(ctx, query, &types.RetrieveOptions{TopK: topK})
	if err != nil {
		return nil, err
	}

	if c.config.Reranker != nil {
		reranked, err := c.config.Reranker.Rerank(ctx, query, results)
		if err != nil {
			c.logger.Warn("Reranker failed, keeping fused order", "error", err)
			return results, nil
		}
		results = reranked
	}
	return results, nil
}

// RetrieveWithOptions is Retrieve with full control over the branch
// selection and expansion depth.
func (c *Client) RetrieveWithOptions(ctx context.Context, query string, opts *types.RetrieveOptions) ([]*types.SearchResult, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	return c.engine.Retrieve(ctx, query, opts)
}

// AnalyzeQuery classifies a query's intent and extracts its entity mentions
// and keywords. Analysis is pure string work and never fails.
func (c *Client) AnalyzeQuery(query string) *types.QueryAnalysis {
	return c.analyzer.Analyze(query)
}

// MultiHopReasoning runs the deeper graph-only expansion that analytical
// queries route to. The analytical path is forced here regardless of how the
// query classifies, so callers can reach for depth explicitly.
func (c *Client) MultiHopReasoning(ctx context.Context, query string) ([]*types.SearchResult, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	analysis := c.analyzer.Analyze(query)
	analysis.Intent = types.IntentAnalytical
	return c.engine.RetrieveAnalyzed(ctx, analysis, nil)
}

// UpsertDocuments embeds documents that arrive without vectors and upserts
// the batch into the retrieval index. Without an embedder the documents are
// indexed as-is and serve the keyword branch only.
func (c *Client) UpsertDocuments(ctx context.Context, docs []*types.Document) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	if c.embedder != nil {
		var pending []int
		var texts []string
		for i, doc := range docs {
			if doc == nil || len(doc.Embedding) > 0 || doc.Content == "" {
				continue
			}
			pending = append(pending, i)
			texts = append(texts, doc.Content)
		}
		if len(texts) > 0 {
			vectors, err := c.embedder.Embed(ctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed documents: %w", err)
			}
			for n, i := range pending {
				if n < len(vectors) {
					docs[i].Embedding = vectors[n]
				}
			}
		}
	}

	if err := c.index.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	c.logger.Info("Upserted documents into index", "count", len(docs))
	return nil
}

// IndexStats reports the document count and provider identity of the
// retrieval index.
func (c *Client) IndexStats(ctx context.Context) (*index.Stats, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.index.Stats(ctx)
}
