package legame

import (
	"context"
	"time"

	"github.com/soundprediction/legame/pkg/telemetry"
	"github.com/soundprediction/legame/pkg/types"
)

// ProcessQuery runs the full pipeline for one extraction batch: the entities
// are linked into identity clusters, the graph is rebuilt from the batch,
// and the query is answered with the strategy its phrasing selects. The
// response envelope is uniform across strategies; unmet preconditions come
// back as an explanation with zero confidence, never an error.
func (c *Client) ProcessQuery(ctx context.Context, query string, entities []*types.Entity, relationships []*types.Relationship) (*types.QueryResponse, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	links := c.resolver.LinkAll(entities)
	stats := c.graph.Build(entities, relationships)

	analysis := c.analyzer.Analyze(query)
	response := c.processor.ProcessAnalyzed(analysis)

	c.logger.Info("Processed query",
		"query", query,
		"linked", len(links),
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"strategy", response.Strategy,
		"confidence", response.Confidence)

	if c.events != nil {
		c.events.Record(telemetry.NewQueryEvent(query, analysis.Intent, response, time.Since(start)))
	}
	return response, nil
}
