package legame

import (
	"context"
	"fmt"

	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/types"
)

// BuildGraph atomically replaces the relationship graph with one built from
// the given entities and relationships. Readers never observe a half-built
// graph. Self-loops, dangling endpoints, and invalid records are skipped and
// counted in the returned stats.
func (c *Client) BuildGraph(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (*graph.Stats, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.graph.Build(entities, relationships), nil
}

// FindPaths enumerates simple paths from source to target, bounded by
// maxHops, ordered by confidence then length. Unknown endpoints yield an
// empty slice.
func (c *Client) FindPaths(ctx context.Context, source, target string, maxHops int) ([]*types.ReasoningPath, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reasoner.FindPaths(source, target, maxHops), nil
}

// FindRelatedEntities expands the neighborhood of an entity up to maxHops,
// grouping results by hop distance with per-hop confidence decay.
func (c *Client) FindRelatedEntities(ctx context.Context, entity string, maxHops int) (map[int][]types.RelatedEntity, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reasoner.RelatedEntities(entity, maxHops), nil
}

// ExplainRelationship composes path discovery and relationship inference
// into a narrated answer to "how are these two entities connected". When no
// path exists the explanation says so with zero confidence; that is an
// answer, not an error.
func (c *Client) ExplainRelationship(ctx context.Context, source, target string) (*types.RelationshipExplanation, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reasoner.Explain(source, target), nil
}

// InferRelationships summarizes each discovered path between source and
// target into a single derived relationship, with confidence taken from the
// path it came from.
func (c *Client) InferRelationships(ctx context.Context, source, target string, maxHops int) ([]*types.Relationship, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reasoner.InferRelationships(source, target, maxHops), nil
}

// EntityCentrality reports how connected one entity is relative to the rest
// of the graph.
func (c *Client) EntityCentrality(ctx context.Context, entity string) (*types.Centrality, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	centrality, ok := c.reasoner.CentralityOf(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}
	return centrality, nil
}

// EntityClusters detects graph-structural communities via label propagation.
// Runs are deterministic for a given graph.
func (c *Client) EntityClusters(ctx context.Context) ([]*types.Community, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reasoner.Communities(), nil
}

// GraphStats reports node and edge counts plus the build timestamp for the
// current graph.
func (c *Client) GraphStats(ctx context.Context) (*graph.Stats, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.graph.Stats(), nil
}
