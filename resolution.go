package legame

import (
	"context"

	"github.com/soundprediction/legame/pkg/types"
)

// LinkEntities resolves extracted entities into identity clusters. Each
// entity either joins the best-matching existing cluster or founds a new
// singleton cluster, so every input produces exactly one link.
func (c *Client) LinkEntities(ctx context.Context, entities []*types.Entity) ([]*types.EntityLink, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.resolver.LinkAll(entities), nil
}

// DisambiguateEntity picks the cluster member whose profile best matches the
// surrounding text. With no usable context or no matching cluster the entity
// comes back unchanged.
func (c *Client) DisambiguateEntity(ctx context.Context, entity *types.Entity, contextText string) (*types.Entity, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.resolver.Disambiguate(entity, contextText), nil
}

// MergeClusters moves every member of cluster b into cluster a and deletes
// b. Unknown IDs return resolver.ErrClusterNotFound.
func (c *Client) MergeClusters(ctx context.Context, aID, bID string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.resolver.MergeClusters(aID, bID)
}

// IdentityClusters returns the current identity clusters in registration
// order.
func (c *Client) IdentityClusters(ctx context.Context) ([]*types.EntityCluster, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.resolver.Store().Clusters(), nil
}
