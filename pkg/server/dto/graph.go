package dto

import (
	"github.com/soundprediction/legame/pkg/types"
)

// BuildGraphRequest replaces the relationship graph with one built from the
// given batch.
type BuildGraphRequest struct {
	Entities      []*types.Entity       `json:"entities" binding:"required"`
	Relationships []*types.Relationship `json:"relationships,omitempty"`
}

// Validate performs validation on BuildGraphRequest.
func (r *BuildGraphRequest) Validate() error {
	if len(r.Entities) == 0 {
		return ErrEmptyEntities
	}
	if len(r.Entities) > MaxEntitiesPerBatch {
		return ErrTooManyEntities
	}
	return nil
}

// PathsResponse carries the enumerated paths between two entities.
type PathsResponse struct {
	Paths []*types.ReasoningPath `json:"paths"`
	Total int                    `json:"total"`
}

// RelatedResponse groups an entity's neighborhood by hop distance.
type RelatedResponse struct {
	Entity  string                        `json:"entity"`
	Related map[int][]types.RelatedEntity `json:"related"`
}

// InferResponse carries the relationships derived from multi-hop chains.
type InferResponse struct {
	Relationships []*types.Relationship `json:"relationships"`
	Total         int                   `json:"total"`
}

// CommunitiesResponse carries the detected structural communities.
type CommunitiesResponse struct {
	Communities []*types.Community `json:"communities"`
	Total       int                `json:"total"`
}

// LinkRequest resolves a batch of entities into identity clusters.
type LinkRequest struct {
	Entities []*types.Entity `json:"entities" binding:"required"`
}

// Validate performs validation on LinkRequest.
func (r *LinkRequest) Validate() error {
	if len(r.Entities) == 0 {
		return ErrEmptyEntities
	}
	if len(r.Entities) > MaxEntitiesPerBatch {
		return ErrTooManyEntities
	}
	return nil
}

// LinkResponse carries one link per input entity.
type LinkResponse struct {
	Links []*types.EntityLink `json:"links"`
	Total int                 `json:"total"`
}

// DisambiguateRequest asks which cluster member an ambiguous mention refers
// to, given its surrounding text.
type DisambiguateRequest struct {
	Entity  *types.Entity `json:"entity" binding:"required"`
	Context string        `json:"context,omitempty"`
}

// Validate performs validation on DisambiguateRequest.
func (r *DisambiguateRequest) Validate() error {
	if r.Entity == nil {
		return ErrEmptyEntity
	}
	if err := r.Entity.Validate(); err != nil {
		return err
	}
	if len(r.Context) > MaxContextLength {
		return ErrQueryTooLong
	}
	return nil
}

// MergeRequest merges identity cluster b into cluster a.
type MergeRequest struct {
	ClusterA string `json:"cluster_a" binding:"required"`
	ClusterB string `json:"cluster_b" binding:"required"`
}

// ClustersResponse lists the current identity clusters.
type ClustersResponse struct {
	Clusters []*types.EntityCluster `json:"clusters"`
	Total    int                    `json:"total"`
}
