package resolver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/soundprediction/legame/pkg/types"
	"github.com/soundprediction/legame/pkg/utils"
)

// Store errors
var (
	ErrClusterNotFound = errors.New("cluster not found")
	ErrSameCluster     = errors.New("cannot merge a cluster with itself")
)

// Store is the registry of entity records and the identity clusters they
// resolve into. It is an explicit owned object passed by handle into the
// Resolver, so independent sessions can run isolated stores side by side.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	clusters map[string]*types.EntityCluster
	// order holds cluster IDs in creation order so iteration and
	// first-match-wins tie breaking stay deterministic.
	order []string
}

// NewStore creates an empty entity store.
func NewStore() *Store {
	return &Store{
		clusters: make(map[string]*types.EntityCluster),
	}
}

// Add registers the entity in a new singleton cluster and returns it. The
// entity receives an ID if it does not carry one.
func (s *Store) Add(entity *types.Entity) (*types.EntityCluster, error) {
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	if entity.ID == "" {
		entity.ID = utils.GenerateUUID()
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC()
	}

	cluster := &types.EntityCluster{
		ID:        utils.GenerateUUID(),
		Canonical: entity.Name,
		Members:   []*types.Entity{entity},
		UpdatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters[cluster.ID] = cluster
	s.order = append(s.order, cluster.ID)
	return cluster, nil
}

// Append adds the entity to an existing cluster.
func (s *Store) Append(clusterID string, entity *types.Entity) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	if entity.ID == "" {
		entity.ID = utils.GenerateUUID()
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cluster, ok := s.clusters[clusterID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClusterNotFound, clusterID)
	}
	cluster.Members = append(cluster.Members, entity)
	cluster.UpdatedAt = time.Now().UTC()
	return nil
}

// Cluster returns the cluster with the given ID.
func (s *Store) Cluster(id string) (*types.EntityCluster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cluster, ok := s.clusters[id]
	return cluster, ok
}

// Clusters returns all clusters in creation order.
func (s *Store) Clusters() []*types.EntityCluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*types.EntityCluster, 0, len(s.order))
	for _, id := range s.order {
		if cluster, ok := s.clusters[id]; ok {
			result = append(result, cluster)
		}
	}
	return result
}

// Entities returns every member record across all clusters, in cluster
// creation order.
func (s *Store) Entities() []*types.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*types.Entity
	for _, id := range s.order {
		if cluster, ok := s.clusters[id]; ok {
			result = append(result, cluster.Members...)
		}
	}
	return result
}

// Len returns the number of clusters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clusters)
}

// Merge moves every member of cluster b into cluster a and deletes b.
// Clusters are merged, never deleted outright, so a's identity survives.
func (s *Store) Merge(aID, bID string) error {
	if aID == bID {
		return ErrSameCluster
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.clusters[aID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClusterNotFound, aID)
	}
	b, ok := s.clusters[bID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClusterNotFound, bID)
	}

	a.Members = append(a.Members, b.Members...)
	a.UpdatedAt = time.Now().UTC()
	delete(s.clusters, bID)
	for i, id := range s.order {
		if id == bID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
