package resolver

import (
	"testing"

	"github.com/soundprediction/legame/pkg/types"
)

func TestStoreAddAssignsIDs(t *testing.T) {
	s := NewStore()
	entity := &types.Entity{Name: "Honda Civic", Type: "car"}
	cluster, err := s.Add(entity)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entity.ID == "" {
		t.Error("Add() did not assign an entity ID")
	}
	if cluster.ID == "" {
		t.Error("Add() did not assign a cluster ID")
	}
	if cluster.Canonical != "Honda Civic" {
		t.Errorf("canonical = %q, want %q", cluster.Canonical, "Honda Civic")
	}
}

func TestStoreAddRejectsInvalid(t *testing.T) {
	s := NewStore()
	if _, err := s.Add(&types.Entity{Name: " "}); err == nil {
		t.Error("Add() with blank name should fail")
	}
	if s.Len() != 0 {
		t.Errorf("store has %d clusters after rejected add, want 0", s.Len())
	}
}

func TestStoreClustersOrder(t *testing.T) {
	s := NewStore()
	names := []string{"Alpha One", "Beta Two", "Gamma Three"}
	for _, name := range names {
		if _, err := s.Add(&types.Entity{Name: name}); err != nil {
			t.Fatalf("Add(%q) error = %v", name, err)
		}
	}

	clusters := s.Clusters()
	if len(clusters) != 3 {
		t.Fatalf("Clusters() returned %d, want 3", len(clusters))
	}
	for i, cluster := range clusters {
		if cluster.Canonical != names[i] {
			t.Errorf("cluster %d canonical = %q, want %q", i, cluster.Canonical, names[i])
		}
	}
}

func TestStoreAppendUnknownCluster(t *testing.T) {
	s := NewStore()
	err := s.Append("missing", &types.Entity{Name: "Honda Civic"})
	if err == nil {
		t.Error("Append() to unknown cluster should fail")
	}
}

func TestStoreEntitiesSpanClusters(t *testing.T) {
	s := NewStore()
	cluster, err := s.Add(&types.Entity{Name: "Honda Civic", Type: "car"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Append(cluster.ID, &types.Entity{Name: "Civic", Type: "car"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := s.Add(&types.Entity{Name: "Quantum Flux"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	entities := s.Entities()
	if len(entities) != 3 {
		t.Errorf("Entities() returned %d, want 3", len(entities))
	}
}
