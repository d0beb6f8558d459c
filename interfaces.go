package legame

import (
	"context"

	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/index"
	"github.com/soundprediction/legame/pkg/intake"
	"github.com/soundprediction/legame/pkg/types"
)

// This file defines focused interfaces that follow the Interface Segregation Principle.
// The main Legame interface is composed from these smaller interfaces.
// Consumers should depend on the smallest interface that meets their needs.

// IdentityManager provides entity resolution operations.
// Use this interface when you only need to link, disambiguate, or merge
// entity identities.
type IdentityManager interface {
	// LinkEntities resolves extracted entities into identity clusters,
	// creating new clusters for entities nothing matches.
	LinkEntities(ctx context.Context, entities []*types.Entity) ([]*types.EntityLink, error)

	// DisambiguateEntity picks the best cluster representative for an
	// ambiguous mention, using the surrounding text as a tie-breaker.
	DisambiguateEntity(ctx context.Context, entity *types.Entity, contextText string) (*types.Entity, error)

	// MergeClusters moves every member of cluster b into cluster a.
	MergeClusters(ctx context.Context, aID, bID string) error

	// IdentityClusters lists the current identity clusters in registration
	// order.
	IdentityClusters(ctx context.Context) ([]*types.EntityCluster, error)
}

// GraphMutator provides write operations on the relationship graph.
// Use this interface when you need to rebuild the graph structure.
type GraphMutator interface {
	// BuildGraph atomically replaces the relationship graph with one built
	// from the given entities and relationships.
	BuildGraph(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (*graph.Stats, error)
}

// GraphQuerier provides read-only reasoning operations on the relationship
// graph. Use this interface when you only need traversal and inspection.
type GraphQuerier interface {
	// FindPaths enumerates simple paths between two entities, bounded by
	// maxHops, ordered by confidence then length.
	FindPaths(ctx context.Context, source, target string, maxHops int) ([]*types.ReasoningPath, error)

	// FindRelatedEntities expands the neighborhood of an entity, grouping
	// results by hop distance with per-hop confidence decay.
	FindRelatedEntities(ctx context.Context, entity string, maxHops int) (map[int][]types.RelatedEntity, error)

	// ExplainRelationship composes paths and inferred relationships into a
	// human-readable account of how two entities connect.
	ExplainRelationship(ctx context.Context, source, target string) (*types.RelationshipExplanation, error)

	// InferRelationships summarizes each discovered path into a single
	// derived relationship between its endpoints.
	InferRelationships(ctx context.Context, source, target string, maxHops int) ([]*types.Relationship, error)

	// EntityCentrality reports how connected one entity is.
	EntityCentrality(ctx context.Context, entity string) (*types.Centrality, error)

	// EntityClusters detects graph-structural communities via label
	// propagation.
	EntityClusters(ctx context.Context) ([]*types.Community, error)

	// GraphStats reports node and edge counts for the current graph.
	GraphStats(ctx context.Context) (*graph.Stats, error)
}

// Retriever provides hybrid retrieval operations.
// Use this interface when you only need search over the indexed corpus and
// graph.
type Retriever interface {
	// Retrieve performs hybrid retrieval combining vector similarity,
	// graph expansion, and keyword overlap, fused and reranked.
	Retrieve(ctx context.Context, query string, topK int) ([]*types.SearchResult, error)

	// AnalyzeQuery classifies a query's intent and extracts its entity
	// mentions and keywords.
	AnalyzeQuery(query string) *types.QueryAnalysis

	// MultiHopReasoning runs the deeper graph-only expansion that
	// analytical queries route to.
	MultiHopReasoning(ctx context.Context, query string) ([]*types.SearchResult, error)

	// ProcessQuery runs the full pipeline for one extraction batch and
	// answers the query with the strategy its phrasing selects.
	ProcessQuery(ctx context.Context, query string, entities []*types.Entity, relationships []*types.Relationship) (*types.QueryResponse, error)
}

// DocumentManager provides corpus operations on the retrieval index.
type DocumentManager interface {
	// UpsertDocuments embeds documents that arrive without vectors and
	// upserts them into the retrieval index.
	UpsertDocuments(ctx context.Context, docs []*types.Document) error

	// IndexStats reports the document count and provider identity of the
	// retrieval index.
	IndexStats(ctx context.Context) (*index.Stats, error)
}

// SessionAdmin provides ingestion and persistence operations.
// Use this interface for loading extractor output and for saving or
// restoring sessions.
type SessionAdmin interface {
	// LoadExtractionFile parses an extractor payload file (JSON or YAML)
	// into validated entities and relationships.
	LoadExtractionFile(ctx context.Context, path string) (*intake.Payload, error)

	// IngestPayload links a parsed payload's entities and rebuilds the
	// graph from it.
	IngestPayload(ctx context.Context, payload *intake.Payload) (*graph.Stats, error)

	// SaveSnapshot persists the current session under the given name.
	SaveSnapshot(ctx context.Context, name string) error

	// LoadSnapshot restores a saved session, relinking its entities and
	// rebuilding the graph.
	LoadSnapshot(ctx context.Context, name string) (*graph.Stats, error)

	// ListSnapshots returns the names of saved sessions.
	ListSnapshots(ctx context.Context) ([]string, error)

	// DeleteSnapshot removes a saved session.
	DeleteSnapshot(ctx context.Context, name string) error

	// Close flushes telemetry and releases the snapshot store and index.
	Close() error
}

// Ensure the Legame interface composes all focused interfaces.
// This compile-time check keeps the facade and the focused views in sync.
var _ interface {
	IdentityManager
	GraphMutator
	GraphQuerier
	Retriever
	DocumentManager
	SessionAdmin
} = (Legame)(nil)
