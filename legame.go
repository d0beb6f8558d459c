package legame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soundprediction/legame/pkg/analyzer"
	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/fusion"
	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/index"
	"github.com/soundprediction/legame/pkg/intake"
	"github.com/soundprediction/legame/pkg/processor"
	"github.com/soundprediction/legame/pkg/rerank"
	"github.com/soundprediction/legame/pkg/resolver"
	"github.com/soundprediction/legame/pkg/snapshot"
	"github.com/soundprediction/legame/pkg/telemetry"
	"github.com/soundprediction/legame/pkg/types"
)

// Legame is the main interface for building relationship graphs from
// extracted entities and answering questions over them with hybrid
// retrieval.
type Legame interface {
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

	// BuildGraph atomically replaces the relationship graph with one built
	// from the given entities and relationships. Invalid records are
	// skipped and counted, never fatal.
	BuildGraph(ctx context.Context, entities []*types.Entity, relationships []*types.Relationship) (*graph.Stats, error)

	// FindPaths enumerates simple paths between two entities, bounded by
	// maxHops, ordered by confidence then length.
	FindPaths(ctx context.Context, source, target string, maxHops int) ([]*types.ReasoningPath, error)

	// FindRelatedEntities expands the neighborhood of an entity, grouping
	// results by hop distance with per-hop confidence decay.
	FindRelatedEntities(ctx context.Context, entity string, maxHops int) (map[int][]types.RelatedEntity, error)

	// ExplainRelationship composes paths and inferred relationships into a
	// human-readable account of how two entities connect. "No relationship
	// exists" is a valid answer, not an error.
	ExplainRelationship(ctx context.Context, source, target string) (*types.RelationshipExplanation, error)

	// InferRelationships summarizes each discovered path into a single
	// derived relationship between its endpoints.
	InferRelationships(ctx context.Context, source, target string, maxHops int) ([]*types.Relationship, error)

	// EntityCentrality reports how connected one entity is. Unknown
	// entities return ErrEntityNotFound.
	EntityCentrality(ctx context.Context, entity string) (*types.Centrality, error)

	// EntityClusters detects graph-structural communities via label
	// propagation.
	EntityClusters(ctx context.Context) ([]*types.Community, error)

	// GraphStats reports node and edge counts for the current graph.
	GraphStats(ctx context.Context) (*graph.Stats, error)

	// Retrieve performs hybrid retrieval combining vector similarity,
	// graph expansion, and keyword overlap, fused and reranked.
	Retrieve(ctx context.Context, query string, topK int) ([]*types.SearchResult, error)

	// AnalyzeQuery classifies a query's intent and extracts its entity
	// mentions and keywords.
	AnalyzeQuery(query string) *types.QueryAnalysis

	// MultiHopReasoning runs the deeper graph-only expansion that
	// analytical queries route to, regardless of how the query classifies.
	MultiHopReasoning(ctx context.Context, query string) ([]*types.SearchResult, error)

	// ProcessQuery runs the full pipeline for one extraction batch: link
	// entities, rebuild the graph, then answer the query with the strategy
	// its phrasing selects.
	ProcessQuery(ctx context.Context, query string, entities []*types.Entity, relationships []*types.Relationship) (*types.QueryResponse, error)

	// UpsertDocuments embeds documents that arrive without vectors and
	// upserts them into the retrieval index.
	UpsertDocuments(ctx context.Context, docs []*types.Document) error

	// IndexStats reports the document count and provider identity of the
	// retrieval index.
	IndexStats(ctx context.Context) (*index.Stats, error)

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

// Client is the main implementation of the Legame interface.
type Client struct {
	index     index.Index
	embedder  embedder.Client
	resolver  *resolver.Resolver
	graph     *graph.Graph
	reasoner  *graph.Reasoner
	analyzer  *analyzer.Analyzer
	engine    *fusion.Engine
	processor *processor.Processor
	parser    *intake.Parser
	snapshots *snapshot.Store
	events    *telemetry.EventLog
	config    *Config
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Legame = (*Client)(nil)

// Config holds configuration for the Legame client.
type Config struct {
	// SessionName is the snapshot name used when Save/Load is called with
	// an empty name.
	SessionName string
	// Resolver holds entity linking thresholds.
	Resolver *resolver.Config
	// Reasoner holds graph traversal bounds.
	Reasoner *graph.Config
	// Analyzer holds query analysis settings.
	Analyzer *analyzer.Config
	// Retrieval holds fusion weights and limits.
	Retrieval *fusion.Config
	// Processor holds strategy dispatch settings.
	Processor *processor.Config
	// Reranker, when set, reorders fused results after retrieval. A
	// reranker failure degrades to the fused order.
	Reranker rerank.Reranker
	// SnapshotDir is the directory for session snapshots. Empty keeps
	// snapshots in memory.
	SnapshotDir string
	// TelemetryDir, when set, enables the parquet query event log.
	TelemetryDir string
}

// NewClient creates a new Legame client. A nil index falls back to the
// in-memory implementation and a nil embedder disables the vector branch,
// so NewClient(nil, nil, nil, nil) yields a working graph-and-keyword-only
// client.
func NewClient(idx index.Index, embed embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = &Config{}
	}
	if config.SessionName == "" {
		config.SessionName = "default"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if idx == nil {
		idx = index.NewMemory(logger)
	}

	snapshots, err := snapshot.Open(config.SnapshotDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	var events *telemetry.EventLog
	if config.TelemetryDir != "" {
		events, err = telemetry.NewEventLog(config.TelemetryDir)
		if err != nil {
			snapshots.Close()
			return nil, fmt.Errorf("failed to open query event log: %w", err)
		}
	}

	store := resolver.NewStore()
	res := resolver.NewResolver(store, config.Resolver, logger)
	g := graph.New(logger)
	reasoner := graph.NewReasoner(g, config.Reasoner, logger)
	a := analyzer.New(config.Analyzer, logger)
	engine := fusion.NewEngine(idx, embed, g, reasoner, a, config.Retrieval, logger)
	proc := processor.New(a, g, reasoner, config.Processor, logger)

	return &Client{
		index:     idx,
		embedder:  embed,
		resolver:  res,
		graph:     g,
		reasoner:  reasoner,
		analyzer:  a,
		engine:    engine,
		processor: proc,
		parser:    intake.NewParser(logger),
		snapshots: snapshots,
		events:    events,
		config:    config,
		logger:    logger,
	}, nil
}

// GetIndex returns the underlying document index.
func (c *Client) GetIndex() index.Index {
	return c.index
}

// GetEmbedder returns the embedding client, which may be nil.
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// GetResolver returns the entity resolver.
func (c *Client) GetResolver() *resolver.Resolver {
	return c.resolver
}

// GetGraph returns the relationship graph.
func (c *Client) GetGraph() *graph.Graph {
	return c.graph
}

// GetReasoner returns the graph reasoner.
func (c *Client) GetReasoner() *graph.Reasoner {
	return c.reasoner
}

// ensureOpen fails operations on a closed client.
func (c *Client) ensureOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Close flushes the query event log, then closes the snapshot store and the
// index. Close is idempotent; every later operation returns ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var firstErr error
	if c.events != nil {
		if err := c.events.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close query event log: %w", err)
		}
	}
	if err := c.snapshots.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close snapshot store: %w", err)
	}
	if err := c.index.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close index: %w", err)
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close embedder: %w", err)
		}
	}
	return firstErr
}

var (
	// ErrEntityNotFound is returned when an entity is not in the graph.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrSessionNotFound is returned when no snapshot exists under the
	// requested session name.
	ErrSessionNotFound = errors.New("session not found")
	// ErrClientClosed is returned when an operation is attempted on a
	// closed client.
	ErrClientClosed = errors.New("client is closed")
)
