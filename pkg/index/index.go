// Package index defines the document index behind the retrieval branches:
// upsert plus vector and keyword search. Backends exist for in-process use
// (Memory), Neo4j, and embedded Ladybug; all of them score keyword matches
// the same way so fused rankings stay comparable across providers.
package index

import (
	"context"
	"errors"
	"strings"

	"github.com/soundprediction/legame/pkg/types"
)

// Provider identifies an index backend.
type Provider string

const (
	ProviderMemory  Provider = "memory"
	ProviderNeo4j   Provider = "neo4j"
	ProviderLadybug Provider = "ladybug"
)

// ErrClosed is returned for operations on a closed index.
var ErrClosed = errors.New("index is closed")

// Stats summarizes the indexed corpus.
type Stats struct {
	Documents int64    `json:"documents"`
	Provider  Provider `json:"provider"`
}

// Index stores documents with embeddings and serves the vector and keyword
// retrieval branches. Empty queries and an empty corpus return empty result
// slices, never errors.
type Index interface {
	// Upsert inserts or replaces documents by ID, assigning missing IDs
	// and timestamps in place.
	Upsert(ctx context.Context, docs []*types.Document) error
	// SearchByVector returns up to limit documents ranked by cosine
	// similarity to the query vector.
	SearchByVector(ctx context.Context, vector []float32, limit int) ([]*types.SearchResult, error)
	// SearchByKeywords returns up to limit documents ranked by the share
	// of query keywords their content contains.
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*types.SearchResult, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

const defaultSearchLimit = 10

// keywordScore is the lexical relevance of content to a keyword set: the
// fraction of keywords present in the lowercased content. Provider-native
// relevance scores (such as BM25) are used for candidate recall only; the
// reported score is always this fraction so branches rank uniformly.
func keywordScore(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	matched := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

func searchLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	return limit
}
