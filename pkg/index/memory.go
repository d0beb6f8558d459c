package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soundprediction/legame/pkg/types"
	"github.com/soundprediction/legame/pkg/utils"
)

// Memory is an in-process index. It ranks vector queries by exhaustive
// cosine scan, which is fine for the corpus sizes a single process holds;
// larger corpora belong on the Neo4j or Ladybug backends.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string]*types.Document
	order  []string
	closed bool
	logger *slog.Logger
}

// NewMemory creates an empty in-memory index. A nil logger falls back to
// slog.Default().
func NewMemory(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		docs:   make(map[string]*types.Document),
		logger: logger,
	}
}

// Upsert inserts or replaces documents by ID. Documents without an ID get
// one assigned; a document failing validation fails the whole batch.
func (m *Memory) Upsert(ctx context.Context, docs []*types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	for i, doc := range docs {
		if doc == nil {
			return fmt.Errorf("document %d: %w", i, types.ErrEmptyContent)
		}
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		if doc.ID == "" {
			doc.ID = utils.GenerateUUID()
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}
		if _, ok := m.docs[doc.ID]; !ok {
			m.order = append(m.order, doc.ID)
		}
		m.docs[doc.ID] = doc
	}
	m.logger.Debug("documents upserted", "count", len(docs), "total", len(m.docs))
	return nil
}

func (m *Memory) SearchByVector(ctx context.Context, vector []float32, limit int) ([]*types.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if len(vector) == 0 {
		return []*types.SearchResult{}, nil
	}

	scored := make([]utils.ScoredItem[*types.Document], 0, len(m.docs))
	for _, id := range m.order {
		doc := m.docs[id]
		if len(doc.Embedding) == 0 {
			continue
		}
		score := utils.CosineSimilarity(vector, doc.Embedding)
		if score <= 0 {
			continue
		}
		scored = append(scored, utils.ScoredItem[*types.Document]{Item: doc, Score: score})
	}

	top := utils.TopKByScore(scored, searchLimit(limit))
	results := make([]*types.SearchResult, len(top))
	for i, item := range top {
		results[i] = &types.SearchResult{
			ID:         item.Item.ID,
			Content:    item.Item.Content,
			Score:      item.Score,
			ResultType: types.ResultTypeVector,
			Metadata:   item.Item.Metadata,
		}
	}
	return results, nil
}

func (m *Memory) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*types.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if len(keywords) == 0 {
		return []*types.SearchResult{}, nil
	}

	scored := make([]utils.ScoredItem[*types.Document], 0, len(m.docs))
	for _, id := range m.order {
		doc := m.docs[id]
		score := keywordScore(doc.Content, keywords)
		if score <= 0 {
			continue
		}
		scored = append(scored, utils.ScoredItem[*types.Document]{Item: doc, Score: score})
	}

	top := utils.TopKByScore(scored, searchLimit(limit))
	results := make([]*types.SearchResult, len(top))
	for i, item := range top {
		results[i] = &types.SearchResult{
			ID:         item.Item.ID,
			Content:    item.Item.Content,
			Score:      item.Score,
			ResultType: types.ResultTypeKeyword,
			Metadata:   item.Item.Metadata,
		}
	}
	return results, nil
}

func (m *Memory) Stats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return &Stats{Documents: int64(len(m.docs)), Provider: ProviderMemory}, nil
}

// Close releases the document map. Further operations return ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	m.order = nil
	m.closed = true
	return nil
}
