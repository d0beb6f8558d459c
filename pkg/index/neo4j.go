package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/legame/pkg/types"
	"github.com/soundprediction/legame/pkg/utils"
)

// Neo4j indexes documents as (:Document) nodes. Embeddings are stored as
// JSON strings on the node and ranked in process, so no vector index plugin
// is required on the server.
type Neo4j struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4j connects to a Neo4j server. An empty database name means the
// server default "neo4j".
func NewNeo4j(uri, username, password, database string, logger *slog.Logger) (*Neo4j, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Neo4j{client: client, database: database, logger: logger}, nil
}

func (n *Neo4j) Upsert(ctx context.Context, docs []*types.Document) error {
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
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (d:Document {uuid: $uuid})
			SET d.content = $content,
				d.entities = $entities,
				d.embedding = $embedding,
				d.metadata = $metadata,
				d.created_at = $created_at
		`
		for _, doc := range docs {
			params := map[string]any{
				"uuid":       doc.ID,
				"content":    doc.Content,
				"entities":   doc.Entities,
				"embedding":  nil,
				"metadata":   nil,
				"created_at": doc.CreatedAt.Format(time.RFC3339),
			}
			if len(doc.Embedding) > 0 {
				data, err := json.Marshal(doc.Embedding)
				if err != nil {
					return nil, fmt.Errorf("failed to encode embedding for %s: %w", doc.ID, err)
				}
				params["embedding"] = string(data)
			}
			if doc.Metadata != nil {
				data, err := json.Marshal(doc.Metadata)
				if err != nil {
					return nil, fmt.Errorf("failed to encode metadata for %s: %w", doc.ID, err)
				}
				params["metadata"] = string(data)
			}
			if _, err := tx.Run(ctx, query, params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	return nil
}

func (n *Neo4j) SearchByVector(ctx context.Context, vector []float32, limit int) ([]*types.SearchResult, error) {
	if len(vector) == 0 {
		return []*types.SearchResult{}, nil
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (d:Document)
			WHERE d.embedding IS NOT NULL
			RETURN d
		`, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search documents by vector: %w", err)
	}

	scored := make([]utils.ScoredItem[*types.SearchResult], 0)
	for _, record := range result.([]*db.Record) {
		node, ok := documentNode(record)
		if !ok {
			continue
		}
		embeddingStr, ok := node.Props["embedding"].(string)
		if !ok {
			continue
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(embeddingStr), &embedding); err != nil {
			continue
		}
		score := utils.CosineSimilarity(vector, embedding)
		if score <= 0 {
			continue
		}
		scored = append(scored, utils.ScoredItem[*types.SearchResult]{
			Item:  searchResultFromNode(node, types.ResultTypeVector),
			Score: score,
		})
	}

	top := utils.TopKByScore(scored, searchLimit(limit))
	results := make([]*types.SearchResult, len(top))
	for i, item := range top {
		item.Item.Score = item.Score
		results[i] = item.Item
	}
	return results, nil
}

func (n *Neo4j) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*types.SearchResult, error) {
	if len(keywords) == 0 {
		return []*types.SearchResult{}, nil
	}
	lowered := make([]string, len(keywords))
	for i, keyword := range keywords {
		lowered[i] = strings.ToLower(keyword)
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (d:Document)
			WHERE any(kw IN $keywords WHERE toLower(d.content) CONTAINS kw)
			RETURN d
		`, map[string]any{"keywords": lowered})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search documents by keywords: %w", err)
	}

	scored := make([]utils.ScoredItem[*types.SearchResult], 0)
	for _, record := range result.([]*db.Record) {
		node, ok := documentNode(record)
		if !ok {
			continue
		}
		content, _ := node.Props["content"].(string)
		score := keywordScore(content, keywords)
		if score <= 0 {
			continue
		}
		scored = append(scored, utils.ScoredItem[*types.SearchResult]{
			Item:  searchResultFromNode(node, types.ResultTypeKeyword),
			Score: score,
		})
	}

	top := utils.TopKByScore(scored, searchLimit(limit))
	results := make([]*types.SearchResult, len(top))
	for i, item := range top {
		item.Item.Score = item.Score
		results[i] = item.Item
	}
	return results, nil
}

func (n *Neo4j) Stats(ctx context.Context) (*Stats, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (d:Document) RETURN count(d) AS documents`, nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	stats := &Stats{Provider: ProviderNeo4j}
	if value, found := result.(*db.Record).Get("documents"); found {
		if count, ok := value.(int64); ok {
			stats.Documents = count
		}
	}
	return stats, nil
}

func (n *Neo4j) Close() error {
	return n.client.Close(context.Background())
}

func documentNode(record *db.Record) (dbtype.Node, bool) {
	value, found := record.Get("d")
	if !found {
		return dbtype.Node{}, false
	}
	node, ok := value.(dbtype.Node)
	return node, ok
}

func searchResultFromNode(node dbtype.Node, resultType types.ResultType) *types.SearchResult {
	result := &types.SearchResult{ResultType: resultType}
	result.ID, _ = node.Props["uuid"].(string)
	result.Content, _ = node.Props["content"].(string)
	if metadataStr, ok := node.Props["metadata"].(string); ok && metadataStr != "" {
		var metadata map[string]interface{}
		if err := json.Unmarshal([]byte(metadataStr), &metadata); err == nil {
			result.Metadata = metadata
		}
	}
	return result
}
