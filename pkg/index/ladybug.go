//go:build cgo

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	ladybug "github.com/LadybugDB/go-ladybug"

	"github.com/soundprediction/legame/pkg/types"
	"github.com/soundprediction/legame/pkg/utils"
)

const ladybugSchema = `
	CREATE NODE TABLE IF NOT EXISTS Document (
		uuid STRING PRIMARY KEY,
		content STRING,
		entities STRING[],
		embedding FLOAT[],
		metadata STRING,
		created_at TIMESTAMP
	);
`

// Ladybug indexes documents in an embedded Ladybug database. Vector queries
// run through array_cosine_similarity and keyword recall through the FTS
// extension's BM25 index, so both scale past what the in-memory scan
// handles. The connection is not safe for concurrent use; a mutex
// serializes all operations.
type Ladybug struct {
	mu     sync.Mutex
	db     *ladybug.Database
	conn   *ladybug.Connection
	path   string
	closed bool
	logger *slog.Logger
}

// NewLadybug opens (or creates) a Ladybug database at path. An empty path
// opens an in-memory database.
func NewLadybug(path string, logger *slog.Logger) (*Ladybug, error) {
	if path == "" {
		path = ":memory:"
	}
	if logger == nil {
		logger = slog.Default()
	}

	systemConfig := ladybug.SystemConfig{
		BufferPoolSize:    1024 * 1024 * 1024,
		MaxNumThreads:     4,
		EnableCompression: true,
		ReadOnly:          false,
		MaxDbSize:         1 << 43,
	}
	db, err := ladybug.OpenDatabase(path, systemConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open ladybug database: %w", err)
	}
	conn, err := ladybug.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open ladybug connection: %w", err)
	}

	l := &Ladybug{db: db, conn: conn, path: path, logger: logger}
	l.setupSchema()
	return l, nil
}

// setupSchema creates the Document table and its fulltext index. Failures
// are logged rather than fatal: the FTS extension may be missing, in which
// case keyword search degrades but vector search still works.
func (l *Ladybug) setupSchema() {
	if _, err := l.conn.Query("INSTALL FTS;"); err != nil && !strings.Contains(err.Error(), "already installed") {
		l.logger.Warn("ladybug FTS install", "error", err)
	}
	if _, err := l.conn.Query("LOAD EXTENSION FTS;"); err != nil && !strings.Contains(err.Error(), "already loaded") {
		l.logger.Warn("ladybug FTS load", "error", err)
	}
	if _, err := l.conn.Query(ladybugSchema); err != nil {
		l.logger.Warn("ladybug schema setup", "error", err)
	}
	if _, err := l.conn.Query("CALL CREATE_FTS_INDEX('Document', 'document_content', ['content']);"); err != nil {
		l.logger.Debug("ladybug FTS index", "error", err)
	}
}

// execute runs one query and converts the result rows to maps keyed by
// column name. The caller must hold l.mu.
func (l *Ladybug) execute(query string, params map[string]any) ([]map[string]any, error) {
	if l.closed {
		return nil, ErrClosed
	}

	var result *ladybug.QueryResult
	if len(params) > 0 {
		prepared, err := l.conn.Prepare(query)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare ladybug query: %w", err)
		}
		result, err = l.conn.Execute(prepared, params)
		if err != nil {
			return nil, fmt.Errorf("failed to execute ladybug query: %w", err)
		}
	} else {
		var err error
		result, err = l.conn.Query(query)
		if err != nil {
			return nil, fmt.Errorf("failed to execute ladybug query: %w", err)
		}
	}
	defer result.Close()

	columns := result.GetColumnNames()
	var rows []map[string]any
	for result.HasNext() {
		tuple, err := result.Next()
		if err != nil {
			continue
		}
		values, err := tuple.GetAsSlice()
		if err != nil {
			continue
		}
		row := make(map[string]any, len(columns))
		for i, value := range values {
			if i < len(columns) {
				row[columns[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *Ladybug) Upsert(ctx context.Context, docs []*types.Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()

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
		if err := l.upsertOne(doc); err != nil {
			return fmt.Errorf("document %s: %w", doc.ID, err)
		}
	}
	return nil
}

func (l *Ladybug) upsertOne(doc *types.Document) error {
	existing, err := l.execute(
		`MATCH (d:Document) WHERE d.uuid = $uuid RETURN d.uuid AS uuid`,
		map[string]any{"uuid": doc.ID},
	)
	if err != nil {
		return err
	}

	params := map[string]any{
		"uuid":       doc.ID,
		"content":    doc.Content,
		"metadata":   encodeMetadata(doc.Metadata),
		"created_at": doc.CreatedAt,
	}

	// Empty arrays need explicit casts or type inference fails.
	entitiesExpr := "CAST([] AS STRING[])"
	if len(doc.Entities) > 0 {
		entitiesExpr = "$entities"
		params["entities"] = doc.Entities
	}
	embeddingExpr := "CAST([] AS FLOAT[])"
	if len(doc.Embedding) > 0 {
		embeddingExpr = "$embedding"
		embedding := make([]float64, len(doc.Embedding))
		for i, v := range doc.Embedding {
			embedding[i] = float64(v)
		}
		params["embedding"] = embedding
	}

	var query string
	if len(existing) > 0 {
		query = fmt.Sprintf(`
			MATCH (d:Document)
			WHERE d.uuid = $uuid
			SET d.content = $content,
				d.entities = %s,
				d.embedding = %s,
				d.metadata = $metadata,
				d.created_at = $created_at
		`, entitiesExpr, embeddingExpr)
	} else {
		query = fmt.Sprintf(`
			CREATE (d:Document {
				uuid: $uuid,
				content: $content,
				entities: %s,
				embedding: %s,
				metadata: $metadata,
				created_at: $created_at
			})
		`, entitiesExpr, embeddingExpr)
	}

	_, err = l.execute(query, params)
	return err
}

func (l *Ladybug) SearchByVector(ctx context.Context, vector []float32, limit int) ([]*types.SearchResult, error) {
	if len(vector) == 0 {
		return []*types.SearchResult{}, nil
	}

	searchVector := make([]float64, len(vector))
	for i, v := range vector {
		searchVector[i] = float64(v)
	}
	query := fmt.Sprintf(`
		MATCH (d:Document)
		WHERE size(d.embedding) > 0
		WITH d, array_cosine_similarity(d.embedding, CAST($search_vector AS FLOAT[%d])) AS score
		WHERE score > 0.0
		RETURN d.uuid AS uuid, d.content AS content, d.metadata AS metadata, score
		ORDER BY score DESC
		LIMIT $limit
	`, len(vector))

	l.mu.Lock()
	rows, err := l.execute(query, map[string]any{
		"search_vector": searchVector,
		"limit":         int64(searchLimit(limit)),
	})
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to search documents by vector: %w", err)
	}

	results := make([]*types.SearchResult, 0, len(rows))
	for _, row := range rows {
		result := searchResultFromRow(row, types.ResultTypeVector)
		result.Score = numericValue(row["score"])
		results = append(results, result)
	}
	return results, nil
}

func (l *Ladybug) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*types.SearchResult, error) {
	if len(keywords) == 0 {
		return []*types.SearchResult{}, nil
	}

	// BM25 recalls candidates; the reported score is the uniform keyword
	// fraction so rankings stay comparable with the other backends.
	l.mu.Lock()
	rows, err := l.execute(`
		CALL QUERY_FTS_INDEX('Document', 'document_content', CAST($query AS STRING), TOP := $limit)
		WITH node AS d, score
		RETURN d.uuid AS uuid, d.content AS content, d.metadata AS metadata, score
		ORDER BY score DESC
	`, map[string]any{
		"query": strings.Join(keywords, " "),
		"limit": int64(searchLimit(limit)),
	})
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to search documents by keywords: %w", err)
	}

	scored := make([]utils.ScoredItem[*types.SearchResult], 0, len(rows))
	for _, row := range rows {
		result := searchResultFromRow(row, types.ResultTypeKeyword)
		score := keywordScore(result.Content, keywords)
		if score <= 0 {
			continue
		}
		scored = append(scored, utils.ScoredItem[*types.SearchResult]{Item: result, Score: score})
	}

	top := utils.TopKByScore(scored, searchLimit(limit))
	results := make([]*types.SearchResult, len(top))
	for i, item := range top {
		item.Item.Score = item.Score
		results[i] = item.Item
	}
	return results, nil
}

func (l *Ladybug) Stats(ctx context.Context) (*Stats, error) {
	l.mu.Lock()
	rows, err := l.execute(`MATCH (d:Document) RETURN count(d) AS documents`, nil)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	stats := &Stats{Provider: ProviderLadybug}
	if len(rows) > 0 {
		stats.Documents = int64(numericValue(rows[0]["documents"]))
	}
	return stats, nil
}

func (l *Ladybug) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.conn != nil {
		l.conn.Close()
	}
	if l.db != nil {
		l.db.Close()
	}
	return nil
}

func encodeMetadata(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(data)
}

func searchResultFromRow(row map[string]any, resultType types.ResultType) *types.SearchResult {
	result := &types.SearchResult{ResultType: resultType}
	result.ID, _ = row["uuid"].(string)
	result.Content, _ = row["content"].(string)
	if metadataStr, ok := row["metadata"].(string); ok && metadataStr != "" {
		var metadata map[string]interface{}
		if err := json.Unmarshal([]byte(metadataStr), &metadata); err == nil {
			result.Metadata = metadata
		}
	}
	return result
}

// numericValue widens whatever numeric type the driver hands back.
func numericValue(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}
