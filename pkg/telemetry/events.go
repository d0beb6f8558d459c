package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/legame/pkg/types"
	"github.com/soundprediction/legame/pkg/utils"
)

// QueryEvent is one retrieval or processing run in the query log.
type QueryEvent struct {
	ID             string    `parquet:"id"`
	Timestamp      time.Time `parquet:"timestamp"`
	Query          string    `parquet:"query"`
	Intent         string    `parquet:"intent"`
	Strategy       string    `parquet:"strategy"`
	VectorResults  int       `parquet:"vector_results"`
	GraphResults   int       `parquet:"graph_results"`
	KeywordResults int       `parquet:"keyword_results"`
	TotalResults   int       `parquet:"total_results"`
	Confidence     float64   `parquet:"confidence"`
	DurationMS     int64     `parquet:"duration_ms"`
}

// NewQueryEvent summarizes a processed query: which branches contributed how
// many results, the winning strategy, and how long the run took.
func NewQueryEvent(query string, intent types.Intent, response *types.QueryResponse, duration time.Duration) QueryEvent {
	event := QueryEvent{
		ID:         utils.GenerateUUID(),
		Timestamp:  time.Now().UTC(),
		Query:      query,
		Intent:     string(intent),
		DurationMS: duration.Milliseconds(),
	}
	if response == nil {
		return event
	}

	event.Strategy = string(response.Strategy)
	event.Confidence = response.Confidence
	event.TotalResults = len(response.Results)
	for _, result := range response.Results {
		switch result.ResultType {
		case types.ResultTypeVector:
			event.VectorResults++
		case types.ResultTypeGraph:
			event.GraphResults++
		case types.ResultTypeKeyword:
			event.KeywordResults++
		}
	}
	return event
}

// EventLog buffers query events and writes a new Parquet file per batch.
type EventLog struct {
	outputDir string
	mu        sync.Mutex
	buffer    []QueryEvent
	batchSize int
}

// NewEventLog creates a query-event log writing to outputDir.
func NewEventLog(outputDir string) (*EventLog, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &EventLog{
		outputDir: outputDir,
		batchSize: defaultBatchSize,
		buffer:    make([]QueryEvent, 0, defaultBatchSize),
	}, nil
}

// Record buffers an event, flushing when the batch fills. Missing IDs and
// timestamps are filled in.
func (l *EventLog) Record(event QueryEvent) {
	if event.ID == "" {
		event.ID = utils.GenerateUUID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.buffer = append(l.buffer, event)
	if len(l.buffer) >= l.batchSize {
		if err := l.flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write query event file: %v\n", err)
		}
	}
}

// Flush writes any buffered events out.
func (l *EventLog) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flush()
}

// Close flushes the remaining buffer.
func (l *EventLog) Close() error {
	return l.Flush()
}

// flush writes the current buffer to a new Parquet file. Caller must hold
// the lock.
func (l *EventLog) flush() error {
	if len(l.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("query_events_%s_%d.parquet",
		time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(l.outputDir, filename)

	if err := parquet.WriteFile(path, l.buffer); err != nil {
		return err
	}

	l.buffer = l.buffer[:0]
	return nil
}
