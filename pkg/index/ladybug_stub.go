//go:build !cgo

package index

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soundprediction/legame/pkg/types"
)

// ErrCGORequired is returned when Ladybug operations are called without CGO
// support.
var ErrCGORequired = errors.New("ladybug index requires CGO; build with CGO_ENABLED=1")

// Ladybug is a stub used when CGO is disabled. All operations return
// ErrCGORequired.
type Ladybug struct{}

// NewLadybug returns an error when CGO is disabled.
func NewLadybug(path string, logger *slog.Logger) (*Ladybug, error) {
	return nil, ErrCGORequired
}

func (l *Ladybug) Upsert(ctx context.Context, docs []*types.Document) error {
	return ErrCGORequired
}

func (l *Ladybug) SearchByVector(ctx context.Context, vector []float32, limit int) ([]*types.SearchResult, error) {
	return nil, ErrCGORequired
}

func (l *Ladybug) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*types.SearchResult, error) {
	return nil, ErrCGORequired
}

func (l *Ladybug) Stats(ctx context.Context) (*Stats, error) {
	return nil, ErrCGORequired
}

func (l *Ladybug) Close() error {
	return nil
}
