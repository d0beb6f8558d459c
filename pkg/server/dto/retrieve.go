package dto

import (
	"strings"

	"github.com/soundprediction/legame/pkg/types"
)

// RetrieveRequest asks for hybrid retrieval over the current corpus and
// graph.
type RetrieveRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

// Validate performs validation on RetrieveRequest.
func (r *RetrieveRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// RetrieveResponse carries the fused, ranked results of one retrieval.
type RetrieveResponse struct {
	Results []*types.SearchResult `json:"results"`
	Total   int                   `json:"total"`
}

// AnalyzeRequest asks for intent classification and mention extraction
// without running retrieval.
type AnalyzeRequest struct {
	Query string `json:"query" binding:"required"`
}

// Validate performs validation on AnalyzeRequest.
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// ProcessRequest carries one extraction batch and the question to answer
// over it. The entities and relationships replace the current graph before
// the query runs.
type ProcessRequest struct {
	Query         string                `json:"query" binding:"required"`
	Entities      []*types.Entity       `json:"entities,omitempty"`
	Relationships []*types.Relationship `json:"relationships,omitempty"`
}

// Validate performs validation on ProcessRequest.
func (r *ProcessRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	if len(r.Entities) > MaxEntitiesPerBatch {
		return ErrTooManyEntities
	}
	return nil
}
