package dto

import (
	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/index"
	"github.com/soundprediction/legame/pkg/types"
)

// UpsertDocumentsRequest adds documents to the retrieval corpus. Documents
// without embeddings are embedded on the way in.
type UpsertDocumentsRequest struct {
	Documents []*types.Document `json:"documents" binding:"required"`
}

// Validate performs validation on UpsertDocumentsRequest.
func (r *UpsertDocumentsRequest) Validate() error {
	if len(r.Documents) == 0 {
		return ErrEmptyDocuments
	}
	if len(r.Documents) > MaxDocumentsPerBatch {
		return ErrTooManyDocuments
	}
	return nil
}

// UpsertDocumentsResponse reports how many documents were accepted.
type UpsertDocumentsResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// StatsResponse combines graph and index counters.
type StatsResponse struct {
	Graph *graph.Stats `json:"graph"`
	Index *index.Stats `json:"index"`
}

// SnapshotRequest names a session snapshot. An empty name selects the
// configured session.
type SnapshotRequest struct {
	Name string `json:"name,omitempty"`
}

// Validate performs validation on SnapshotRequest.
func (r *SnapshotRequest) Validate() error {
	if len(r.Name) > MaxSnapshotNameLength {
		return ErrNameTooLong
	}
	return nil
}

// SnapshotResponse acknowledges a snapshot operation.
type SnapshotResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
}

// SnapshotListResponse lists the saved sessions.
type SnapshotListResponse struct {
	Sessions []string `json:"sessions"`
	Total    int      `json:"total"`
}
