package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/server/dto"
)

// AdminHandler handles corpus, stats, and snapshot requests
type AdminHandler struct {
	client legame.Legame
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(client legame.Legame) *AdminHandler {
	return &AdminHandler{
		client: client,
	}
}

// UpsertDocuments handles POST /api/v1/documents
func (h *AdminHandler) UpsertDocuments(c *gin.Context) {
	var req dto.UpsertDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.client.UpsertDocuments(c.Request.Context(), req.Documents); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UpsertDocumentsResponse{
		Success: true,
		Count:   len(req.Documents),
	})
}

// Stats handles GET /api/v1/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	graphStats, err := h.client.GraphStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	indexStats, err := h.client.IndexStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		Graph: graphStats,
		Index: indexStats,
	})
}

// SaveSnapshot handles POST /api/v1/snapshot/save
func (h *AdminHandler) SaveSnapshot(c *gin.Context) {
	var req dto.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.client.SaveSnapshot(c.Request.Context(), req.Name); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SnapshotResponse{
		Success: true,
		Name:    req.Name,
	})
}

// LoadSnapshot handles POST /api/v1/snapshot/load - answers with the node
// and edge counts of the restored graph.
func (h *AdminHandler) LoadSnapshot(c *gin.Context) {
	var req dto.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	stats, err := h.client.LoadSnapshot(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListSnapshots handles GET /api/v1/snapshot
func (h *AdminHandler) ListSnapshots(c *gin.Context) {
	sessions, err := h.client.ListSnapshots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SnapshotListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

// DeleteSnapshot handles DELETE /api/v1/snapshot. The name is required here
// even though the library defaults it, so a bare DELETE cannot drop the
// configured session.
func (h *AdminHandler) DeleteSnapshot(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		badRequest(c, dto.ErrEmptyName)
		return
	}
	if len(name) > dto.MaxSnapshotNameLength {
		badRequest(c, dto.ErrNameTooLong)
		return
	}

	if err := h.client.DeleteSnapshot(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
