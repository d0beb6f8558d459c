package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/server/dto"
)

// IdentityHandler handles entity resolution requests
type IdentityHandler struct {
	client legame.Legame
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(client legame.Legame) *IdentityHandler {
	return &IdentityHandler{
		client: client,
	}
}

// Link handles POST /api/v1/link
func (h *IdentityHandler) Link(c *gin.Context) {
	var req dto.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	links, err := h.client.LinkEntities(c.Request.Context(), req.Entities)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LinkResponse{
		Links: links,
		Total: len(links),
	})
}

// Disambiguate handles POST /api/v1/disambiguate
func (h *IdentityHandler) Disambiguate(c *gin.Context) {
	var req dto.DisambiguateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	entity, err := h.client.DisambiguateEntity(c.Request.Context(), req.Entity, req.Context)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity)
}

// Merge handles POST /api/v1/merge
func (h *IdentityHandler) Merge(c *gin.Context) {
	var req dto.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.client.MergeClusters(c.Request.Context(), req.ClusterA, req.ClusterB); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Clusters handles GET /api/v1/clusters
func (h *IdentityHandler) Clusters(c *gin.Context) {
	clusters, err := h.client.IdentityClusters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ClustersResponse{
		Clusters: clusters,
		Total:    len(clusters),
	})
}
