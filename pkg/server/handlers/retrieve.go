package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/server/dto"
)

// RetrieveHandler handles retrieval and query-processing requests
type RetrieveHandler struct {
	client legame.Legame
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(client legame.Legame) *RetrieveHandler {
	return &RetrieveHandler{
		client: client,
	}
}

// Retrieve handles POST /api/v1/retrieve
func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.client.Retrieve(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RetrieveResponse{
		Results: results,
		Total:   len(results),
	})
}

// MultiHop handles POST /api/v1/multihop - the deeper graph-only expansion,
// forced regardless of how the query classifies.
func (h *RetrieveHandler) MultiHop(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.client.MultiHopReasoning(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RetrieveResponse{
		Results: results,
		Total:   len(results),
	})
}

// Analyze handles POST /api/v1/analyze
func (h *RetrieveHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, h.client.AnalyzeQuery(req.Query))
}

// Process handles POST /api/v1/process - link the batch, rebuild the graph,
// answer the query with the strategy its phrasing selects.
func (h *RetrieveHandler) Process(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.client.ProcessQuery(c.Request.Context(), req.Query, req.Entities, req.Relationships)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
