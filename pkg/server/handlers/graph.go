package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/server/dto"
)

// GraphHandler handles graph construction and reasoning requests
type GraphHandler struct {
	client legame.Legame
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(client legame.Legame) *GraphHandler {
	return &GraphHandler{
		client: client,
	}
}

// Build handles POST /api/v1/graph/build
func (h *GraphHandler) Build(c *gin.Context) {
	var req dto.BuildGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	stats, err := h.client.BuildGraph(c.Request.Context(), req.Entities, req.Relationships)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Paths handles GET /api/v1/graph/paths?source=&target=&max_hops=
func (h *GraphHandler) Paths(c *gin.Context) {
	source, target, ok := endpointParams(c)
	if !ok {
		return
	}
	maxHops, ok := hopsParam(c, 3)
	if !ok {
		return
	}

	paths, err := h.client.FindPaths(c.Request.Context(), source, target, maxHops)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PathsResponse{
		Paths: paths,
		Total: len(paths),
	})
}

// Related handles GET /api/v1/graph/related?entity=&max_hops=
func (h *GraphHandler) Related(c *gin.Context) {
	entity := c.Query("entity")
	if entity == "" {
		badRequest(c, errors.New("entity query parameter is required"))
		return
	}
	maxHops, ok := hopsParam(c, 2)
	if !ok {
		return
	}

	related, err := h.client.FindRelatedEntities(c.Request.Context(), entity, maxHops)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RelatedResponse{
		Entity:  entity,
		Related: related,
	})
}

// Explain handles GET /api/v1/graph/explain?source=&target=
func (h *GraphHandler) Explain(c *gin.Context) {
	source, target, ok := endpointParams(c)
	if !ok {
		return
	}

	explanation, err := h.client.ExplainRelationship(c.Request.Context(), source, target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, explanation)
}

// Infer handles GET /api/v1/graph/infer?source=&target=&max_hops=
func (h *GraphHandler) Infer(c *gin.Context) {
	source, target, ok := endpointParams(c)
	if !ok {
		return
	}
	maxHops, ok := hopsParam(c, 3)
	if !ok {
		return
	}

	relationships, err := h.client.InferRelationships(c.Request.Context(), source, target, maxHops)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InferResponse{
		Relationships: relationships,
		Total:         len(relationships),
	})
}

// Centrality handles GET /api/v1/graph/centrality?entity=
func (h *GraphHandler) Centrality(c *gin.Context) {
	entity := c.Query("entity")
	if entity == "" {
		badRequest(c, errors.New("entity query parameter is required"))
		return
	}

	centrality, err := h.client.EntityCentrality(c.Request.Context(), entity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, centrality)
}

// Communities handles GET /api/v1/graph/communities
func (h *GraphHandler) Communities(c *gin.Context) {
	communities, err := h.client.EntityClusters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CommunitiesResponse{
		Communities: communities,
		Total:       len(communities),
	})
}

// endpointParams reads the source and target query parameters, answering the
// request itself when either is missing.
func endpointParams(c *gin.Context) (source, target string, ok bool) {
	source = c.Query("source")
	target = c.Query("target")
	if source == "" || target == "" {
		badRequest(c, errors.New("source and target query parameters are required"))
		return "", "", false
	}
	return source, target, true
}

// hopsParam reads the max_hops query parameter, answering the request itself
// when the value does not parse.
func hopsParam(c *gin.Context, fallback int) (int, bool) {
	raw := c.DefaultQuery("max_hops", strconv.Itoa(fallback))
	maxHops, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, errors.New("max_hops must be an integer"))
		return 0, false
	}
	return maxHops, true
}
