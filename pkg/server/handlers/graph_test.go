package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/server/dto"
	"github.com/soundprediction/legame/pkg/types"
)

func newGraphRouter(client *legame.Client) *gin.Engine {
	handler := NewGraphHandler(client)
	router := gin.New()
	router.POST("/graph/build", handler.Build)
	router.GET("/graph/paths", handler.Paths)
	router.GET("/graph/related", handler.Related)
	router.GET("/graph/explain", handler.Explain)
	router.GET("/graph/infer", handler.Infer)
	router.GET("/graph/centrality", handler.Centrality)
	router.GET("/graph/communities", handler.Communities)
	return router
}

func TestGraphBuild(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)

	w := postJSON(t, router, "/graph/build", carBatch())
	require.Equal(t, http.StatusOK, w.Code)

	stats := decodeBody[graph.Stats](t, w)
	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 2, stats.Edges)
	assert.Equal(t, 0, stats.SkippedEdges)
}

func TestGraphBuildRejectsEmptyBatch(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)

	w := postJSON(t, router, "/graph/build", dto.BuildGraphRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestGraphPaths(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)
	postJSON(t, router, "/graph/build", carBatch())

	w := getJSON(t, router, "/graph/paths?source=Honda&target=Piston&max_hops=3")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[dto.PathsResponse](t, w)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, 2, resp.Paths[0].Hops())
	assert.InDelta(t, 0.765, resp.Paths[0].Confidence, 1e-9)
}

func TestGraphPathsRequiresEndpoints(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)

	w := getJSON(t, router, "/graph/paths?source=Honda")
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestGraphPathsRejectsBadHops(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)

	w := getJSON(t, router, "/graph/paths?source=Honda&target=Piston&max_hops=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGraphRelated(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)
	postJSON(t, router, "/graph/build", carBatch())

	w := getJSON(t, router, "/graph/related?entity=Honda&max_hops=2")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[dto.RelatedResponse](t, w)
	assert.Equal(t, "Honda", resp.Entity)
	require.Len(t, resp.Related[1], 1)
	assert.Equal(t, "Engine", resp.Related[1][0].Name)
	require.Len(t, resp.Related[2], 1)
	assert.Equal(t, "Piston", resp.Related[2][0].Name)
}

func TestGraphExplain(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)
	postJSON(t, router, "/graph/build", carBatch())

	w := getJSON(t, router, "/graph/explain?source=Honda&target=Piston")
	require.Equal(t, http.StatusOK, w.Code)

	explanation := decodeBody[types.RelationshipExplanation](t, w)
	assert.InDelta(t, 0.765, explanation.Confidence, 1e-9)
	assert.NotEmpty(t, explanation.ReasoningSteps)
}

func TestGraphInfer(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)
	postJSON(t, router, "/graph/build", carBatch())

	w := getJSON(t, router, "/graph/infer?source=Honda&target=Piston")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[dto.InferResponse](t, w)
	require.Equal(t, 1, resp.Total)
	inferred := resp.Relationships[0]
	assert.Equal(t, "contains", inferred.Type)
	assert.True(t, inferred.Inferred)
	assert.Equal(t, []string{"Engine"}, inferred.Via)
}

func TestGraphCentrality(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)
	postJSON(t, router, "/graph/build", carBatch())

	w := getJSON(t, router, "/graph/centrality?entity=Engine")
	require.Equal(t, http.StatusOK, w.Code)

	centrality := decodeBody[types.Centrality](t, w)
	assert.Equal(t, "Engine", centrality.Entity)
	assert.Equal(t, 2, centrality.Degree)
	assert.InDelta(t, 1.0, centrality.Score, 1e-9)
}

func TestGraphCentralityUnknownEntity(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)
	postJSON(t, router, "/graph/build", carBatch())

	w := getJSON(t, router, "/graph/centrality?entity=Nonexistent")
	require.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "entity_not_found", resp.Error)
}

func TestGraphCentralityRequiresEntity(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)

	w := getJSON(t, router, "/graph/centrality")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGraphCommunities(t *testing.T) {
	client := newTestClient(t)
	router := newGraphRouter(client)
	postJSON(t, router, "/graph/build", carBatch())

	w := getJSON(t, router, "/graph/communities")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[dto.CommunitiesResponse](t, w)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, []string{"Engine", "Honda", "Piston"}, resp.Communities[0].Members)
}
