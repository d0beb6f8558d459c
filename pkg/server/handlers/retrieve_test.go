package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/server/dto"
	"github.com/soundprediction/legame/pkg/types"
)

func newRetrieveRouter(client *legame.Client) *gin.Engine {
	handler := NewRetrieveHandler(client)
	router := gin.New()
	router.POST("/retrieve", handler.Retrieve)
	router.POST("/multihop", handler.MultiHop)
	router.POST("/analyze", handler.Analyze)
	router.POST("/process", handler.Process)
	return router
}

func TestRetrieveEndpointEmptyCorpus(t *testing.T) {
	client := newTestClient(t)
	router := newRetrieveRouter(client)

	w := postJSON(t, router, "/retrieve", dto.RetrieveRequest{Query: "anything at all"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[dto.RetrieveResponse](t, w)
	assert.Zero(t, resp.Total)
	assert.Empty(t, resp.Results)
}

func TestRetrieveEndpointRequiresQuery(t *testing.T) {
	client := newTestClient(t)
	router := newRetrieveRouter(client)

	w := postJSON(t, router, "/retrieve", dto.RetrieveRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestRetrieveEndpointRejectsNegativeTopK(t *testing.T) {
	client := newTestClient(t)
	router := newRetrieveRouter(client)

	w := postJSON(t, router, "/retrieve", dto.RetrieveRequest{Query: "Honda", TopK: -1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestProcessEndpointRelationshipQuery(t *testing.T) {
	client := newTestClient(t)
	router := newRetrieveRouter(client)

	batch := carBatch()
	w := postJSON(t, router, "/process", dto.ProcessRequest{
		Query:         "is Honda related to the Engine?",
		Entities:      batch.Entities,
		Relationships: batch.Relationships,
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[types.QueryResponse](t, w)
	assert.Equal(t, types.StrategyRelationship, resp.Strategy)
	assert.InDelta(t, 0.9, resp.Confidence, 1e-9)
	assert.NotEmpty(t, resp.ReasoningPaths)
	assert.NotEmpty(t, resp.Explanation)
}

func TestAnalyzeEndpoint(t *testing.T) {
	client := newTestClient(t)
	router := newRetrieveRouter(client)

	w := postJSON(t, router, "/analyze", dto.AnalyzeRequest{Query: "compare Honda and Toyota"})
	require.Equal(t, http.StatusOK, w.Code)

	analysis := decodeBody[types.QueryAnalysis](t, w)
	assert.Equal(t, types.IntentComparative, analysis.Intent)
	assert.Equal(t, []string{"Honda", "Toyota"}, analysis.Entities)
}

func TestMultiHopEndpoint(t *testing.T) {
	client := newTestClient(t)
	router := newRetrieveRouter(client)

	batch := carBatch()
	_, err := client.BuildGraph(context.Background(), batch.Entities, batch.Relationships)
	require.NoError(t, err)

	w := postJSON(t, router, "/multihop", dto.RetrieveRequest{Query: "what sits under Honda"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[dto.RetrieveResponse](t, w)
	require.NotZero(t, resp.Total)

	names := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		assert.Equal(t, types.ResultTypeGraph, result.ResultType)
		names = append(names, result.Entity)
	}
	assert.Contains(t, names, "Piston")
}
