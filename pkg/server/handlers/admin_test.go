package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/index"
	"github.com/soundprediction/legame/pkg/server/dto"
	"github.com/soundprediction/legame/pkg/types"
)

func newAdminRouter(client *legame.Client) *gin.Engine {
	handler := NewAdminHandler(client)
	router := gin.New()
	router.POST("/documents", handler.UpsertDocuments)
	router.GET("/stats", handler.Stats)
	router.POST("/snapshot/save", handler.SaveSnapshot)
	router.POST("/snapshot/load", handler.LoadSnapshot)
	router.GET("/snapshot", handler.ListSnapshots)
	router.DELETE("/snapshot", handler.DeleteSnapshot)
	return router
}

func deleteJSON(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpsertDocumentsEndpoint(t *testing.T) {
	client := newTestClient(t)
	router := newAdminRouter(client)

	w := postJSON(t, router, "/documents", dto.UpsertDocumentsRequest{
		Documents: []*types.Document{
			{ID: "doc-1", Content: "Honda builds the Engine"},
			{ID: "doc-2", Content: "the Engine holds a Piston"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[dto.UpsertDocumentsResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)

	w = getJSON(t, router, "/stats")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody[dto.StatsResponse](t, w)
	assert.Equal(t, int64(2), stats.Index.Documents)
}

func TestUpsertDocumentsEndpointRequiresDocuments(t *testing.T) {
	client := newTestClient(t)
	router := newAdminRouter(client)

	w := postJSON(t, router, "/documents", dto.UpsertDocumentsRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestStatsEndpoint(t *testing.T) {
	client := newTestClient(t)
	router := newAdminRouter(client)

	batch := carBatch()
	_, err := client.BuildGraph(context.Background(), batch.Entities, batch.Relationships)
	require.NoError(t, err)
	err = client.UpsertDocuments(context.Background(), []*types.Document{
		{ID: "doc-1", Content: "Honda builds the Engine"},
	})
	require.NoError(t, err)

	w := getJSON(t, router, "/stats")
	require.Equal(t, http.StatusOK, w.Code)

	stats := decodeBody[dto.StatsResponse](t, w)
	require.NotNil(t, stats.Graph)
	require.NotNil(t, stats.Index)
	assert.Equal(t, 3, stats.Graph.Nodes)
	assert.Equal(t, 2, stats.Graph.Edges)
	assert.Equal(t, int64(1), stats.Index.Documents)
	assert.Equal(t, index.ProviderMemory, stats.Index.Provider)
}

func TestSnapshotEndpoints(t *testing.T) {
	client := newTestClient(t)
	router := newAdminRouter(client)

	batch := carBatch()
	_, err := client.BuildGraph(context.Background(), batch.Entities, batch.Relationships)
	require.NoError(t, err)

	w := postJSON(t, router, "/snapshot/save", dto.SnapshotRequest{Name: "inspection"})
	require.Equal(t, http.StatusOK, w.Code)
	saved := decodeBody[dto.SnapshotResponse](t, w)
	assert.True(t, saved.Success)
	assert.Equal(t, "inspection", saved.Name)

	// Overwrite the live graph so the restore has something to undo.
	_, err = client.BuildGraph(context.Background(), []*types.Entity{
		{Name: "Solo", Type: "Thing", Confidence: 0.5},
	}, nil)
	require.NoError(t, err)

	w = postJSON(t, router, "/snapshot/load", dto.SnapshotRequest{Name: "inspection"})
	require.Equal(t, http.StatusOK, w.Code)
	restored := decodeBody[graph.Stats](t, w)
	assert.Equal(t, 3, restored.Nodes)
	assert.Equal(t, 2, restored.Edges)

	w = getJSON(t, router, "/snapshot")
	require.Equal(t, http.StatusOK, w.Code)
	listing := decodeBody[dto.SnapshotListResponse](t, w)
	assert.Equal(t, []string{"inspection"}, listing.Sessions)

	w = deleteJSON(t, router, "/snapshot?name=inspection")
	require.Equal(t, http.StatusOK, w.Code)

	w = getJSON(t, router, "/snapshot")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decodeBody[dto.SnapshotListResponse](t, w).Total)
}

func TestDeleteSnapshotEndpointRequiresName(t *testing.T) {
	client := newTestClient(t)
	router := newAdminRouter(client)

	w := deleteJSON(t, router, "/snapshot")
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestLoadSnapshotEndpointMissing(t *testing.T) {
	client := newTestClient(t)
	router := newAdminRouter(client)

	w := postJSON(t, router, "/snapshot/load", dto.SnapshotRequest{Name: "never-saved"})
	require.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeBody[dto.ErrorResponse](t, w)
	assert.Equal(t, "session_not_found", resp.Error)
}
