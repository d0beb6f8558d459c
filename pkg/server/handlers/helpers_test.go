package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/server/dto"
	"github.com/soundprediction/legame/pkg/types"
)

// newTestClient builds an in-memory client with no embedder; retrieval runs
// on the graph and keyword branches only.
func newTestClient(t *testing.T) *legame.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	client, err := legame.NewClient(nil, nil, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// carBatch is a three-entity chain: Honda contains Engine contains Piston.
func carBatch() dto.BuildGraphRequest {
	return dto.BuildGraphRequest{
		Entities: []*types.Entity{
			{Name: "Honda", Type: "Manufacturer", Confidence: 0.95},
			{Name: "Engine", Type: "Component", Confidence: 0.9},
			{Name: "Piston", Type: "Component", Confidence: 0.85},
		},
		Relationships: []*types.Relationship{
			{Source: "Honda", Target: "Engine", Type: "contains", Confidence: 0.9},
			{Source: "Engine", Target: "Piston", Type: "contains", Confidence: 0.85},
		},
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
