package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame"
)

func newHealthRouter(client legame.Legame) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(client)
	router := gin.New()
	router.GET("/health", handler.HealthCheck)
	router.GET("/live", handler.LivenessCheck)
	router.GET("/ready", handler.ReadinessCheck)
	router.GET("/health/detailed", handler.DetailedHealthCheck)
	return router
}

func mustMap(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected JSON object, got %T", v)
	return m
}

func TestHealthCheckEndpoint(t *testing.T) {
	router := newHealthRouter(nil)

	w := getJSON(t, router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "legame", body["service"])
	assert.Equal(t, Version, body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLivenessEndpoint(t *testing.T) {
	router := newHealthRouter(nil)

	w := getJSON(t, router, "/live")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "alive", body["status"])
}

func TestReadinessEndpointNilClient(t *testing.T) {
	router := newHealthRouter(nil)

	w := getJSON(t, router, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "not_ready", body["status"])

	clientCheck := mustMap(t, mustMap(t, body["checks"])["client"])
	assert.Equal(t, "unhealthy", clientCheck["status"])
}

func TestReadinessEndpointReady(t *testing.T) {
	client := newTestClient(t)
	router := newHealthRouter(client)

	w := getJSON(t, router, "/ready")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ready", body["status"])

	checks := mustMap(t, body["checks"])
	for _, name := range []string{"graph", "index", "snapshot_store"} {
		check := mustMap(t, checks[name])
		assert.Equal(t, "healthy", check["status"], "check %q", name)
	}
}

func TestDetailedHealthCheckEndpoint(t *testing.T) {
	client := newTestClient(t)
	router := newHealthRouter(client)

	w := getJSON(t, router, "/health/detailed")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])

	buildInfo := mustMap(t, body["build_info"])
	assert.Equal(t, GitCommit, buildInfo["git_commit"])

	checks := mustMap(t, body["checks"])
	retrieval := mustMap(t, checks["retrieval"])
	assert.Equal(t, "healthy", retrieval["status"])

	system := mustMap(t, checks["system"])
	assert.Greater(t, system["goroutines"], float64(0))

	metrics := mustMap(t, body["metrics"])
	assert.Contains(t, metrics, "response_time_ms")
}

func TestGetSystemMetrics(t *testing.T) {
	handler := NewHealthHandler(nil)
	metrics := handler.getSystemMetrics()

	assert.Greater(t, metrics.Goroutines, 0)
	assert.Contains(t, metrics.MemoryUsage, "MB")
	assert.Contains(t, metrics.StackUsage, "MB")
}
