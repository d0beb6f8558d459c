package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client legame.Legame
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client legame.Legame) *HealthHandler {
	return &HealthHandler{
		client: client,
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "legame",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "legame",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready - probes the graph, the retrieval index,
// and the snapshot store through real operations.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := gin.H{
		"status":    "ready",
		"service":   "legame",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    gin.H{},
	}

	allHealthy := true
	checks := response["checks"].(gin.H)

	if h.client != nil {
		graphStart := time.Now()
		_, graphErr := h.client.GraphStats(ctx)
		checks["graph"] = checkResult(graphErr, time.Since(graphStart))
		if graphErr != nil {
			allHealthy = false
		}

		indexStart := time.Now()
		_, indexErr := h.client.IndexStats(ctx)
		checks["index"] = checkResult(indexErr, time.Since(indexStart))
		if indexErr != nil {
			allHealthy = false
		}

		snapshotStart := time.Now()
		_, snapshotErr := h.client.ListSnapshots(ctx)
		checks["snapshot_store"] = checkResult(snapshotErr, time.Since(snapshotStart))
		if snapshotErr != nil {
			allHealthy = false
		}
	} else {
		checks["client"] = gin.H{
			"status": "unhealthy",
			"error":  "legame client not initialized",
		}
		allHealthy = false
	}

	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health
// information including a retrieval probe and runtime metrics.
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	startTime := time.Now()
	response := gin.H{
		"status":  "healthy",
		"service": "legame",
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"checks": gin.H{},
		"metrics": gin.H{
			"response_time_ms": 0,
		},
	}

	allHealthy := true
	checks := response["checks"].(gin.H)

	if h.client != nil {
		graphStart := time.Now()
		graphStats, graphErr := h.client.GraphStats(ctx)
		graphCheck := checkResult(graphErr, time.Since(graphStart))
		if graphErr != nil {
			allHealthy = false
		} else {
			graphCheck["nodes"] = graphStats.Nodes
			graphCheck["edges"] = graphStats.Edges
		}
		checks["graph"] = graphCheck

		indexStart := time.Now()
		indexStats, indexErr := h.client.IndexStats(ctx)
		indexCheck := checkResult(indexErr, time.Since(indexStart))
		if indexErr != nil {
			allHealthy = false
		} else {
			indexCheck["documents"] = indexStats.Documents
			indexCheck["provider"] = indexStats.Provider
		}
		checks["index"] = indexCheck

		snapshotStart := time.Now()
		sessions, snapshotErr := h.client.ListSnapshots(ctx)
		snapshotCheck := checkResult(snapshotErr, time.Since(snapshotStart))
		if snapshotErr != nil {
			allHealthy = false
		} else {
			snapshotCheck["sessions"] = len(sessions)
		}
		checks["snapshot_store"] = snapshotCheck

		// An empty corpus answers an empty result set, so any error here is
		// a real pipeline failure.
		retrieveStart := time.Now()
		_, retrieveErr := h.client.Retrieve(ctx, "health check probe", 1)
		retrieveCheck := checkResult(retrieveErr, time.Since(retrieveStart))
		if retrieveErr != nil {
			allHealthy = false
		}
		checks["retrieval"] = retrieveCheck
	} else {
		checks["client"] = gin.H{
			"status": "unhealthy",
			"error":  "legame client not initialized",
		}
		allHealthy = false
	}

	systemMetrics := h.getSystemMetrics()
	checks["system"] = gin.H{
		"status":       "healthy",
		"memory_usage": systemMetrics.MemoryUsage,
		"goroutines":   systemMetrics.Goroutines,
		"gc_cycles":    systemMetrics.GCCycles,
		"heap_objects": systemMetrics.HeapObjects,
		"stack_usage":  systemMetrics.StackUsage,
	}

	totalDuration := time.Since(startTime)
	response["metrics"].(gin.H)["response_time_ms"] = totalDuration.Milliseconds()

	if !allHealthy {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// checkResult renders one dependency probe outcome.
func checkResult(err error, duration time.Duration) gin.H {
	if err != nil {
		return gin.H{
			"status":   "unhealthy",
			"error":    err.Error(),
			"duration": duration.String(),
		}
	}
	return gin.H{
		"status":   "healthy",
		"duration": duration.String(),
	}
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

// getSystemMetrics collects current system runtime metrics
func (h *HealthHandler) getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	memoryUsage := fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024))
	stackUsage := fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024))

	return SystemMetrics{
		MemoryUsage: memoryUsage,
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  stackUsage,
	}
}
