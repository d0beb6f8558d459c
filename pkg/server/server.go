package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/server/handlers"
	"github.com/soundprediction/legame/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	client legame.Legame
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client legame.Legame) *Server {
	return &Server{
		config: cfg,
		client: client,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.client)
	retrieveHandler := handlers.NewRetrieveHandler(s.client)
	graphHandler := handlers.NewGraphHandler(s.client)
	identityHandler := handlers.NewIdentityHandler(s.client)
	adminHandler := handlers.NewAdminHandler(s.client)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck) // Legacy endpoint
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		// Retrieval routes
		v1.POST("/retrieve", retrieveHandler.Retrieve)
		v1.POST("/multihop", retrieveHandler.MultiHop)
		v1.POST("/analyze", retrieveHandler.Analyze)
		v1.POST("/process", retrieveHandler.Process)

		// Identity routes
		v1.POST("/link", identityHandler.Link)
		v1.POST("/disambiguate", identityHandler.Disambiguate)
		v1.POST("/merge", identityHandler.Merge)
		v1.GET("/clusters", identityHandler.Clusters)

		// Graph routes
		graph := v1.Group("/graph")
		{
			graph.POST("/build", graphHandler.Build)
			graph.GET("/paths", graphHandler.Paths)
			graph.GET("/related", graphHandler.Related)
			graph.GET("/explain", graphHandler.Explain)
			graph.GET("/infer", graphHandler.Infer)
			graph.GET("/centrality", graphHandler.Centrality)
			graph.GET("/communities", graphHandler.Communities)
		}

		// Corpus and session routes
		v1.POST("/documents", adminHandler.UpsertDocuments)
		v1.GET("/stats", adminHandler.Stats)
		v1.POST("/snapshot/save", adminHandler.SaveSnapshot)
		v1.POST("/snapshot/load", adminHandler.LoadSnapshot)
		v1.GET("/snapshot", adminHandler.ListSnapshots)
		v1.DELETE("/snapshot", adminHandler.DeleteSnapshot)
	}
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware extracts context information from headers
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID := c.GetHeader("X-User-ID")
		if userID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyUserID, userID)
		}

		sessionID := c.GetHeader("X-Session-ID")
		if sessionID != "" {
			ctx = context.WithValue(ctx, types.ContextKeySessionID, sessionID)
		}

		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
