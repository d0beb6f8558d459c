package legame

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/alert"
	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/fusion"
	"github.com/soundprediction/legame/pkg/graph"
	"github.com/soundprediction/legame/pkg/index"
	legameLogger "github.com/soundprediction/legame/pkg/logger"
	"github.com/soundprediction/legame/pkg/resolver"
	"github.com/soundprediction/legame/pkg/server"
	"github.com/soundprediction/legame/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Legame HTTP server",
	Long: `Start the Legame HTTP server to provide REST API access to the retrieval
pipeline.

The server provides endpoints for:
- Building the relationship graph from extraction batches
- Entity identity resolution (link, disambiguate, merge)
- Graph reasoning (paths, related entities, inference, centrality)
- Hybrid retrieval and query processing
- Session snapshots and health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Index flags
	serverCmd.Flags().String("index-provider", "memory", "Document index provider (memory, neo4j, ladybug)")
	serverCmd.Flags().String("index-uri", "./legame_db", "Index URI/path")
	serverCmd.Flags().String("index-username", "", "Index username (neo4j only)")
	serverCmd.Flags().String("index-password", "", "Index password (neo4j only)")
	serverCmd.Flags().String("index-database", "", "Index database name (neo4j only)")

	// Embedding flags
	serverCmd.Flags().String("embedding-provider", "embedeverything", "Embedding provider (openai, embedeverything)")
	serverCmd.Flags().String("embedding-model", "all-MiniLM-L6-v2", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	serverCmd.Flags().String("embedding-base-url", "", "Embedding base URL")

	// Persistence flags
	serverCmd.Flags().String("snapshot-path", "", "Directory for session snapshots")
	serverCmd.Flags().String("telemetry-parquet-path", "", "Directory for telemetry (errors and query events)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize the client
	fmt.Println("Initializing Legame...")
	client, err := initializeClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Legame: %w", err)
	}
	defer client.Close()

	// Create and setup server
	srv := server.New(cfg, client)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Index flags
	if cmd.Flags().Changed("index-provider") {
		cfg.Index.Provider, _ = cmd.Flags().GetString("index-provider")
	}
	if cmd.Flags().Changed("index-uri") {
		cfg.Index.URI, _ = cmd.Flags().GetString("index-uri")
	}
	if cmd.Flags().Changed("index-username") {
		cfg.Index.Username, _ = cmd.Flags().GetString("index-username")
	}
	if cmd.Flags().Changed("index-password") {
		cfg.Index.Password, _ = cmd.Flags().GetString("index-password")
	}
	if cmd.Flags().Changed("index-database") {
		cfg.Index.Database, _ = cmd.Flags().GetString("index-database")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}

	// Persistence flags
	if cmd.Flags().Changed("snapshot-path") {
		cfg.Snapshot.Path, _ = cmd.Flags().GetString("snapshot-path")
	}
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	if cfg.Index.Provider != index.ProviderMemory && cfg.Index.URI == "" {
		return fmt.Errorf("index URI is required for provider %q", cfg.Index.Provider)
	}
	return nil
}

// parseLogLevel maps a config level string onto a slog level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initializeClient(cfg *config.Config) (*legame.Client, error) {
	handlerOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}
	logger := slog.New(legameLogger.NewColorHandler(os.Stderr, handlerOpts))

	// Error tracking via parquet, layered over the color handler
	trackingPath := cfg.Telemetry.ParquetPath
	if trackingPath != "" {
		if err := os.MkdirAll(trackingPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
		}

		colorHandler := legameLogger.NewColorHandler(os.Stderr, handlerOpts)
		parquetHandler, err := telemetry.NewParquetHandler(colorHandler, trackingPath)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize error tracking: %v\n", err)
		} else {
			logger = slog.New(parquetHandler)
			fmt.Printf("Error tracking enabled at: %s\n", trackingPath)
		}
	}

	// Initialize the document index
	var idx index.Index
	var err error
	switch cfg.Index.Provider {
	case index.ProviderMemory, "":
		idx = index.NewMemory(logger)
	case index.ProviderNeo4j:
		idx, err = index.NewNeo4j(cfg.Index.URI, cfg.Index.Username, cfg.Index.Password, cfg.Index.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j index: %w", err)
		}
	case index.ProviderLadybug:
		idx, err = index.NewLadybug(cfg.Index.URI, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create ladybug index: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported index provider: %s", cfg.Index.Provider)
	}

	// Initialize the embedder client
	var embedderClient embedder.Client
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			fmt.Println("Warning: no embedding API key set, vector retrieval disabled")
		} else {
			embedderClient = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedder.Config{
				Model:      cfg.Embedding.Model,
				BaseURL:    cfg.Embedding.BaseURL,
				Dimensions: cfg.Embedding.Dimensions,
			})
		}
	case "embedeverything", "":
		embedderClient, err = embedder.NewEmbedEverythingClient(embedder.Config{
			Model:      cfg.Embedding.Model,
			BaseURL:    cfg.Embedding.BaseURL,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			fmt.Printf("Warning: embedder unavailable, vector retrieval disabled: %v\n", err)
			embedderClient = nil
		}
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}

	// Circuit breaker around the embedder
	if embedderClient != nil && cfg.CircuitBreaker.Enabled {
		var alerter alert.Alerter
		if cfg.Alert.Enabled {
			alerter = alert.NewEmailAlerter(cfg.Alert)
		} else {
			alerter = alert.NewLogAlerter(logger)
		}
		embedderClient = embedder.NewCircuitBreakerClient(embedderClient, cfg.CircuitBreaker, alerter, "embedder")
	}

	clientConfig := &legame.Config{
		Resolver: &resolver.Config{
			MatchThreshold:    cfg.Resolver.MatchThreshold,
			FuzzyThreshold:    cfg.Resolver.FuzzyThreshold,
			SemanticThreshold: cfg.Resolver.SemanticThreshold,
		},
		Reasoner: &graph.Config{
			RelatedDecay: cfg.Reasoner.RelatedDecay,
			MaxPaths:     cfg.Reasoner.MaxPaths,
			ExplainHops:  cfg.Reasoner.ExplainHops,
		},
		Retrieval: &fusion.Config{
			VectorWeight:  cfg.Retrieval.VectorWeight,
			GraphWeight:   cfg.Retrieval.GraphWeight,
			MultiHopDepth: cfg.Retrieval.MultiHopDepth,
		},
		SnapshotDir:  cfg.Snapshot.Path,
		TelemetryDir: cfg.Telemetry.ParquetPath,
	}

	client, err := legame.NewClient(idx, embedderClient, clientConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Legame client: %w", err)
	}

	fmt.Printf("Legame initialized successfully with index provider: %s\n", cfg.Index.Provider)
	if embedderClient != nil {
		fmt.Printf("Embedding provider: %s, model: %s\n", cfg.Embedding.Provider, cfg.Embedding.Model)
	}

	return client, nil
}
