package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Index configuration (vector/keyword document store)
	Index IndexConfig `mapstructure:"index"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Resolver configuration (entity linking thresholds)
	Resolver ResolverConfig `mapstructure:"resolver"`

	// Reasoner configuration (graph traversal bounds)
	Reasoner ReasonerConfig `mapstructure:"reasoner"`

	// Retrieval configuration (fusion weights and limits)
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Snapshot configuration (graph persistence)
	Snapshot SnapshotConfig `mapstructure:"snapshot"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// IndexConfig holds document index configuration
type IndexConfig struct {
	Provider string `mapstructure:"provider"` // memory, neo4j, ladybug
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // openai, embedeverything
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// ResolverConfig holds entity linking thresholds
type ResolverConfig struct {
	MatchThreshold    float64 `mapstructure:"match_threshold"`
	FuzzyThreshold    float64 `mapstructure:"fuzzy_threshold"`
	SemanticThreshold float64 `mapstructure:"semantic_threshold"`
}

// ReasonerConfig holds graph reasoning bounds
type ReasonerConfig struct {
	RelatedDecay float64 `mapstructure:"related_decay"`
	MaxPaths     int     `mapstructure:"max_paths"`
	ExplainHops  int     `mapstructure:"explain_hops"`
}

// RetrievalConfig holds hybrid retrieval fusion settings
type RetrievalConfig struct {
	VectorWeight  float64 `mapstructure:"vector_weight"`
	GraphWeight   float64 `mapstructure:"graph_weight"`
	MultiHopDepth int     `mapstructure:"multi_hop_depth"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// SnapshotConfig holds graph snapshot persistence configuration
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Index defaults
	viper.SetDefault("index.provider", "memory")
	viper.SetDefault("index.uri", "./legame_db")
	viper.SetDefault("index.username", "")
	viper.SetDefault("index.password", "")
	viper.SetDefault("index.database", "")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "embedeverything")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	viper.SetDefault("embedding.dimensions", 384)

	// Resolver defaults
	viper.SetDefault("resolver.match_threshold", 0.6)
	viper.SetDefault("resolver.fuzzy_threshold", 0.8)
	viper.SetDefault("resolver.semantic_threshold", 0.7)

	// Reasoner defaults
	viper.SetDefault("reasoner.related_decay", 0.8)
	viper.SetDefault("reasoner.max_paths", 100)
	viper.SetDefault("reasoner.explain_hops", 3)

	// Retrieval defaults
	viper.SetDefault("retrieval.vector_weight", 1.2)
	viper.SetDefault("retrieval.graph_weight", 1.1)
	viper.SetDefault("retrieval.multi_hop_depth", 3)

	// Telemetry and snapshot defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.legame/telemetry", home))
		viper.SetDefault("snapshot.path", fmt.Sprintf("%s/.legame/snapshots", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Embedding credentials
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
	}

	// Index credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Index.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Index.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Index.Password = pass
	}

	// Generic index settings
	if provider := os.Getenv("INDEX_PROVIDER"); provider != "" {
		config.Index.Provider = provider
	}
	if uri := os.Getenv("INDEX_URI"); uri != "" {
		config.Index.URI = uri
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}

	// Snapshot settings
	if path := os.Getenv("SNAPSHOT_PATH"); path != "" {
		config.Snapshot.Path = path
	}
}
