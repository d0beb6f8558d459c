package legame

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/graph"
	legameLogger "github.com/soundprediction/legame/pkg/logger"
	"github.com/soundprediction/legame/pkg/resolver"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Answer one query against an extraction payload",
	Long: `Answer a single query against the entities and relationships of an
extraction payload file, then print the response envelope as JSON.

The payload is linked and built into a fresh graph before the query runs,
exactly as one /api/v1/process call would.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var queryPayloadFile string

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryPayloadFile, "file", "f", "", "extraction payload file (JSON or YAML)")
	queryCmd.MarkFlagRequired("file")
}

// newLocalClient builds a graph-only client for one-shot commands. No index
// or embedder is wired; stdout stays clean for piped JSON.
func newLocalClient(cfg *config.Config, snapshotDir string) (*legame.Client, error) {
	logger := slog.New(legameLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

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
		SnapshotDir: snapshotDir,
	}

	return legame.NewClient(nil, nil, clientConfig, logger)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := newLocalClient(cfg, "")
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	ctx := context.Background()
	payload, err := client.LoadExtractionFile(ctx, queryPayloadFile)
	if err != nil {
		return fmt.Errorf("failed to load payload: %w", err)
	}
	if payload.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed records\n", payload.Skipped)
	}

	query := strings.Join(args, " ")
	response, err := client.ProcessQuery(ctx, query, payload.Entities, payload.Relationships)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
