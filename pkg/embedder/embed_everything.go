package embedder

import (
	"context"
	"fmt"

	embedeverything "github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// EmbedEverythingClient generates embeddings with an in-process ONNX model.
// No external service is required, which makes it the default backend.
type EmbedEverythingClient struct {
	client *embedeverything.Embedder
	config Config
}

// NewEmbedEverythingClient loads the configured model and returns a client.
// The model is downloaded on first use and cached locally.
func NewEmbedEverythingClient(config Config) (*EmbedEverythingClient, error) {
	if config.Model == "" {
		config.Model = "all-MiniLM-L6-v2"
	}
	config = config.WithDefaults()

	client, err := embedeverything.NewEmbedder(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding model %q: %w", config.Model, err)
	}

	return &EmbedEverythingClient{
		client: client,
		config: config,
	}, nil
}

// Embed returns one embedding per input text. The underlying model runs
// synchronously in-process, so only cancellation before the call is honored.
func (c *EmbedEverythingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings, err := c.client.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}
	return embeddings, nil
}

// EmbedSingle embeds a single text.
func (c *EmbedEverythingClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, c, text)
}

// Dimensions returns the embedding vector length.
func (c *EmbedEverythingClient) Dimensions() int {
	return c.config.Dimensions
}

// Close releases the model resources.
func (c *EmbedEverythingClient) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
