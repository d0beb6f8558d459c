// Package embedder provides text embedding clients behind a common interface.
//
// Two backends are supported: OpenAI-compatible HTTP APIs (including local
// servers such as Ollama or vLLM that expose the OpenAI embeddings endpoint)
// and in-process ONNX models via go-embedeverything. Callers that need
// resilience against a flaky remote provider can wrap any client with a
// circuit breaker, see Wrap.
package embedder

import (
	"context"
	"fmt"
)

// Client generates vector embeddings for text.
type Client interface {
	// Embed returns one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle embeds a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the length of the vectors this client produces.
	Dimensions() int

	// Close releases any resources held by the client.
	Close() error
}

// Config holds embedding client configuration.
type Config struct {
	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint. Leave empty for the
	// provider default.
	BaseURL string

	// Dimensions is the embedding vector length. When zero it is derived
	// from the model name.
	Dimensions int

	// BatchSize caps how many texts are sent in a single request.
	BatchSize int
}

// modelDimensions maps known embedding models to their vector lengths.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"all-MiniLM-L6-v2":       384,
	"all-mpnet-base-v2":      768,
}

// WithDefaults fills zero-valued fields with defaults.
func (c Config) WithDefaults() Config {
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.Dimensions == 0 {
		if dims, ok := modelDimensions[c.Model]; ok {
			c.Dimensions = dims
		} else {
			c.Dimensions = 1536
		}
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	return c
}

// embedSingle implements EmbedSingle in terms of Embed for clients whose
// backends have no dedicated single-text call.
func embedSingle(ctx context.Context, client Client, text string) ([]float32, error) {
	embeddings, err := client.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(embeddings))
	}
	return embeddings[0], nil
}
