package embedder

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/soundprediction/legame/pkg/utils"
)

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API or
// any OpenAI-compatible endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	config Config
}

// NewOpenAIEmbedder creates an embedding client for the OpenAI API. A
// non-empty config.BaseURL points the client at a compatible local service,
// in which case the API key may be empty.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	config = config.WithDefaults()

	var client *openai.Client
	if config.BaseURL != "" {
		// Local OpenAI-compatible services accept any key.
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = normalizeBaseURL(config.BaseURL)
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(apiKey)
	}

	return &OpenAIEmbedder{
		client: client,
		config: config,
	}
}

// normalizeBaseURL appends the /v1 API path when the URL does not carry one,
// so both "http://localhost:11434" and "http://localhost:11434/v1" work.
func normalizeBaseURL(baseURL string) string {
	trimmed := strings.TrimSuffix(baseURL, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}

// Embed returns one embedding per input text, in input order. Texts are split
// into batches of the configured size and the batch requests run concurrently.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings := make([][]float32, len(texts))
	batches := utils.Batch(texts, e.config.BatchSize)
	requests := make([]func() error, len(batches))

	offset := 0
	for i, batch := range batches {
		start, chunk := offset, batch
		requests[i] = func() error {
			resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Input: chunk,
				Model: openai.EmbeddingModel(e.config.Model),
			})
			if err != nil {
				return fmt.Errorf("failed to create embeddings: %w", err)
			}
			if len(resp.Data) != len(chunk) {
				return fmt.Errorf("expected %d embeddings, got %d", len(chunk), len(resp.Data))
			}
			for j, item := range resp.Data {
				embeddings[start+j] = item.Embedding
			}
			return nil
		}
		offset += len(batch)
	}

	executor := utils.NewConcurrentExecutor(0)
	for _, err := range executor.Execute(ctx, requests...) {
		if err != nil {
			return nil, err
		}
	}
	return embeddings, nil
}

// EmbedSingle embeds a single text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, e, text)
}

// Dimensions returns the embedding vector length.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Close is a no-op for the HTTP client.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
