// File path: internal/llm/embedder.go
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
)

// Embedder turns query text into vectors for the semantic-search
// collaborator.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float64, error)
}

type OpenAIEmbedder struct {
	client openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedderFromEnv builds an OpenAI-backed embedder when OPENAI_API_KEY is
// set; callers treat a nil embedder as "semantic search unavailable".
func NewEmbedderFromEnv() *OpenAIEmbedder {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		logger.Warn("llm: OPENAI_API_KEY not set; semantic search disabled")
		return nil
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err != nil {
			logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
		} else {
			opts = append(opts, option.WithRequestTimeout(timeout))
		}
	}
	model := openai.EmbeddingModel(strings.TrimSpace(os.Getenv("OPENAI_EMBED_MODEL")))
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	logger.Info("llm: OpenAI embedder configured", "model", model)
	return &OpenAIEmbedder{client: openai.NewClient(opts...), model: model}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, input []string) ([][]float64, error) {
	if e == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	if len(input) == 0 {
		return nil, nil
	}
	logger := common.Logger()
	logger.Debug("llm: creating embeddings", "model", e.model, "items", len(input))
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: input},
	})
	if err != nil {
		logger.Error("llm: embedding request failed", "error", err)
		return nil, err
	}
	vectors := make([][]float64, 0, len(resp.Data))
	for _, data := range resp.Data {
		vectors = append(vectors, data.Embedding)
	}
	return vectors, nil
}
