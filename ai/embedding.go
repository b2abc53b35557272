package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingService is the vector embedding service interface.
type EmbeddingService interface {
	// Embed generates the vector for a single query text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingConfig represents embedding service configuration.
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type embeddingService struct {
	client *openai.Client
	model  string
}

// NewEmbeddingService creates a new EmbeddingService over an
// OpenAI-compatible backend.
func NewEmbeddingService(cfg *EmbeddingConfig) EmbeddingService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &embeddingService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(s.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}

	return resp.Data[0].Embedding, nil
}
