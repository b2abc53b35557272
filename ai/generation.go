package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// BackendProfile selects the underlying generation model.
type BackendProfile string

const (
	// ProfileDirect answers birthday, weather and holiday requests.
	ProfileDirect BackendProfile = "direct"
	// ProfileReasoning answers product match requests.
	ProfileReasoning BackendProfile = "reasoning"
)

// Chunk is one fragment of a generation stream. A stream is zero or more
// content fragments followed by an optional terminal failure marker; when
// Err is set, Content carries the reader-facing failure text and the
// channel is closed right after.
type Chunk struct {
	Content string
	Err     error
}

// GenerationService streams text completions for a composed prompt.
type GenerationService interface {
	// Generate opens a streaming completion call and returns the fragment
	// channel. The channel is always closed after the last fragment; call
	// setup failure surfaces as a single terminal chunk, never as a
	// returned error.
	Generate(ctx context.Context, prompt string, profile BackendProfile) <-chan Chunk
}

// GenerationConfig represents generation service configuration.
type GenerationConfig struct {
	APIKey         string
	BaseURL        string
	DirectModel    string
	ReasoningModel string
	Timeout        int // request timeout in seconds (default: 300)
}

type generationService struct {
	client         *openai.Client
	directModel    string
	reasoningModel string
	timeout        int
}

// NewGenerationService creates a new GenerationService over an
// OpenAI-compatible backend.
func NewGenerationService(cfg *GenerationConfig) GenerationService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300
	}

	return &generationService{
		client:         openai.NewClientWithConfig(clientConfig),
		directModel:    cfg.DirectModel,
		reasoningModel: cfg.ReasoningModel,
		timeout:        timeout,
	}
}

func (s *generationService) model(profile BackendProfile) string {
	if profile == ProfileReasoning {
		return s.reasoningModel
	}
	return s.directModel
}

func (s *generationService) Generate(ctx context.Context, prompt string, profile BackendProfile) <-chan Chunk {
	out := make(chan Chunk, 10)

	go func() {
		defer close(out)

		ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
		defer cancel()

		model := s.model(profile)
		req := openai.ChatCompletionRequest{
			Model: model,
			// Maximal sampling diversity for creative copy.
			Temperature: 1.0,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Stream: true,
		}

		startTime := time.Now()
		slog.Debug("generation stream starting", "model", model, "profile", string(profile))

		stream, err := s.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			// Setup failure becomes data so the caller's transport stream
			// stays well-formed.
			slog.Error("generation stream failed to open", "model", model, "error", err)
			out <- Chunk{Content: fmt.Sprintf("模型调用失败: %v", err), Err: err}
			return
		}
		defer func() { _ = stream.Close() }()

		chunkCount := 0
		for {
			response, err := stream.Recv()
			if err != nil {
				if strings.Contains(err.Error(), "EOF") {
					slog.Debug("generation stream completed",
						"model", model,
						"chunks", chunkCount,
						"duration_ms", time.Since(startTime).Milliseconds(),
					)
					return
				}
				slog.Error("generation stream receive error", "error", err, "chunks_so_far", chunkCount)
				select {
				case out <- Chunk{Content: fmt.Sprintf("模型调用失败: %v", err), Err: err}:
				case <-ctx.Done():
				}
				return
			}

			if len(response.Choices) == 0 {
				continue
			}
			delta := response.Choices[0].Delta.Content
			if delta == "" {
				continue
			}

			chunkCount++
			select {
			case out <- Chunk{Content: delta}:
			case <-ctx.Done():
				slog.Warn("generation stream cancelled during send", "chunks", chunkCount)
				return
			}
		}
	}()

	return out
}

// CannedStream returns a closed single-fragment stream carrying a fixed
// text. Used for not-found and unsupported-mode responses.
func CannedStream(text string) <-chan Chunk {
	out := make(chan Chunk, 1)
	out <- Chunk{Content: text}
	close(out)
	return out
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
