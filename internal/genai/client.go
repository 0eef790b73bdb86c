package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.0-flash"
	defaultEmbedModel  = "text-embedding-004"
	defaultTimeout     = 60 * time.Second
	defaultMaxRetries  = 3
	defaultBaseBackoff = time.Second
)

// Rate limiter defaults: 50 requests per minute, shared across generation,
// embedding, and token-counting calls.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// Config holds configuration for the Gemini client.
type Config struct {
	// APIKey is the Gemini API key.
	APIKey string

	// Model is the generation model name (without the "models/" prefix).
	Model string

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string

	// EmbeddingDimension is the expected embedding vector size. When set,
	// returned vectors are checked against it.
	EmbeddingDimension int

	// BaseURL overrides the REST endpoint (tests point this at a local server).
	BaseURL string

	// Timeout is the per-request HTTP timeout in seconds.
	Timeout int

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int
}

// Client is the Gemini-backed implementation of Generator, Embedder, and
// TokenCounter.
type Client struct {
	llm        *googleai.GoogleAI
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = defaultEmbedModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
		googleai.WithDefaultEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("creating googleai client: %w", err)
	}

	return &Client{
		llm:    llm,
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}, nil
}

// Generate produces text from the given messages with the given sampling
// parameters.
func (c *Client) Generate(ctx context.Context, msgs []Message, opts GenerateOptions) (string, error) {
	if len(msgs) == 0 {
		return "", fmt.Errorf("%w: messages cannot be empty", ErrEmptyInput)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	content := make([]llms.MessageContent, len(msgs))
	for i, m := range msgs {
		role := schema.ChatMessageTypeHuman
		if m.Role == RoleModel {
			role = schema.ChatMessageTypeAI
		}
		content[i] = llms.TextParts(role, m.Content)
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxOutputTokens))
	}

	var resp *llms.ContentResponse
	err := c.withRetries(ctx, func() error {
		var callErr error
		resp, callErr = c.llm.GenerateContent(ctx, content, callOpts...)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// withRetries runs op with exponential backoff on failure.
func (c *Client) withRetries(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultBaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = op(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
