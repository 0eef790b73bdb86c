// Package genai provides the generation, embedding, and token-counting
// collaborators backed by the Gemini API.
//
// Generation goes through langchaingo's googleai client. Embeddings use the
// REST embedContent endpoint directly because the workflow needs distinct
// document and query task types, which the langchaingo embedding surface does
// not expose. Token counting uses the countTokens endpoint with a local
// character-based estimate as fallback.
package genai

import (
	"context"
	"errors"
)

// Sentinel errors for collaborator failures.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrGenerationFailed indicates a text generation failure.
	ErrGenerationFailed = errors.New("text generation failed")

	// ErrEmbeddingFailed indicates an embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")
)

// Role identifies the author of a message in a generation exchange.
type Role string

const (
	// RoleUser is a user-authored message.
	RoleUser Role = "user"

	// RoleModel is a model-authored message. Used for the synthetic
	// acknowledgement turn that anchors each agent's behavior.
	RoleModel Role = "model"
)

// Message is one turn of a generation exchange.
type Message struct {
	Role    Role
	Content string
}

// GenerateOptions holds sampling parameters for one generation call.
type GenerateOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// Generator produces text from an ordered list of role-tagged messages.
type Generator interface {
	Generate(ctx context.Context, msgs []Message, opts GenerateOptions) (string, error)
}

// Embedder maps text to fixed-dimension vectors. Document and query
// embeddings use distinct task types and are not interchangeable.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// TokenCounter counts model tokens for a text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// EstimateTokens is the local fallback when the token-counting endpoint is
// unavailable: roughly one token per four characters.
func EstimateTokens(text string) int {
	return len(text) / 4
}
