package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("x", 100)))
}

// newTestClient builds a client whose REST calls hit the given test server.
// Constructed directly so no real model client is created.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return &Client{
		config: Config{
			APIKey:             "test-key",
			Model:              "gemini-2.0-flash",
			EmbeddingModel:     "text-embedding-004",
			EmbeddingDimension: 4,
			BaseURL:            server.URL,
			MaxRetries:         1,
		},
		httpClient: server.Client(),
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestEmbedDocumentsTaskType(t *testing.T) {
	var gotTaskTypes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTaskTypes = append(gotTaskTypes, req.TaskType)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{0.1, 0.2, 0.3, 0.4}},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)

	vectors, err := client.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, []string{"RETRIEVAL_DOCUMENT", "RETRIEVAL_DOCUMENT"}, gotTaskTypes)

	_, err = client.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "RETRIEVAL_QUERY", gotTaskTypes[len(gotTaskTypes)-1])
}

func TestEmbedDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{0.1, 0.2}},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbedEmptyInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = client.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCountTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":countTokens")
		_ = json.NewEncoder(w).Encode(map[string]any{"totalTokens": 42})
	}))
	defer server.Close()

	client := newTestClient(t, server)

	n, err := client.CountTokens(context.Background(), "some incident text")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestCountTokensServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.CountTokens(context.Background(), "text")
	require.Error(t, err)
}
