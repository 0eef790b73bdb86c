// Package config provides configuration loading for incidentd.
//
// Configuration is loaded from a YAML file, then overridden by environment
// variables. Defaults cover everything except credentials, so a bare
// GEMINI_API_KEY is enough to run against a local Qdrant.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/incidentd/internal/logging"
)

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the complete incidentd configuration.
type Config struct {
	GenAI     GenAIConfig    `koanf:"genai"`
	Qdrant    QdrantConfig   `koanf:"qdrant"`
	Ingest    IngestConfig   `koanf:"ingest"`
	Retrieval RetrieveConfig `koanf:"retrieval"`
	Logging   logging.Config `koanf:"logging"`
}

// GenAIConfig holds Gemini API configuration for generation and embeddings.
type GenAIConfig struct {
	// APIKey is the Gemini API key. Env: GENAI_API_KEY or GEMINI_API_KEY.
	APIKey string `koanf:"api_key"`

	// Model is the generation model name.
	Model string `koanf:"model"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `koanf:"embedding_model"`

	// EmbeddingDimension is the embedding vector size.
	// Must match the vector index's configured dimension.
	EmbeddingDimension int `koanf:"embedding_dimension"`
}

// QdrantConfig holds vector index configuration.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string `koanf:"host"`

	// Port is the Qdrant gRPC port (NOT HTTP REST port).
	Port int `koanf:"port"`

	// Collection is the base collection name. Namespaces become
	// collections named {collection}_{namespace}.
	Collection string `koanf:"collection"`

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool `koanf:"use_tls"`
}

// IngestConfig holds ingestion pipeline configuration.
type IngestConfig struct {
	// BatchSize is the number of vectors uploaded per batch.
	BatchSize int `koanf:"batch_size"`

	// BatchDelay is the pause after each uploaded batch, respecting the
	// index service's throughput limits.
	BatchDelay time.Duration `koanf:"batch_delay"`

	// StatsDelay is the pause before reading aggregate index statistics
	// after an upload, since the stats are eventually consistent.
	StatsDelay time.Duration `koanf:"stats_delay"`

	// FilePattern is the glob pattern for report files in a directory.
	FilePattern string `koanf:"file_pattern"`
}

// RetrieveConfig holds similarity retrieval configuration.
type RetrieveConfig struct {
	// TopK is the number of nearest neighbors requested per query.
	TopK int `koanf:"top_k"`
}

// NewDefaultConfig returns config with defaults applied.
func NewDefaultConfig() *Config {
	return &Config{
		GenAI: GenAIConfig{
			Model:              "gemini-2.0-flash",
			EmbeddingModel:     "text-embedding-004",
			EmbeddingDimension: 768,
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "incident_reports",
		},
		Ingest: IngestConfig{
			BatchSize:   100,
			BatchDelay:  100 * time.Millisecond,
			StatsDelay:  time.Second,
			FilePattern: "*.txt",
		},
		Retrieval: RetrieveConfig{
			TopK: 3,
		},
		Logging: *logging.NewDefaultConfig(),
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.GenAI.APIKey == "" {
		return fmt.Errorf("%w: genai api_key required (set GEMINI_API_KEY)", ErrInvalidConfig)
	}
	if c.GenAI.Model == "" {
		return fmt.Errorf("%w: genai model required", ErrInvalidConfig)
	}
	if c.GenAI.EmbeddingModel == "" {
		return fmt.Errorf("%w: genai embedding_model required", ErrInvalidConfig)
	}
	if c.GenAI.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: embedding_dimension must be positive", ErrInvalidConfig)
	}
	if c.Qdrant.Host == "" {
		return fmt.Errorf("%w: qdrant host required", ErrInvalidConfig)
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("%w: invalid qdrant port: %d", ErrInvalidConfig, c.Qdrant.Port)
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("%w: qdrant collection required", ErrInvalidConfig)
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	}
	return c.Logging.Validate()
}
