package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Embedder generates document-mode embeddings for upsert. Query embeddings
// are produced by the caller, which knows it is asking a question.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// StoreConfig holds configuration for the store adapter.
type StoreConfig struct {
	// BatchSize is the number of vectors uploaded per batch.
	BatchSize int

	// BatchDelay is the pause after each uploaded batch, respecting the
	// index service's throughput limits.
	BatchDelay time.Duration

	// StatsDelay is the pause before reading aggregate statistics after
	// an upload; the index's statistics are eventually consistent.
	StatsDelay time.Duration
}

// ApplyDefaults sets default values for unset fields.
func (c *StoreConfig) ApplyDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.BatchDelay == 0 {
		c.BatchDelay = 100 * time.Millisecond
	}
	if c.StatsDelay == 0 {
		c.StatsDelay = time.Second
	}
}

// UpsertStats describes one namespace upload.
type UpsertStats struct {
	// Uploaded is the number of vectors written by this call.
	Uploaded int

	// TotalInIndex is the aggregate vector count after the upload.
	TotalInIndex int

	// Dimension is the index's configured vector size.
	Dimension int
}

// NamespaceResult is one namespace's outcome within a partitioned upload.
type NamespaceResult struct {
	Stats UpsertStats

	// Err records this namespace's failure. A failed namespace never
	// discards or aborts sibling namespaces' uploads.
	Err error
}

// NamespaceStats summarizes a partitioned upload.
type NamespaceStats struct {
	TotalUploaded int
	Namespaces    map[string]NamespaceResult
}

// Store wraps the index collaborator with batching, id generation, and
// namespace partitioning.
type Store struct {
	index    Index
	embedder Embedder
	config   StoreConfig
	logger   *zap.Logger
}

// NewStore creates a store adapter over the given index and embedder.
func NewStore(index Index, embedder Embedder, config StoreConfig, logger *zap.Logger) *Store {
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		index:    index,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// Upsert embeds and uploads documents into one namespace.
//
// ids and metadatas may be nil: fresh unique ids and empty metadata are
// generated per document. When all three are supplied their lengths must
// agree. All documents are embedded before any network write, so a partial
// embedding failure aborts the whole batch rather than writing partial
// vectors. Each record's metadata is augmented with the literal document
// text and its length.
func (s *Store) Upsert(ctx context.Context, documents []string, metadatas []map[string]any, ids []string, namespace string) (UpsertStats, error) {
	if len(documents) == 0 {
		return UpsertStats{}, fmt.Errorf("%w: no documents", ErrEmptyDocuments)
	}

	if ids == nil {
		ids = make([]string, len(documents))
		for i := range ids {
			ids[i] = uuid.New().String()
		}
		s.logger.Debug("generated document ids", zap.Int("count", len(ids)))
	}
	if metadatas == nil {
		metadatas = make([]map[string]any, len(documents))
		for i := range metadatas {
			metadatas[i] = map[string]any{}
		}
	}

	if len(documents) != len(metadatas) || len(documents) != len(ids) {
		return UpsertStats{}, fmt.Errorf("%w: documents=%d metadatas=%d ids=%d",
			ErrLengthMismatch, len(documents), len(metadatas), len(ids))
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, documents)
	if err != nil {
		return UpsertStats{}, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	records := make([]Record, len(documents))
	for i, doc := range documents {
		metadata := make(map[string]any, len(metadatas[i])+2)
		for k, v := range metadatas[i] {
			metadata[k] = v
		}
		metadata["text"] = doc
		metadata["length"] = len(doc)

		records[i] = Record{
			ID:       ids[i],
			Vector:   embeddings[i],
			Metadata: metadata,
		}
	}

	uploaded := 0
	for start := 0; start < len(records); start += s.config.BatchSize {
		end := start + s.config.BatchSize
		if end > len(records) {
			end = len(records)
		}

		if err := s.index.Upsert(ctx, namespace, records[start:end]); err != nil {
			return UpsertStats{Uploaded: uploaded}, fmt.Errorf("uploading batch %d: %w", start/s.config.BatchSize+1, err)
		}
		uploaded += end - start

		s.logger.Debug("uploaded batch",
			zap.Int("batch", start/s.config.BatchSize+1),
			zap.Int("uploaded", uploaded),
			zap.Int("total", len(records)),
			zap.String("namespace", namespace),
		)

		// Inter-batch delay to respect the index service's rate limits.
		if err := sleepCtx(ctx, s.config.BatchDelay); err != nil {
			return UpsertStats{Uploaded: uploaded}, err
		}
	}

	// The index's statistics lag behind writes; give them time to settle.
	if err := sleepCtx(ctx, s.config.StatsDelay); err != nil {
		return UpsertStats{Uploaded: uploaded}, err
	}

	stats, err := s.index.Stats(ctx)
	if err != nil {
		return UpsertStats{Uploaded: uploaded}, fmt.Errorf("reading index stats: %w", err)
	}

	return UpsertStats{
		Uploaded:     uploaded,
		TotalInIndex: stats.TotalCount,
		Dimension:    stats.Dimension,
	}, nil
}

// UpsertByNamespace groups records by their "section_type" metadata field
// (default namespace "default" when absent) and uploads each group
// independently. A namespace's failure is recorded in its own result and
// does not abort or discard sibling namespaces.
func (s *Store) UpsertByNamespace(ctx context.Context, documents []string, metadatas []map[string]any, ids []string) (NamespaceStats, error) {
	if len(documents) != len(metadatas) || len(documents) != len(ids) {
		return NamespaceStats{}, fmt.Errorf("%w: documents=%d metadatas=%d ids=%d",
			ErrLengthMismatch, len(documents), len(metadatas), len(ids))
	}
	if len(documents) == 0 {
		return NamespaceStats{}, fmt.Errorf("%w: no documents", ErrEmptyDocuments)
	}

	type group struct {
		docs  []string
		metas []map[string]any
		ids   []string
	}
	groups := make(map[string]*group)
	for i, doc := range documents {
		namespace := "default"
		if st, ok := metadatas[i]["section_type"].(string); ok && st != "" {
			namespace = st
		}
		g, ok := groups[namespace]
		if !ok {
			g = &group{}
			groups[namespace] = g
		}
		g.docs = append(g.docs, doc)
		g.metas = append(g.metas, metadatas[i])
		g.ids = append(g.ids, ids[i])
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	result := NamespaceStats{
		Namespaces: make(map[string]NamespaceResult, len(groups)),
	}

	for _, name := range names {
		g := groups[name]
		s.logger.Info("uploading namespace",
			zap.String("namespace", name),
			zap.Int("documents", len(g.docs)),
		)

		stats, err := s.Upsert(ctx, g.docs, g.metas, g.ids, name)
		result.Namespaces[name] = NamespaceResult{Stats: stats, Err: err}
		if err != nil {
			s.logger.Error("namespace upload failed",
				zap.String("namespace", name),
				zap.Error(err),
			)
			continue
		}
		result.TotalUploaded += stats.Uploaded
	}

	return result, nil
}

// Query returns ranked matches from the namespace. No local re-ranking.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, namespace string, filter map[string]any, includeMetadata bool) ([]Match, error) {
	return s.index.Query(ctx, namespace, vector, topK, filter, includeMetadata)
}

// sleepCtx sleeps for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
