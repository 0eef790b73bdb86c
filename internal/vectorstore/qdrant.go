package vectorstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// namespacePattern validates namespace names. Namespaces become collection
// name suffixes, so the pattern matches Qdrant collection naming rules:
// lowercase letters, numbers, underscores.
var namespacePattern = regexp.MustCompile(`^[a-z0-9_]{0,64}$`)

// QdrantConfig holds configuration for the Qdrant-backed index.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string

	// Port is the Qdrant gRPC port (NOT the HTTP REST port).
	Port int

	// Collection is the base collection name. Each namespace is stored in
	// its own collection named {Collection}_{namespace}; the empty
	// namespace uses {Collection} directly.
	Collection string

	// VectorSize is the dimensionality of embeddings. MUST match the
	// embedding collaborator's output dimension.
	VectorSize uint64

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int

	// RetryBackoff is the initial backoff, doubled per retry.
	RetryBackoff time.Duration
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: collection required", ErrInvalidConfig)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return nil
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = time.Second
	}
}

// ValidateNamespace validates a namespace name.
func ValidateNamespace(namespace string) error {
	if !namespacePattern.MatchString(namespace) {
		return fmt.Errorf("%w: must match ^[a-z0-9_]{0,64}$, got %q", ErrInvalidNamespace, namespace)
	}
	return nil
}

// isTransientError reports whether a gRPC error should be retried.
func isTransientError(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case grpccodes.Unavailable, grpccodes.DeadlineExceeded, grpccodes.Aborted, grpccodes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// QdrantIndex implements Index using the Qdrant gRPC client, mapping each
// namespace to its own collection.
type QdrantIndex struct {
	client *qdrant.Client
	config QdrantConfig

	// collections caches collections known to exist.
	collections sync.Map
}

// NewQdrantIndex creates a Qdrant-backed index and verifies connectivity.
func NewQdrantIndex(config QdrantConfig) (*QdrantIndex, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := ValidateNamespace(config.Collection); err != nil {
		return nil, fmt.Errorf("validating collection name: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	idx := &QdrantIndex{
		client: client,
		config: config,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrConnectionFailed, err)
	}

	return idx, nil
}

// Close closes the gRPC connection.
func (q *QdrantIndex) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// collectionName maps a namespace to its backing collection.
func (q *QdrantIndex) collectionName(namespace string) string {
	if namespace == "" {
		return q.config.Collection
	}
	return q.config.Collection + "_" + namespace
}

// Upsert writes records into the namespace's collection, creating the
// collection on first use.
func (q *QdrantIndex) Upsert(ctx context.Context, namespace string, records []Record) error {
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: no records to upsert", ErrEmptyDocuments)
	}

	collection := q.collectionName(namespace)
	if err := q.ensureCollection(ctx, collection); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		payload := make(map[string]*qdrant.Value, len(rec.Metadata)+1)
		payload["id"] = qdrantString(rec.ID)
		for k, v := range rec.Metadata {
			switch val := v.(type) {
			case string:
				payload[k] = qdrantString(val)
			case int:
				payload[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
			case int64:
				payload[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
			case float64:
				payload[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
			case bool:
				payload[k] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
			}
		}

		// Qdrant point ids must be UUIDs or integers. The record id is
		// preserved in payload["id"] for retrieval.
		pointID := rec.ID
		if _, err := uuid.Parse(pointID); err != nil {
			pointID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.ID)).String()
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID),
			Vectors: qdrant.NewVectors(rec.Vector...),
			Payload: payload,
		}
	}

	err := q.retry(ctx, "upsert", func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("upserting %d points to %s: %w", len(points), collection, err)
	}
	return nil
}

// Query returns up to topK ranked matches from the namespace's collection.
func (q *QdrantIndex) Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]any, includeMetadata bool) ([]Match, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	var qdrantFilter *qdrant.Filter
	if len(filter) > 0 {
		conditions := make([]*qdrant.Condition, 0, len(filter))
		for key, value := range filter {
			if s, ok := value.(string); ok {
				conditions = append(conditions, &qdrant.Condition{
					ConditionOneOf: &qdrant.Condition_Field{
						Field: &qdrant.FieldCondition{
							Key: key,
							Match: &qdrant.Match{
								MatchValue: &qdrant.Match_Keyword{Keyword: s},
							},
						},
					},
				})
			}
		}
		if len(conditions) > 0 {
			qdrantFilter = &qdrant.Filter{Must: conditions}
		}
	}

	collection := q.collectionName(namespace)

	var points []*qdrant.ScoredPoint
	err := q.retry(ctx, "query", func() error {
		res, err := q.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(uint64(topK)),
			WithPayload:    qdrant.NewWithPayload(includeMetadata),
			Filter:         qdrantFilter,
		})
		if err != nil {
			return err
		}
		points = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}

	matches := make([]Match, len(points))
	for i, point := range points {
		match := Match{Score: point.Score}
		if point.Payload != nil {
			match.Metadata = make(map[string]any, len(point.Payload))
			for k, v := range point.Payload {
				switch val := v.Kind.(type) {
				case *qdrant.Value_StringValue:
					match.Metadata[k] = val.StringValue
					if k == "id" {
						match.ID = val.StringValue
					}
				case *qdrant.Value_IntegerValue:
					match.Metadata[k] = val.IntegerValue
				case *qdrant.Value_DoubleValue:
					match.Metadata[k] = val.DoubleValue
				case *qdrant.Value_BoolValue:
					match.Metadata[k] = val.BoolValue
				}
			}
		}
		matches[i] = match
	}

	return matches, nil
}

// Stats sums point counts across every collection under the base name.
func (q *QdrantIndex) Stats(ctx context.Context) (IndexStats, error) {
	var names []string
	err := q.retry(ctx, "list_collections", func() error {
		res, err := q.client.ListCollections(ctx)
		if err != nil {
			return err
		}
		names = res
		return nil
	})
	if err != nil {
		return IndexStats{}, fmt.Errorf("listing collections: %w", err)
	}

	total := 0
	for _, name := range names {
		if name != q.config.Collection && !strings.HasPrefix(name, q.config.Collection+"_") {
			continue
		}
		var count int
		err := q.retry(ctx, "collection_info", func() error {
			info, err := q.client.GetCollectionInfo(ctx, name)
			if err != nil {
				return err
			}
			if info.PointsCount != nil {
				count = int(*info.PointsCount)
			}
			return nil
		})
		if err != nil {
			return IndexStats{}, fmt.Errorf("getting info for %s: %w", name, err)
		}
		total += count
	}

	return IndexStats{
		TotalCount: total,
		Dimension:  int(q.config.VectorSize),
	}, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (q *QdrantIndex) ensureCollection(ctx context.Context, collection string) error {
	if _, ok := q.collections.Load(collection); ok {
		return nil
	}

	var exists bool
	err := q.retry(ctx, "collection_exists", func() error {
		_, err := q.client.GetCollectionInfo(ctx, collection)
		if err != nil {
			if st, ok := status.FromError(err); ok && st.Code() == grpccodes.NotFound {
				exists = false
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", collection, err)
	}

	if !exists {
		err := q.retry(ctx, "create_collection", func() error {
			return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
				CollectionName: collection,
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
					Size:     q.config.VectorSize,
					Distance: qdrant.Distance_Cosine,
				}),
			})
		})
		if err != nil {
			return fmt.Errorf("creating collection %s: %w", collection, err)
		}
	}

	q.collections.Store(collection, true)
	return nil
}

// retry retries an operation with exponential backoff on transient errors.
func (q *QdrantIndex) retry(ctx context.Context, name string, op func() error) error {
	backoff := q.config.RetryBackoff
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !isTransientError(err) {
			return fmt.Errorf("%s failed (permanent): %w", name, err)
		}
		if attempt == q.config.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", name, q.config.MaxRetries, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", name, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

func qdrantString(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}
