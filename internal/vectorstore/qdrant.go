package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("retrievald.vectorstore.qdrant")

// DefaultUpsertBatchSize is used when a caller passes a batch size <= 0.
const DefaultUpsertBatchSize = 64

// QdrantConfig holds configuration for the Qdrant gRPC client.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	// Default: "localhost"
	Host string `koanf:"host"`

	// Port is the Qdrant gRPC port (NOT the HTTP REST port).
	// Default: 6334
	Port int `koanf:"port"`

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool `koanf:"use_tls"`

	// MaxRetries is the maximum retry count for transient failures.
	// Default: 3
	MaxRetries int `koanf:"max_retries"`

	// RetryBackoff is the initial backoff duration, doubled per retry.
	// Default: 1s
	RetryBackoff time.Duration `koanf:"retry_backoff"`

	// MaxMessageSize is the maximum gRPC message size in bytes.
	// Default: 50MB
	MaxMessageSize int `koanf:"max_message_size"`
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024
	}
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	return nil
}

// QdrantStore is a Store implementation using Qdrant's native gRPC client.
//
// gRPC transport bypasses Qdrant's HTTP layer and its payload size limits.
// The store holds no per-collection state; the content-type registry is the
// only configuration it carries, used to resolve expected dimensions from
// collection name suffixes.
type QdrantStore struct {
	client   *qdrant.Client
	config   QdrantConfig
	registry contenttype.Registry
}

// NewQdrantStore connects to Qdrant and verifies the connection with a
// health check before returning a ready-to-use store.
func NewQdrantStore(config QdrantConfig, registry contenttype.Registry) (*QdrantStore, error) {
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("validating registry: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &QdrantStore{
		client:   client,
		config:   config,
		registry: registry,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrConnectionFailed, err)
	}

	return store, nil
}

// Close closes the Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// resolveDimension returns dim when explicit, otherwise infers it from the
// collection name's content-type suffix.
func (s *QdrantStore) resolveDimension(collection string, dim int) int {
	if dim > 0 {
		return dim
	}
	return s.registry.DimensionForCollection(collection)
}

// retryOperation retries an operation with exponential backoff on
// transient errors.
func (s *QdrantStore) retryOperation(ctx context.Context, operationName string, operation func() error) error {
	backoff := s.config.RetryBackoff

	for attempt := 0; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if !IsTransientError(err) {
			return fmt.Errorf("%s failed (permanent): %w", operationName, err)
		}

		if attempt == s.config.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", operationName, s.config.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", operationName, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// EnsureCollection creates the collection if absent. Creating an existing
// collection is not an error.
func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.EnsureCollection")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", name),
		attribute.Int("dim", dim),
	)

	if err := ValidateCollectionName(name); err != nil {
		return err
	}

	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if exists {
		span.SetStatus(codes.Ok, "exists")
		return nil
	}

	size := uint64(s.resolveDimension(name, dim))
	err = s.retryOperation(ctx, "create_collection", func() error {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     size,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		// Concurrent creators can race; an already-exists outcome is success.
		if st, ok := status.FromError(err); ok && st.Code() == grpccodes.AlreadyExists {
			return nil
		}
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection %s: %w", name, err)
	}

	span.SetStatus(codes.Ok, "created")
	return nil
}

// EnsureDomainIndex creates a keyword payload index on the domain_id field.
// Index creation is idempotent on the Qdrant side.
func (s *QdrantStore) EnsureDomainIndex(ctx context.Context, collection string) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.EnsureDomainIndex")
	defer span.End()

	span.SetAttributes(attribute.String("collection", collection))

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	err := s.retryOperation(ctx, "create_field_index", func() error {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collection,
			FieldName:      PayloadDomainID,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("indexing %s on %s: %w", PayloadDomainID, collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	if err := ValidateCollectionName(name); err != nil {
		return false, err
	}

	var exists bool
	err := s.retryOperation(ctx, "collection_exists", func() error {
		ok, err := s.client.CollectionExists(ctx, name)
		if err != nil {
			return err
		}
		exists = ok
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("checking collection %s: %w", name, err)
	}
	return exists, nil
}

// DeleteCollection deletes a collection and all its points. Deleting an
// absent collection is treated as success.
func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.DeleteCollection")
	defer span.End()

	span.SetAttributes(attribute.String("collection", name))

	if err := ValidateCollectionName(name); err != nil {
		return err
	}

	err := s.retryOperation(ctx, "delete_collection", func() error {
		err := s.client.DeleteCollection(ctx, name)
		if st, ok := status.FromError(err); ok && st.Code() == grpccodes.NotFound {
			return nil
		}
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Upsert validates and writes points in batches.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point, batchSize int) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.Upsert")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("point_count", len(points)),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = DefaultUpsertBatchSize
	}

	wantDim := s.resolveDimension(collection, 0)
	if err := validatePoints(collection, points, wantDim); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}

		batch := make([]*qdrant.PointStruct, 0, end-start)
		for _, p := range points[start:end] {
			batch = append(batch, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(p.ID),
				Vectors: qdrant.NewVectors(p.Vector...),
				Payload: toQdrantPayload(p.Payload),
			})
		}

		err := s.retryOperation(ctx, "upsert", func() error {
			_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
				CollectionName: collection,
				Points:         batch,
				Wait:           qdrant.PtrOf(true),
			})
			return err
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("upserting points to collection %s: %w", collection, err)
		}
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Query runs a filtered similarity search, validating the query vector
// before issuing the call.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, k int, scoreThreshold float32, filter Filter) ([]ScoredPoint, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Query")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("k", k),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrValidation, k)
	}

	wantDim := s.resolveDimension(collection, 0)
	if err := validateVector(collection, vector, wantDim); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         toQdrantFilter(filter),
	}
	if scoreThreshold > 0 {
		query.ScoreThreshold = qdrant.PtrOf(scoreThreshold)
	}

	var results []*qdrant.ScoredPoint
	err := s.retryOperation(ctx, "query", func() error {
		res, err := s.client.Query(ctx, query)
		if err != nil {
			return err
		}
		results = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	scored := make([]ScoredPoint, len(results))
	for i, point := range results {
		scored[i] = ScoredPoint{
			ID:      pointIDString(point.Id),
			Score:   point.Score,
			Payload: fromQdrantPayload(point.Payload),
		}
	}

	span.SetAttributes(attribute.Int("results_count", len(scored)))
	span.SetStatus(codes.Ok, "success")
	return scored, nil
}

// DeletePoints deletes points by id.
func (s *QdrantStore) DeletePoints(ctx context.Context, collection string, ids []string) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.DeletePoints")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("id_count", len(ids)),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(id)
	}

	err := s.retryOperation(ctx, "delete_points", func() error {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: collection,
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Points{
					Points: &qdrant.PointsIdsList{Ids: pointIDs},
				},
			},
			Wait: qdrant.PtrOf(true),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting points from collection %s: %w", collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// DeleteByFilter deletes every point matching the filter.
func (s *QdrantStore) DeleteByFilter(ctx context.Context, collection string, filter Filter) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.DeleteByFilter")
	defer span.End()

	span.SetAttributes(attribute.String("collection", collection))

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	if len(filter) == 0 {
		return fmt.Errorf("%w: refusing unfiltered delete", ErrValidation)
	}

	err := s.retryOperation(ctx, "delete_by_filter", func() error {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: collection,
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
					Filter: toQdrantFilter(filter),
				},
			},
			Wait: qdrant.PtrOf(true),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting by filter from collection %s: %w", collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// toQdrantFilter converts a keyword-equality filter to Qdrant conditions.
func toQdrantFilter(filter Filter) *qdrant.Filter {
	if len(filter) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(filter))
	for key, value := range filter {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: key,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keyword{Keyword: value},
					},
				},
			},
		})
	}
	return &qdrant.Filter{Must: conditions}
}

// toQdrantPayload converts a point payload to Qdrant values. Unsupported
// value types are dropped rather than failing the write.
func toQdrantPayload(payload map[string]interface{}) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
		case int:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
		case int64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
		case float64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
		case bool:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
		}
	}
	return out
}

// fromQdrantPayload converts Qdrant values back to a point payload.
func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	if payload == nil {
		return nil
	}
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		switch val := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			out[k] = val.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = val.BoolValue
		}
	}
	return out
}

// pointIDString extracts the string form of a Qdrant point id.
func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	default:
		return ""
	}
}

// Ensure QdrantStore implements Store.
var _ Store = (*QdrantStore)(nil)
