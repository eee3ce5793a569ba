package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// chromemTracer for OpenTelemetry instrumentation.
var chromemTracer = otel.Tracer("retrievald.vectorstore.chromem")

// ChromemConfig holds configuration for the chromem-go embedded store.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty means in-memory
	// only (used by tests).
	Path string `koanf:"path"`

	// Compress enables gzip compression for stored data.
	Compress bool `koanf:"compress"`
}

// ChromemStore implements Store using chromem-go.
//
// chromem-go is an embeddable vector database written in pure Go: no CGO,
// no external service. It has no payload indexes, so EnsureDomainIndex is a
// no-op and domain filters are evaluated against document metadata in
// process. Vectors are always supplied by the caller; the collection-level
// embedding function is never invoked.
type ChromemStore struct {
	db       *chromem.DB
	registry contenttype.Registry

	// mu serializes collection create/delete against lookups.
	mu sync.Mutex
}

// NewChromemStore opens (or creates) an embedded store.
func NewChromemStore(config ChromemConfig, registry contenttype.Registry) (*ChromemStore, error) {
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("validating registry: %w", err)
	}

	var db *chromem.DB
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		path, err := expandHome(config.Path)
		if err != nil {
			return nil, fmt.Errorf("expanding path: %w", err)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", path, err)
		}
		db, err = chromem.NewPersistentDB(path, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem DB: %w", err)
		}
	}

	return &ChromemStore{db: db, registry: registry}, nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// rejectEmbedding is installed as the collection embedding function. All
// vectors arrive precomputed, so a call into it signals a wiring bug.
func rejectEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed by the caller")
}

func (s *ChromemStore) resolveDimension(collection string, dim int) int {
	if dim > 0 {
		return dim
	}
	return s.registry.DimensionForCollection(collection)
}

// EnsureCollection creates the collection if absent.
func (s *ChromemStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	_, span := chromemTracer.Start(ctx, "ChromemStore.EnsureCollection")
	defer span.End()

	span.SetAttributes(attribute.String("collection", name))

	if err := ValidateCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.GetOrCreateCollection(name, nil, rejectEmbedding); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection %s: %w", name, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// EnsureDomainIndex is a no-op: chromem filters metadata without indexes.
func (s *ChromemStore) EnsureDomainIndex(_ context.Context, collection string) error {
	return ValidateCollectionName(collection)
}

// CollectionExists reports whether the collection exists.
func (s *ChromemStore) CollectionExists(_ context.Context, name string) (bool, error) {
	if err := ValidateCollectionName(name); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.GetCollection(name, rejectEmbedding) != nil, nil
}

// DeleteCollection deletes a collection. Deleting an absent collection is
// success.
func (s *ChromemStore) DeleteCollection(ctx context.Context, name string) error {
	_, span := chromemTracer.Start(ctx, "ChromemStore.DeleteCollection")
	defer span.End()

	span.SetAttributes(attribute.String("collection", name))

	if err := ValidateCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(name); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Upsert validates and writes points. chromem has no server-side batching,
// so batchSize only bounds the per-call concurrency handed to AddDocuments.
func (s *ChromemStore) Upsert(ctx context.Context, collection string, points []Point, batchSize int) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Upsert")
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

	col, err := s.collection(collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	docs := make([]chromem.Document, len(points))
	for i, p := range points {
		docs[i] = chromem.Document{
			ID:        p.ID,
			Content:   contentFromPayload(p.Payload),
			Embedding: p.Vector,
			Metadata:  payloadToMetadata(p.Payload),
		}
	}

	concurrency := batchSize
	if concurrency > 16 {
		concurrency = 16
	}
	if err := col.AddDocuments(ctx, docs, concurrency); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upserting points to collection %s: %w", collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Query runs a filtered similarity search.
func (s *ChromemStore) Query(ctx context.Context, collection string, vector []float32, k int, scoreThreshold float32, filter Filter) ([]ScoredPoint, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Query")
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

	col, err := s.collection(collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// chromem rejects nResults greater than the stored document count.
	if count := col.Count(); k > count {
		if count == 0 {
			return nil, nil
		}
		k = count
	}

	results, err := col.QueryEmbedding(ctx, vector, k, map[string]string(filter), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	scored := make([]ScoredPoint, 0, len(results))
	for _, res := range results {
		if scoreThreshold > 0 && res.Similarity < scoreThreshold {
			continue
		}
		scored = append(scored, ScoredPoint{
			ID:      res.ID,
			Score:   res.Similarity,
			Payload: metadataToPayload(res.Metadata, res.Content),
		})
	}

	span.SetAttributes(attribute.Int("results_count", len(scored)))
	span.SetStatus(codes.Ok, "success")
	return scored, nil
}

// DeletePoints deletes points by id.
func (s *ChromemStore) DeletePoints(ctx context.Context, collection string, ids []string) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("deleting points from collection %s: %w", collection, err)
	}
	return nil
}

// DeleteByFilter deletes every point matching the filter.
func (s *ChromemStore) DeleteByFilter(ctx context.Context, collection string, filter Filter) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	if len(filter) == 0 {
		return fmt.Errorf("%w: refusing unfiltered delete", ErrValidation)
	}

	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, map[string]string(filter), nil); err != nil {
		return fmt.Errorf("deleting by filter from collection %s: %w", collection, err)
	}
	return nil
}

// Close is a no-op for the embedded store; persistence is synchronous.
func (s *ChromemStore) Close() error {
	return nil
}

// collection looks up an existing collection.
func (s *ChromemStore) collection(name string) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.db.GetCollection(name, rejectEmbedding)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return col, nil
}

// contentFromPayload pulls the chunk text out of a point payload.
func contentFromPayload(payload map[string]interface{}) string {
	if v, ok := payload[PayloadContent].(string); ok {
		return v
	}
	return ""
}

// payloadToMetadata flattens a point payload into chromem's string-valued
// metadata. The content field lives on the document itself.
func payloadToMetadata(payload map[string]interface{}) map[string]string {
	meta := make(map[string]string, len(payload))
	for k, v := range payload {
		if k == PayloadContent {
			continue
		}
		switch val := v.(type) {
		case string:
			meta[k] = val
		case int:
			meta[k] = strconv.Itoa(val)
		case int64:
			meta[k] = strconv.FormatInt(val, 10)
		case float64:
			meta[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			meta[k] = strconv.FormatBool(val)
		}
	}
	return meta
}

// metadataToPayload rebuilds a point payload from chromem metadata,
// restoring the ordinal's integer type.
func metadataToPayload(meta map[string]string, content string) map[string]interface{} {
	payload := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		if k == PayloadOrdinal {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				payload[k] = n
				continue
			}
		}
		payload[k] = v
	}
	payload[PayloadContent] = content
	return payload
}

// Ensure ChromemStore implements Store.
var _ Store = (*ChromemStore)(nil)
