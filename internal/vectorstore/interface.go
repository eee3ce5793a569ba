package vectorstore

import (
	"context"
	"errors"

	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors for vector store operations.
var (
	// ErrValidation indicates a rejected input: dimension mismatch,
	// degenerate (all-zero) embedding, or malformed point.
	ErrValidation = errors.New("vector validation failed")

	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the backend could not be reached.
	ErrConnectionFailed = errors.New("failed to connect to vector store")
)

// Store is the collection-agnostic interface for vector storage.
//
// Implementations hold no collection-specific state: the collection name
// travels as a per-call argument, never cached identity, so one Store can
// serve every per-domain collection in the system without stale-identity
// bugs.
//
// Create and delete operations are idempotent: ensuring an existing
// collection and deleting an absent one both succeed.
type Store interface {
	// EnsureCollection creates the collection if absent. A dim of 0 means
	// infer the dimension from the name's trailing content-type suffix via
	// the injected registry; unresolvable suffixes default to the documents
	// dimension.
	EnsureCollection(ctx context.Context, name string, dim int) error

	// EnsureDomainIndex creates a keyword payload index on the domain_id
	// field, required for efficient domain-filtered search. Backends without
	// payload indexes treat this as a no-op.
	EnsureDomainIndex(ctx context.Context, collection string) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// DeleteCollection deletes a collection and all its points. Deleting an
	// absent collection is success.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert writes points in batches of batchSize. Every point's vector is
	// validated against the collection's resolved dimension and rejected
	// with ErrValidation if it mismatches or is all-zero; on violation
	// nothing from the call is stored.
	Upsert(ctx context.Context, collection string, points []Point, batchSize int) error

	// Query runs a similarity search. The query vector is validated the
	// same way as stored vectors. Results are ordered by score descending.
	Query(ctx context.Context, collection string, vector []float32, k int, scoreThreshold float32, filter Filter) ([]ScoredPoint, error)

	// DeletePoints deletes points by id.
	DeletePoints(ctx context.Context, collection string, ids []string) error

	// DeleteByFilter deletes every point matching the filter.
	DeleteByFilter(ctx context.Context, collection string, filter Filter) error

	// Close releases backend resources.
	Close() error
}

// IsTransientError reports whether an error is retryable: network timeouts
// and temporary backend unavailability, not validation or not-found.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

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
