package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
	"github.com/fyrsmithlabs/retrievald/internal/embeddings"
	"github.com/fyrsmithlabs/retrievald/internal/logging"
	"github.com/fyrsmithlabs/retrievald/internal/source"
	"github.com/fyrsmithlabs/retrievald/internal/vectorstore"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("retrievald.ingest")

// DefaultUpsertBatchSize is the per-group upsert batch size.
const DefaultUpsertBatchSize = 64

// Chunk is one unit of ingestable content.
type Chunk struct {
	// Text is the chunk body.
	Text string

	// ContentType is the pre-assigned classification label. Empty means
	// classify at ingest time.
	ContentType contenttype.ContentType

	// Ordinal is the chunk's position within its originating source.
	Ordinal int
}

// DomainGetter resolves domain metadata by id.
type DomainGetter interface {
	Get(ctx context.Context, id string) (*source.Domain, error)
}

// EmbedderProvider hands out the embedder bound to a content type.
type EmbedderProvider interface {
	ForType(ct contenttype.ContentType) (embeddings.Embedder, error)
}

// Router ingests chunks into a domain's collections.
type Router struct {
	domains    DomainGetter
	embedders  EmbedderProvider
	store      vectorstore.Store
	registry   contenttype.Registry
	classifier Classifier
	logger     *logging.Logger
	batchSize  int
}

// NewRouter creates a Router.
func NewRouter(domains DomainGetter, embedders EmbedderProvider, store vectorstore.Store, registry contenttype.Registry, classifier Classifier, logger *logging.Logger) (*Router, error) {
	if domains == nil {
		return nil, fmt.Errorf("domain getter is required")
	}
	if embedders == nil {
		return nil, fmt.Errorf("embedder provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("validating registry: %w", err)
	}
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{
		domains:    domains,
		embedders:  embedders,
		store:      store,
		registry:   registry,
		classifier: classifier,
		logger:     logger.Named("ingest"),
		batchSize:  DefaultUpsertBatchSize,
	}, nil
}

// Ingest routes chunks into the domain's collections and reports per-type
// outcomes. Failures inside one content-type group never abort the other
// groups; the only hard errors are an unknown domain and context
// cancellation. A chunk whose type has no collection in the domain's
// mapping is counted as failed, never written anywhere else.
func (r *Router) Ingest(ctx context.Context, domainID string, chunks []Chunk) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Router.Ingest")
	defer span.End()

	span.SetAttributes(
		attribute.String("domain_id", domainID),
		attribute.Int("chunks", len(chunks)),
	)
	ctx = logging.WithDomainID(ctx, domainID)

	domain, err := r.domains.Get(ctx, domainID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report := NewReport()
	if len(chunks) == 0 {
		return report, nil
	}

	groups := r.groupByType(ctx, chunks, report)

	// Sorted iteration keeps report ordering and store traffic deterministic.
	types := make([]contenttype.ContentType, 0, len(groups))
	for ct := range groups {
		types = append(types, ct)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, ct := range types {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, fmt.Errorf("ingest canceled: %w", err)
		}
		r.ingestGroup(ctx, domain, ct, groups[ct], report)
	}

	r.logger.Info(ctx, "ingest complete",
		zap.Int("stored", report.TotalStored()),
		zap.Int("failed", report.TotalFailed()),
	)
	span.SetAttributes(
		attribute.Int("stored", report.TotalStored()),
		attribute.Int("failed", report.TotalFailed()),
	)
	span.SetStatus(codes.Ok, "success")
	return report, nil
}

// groupByType classifies unlabeled chunks and buckets all chunks by type.
// Chunks that cannot be classified are counted as failed under documents,
// the default routing space.
func (r *Router) groupByType(ctx context.Context, chunks []Chunk, report *Report) map[contenttype.ContentType][]Chunk {
	groups := make(map[contenttype.ContentType][]Chunk)
	for _, chunk := range chunks {
		ct := chunk.ContentType
		if ct == "" {
			var err error
			ct, err = r.classifier.Classify(ctx, chunk.Text)
			if err != nil {
				r.logger.Warn(ctx, "chunk classification failed",
					zap.Int("ordinal", chunk.Ordinal),
					zap.Error(err),
				)
				report.addFailed(contenttype.Documents, 1)
				continue
			}
		}
		chunk.ContentType = ct
		groups[ct] = append(groups[ct], chunk)
	}
	return groups
}

// ingestGroup embeds and stores one content-type group. All failure paths
// end in report counts, never a returned error.
func (r *Router) ingestGroup(ctx context.Context, domain *source.Domain, ct contenttype.ContentType, chunks []Chunk, report *Report) {
	collection, ok := domain.CollectionFor(ct)
	if !ok {
		r.logger.Warn(ctx, "no collection routed for content type, dropping chunks",
			zap.String("content_type", string(ct)),
			zap.Int("chunks", len(chunks)),
		)
		report.addFailed(ct, len(chunks))
		return
	}

	dim, err := r.registry.Dimension(ct)
	if err != nil {
		r.logger.Warn(ctx, "content type not registered, dropping chunks",
			zap.String("content_type", string(ct)),
			zap.Error(err),
		)
		report.addFailed(ct, len(chunks))
		return
	}

	embedder, err := r.embedders.ForType(ct)
	if err != nil {
		r.logger.Warn(ctx, "no embedder for content type, dropping chunks",
			zap.String("content_type", string(ct)),
			zap.Error(err),
		)
		report.addFailed(ct, len(chunks))
		return
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		r.logger.Warn(ctx, "batch embedding failed, dropping group",
			zap.String("content_type", string(ct)),
			zap.Int("chunks", len(chunks)),
			zap.Error(err),
		)
		report.addFailed(ct, len(chunks))
		return
	}
	report.addEmbedded(ct, len(vectors))

	// Per-chunk validation: a bad embedding drops that chunk alone instead
	// of poisoning the whole upsert batch.
	points := make([]vectorstore.Point, 0, len(chunks))
	for i, chunk := range chunks {
		if !validEmbedding(vectors[i], dim) {
			r.logger.Warn(ctx, "invalid embedding, dropping chunk",
				zap.String("content_type", string(ct)),
				zap.Int("ordinal", chunk.Ordinal),
				zap.Int("got_dim", len(vectors[i])),
				zap.Int("want_dim", dim),
			)
			report.addFailed(ct, 1)
			continue
		}
		points = append(points, vectorstore.Point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]interface{}{
				vectorstore.PayloadDomainID:    domain.ID,
				vectorstore.PayloadContent:     chunk.Text,
				vectorstore.PayloadContentType: string(ct),
				vectorstore.PayloadOrdinal:     chunk.Ordinal,
			},
		})
	}
	if len(points) == 0 {
		return
	}

	if err := r.store.Upsert(ctx, collection, points, r.batchSize); err != nil {
		r.logger.Warn(ctx, "upsert failed, dropping group remainder",
			zap.String("collection", collection),
			zap.Int("points", len(points)),
			zap.Error(err),
		)
		report.addFailed(ct, len(points))
		return
	}
	report.addStored(ct, len(points))
}

// validEmbedding reports whether a vector has the expected dimension and is
// not all-zero.
func validEmbedding(vector []float32, wantDim int) bool {
	if len(vector) != wantDim {
		return false
	}
	for _, v := range vector {
		if v != 0 {
			return true
		}
	}
	return false
}
