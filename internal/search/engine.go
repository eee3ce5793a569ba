// Package search implements federated similarity search across domains.
//
// A query fans out to one vector-store query per candidate collection,
// runs the candidates on a shared worker pool, and merges the partial
// result sets into a single globally re-ranked list. Per-candidate
// failures degrade the result set instead of failing the query; the only
// hard errors are invalid input and context cancellation.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
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
var tracer = otel.Tracer("retrievald.search")

// Sentinel errors for search operations.
var (
	// ErrEmptyDomainSet is returned when a query names no domains.
	// Searching nothing is a caller bug, not an empty result.
	ErrEmptyDomainSet = errors.New("search requires at least one domain")

	// ErrInvalidQuery indicates a malformed query: empty text or k < 1.
	ErrInvalidQuery = errors.New("invalid search query")
)

// DefaultWorkers is the default fan-out pool size.
const DefaultWorkers = 8

// Match is one federated search hit.
type Match struct {
	// ID is the stored point identifier.
	ID string `json:"id"`

	// Score is the similarity score (higher is better). Comparable across
	// candidates because all searched collections share one embedding space.
	Score float32 `json:"score"`

	// DomainID is the domain the hit came from.
	DomainID string `json:"domain_id"`

	// ContentType is the content type of the hit's collection.
	ContentType contenttype.ContentType `json:"content_type"`

	// Content is the stored chunk text.
	Content string `json:"content"`

	// Payload is the full stored payload.
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// DomainGetter resolves domain metadata by id.
type DomainGetter interface {
	Get(ctx context.Context, id string) (*source.Domain, error)
}

// EmbedderProvider hands out the embedder bound to a content type.
type EmbedderProvider interface {
	ForType(ct contenttype.ContentType) (embeddings.Embedder, error)
}

// Config holds engine tuning knobs.
type Config struct {
	// Workers is the fan-out pool size. Default: 8.
	Workers int `koanf:"workers"`

	// ScoreThreshold drops hits below this similarity. Zero keeps all.
	ScoreThreshold float32 `koanf:"score_threshold"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
}

// Engine runs federated searches.
type Engine struct {
	config    Config
	domains   DomainGetter
	embedders EmbedderProvider
	store     vectorstore.Store
	registry  contenttype.Registry
	pool      *ants.Pool
	logger    *logging.Logger
}

// NewEngine creates an Engine with its own worker pool. Close releases the
// pool.
func NewEngine(config Config, domains DomainGetter, embedders EmbedderProvider, store vectorstore.Store, registry contenttype.Registry, logger *logging.Logger) (*Engine, error) {
	config.ApplyDefaults()
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
	if logger == nil {
		logger = logging.NewNop()
	}

	pool, err := ants.NewPool(config.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	return &Engine{
		config:    config,
		domains:   domains,
		embedders: embedders,
		store:     store,
		registry:  registry,
		pool:      pool,
		logger:    logger.Named("search"),
	}, nil
}

// Close releases the worker pool.
func (e *Engine) Close() error {
	e.pool.Release()
	return nil
}

// candidate is one (domain, collection) pair to query.
type candidate struct {
	domainID    string
	contentType contenttype.ContentType
	collection  string
}

// Search embeds the query once and fans it out across every candidate
// collection of the requested domains, merging the partial results into
// one list sorted by score descending, truncated to k.
//
// Domains that fail to load are skipped with a warning; so are candidates
// whose store query fails. Input validation happens before any I/O.
func (e *Engine) Search(ctx context.Context, query string, domainIDs []string, k int) ([]Match, error) {
	ctx, span := tracer.Start(ctx, "Engine.Search")
	defer span.End()

	span.SetAttributes(
		attribute.Int("domains", len(domainIDs)),
		attribute.Int("k", k),
	)

	if len(domainIDs) == 0 {
		return nil, ErrEmptyDomainSet
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty query text", ErrInvalidQuery)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidQuery, k)
	}

	candidates := e.collectCandidates(ctx, domainIDs)
	if len(candidates) == 0 {
		return []Match{}, nil
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	// One embedding for the whole fan-out: every candidate shares the
	// documents embedding space.
	embedder, err := e.embedders.ForType(contenttype.Documents)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("resolving query embedder: %w", err)
	}
	vector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results := e.fanOut(ctx, candidates, vector, k)
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("search canceled: %w", err)
	}

	matches := merge(candidates, results, k)
	span.SetAttributes(attribute.Int("matches", len(matches)))
	span.SetStatus(codes.Ok, "success")
	return matches, nil
}

// collectCandidates resolves the domains and enumerates the collections to
// query. Every domain contributes its documents collection; other enabled
// types join only when their dimension matches the documents dimension, so
// one query vector stays valid across the whole fan-out.
func (e *Engine) collectCandidates(ctx context.Context, domainIDs []string) []candidate {
	docsDim := e.registry.DimensionForCollection(string(contenttype.Documents))

	var candidates []candidate
	for _, id := range domainIDs {
		domain, err := e.domains.Get(ctx, id)
		if err != nil {
			e.logger.Warn(ctx, "skipping domain",
				zap.String("domain_id", id),
				zap.Error(err),
			)
			continue
		}
		for _, ct := range domain.EnabledTypes {
			collection, ok := domain.CollectionFor(ct)
			if !ok {
				continue
			}
			if ct != contenttype.Documents {
				dim, err := e.registry.Dimension(ct)
				if err != nil || dim != docsDim {
					continue
				}
			}
			candidates = append(candidates, candidate{
				domainID:    domain.ID,
				contentType: ct,
				collection:  collection,
			})
		}
	}
	return candidates
}

// fanOut runs one store query per candidate on the worker pool and joins.
// Results land in per-candidate slots, so no mutex is needed. Each
// candidate over-fetches 2×k hits to keep the merged head accurate.
func (e *Engine) fanOut(ctx context.Context, candidates []candidate, vector []float32, k int) [][]vectorstore.ScoredPoint {
	results := make([][]vectorstore.ScoredPoint, len(candidates))
	limit := 2 * k

	var wg sync.WaitGroup
	for i, cand := range candidates {
		i, cand := i, cand
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			points, err := e.store.Query(ctx, cand.collection, vector, limit, e.config.ScoreThreshold, vectorstore.Filter{
				vectorstore.PayloadDomainID: cand.domainID,
			})
			if err != nil {
				e.logger.Warn(ctx, "candidate query failed",
					zap.String("domain_id", cand.domainID),
					zap.String("collection", cand.collection),
					zap.Error(err),
				)
				return
			}
			results[i] = points
		}
		if err := e.pool.Submit(task); err != nil {
			// Saturated or released pool: run on the caller instead of
			// dropping the candidate.
			task()
		}
	}
	wg.Wait()

	return results
}

// merge flattens per-candidate results in candidate enumeration order and
// re-ranks globally. The stable sort keeps enumeration order for equal
// scores, making results deterministic.
func merge(candidates []candidate, results [][]vectorstore.ScoredPoint, k int) []Match {
	var matches []Match
	for i, points := range results {
		for _, p := range points {
			content, _ := p.Payload[vectorstore.PayloadContent].(string)
			matches = append(matches, Match{
				ID:          p.ID,
				Score:       p.Score,
				DomainID:    candidates[i].domainID,
				ContentType: candidates[i].contentType,
				Content:     content,
				Payload:     p.Payload,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	if matches == nil {
		matches = []Match{}
	}
	return matches
}
