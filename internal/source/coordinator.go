package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/retrievald/internal/collections"
	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
	"github.com/fyrsmithlabs/retrievald/internal/logging"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("retrievald.source")

// Coordinator owns the domain lifecycle: metadata writes paired with
// physical collection provisioning.
//
// The metadata store and the vector store are independent systems with no
// shared transaction, so create follows a compensating-action (saga)
// pattern: tentative row, provision, commit mapping - or roll the row back.
// Delete favors availability: metadata removal is never blocked by an
// unavailable vector store.
type Coordinator struct {
	store       Store
	collections *collections.Manager
	registry    contenttype.Registry
	logger      *logging.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(store Store, manager *collections.Manager, registry contenttype.Registry, logger *logging.Logger) (*Coordinator, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if manager == nil {
		return nil, fmt.Errorf("collections manager is required")
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("validating registry: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		store:       store,
		collections: manager,
		registry:    registry,
		logger:      logger.Named("source"),
	}, nil
}

// Create provisions a new domain in two phases:
//
//  1. Insert a tentative row with an empty collection mapping. The row is
//     invisible to Get/List until provisioned.
//  2. Provision one collection per enabled type.
//  3. On success, persist the mapping - the domain becomes visible.
//  4. On provisioning failure, delete the tentative row and return
//     ErrProvisioningFailed. No half-valid domain is ever observable.
func (c *Coordinator) Create(ctx context.Context, title string, enabledTypes []contenttype.ContentType) (*Domain, error) {
	ctx, span := tracer.Start(ctx, "Coordinator.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("title", title),
		attribute.Int("enabled_types", len(enabledTypes)),
	)

	if len(enabledTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one content type is required", ErrInvalidDomain)
	}
	seen := make(map[contenttype.ContentType]bool, len(enabledTypes))
	for _, ct := range enabledTypes {
		if !c.registry.Contains(ct) {
			return nil, fmt.Errorf("%w: %q", contenttype.ErrUnknownType, ct)
		}
		if seen[ct] {
			return nil, fmt.Errorf("%w: duplicate content type %q", ErrInvalidDomain, ct)
		}
		seen[ct] = true
	}

	now := time.Now().UTC()
	domain := &Domain{
		ID:           uuid.NewString(),
		Title:        title,
		EnabledTypes: sortedTypes(enabledTypes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ctx = logging.WithDomainID(ctx, domain.ID)
	span.SetAttributes(attribute.String("domain_id", domain.ID))

	// Phase 1: tentative row, empty mapping.
	if err := c.store.Put(ctx, domain); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("inserting domain row: %w", err)
	}

	// Phase 2: provision collections.
	mapping, err := c.collections.Create(ctx, domain.ID, title, domain.EnabledTypes)
	if err != nil {
		// Compensating action: remove the tentative row so the failed
		// domain never becomes observable.
		if rbErr := c.store.Delete(ctx, domain.ID); rbErr != nil {
			c.logger.Error(ctx, "rollback of tentative domain row failed",
				zap.Error(rbErr),
			)
			span.RecordError(rbErr)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	// Phase 3: commit the mapping.
	domain.CollectionNames = mapping
	domain.UpdatedAt = time.Now().UTC()
	if err := c.store.Put(ctx, domain); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("committing domain mapping: %w", err)
	}

	c.logger.Info(ctx, "domain created",
		zap.String("title", title),
		zap.Int("collections", len(mapping)),
	)
	span.SetStatus(codes.Ok, "success")
	return domain, nil
}

// Delete removes a domain: best-effort collection teardown, then metadata
// removal regardless of the vector-store outcome. An unavailable vector
// store must not leave an undeletable domain.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Coordinator.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("domain_id", id))
	ctx = logging.WithDomainID(ctx, id)

	domain, err := c.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// Never raises; per-collection failures are logged inside.
	c.collections.Delete(ctx, domain.CollectionNames)

	if err := c.store.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting domain row: %w", err)
	}

	c.logger.Info(ctx, "domain deleted")
	span.SetStatus(codes.Ok, "success")
	return nil
}

// Get returns a fully-provisioned domain. Tentative rows left behind by a
// crash between create phases are treated as absent.
func (c *Coordinator) Get(ctx context.Context, id string) (*Domain, error) {
	domain, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Provisioned() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return domain, nil
}

// List returns all fully-provisioned domains.
func (c *Coordinator) List(ctx context.Context) ([]*Domain, error) {
	domains, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := domains[:0]
	for _, d := range domains {
		if d.Provisioned() {
			visible = append(visible, d)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].CreatedAt.Before(visible[j].CreatedAt) })
	return visible, nil
}

// load fetches a row without the provisioned-visibility check. Delete uses
// it so crash-leftover tentative rows can still be reaped.
func (c *Coordinator) load(ctx context.Context, id string) (*Domain, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty domain id", ErrInvalidDomain)
	}
	return c.store.Get(ctx, id)
}

func sortedTypes(types []contenttype.ContentType) []contenttype.ContentType {
	out := make([]contenttype.ContentType, len(types))
	copy(out, types)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
