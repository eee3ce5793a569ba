// Package collections provisions and tears down per-domain collections.
//
// A domain gets one physical collection per enabled content type, named
// deterministically from its title. Creation is idempotent and does not
// roll back partially-created collections: a retry converges, and the
// caller (the source coordinator) owns the compensating action for its own
// metadata. Deletion is best effort and never fails the caller.
package collections

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
	"github.com/fyrsmithlabs/retrievald/internal/logging"
	"github.com/fyrsmithlabs/retrievald/internal/naming"
	"github.com/fyrsmithlabs/retrievald/internal/vectorstore"
)

// Manager creates and deletes the physical collections backing a domain.
type Manager struct {
	store    vectorstore.Store
	registry contenttype.Registry
	logger   *logging.Logger
}

// NewManager creates a Manager.
func NewManager(store vectorstore.Store, registry contenttype.Registry, logger *logging.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("validating registry: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:    store,
		registry: registry,
		logger:   logger.Named("collections"),
	}, nil
}

// Create provisions one collection per enabled type and returns the full
// content-type to collection-name mapping.
//
// Each collection is created with the type's registered dimension and gets
// a keyword index on the domain_id payload field. Creation is idempotent,
// so a failure leaves the system retryable; the error is returned for the
// caller to decide on compensation.
func (m *Manager) Create(ctx context.Context, domainID, title string, enabledTypes []contenttype.ContentType) (map[contenttype.ContentType]string, error) {
	if len(enabledTypes) == 0 {
		return nil, fmt.Errorf("at least one content type is required")
	}

	mapping := make(map[contenttype.ContentType]string, len(enabledTypes))
	for _, ct := range sorted(enabledTypes) {
		dim, err := m.registry.Dimension(ct)
		if err != nil {
			return nil, err
		}

		name := naming.CollectionName(title, domainID, ct)
		if err := m.store.EnsureCollection(ctx, name, dim); err != nil {
			return nil, fmt.Errorf("provisioning collection %s: %w", name, err)
		}
		if err := m.store.EnsureDomainIndex(ctx, name); err != nil {
			return nil, fmt.Errorf("indexing collection %s: %w", name, err)
		}

		mapping[ct] = name
		m.logger.Info(ctx, "collection provisioned",
			zap.String("domain_id", domainID),
			zap.String("collection", name),
			zap.String("content_type", string(ct)),
			zap.Int("dim", dim),
		)
	}

	return mapping, nil
}

// Delete tears down every collection in the mapping. Per-collection errors
// are logged and skipped; Delete never fails, and deleting an already
// absent collection counts as success.
func (m *Manager) Delete(ctx context.Context, mapping map[contenttype.ContentType]string) {
	for _, ct := range sortedKeys(mapping) {
		name := mapping[ct]
		if err := m.store.DeleteCollection(ctx, name); err != nil {
			m.logger.Warn(ctx, "collection deletion failed, continuing",
				zap.String("collection", name),
				zap.String("content_type", string(ct)),
				zap.Error(err),
			)
			continue
		}
		m.logger.Info(ctx, "collection deleted",
			zap.String("collection", name),
			zap.String("content_type", string(ct)),
		)
	}
}

func sorted(types []contenttype.ContentType) []contenttype.ContentType {
	out := make([]contenttype.ContentType, len(types))
	copy(out, types)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedKeys(mapping map[contenttype.ContentType]string) []contenttype.ContentType {
	keys := make([]contenttype.ContentType, 0, len(mapping))
	for ct := range mapping {
		keys = append(keys, ct)
	}
	return sorted(keys)
}
