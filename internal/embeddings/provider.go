package embeddings

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// Provider hands out one embedder per content type, each pinned to the
// model the content-type registry binds to that type. All embedders share
// one service endpoint and one metrics instance; only the model differs.
type Provider struct {
	services map[contenttype.ContentType]*Service
}

// NewProvider builds embedders for every type in the registry.
func NewProvider(config Config, registry contenttype.Registry, logger *zap.Logger) (*Provider, error) {
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("validating registry: %w", err)
	}

	metrics := NewMetrics(logger)
	services := make(map[contenttype.ContentType]*Service, len(registry))
	for _, ct := range registry.Types() {
		spec, _ := registry.Spec(ct)
		svc, err := NewService(config, spec.Model, metrics)
		if err != nil {
			return nil, fmt.Errorf("building embedder for %s: %w", ct, err)
		}
		services[ct] = svc
	}

	return &Provider{services: services}, nil
}

// ForType returns the embedder bound to the given content type.
func (p *Provider) ForType(ct contenttype.ContentType) (Embedder, error) {
	svc, ok := p.services[ct]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contenttype.ErrUnknownType, ct)
	}
	return svc, nil
}
