package vectorstore

import (
	"fmt"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// Provider names accepted by the factory.
const (
	ProviderQdrant  = "qdrant"
	ProviderChromem = "chromem"
)

// Config selects and configures a Store backend.
type Config struct {
	// Provider is "qdrant" or "chromem". Default: "chromem" (embedded, no
	// external service required).
	Provider string `koanf:"provider"`

	Qdrant  QdrantConfig  `koanf:"qdrant"`
	Chromem ChromemConfig `koanf:"chromem"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderChromem
	}
	c.Qdrant.ApplyDefaults()
}

// New builds a Store from config. The content-type registry is shared by
// all backends for dimension resolution.
func New(config Config, registry contenttype.Registry) (Store, error) {
	config.ApplyDefaults()

	switch config.Provider {
	case ProviderQdrant:
		return NewQdrantStore(config.Qdrant, registry)
	case ProviderChromem:
		return NewChromemStore(config.Chromem, registry)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, config.Provider)
	}
}
