package config

import (
	"fmt"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
	"github.com/fyrsmithlabs/retrievald/internal/embeddings"
	"github.com/fyrsmithlabs/retrievald/internal/logging"
	"github.com/fyrsmithlabs/retrievald/internal/search"
	"github.com/fyrsmithlabs/retrievald/internal/source"
	"github.com/fyrsmithlabs/retrievald/internal/telemetry"
	"github.com/fyrsmithlabs/retrievald/internal/vectorstore"
)

// Config is the root configuration for retrievald.
type Config struct {
	VectorStore vectorstore.Config  `koanf:"vectorstore"`
	Embeddings  embeddings.Config   `koanf:"embeddings"`
	Metadata    source.BadgerConfig `koanf:"metadata"`
	Search      search.Config       `koanf:"search"`
	Logging     *logging.Config     `koanf:"logging"`
	Telemetry   *telemetry.Config   `koanf:"telemetry"`

	// ContentTypes overrides the built-in content-type registry. Empty means
	// use the defaults.
	ContentTypes map[string]ContentTypeSpec `koanf:"content_types"`
}

// ContentTypeSpec is the configurable half of a registry entry.
type ContentTypeSpec struct {
	Model     string `koanf:"model"`
	Dimension int    `koanf:"dimension"`
}

// Registry builds the content-type registry from config, falling back to
// the built-in defaults when no override is present.
func (c *Config) Registry() contenttype.Registry {
	if len(c.ContentTypes) == 0 {
		return contenttype.DefaultRegistry()
	}
	registry := make(contenttype.Registry, len(c.ContentTypes))
	for name, spec := range c.ContentTypes {
		registry[contenttype.ContentType(name)] = contenttype.Spec{
			Model:     spec.Model,
			Dimension: spec.Dimension,
		}
	}
	return registry
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return fmt.Errorf("logging: %w", err)
		}
	}
	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}
	if err := c.Embeddings.Validate(); err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	if err := c.Registry().Validate(); err != nil {
		return fmt.Errorf("content_types: %w", err)
	}
	return nil
}
