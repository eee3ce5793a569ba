// Package contenttype defines the static registry binding content types to
// embedding models and vector dimensionalities.
//
// Every content type routes to its own embedding model with a fixed
// dimensionality, and every per-domain collection name carries its content
// type as a trailing suffix. The registry is immutable configuration passed
// in at construction, never a mutable module-level global.
package contenttype

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ContentType is a classification label assigned to a content chunk.
// It determines both the embedding model used and the target collection.
type ContentType string

// Built-in content types.
const (
	Documents ContentType = "documents"
	Code      ContentType = "code"
	Media     ContentType = "media"
)

// ErrUnknownType is returned when a content type has no registry entry.
var ErrUnknownType = errors.New("unknown content type")

// Spec binds a content type to its embedding model and vector size.
type Spec struct {
	// Model is the embedding model identifier sent to the embedding service.
	Model string

	// Dimension is the embedding dimensionality. Collections for this type
	// are created with this vector size, and every stored or queried vector
	// must match it exactly.
	Dimension int
}

// Registry maps content types to their embedding specs.
//
// A Registry is treated as immutable after construction. Deployments swap
// models by constructing a different Registry, not by mutating one.
type Registry map[ContentType]Spec

// DefaultRegistry returns the standard three-type registry.
// Concrete models and dimensions are configuration, not core logic.
func DefaultRegistry() Registry {
	return Registry{
		Documents: {Model: "text-embedding-3-small", Dimension: 1536},
		Code:      {Model: "text-embedding-3-large", Dimension: 3072},
		Media:     {Model: "clip-ViT-B-32", Dimension: 512},
	}
}

// Validate checks that the registry is usable: non-empty, a documents entry
// present (the default queryable space), and positive dimensions throughout.
func (r Registry) Validate() error {
	if len(r) == 0 {
		return errors.New("registry cannot be empty")
	}
	if _, ok := r[Documents]; !ok {
		return fmt.Errorf("registry must include the %q type", Documents)
	}
	for ct, spec := range r {
		if ct == "" {
			return errors.New("registry contains an empty content type")
		}
		if spec.Model == "" {
			return fmt.Errorf("content type %q has no model", ct)
		}
		if spec.Dimension <= 0 {
			return fmt.Errorf("content type %q has invalid dimension %d", ct, spec.Dimension)
		}
	}
	return nil
}

// Spec returns the spec for a content type.
func (r Registry) Spec(ct ContentType) (Spec, error) {
	spec, ok := r[ct]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownType, ct)
	}
	return spec, nil
}

// Dimension returns the vector size for a content type.
func (r Registry) Dimension(ct ContentType) (int, error) {
	spec, err := r.Spec(ct)
	if err != nil {
		return 0, err
	}
	return spec.Dimension, nil
}

// Contains reports whether the content type is registered.
func (r Registry) Contains(ct ContentType) bool {
	_, ok := r[ct]
	return ok
}

// Types returns all registered content types in sorted order.
// Sorted iteration keeps collection provisioning and reports deterministic.
func (r Registry) Types() []ContentType {
	types := make([]ContentType, 0, len(r))
	for ct := range r {
		types = append(types, ct)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DimensionForCollection infers a collection's vector size from its trailing
// content-type suffix. Both legacy flat names ("documents") and per-domain
// suffixed names ("AI_Knowledge_documents") resolve. Names with no
// recognizable suffix default to the documents dimension.
func (r Registry) DimensionForCollection(name string) int {
	for ct, spec := range r {
		if name == string(ct) || strings.HasSuffix(name, "_"+string(ct)) {
			return spec.Dimension
		}
	}
	return r[Documents].Dimension
}

// TypeForCollection infers a collection's content type from its trailing
// suffix, defaulting to documents.
func (r Registry) TypeForCollection(name string) ContentType {
	for ct := range r {
		if name == string(ct) || strings.HasSuffix(name, "_"+string(ct)) {
			return ct
		}
	}
	return Documents
}
