// Package source owns domain metadata and the domain lifecycle.
//
// A domain (source) is an isolated knowledge tenant with its own set of
// physical vector collections, one per enabled content type. The persisted
// collection-name mapping is the single source of truth for physical
// routing: titles may change after creation, physical collection
// identifiers must not, so names are never recomputed from the title at
// ingest or search time.
package source

import (
	"errors"
	"time"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// Sentinel errors for domain operations.
var (
	// ErrNotFound is returned when a domain does not exist (or is not yet
	// fully provisioned and therefore not externally visible).
	ErrNotFound = errors.New("domain not found")

	// ErrInvalidDomain indicates a malformed create request.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrProvisioningFailed wraps collection-provisioning failures during
	// create. The tentative metadata row is rolled back before this is
	// returned.
	ErrProvisioningFailed = errors.New("collection provisioning failed, domain rolled back")
)

// Domain is an isolated knowledge tenant.
type Domain struct {
	// ID is the opaque unique identifier (UUID).
	ID string `json:"id"`

	// Title is the human-readable name. Informational only after creation;
	// physical routing never derives from it again.
	Title string `json:"title"`

	// EnabledTypes is the non-empty set of content types the domain accepts.
	EnabledTypes []contenttype.ContentType `json:"enabled_types"`

	// CollectionNames maps each enabled content type to its physical
	// collection. A domain is valid only once this covers every enabled
	// type; rows without that property are never externally visible.
	CollectionNames map[contenttype.ContentType]string `json:"collection_names"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provisioned reports whether every enabled type has a collection mapping.
func (d *Domain) Provisioned() bool {
	if len(d.EnabledTypes) == 0 {
		return false
	}
	for _, ct := range d.EnabledTypes {
		if d.CollectionNames[ct] == "" {
			return false
		}
	}
	return true
}

// CollectionFor returns the physical collection for a content type, or
// false when the type is not routed for this domain.
func (d *Domain) CollectionFor(ct contenttype.ContentType) (string, bool) {
	name, ok := d.CollectionNames[ct]
	return name, ok && name != ""
}
