package source

import "context"

// Store persists domain metadata rows.
//
// The contract is deliberately narrow: atomic read/write of one row keyed
// by domain id. Nothing in the core depends on a richer schema, so the
// embedded badger implementation can be swapped for a SQL or remote row
// store without touching the coordinator.
type Store interface {
	// Put inserts or replaces a domain row.
	Put(ctx context.Context, domain *Domain) error

	// Get returns the row for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Domain, error)

	// Delete removes the row. Deleting an absent row is success.
	Delete(ctx context.Context, id string) error

	// List returns all rows.
	List(ctx context.Context) ([]*Domain, error)

	// Close releases store resources.
	Close() error
}
