package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/retrievald/internal/logging"
)

// domainKeyPrefix namespaces domain rows inside the badger keyspace.
const domainKeyPrefix = "domain/"

// BadgerConfig holds configuration for the embedded metadata store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps all data in memory (used by tests).
	InMemory bool `koanf:"in_memory"`
}

// BadgerStore is the embedded Store implementation.
type BadgerStore struct {
	db     *badger.DB
	logger *logging.Logger
}

// badgerLoggerAdapter adapts our logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	zap *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (l *badgerLoggerAdapter) Errorf(msg string, items ...interface{})   { l.zap.Errorf(msg, items...) }
func (l *badgerLoggerAdapter) Warningf(msg string, items ...interface{}) { l.zap.Warnf(msg, items...) }
func (l *badgerLoggerAdapter) Infof(msg string, items ...interface{})    { l.zap.Debugf(msg, items...) }
func (l *badgerLoggerAdapter) Debugf(msg string, items ...interface{})   { l.zap.Debugf(msg, items...) }

// OpenBadgerStore opens a badger-backed metadata store, creating the
// directory if needed.
func OpenBadgerStore(config BadgerConfig, logger *logging.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if config.Path == "" {
			return nil, fmt.Errorf("metadata store path is required")
		}
		if err := os.MkdirAll(config.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating metadata directory %s: %w", config.Path, err)
		}
		opts = badger.DefaultOptions(config.Path)
	}

	opts.Logger = &badgerLoggerAdapter{zap: logger.Named("badger").Underlying().Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening metadata store: %w", err)
	}

	return &BadgerStore{db: db, logger: logger.Named("metadata")}, nil
}

func domainKey(id string) []byte {
	return []byte(domainKeyPrefix + id)
}

// Put inserts or replaces a domain row.
func (s *BadgerStore) Put(_ context.Context, domain *Domain) error {
	if domain == nil || domain.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDomain)
	}

	value, err := json.Marshal(domain)
	if err != nil {
		return fmt.Errorf("marshaling domain %s: %w", domain.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(domainKey(domain.ID), value)
	})
	if err != nil {
		return fmt.Errorf("writing domain %s: %w", domain.ID, err)
	}
	return nil
}

// Get returns the row for id, or ErrNotFound.
func (s *BadgerStore) Get(_ context.Context, id string) (*Domain, error) {
	var domain *Domain

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(domainKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var d Domain
			if err := json.Unmarshal(val, &d); err != nil {
				return err
			}
			domain = &d
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading domain %s: %w", id, err)
	}
	return domain, nil
}

// Delete removes the row. Deleting an absent row is success.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(domainKey(id))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("deleting domain %s: %w", id, err)
	}
	return nil
}

// List returns all rows.
func (s *BadgerStore) List(_ context.Context) ([]*Domain, error) {
	var domains []*Domain

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(domainKeyPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				var d Domain
				if err := json.Unmarshal(val, &d); err != nil {
					return err
				}
				domains = append(domains, &d)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	return domains, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Ensure BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)
