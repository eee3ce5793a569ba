package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/retrievald/internal/collections"
	"github.com/fyrsmithlabs/retrievald/internal/config"
	"github.com/fyrsmithlabs/retrievald/internal/embeddings"
	"github.com/fyrsmithlabs/retrievald/internal/ingest"
	"github.com/fyrsmithlabs/retrievald/internal/logging"
	"github.com/fyrsmithlabs/retrievald/internal/search"
	"github.com/fyrsmithlabs/retrievald/internal/source"
	"github.com/fyrsmithlabs/retrievald/internal/telemetry"
	"github.com/fyrsmithlabs/retrievald/internal/vectorstore"
)

// app wires the full stack from config. Every command builds one, runs,
// and closes it; retrievald has no long-running server surface.
type app struct {
	logger      *logging.Logger
	telemetry   *telemetry.Telemetry
	store       vectorstore.Store
	metadata    *source.BadgerStore
	coordinator *source.Coordinator
	router      *ingest.Router
	engine      *search.Engine
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	registry := cfg.Registry()

	a := &app{logger: logger, telemetry: tel}

	store, err := vectorstore.New(cfg.VectorStore, registry)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("initializing vector store: %w", err)
	}
	a.store = store

	metadata, err := source.OpenBadgerStore(cfg.Metadata, logger)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("opening metadata store: %w", err)
	}
	a.metadata = metadata

	manager, err := collections.NewManager(store, registry, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	coordinator, err := source.NewCoordinator(metadata, manager, registry, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.coordinator = coordinator

	provider, err := embeddings.NewProvider(cfg.Embeddings, registry, logger.Underlying())
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("initializing embeddings: %w", err)
	}

	router, err := ingest.NewRouter(coordinator, provider, store, registry, ingest.NewKeywordClassifier(), logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.router = router

	engine, err := search.NewEngine(cfg.Search, coordinator, provider, store, registry, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.engine = engine

	return a, nil
}

// Close releases resources in reverse dependency order. Failures are
// logged, not returned: shutdown is best-effort.
func (a *app) Close(ctx context.Context) {
	if a.engine != nil {
		if err := a.engine.Close(); err != nil {
			a.logger.Warn(ctx, "closing search engine", zap.Error(err))
		}
	}
	if a.metadata != nil {
		if err := a.metadata.Close(); err != nil {
			a.logger.Warn(ctx, "closing metadata store", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn(ctx, "closing vector store", zap.Error(err))
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn(ctx, "shutting down telemetry", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
