package main

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/leductinjl/backend/internal/config"
	"github.com/leductinjl/backend/internal/graph"
	"github.com/leductinjl/backend/internal/ontology"
	"github.com/leductinjl/backend/internal/relational"
	"github.com/leductinjl/backend/internal/sync"
)

// app wires the configured stores and the engine together for the
// lifetime of one command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	graphClient graph.Client
	db          *relational.DB

	engine      *sync.Engine
	initializer *ontology.Initializer
	reconciler  *ontology.Reconciler
}

// buildApp loads configuration, connects both stores, and assembles the
// engine. Callers must close the returned app.
func buildApp(ctx context.Context) (*app, error) {
	loader := config.NewLoader(config.NewValidator())
	cfg, err := loader.LoadWithDefaults(configFile)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	client, err := graph.NewNeo4jClient(graph.Config{
		URI:                   cfg.Graph.URI,
		Username:              cfg.Graph.Username,
		Password:              cfg.Graph.Password,
		Database:              cfg.Graph.Database,
		MaxConnectionPoolSize: cfg.Graph.MaxConnectionPoolSize,
		ConnectionTimeout:     cfg.Graph.ConnectionTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	db, err := relational.OpenWithConfig(relational.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		BusyTimeout:     cfg.Database.BusyTimeout,
	})
	if err != nil {
		client.Close(ctx)
		return nil, err
	}

	registry := sync.DefaultRegistry()
	readers := buildReaders(db, registry)

	var writer sync.GraphWriter = sync.NewCypherRepository(client)
	writer = sync.NewTracedWriter(writer, otel.Tracer("kgsync"))

	resolver := sync.NewRegistrationResolver(readers["candidate_exam"])
	classLoader := ontology.NewLoader()
	reconciler := ontology.NewReconciler(client, classLoader, logger)

	engine := sync.NewEngine(registry, readers, writer, resolver, reconciler, logger, sync.Options{
		Workers:      cfg.Sync.Workers,
		WriteTimeout: cfg.Sync.WriteTimeout,
	})

	return &app{
		cfg:         cfg,
		logger:      logger,
		graphClient: client,
		db:          db,
		engine:      engine,
		initializer: ontology.NewInitializer(client, classLoader, logger),
		reconciler:  reconciler,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
	if a.graphClient != nil {
		if err := a.graphClient.Close(ctx); err != nil {
			a.logger.Warn("failed to close graph client", "error", err)
		}
	}
}

// buildReaders creates one table reader per registered entity type.
func buildReaders(db *relational.DB, registry *sync.Registry) relational.ReaderSet {
	readers := make(relational.ReaderSet)
	for _, entityType := range registry.Order() {
		spec, _ := registry.Spec(entityType)
		readers[entityType] = relational.NewTableReader(db, spec.Table, spec.KeyField)
	}
	return readers
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
