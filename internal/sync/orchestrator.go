package sync

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leductinjl/backend/internal/relational"
)

// OntologyReconciler links instance nodes to their ontology classes
// after a bulk pass. Implemented by the ontology package.
type OntologyReconciler interface {
	ReconcileInstances(ctx context.Context) (int, error)
}

// Options tune the engine. Zero values fall back to defaults.
type Options struct {
	// Workers bounds concurrent record writes within one entity type.
	Workers int

	// WriteTimeout bounds the graph writes for a single record.
	WriteTimeout time.Duration
}

const (
	defaultWorkers      = 4
	defaultWriteTimeout = 30 * time.Second
)

// Engine projects relational records into the graph. Sync handles one
// record, BulkSync one entity type, BulkSyncAll every registered type
// in dependency order.
//
// Failures are isolated per record: a record that cannot be projected
// is logged and skipped, and never aborts the surrounding batch.
type Engine struct {
	registry   *Registry
	readers    relational.ReaderSet
	writer     GraphWriter
	resolver   Resolver
	reconciler OntologyReconciler
	logger     *slog.Logger

	workers      int
	writeTimeout time.Duration
}

// NewEngine assembles an engine. The resolver and reconciler may be
// nil; join resolution and ontology reconciliation are then skipped.
func NewEngine(
	registry *Registry,
	readers relational.ReaderSet,
	writer GraphWriter,
	resolver Resolver,
	reconciler OntologyReconciler,
	logger *slog.Logger,
	opts Options,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Engine{
		registry:     registry,
		readers:      readers,
		writer:       writer,
		resolver:     resolver,
		reconciler:   reconciler,
		logger:       logger,
		workers:      workers,
		writeTimeout: writeTimeout,
	}
}

// Sync projects one record of the given entity type into the graph.
// It reports whether the projection succeeded and never returns an
// error: failures are logged with enough context to replay the record.
func (e *Engine) Sync(ctx context.Context, entityType string, record any) bool {
	spec, ok := e.registry.Spec(entityType)
	if !ok {
		e.logger.Warn("unknown entity type", "entity_type", entityType)
		return false
	}
	return e.syncRecord(ctx, spec, record)
}

func (e *Engine) syncRecord(ctx context.Context, spec EntitySpec, raw any) bool {
	rec, err := Normalize(raw)
	if err != nil {
		e.logger.Warn("record normalization failed",
			"entity_type", spec.Type, "error", err)
		return false
	}
	id := rec.StringField(spec.KeyField)

	if spec.JoinField != "" && e.resolver != nil {
		joinID := rec.StringField(spec.JoinField)
		// Resolution failure is non-fatal: the node is still written,
		// edges needing the unresolved identifiers are omitted.
		if err := e.resolver.Resolve(ctx, joinID, rec); err != nil {
			e.logger.Warn("join resolution failed, syncing node only",
				"entity_type", spec.Type, "id", id, "join_id", joinID, "error", err)
		}
	}

	writeCtx, cancel := context.WithTimeout(ctx, e.writeTimeout)
	defer cancel()

	if !spec.EdgeOnly {
		node, err := MapNode(spec, rec)
		if err != nil {
			e.logger.Warn("record mapping failed",
				"entity_type", spec.Type, "id", id, "error", err)
			return false
		}
		if err := e.writer.UpsertNode(writeCtx, node); err != nil {
			e.logger.Warn("node write failed",
				"entity_type", spec.Type, "id", id, "error", err)
			return false
		}
	}

	for _, edge := range e.deriveEdges(spec, rec) {
		if err := e.writer.UpsertEdge(writeCtx, edge); err != nil {
			if isEndpointMissing(err) {
				e.logger.Debug("edge skipped, endpoint not yet present",
					"entity_type", spec.Type, "id", id, "rel", edge.Rel)
				continue
			}
			e.logger.Warn("edge write failed",
				"entity_type", spec.Type, "id", id, "rel", edge.Rel, "error", err)
			return false
		}
	}
	return true
}

// deriveEdges builds the edges a record yields under its spec's rules.
// Rules whose endpoint identifiers are absent are skipped.
func (e *Engine) deriveEdges(spec EntitySpec, rec Record) []Edge {
	selfID := rec.StringField(spec.KeyField)
	edges := make([]Edge, 0, len(spec.Edges))
	for _, rule := range spec.Edges {
		edge := Edge{Rel: rule.Rel}

		if rule.FromField == "" {
			edge.FromLabel, edge.FromKey, edge.FromID = spec.Label, spec.KeyField, selfID
		} else {
			edge.FromLabel, edge.FromKey = rule.FromLabel, rule.FromKey
			edge.FromID = rec.StringField(rule.FromField)
		}
		if rule.ToField == "" {
			edge.ToLabel, edge.ToKey, edge.ToID = spec.Label, spec.KeyField, selfID
		} else {
			edge.ToLabel, edge.ToKey = rule.ToLabel, rule.ToKey
			edge.ToID = rec.StringField(rule.ToField)
		}
		if edge.FromID == "" || edge.ToID == "" {
			continue
		}

		if len(rule.PropFields) > 0 {
			edge.Props = make(map[string]any, len(rule.PropFields))
			for _, field := range rule.PropFields {
				if value, ok := rec[field]; ok && value != nil {
					if scalar, err := toScalar(value); err == nil {
						edge.Props[field] = scalar
					}
				}
			}
		}
		edges = append(edges, edge)
	}
	return edges
}

// BulkSync fetches every record of one entity type and projects them
// through a bounded worker pool. It returns the number of records that
// synchronized successfully; fetch failures yield zero.
func (e *Engine) BulkSync(ctx context.Context, entityType string) int {
	spec, ok := e.registry.Spec(entityType)
	if !ok {
		e.logger.Warn("unknown entity type", "entity_type", entityType)
		return 0
	}
	reader, ok := e.readers[entityType]
	if !ok {
		e.logger.Warn("no reader for entity type", "entity_type", entityType)
		return 0
	}

	result, err := reader.GetAll(ctx)
	if err != nil {
		e.logger.Error("bulk fetch failed",
			"entity_type", entityType, "error", err)
		return 0
	}
	items := Collect(result)

	// Cancellation stops scheduling new records; writes already in
	// flight run to completion under their own timeout.
	writeCtx := context.WithoutCancel(ctx)

	var synced atomic.Int64
	group := new(errgroup.Group)
	group.SetLimit(e.workers)
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		item := item
		group.Go(func() error {
			if e.syncRecord(writeCtx, spec, item) {
				synced.Add(1)
			}
			return nil
		})
	}
	// Workers never return errors; Wait only fences the pool.
	_ = group.Wait()

	count := int(synced.Load())
	e.logger.Info("bulk sync finished",
		"entity_type", entityType, "total", len(items), "synced", count)
	return count
}

// BulkSyncAll projects every registered entity type in dependency
// order, then optionally reconciles ontology instance links. Counts
// are returned per type, including types cut short by cancellation.
// Only cancellation and reconciliation failures surface as errors.
func (e *Engine) BulkSyncAll(ctx context.Context, resyncOntology bool) (map[string]int, error) {
	runID := uuid.New().String()
	logger := e.logger.With("run_id", runID)
	logger.Info("bulk sync starting", "entity_types", len(e.registry.Order()))

	counts := make(map[string]int)
	for _, entityType := range e.registry.Order() {
		if err := ctx.Err(); err != nil {
			logger.Warn("bulk sync cancelled", "next_entity_type", entityType)
			return counts, err
		}
		counts[entityType] = e.BulkSync(ctx, entityType)
	}

	if resyncOntology && e.reconciler != nil {
		linked, err := e.reconciler.ReconcileInstances(ctx)
		if err != nil {
			logger.Error("ontology reconciliation failed", "error", err)
			return counts, err
		}
		logger.Info("ontology reconciled", "instances_linked", linked)
	}

	logger.Info("bulk sync complete")
	return counts, nil
}
