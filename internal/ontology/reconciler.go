package ontology

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/leductinjl/backend/internal/graph"
	"github.com/leductinjl/backend/internal/types"
)

// Reconciler links instance nodes to their ontology classes. Instance
// nodes are written during synchronization without class links; a
// reconciliation pass after bulk loads restores INSTANCE_OF for every
// instance, including ones created before the class node existed.
type Reconciler struct {
	client graph.Client
	loader Loader
	logger *slog.Logger
}

// NewReconciler creates a reconciler over the given client.
func NewReconciler(client graph.Client, loader Loader, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{client: client, loader: loader, logger: logger}
}

// ReconcileInstances merges an INSTANCE_OF link from every instance
// node to its class node, per class, and returns the total number of
// links now in place. Failure on any class aborts the pass: an
// incomplete ontology layer is worse than a stale one, since queries
// over class membership would silently miss instances.
func (r *Reconciler) ReconcileInstances(ctx context.Context) (int, error) {
	ontology, err := r.loader.Load()
	if err != nil {
		return 0, types.WrapError(types.SYNC_RECONCILIATION_FAILED,
			"failed to load ontology classes", err)
	}

	total := 0
	for _, class := range ontology.InstanceClasses() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		result, err := r.client.ExecuteWrite(ctx,
			instanceOfQuery(class.Label), map[string]any{"class_id": class.ID})
		if err != nil {
			return total, types.WrapRetryableError(types.SYNC_RECONCILIATION_FAILED,
				"failed to reconcile instances of "+class.Label, err)
		}

		affected := affectedCount(result)
		total += affected
		r.logger.Debug("class reconciled",
			"class", class.ID, "instances", affected)
	}

	r.logger.Info("ontology instances reconciled", "links", total)
	return total, nil
}

func instanceOfQuery(label string) string {
	return `
MATCH (i:` + label + `:OntologyInstance)
MATCH (c:OntologyClass {id: $class_id})
MERGE (i)-[r:INSTANCE_OF]->(c)
RETURN count(r) AS affected`
}

// affectedCount extracts the merged link count from a query result.
// Driver versions and fakes disagree on the numeric type, so every
// plausible shape is accepted; an unreadable result falls back to the
// summary counters.
func affectedCount(result graph.QueryResult) int {
	if len(result.Records) > 0 {
		if raw, ok := result.Records[0]["affected"]; ok {
			switch v := raw.(type) {
			case int64:
				return int(v)
			case int:
				return v
			case float64:
				return int(v)
			case string:
				if n, err := strconv.Atoi(v); err == nil {
					return n
				}
			}
		}
	}
	return result.Summary.RelationshipsCreated
}
