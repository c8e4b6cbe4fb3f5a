package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leductinjl/backend/internal/graph"
	"github.com/leductinjl/backend/internal/types"
)

// Initializer prepares the graph for synchronization: uniqueness
// constraints on every class key, one node per ontology class, and the
// IS_A hierarchy between them. Initialize is idempotent and safe to run
// on every startup.
type Initializer struct {
	client graph.Client
	loader Loader
	logger *slog.Logger
}

// NewInitializer creates an initializer over the given client.
func NewInitializer(client graph.Client, loader Loader, logger *slog.Logger) *Initializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Initializer{client: client, loader: loader, logger: logger}
}

// Initialize loads the class definitions and applies constraints, class
// nodes, and hierarchy links in that order.
func (i *Initializer) Initialize(ctx context.Context) error {
	ontology, err := i.loader.Load()
	if err != nil {
		return types.WrapError(types.SYNC_RECONCILIATION_FAILED,
			"failed to load ontology classes", err)
	}

	if err := i.createConstraints(ctx, ontology); err != nil {
		return err
	}
	if err := i.createClassNodes(ctx, ontology); err != nil {
		return err
	}
	if err := i.linkHierarchy(ctx, ontology); err != nil {
		return err
	}

	i.logger.Info("ontology initialized",
		"classes", len(ontology.Classes), "version", ontology.Version)
	return nil
}

func (i *Initializer) createConstraints(ctx context.Context, o *Ontology) error {
	for _, class := range o.Classes {
		name := constraintName(class.Label)
		cypher := fmt.Sprintf(
			"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			name, class.Label, class.Key)
		if _, err := i.client.ExecuteWrite(ctx, cypher, nil); err != nil {
			return types.WrapRetryableError(types.SYNC_RECONCILIATION_FAILED,
				"failed to create constraint for "+class.Label, err)
		}
	}
	return nil
}

func (i *Initializer) createClassNodes(ctx context.Context, o *Ontology) error {
	for _, class := range o.Classes {
		cypher := fmt.Sprintf(`
MERGE (c:%s:OntologyClass {id: $id})
ON CREATE SET c.created_at = datetime()
SET c.name = $name,
    c.description = $description,
    c.key_property = $key,
    c.updated_at = datetime()`, class.Label)
		params := map[string]any{
			"id":          class.ID,
			"name":        class.Name,
			"description": class.Description,
			"key":         class.Key,
		}
		if _, err := i.client.ExecuteWrite(ctx, cypher, params); err != nil {
			return types.WrapRetryableError(types.SYNC_RECONCILIATION_FAILED,
				"failed to merge class node "+class.ID, err)
		}
	}
	return nil
}

func (i *Initializer) linkHierarchy(ctx context.Context, o *Ontology) error {
	const cypher = `
MATCH (child:OntologyClass {id: $child})
MATCH (parent:OntologyClass {id: $parent})
MERGE (child)-[:IS_A]->(parent)`
	for _, class := range o.Classes {
		if class.Parent == "" {
			continue
		}
		params := map[string]any{"child": class.ID, "parent": class.Parent}
		if _, err := i.client.ExecuteWrite(ctx, cypher, params); err != nil {
			return types.WrapRetryableError(types.SYNC_RECONCILIATION_FAILED,
				"failed to link class "+class.ID+" to parent", err)
		}
	}
	return nil
}

// constraintName derives a stable constraint identifier from a label,
// e.g. "ExamSchedule" -> "exam_schedule_key_unique".
func constraintName(label string) string {
	var b strings.Builder
	for i, r := range label {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteString("_key_unique")
	return b.String()
}
