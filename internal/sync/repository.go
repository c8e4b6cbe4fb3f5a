package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/leductinjl/backend/internal/graph"
	"github.com/leductinjl/backend/internal/types"
)

// ErrEdgeEndpointMissing reports that an edge merge matched fewer than
// two endpoints. Callers treat it as a no-op rather than a failure:
// the edge is re-derived on the next pass once both nodes exist.
var ErrEdgeEndpointMissing = errors.New("edge endpoint missing")

func isEndpointMissing(err error) bool {
	return errors.Is(err, ErrEdgeEndpointMissing)
}

// Edge is a typed relationship between two nodes identified by label
// and key property.
type Edge struct {
	Rel       string
	FromLabel string
	FromKey   string
	FromID    string
	ToLabel   string
	ToKey     string
	ToID      string
	Props     map[string]any
}

// GraphWriter persists nodes and edges into the graph. UpsertNode and
// UpsertEdge are idempotent: repeated calls with identical input leave
// the graph unchanged beyond the updated_at timestamp.
type GraphWriter interface {
	UpsertNode(ctx context.Context, node Node) error
	UpsertEdge(ctx context.Context, edge Edge) error
}

// CypherRepository writes nodes and edges through a graph client using
// MERGE semantics keyed on each entity's stable identifier.
type CypherRepository struct {
	client graph.Client
}

// NewCypherRepository creates a repository over the given client.
func NewCypherRepository(client graph.Client) *CypherRepository {
	return &CypherRepository{client: client}
}

// UpsertNode merges the node by label and key, replaces its properties,
// and stamps created_at on first creation and updated_at on every
// write. Every node also carries the OntologyInstance and Thing labels
// so class membership can be reconciled in bulk.
func (r *CypherRepository) UpsertNode(ctx context.Context, node Node) error {
	cypher := fmt.Sprintf(`
MERGE (n:%s {%s: $id})
ON CREATE SET n.created_at = datetime()
SET n += $props,
    n:OntologyInstance,
    n:Thing,
    n.updated_at = datetime()
RETURN n.%s AS id`, node.Label, node.Key, node.Key)

	params := map[string]any{
		"id":    node.ID,
		"props": node.Props,
	}
	if _, err := r.client.ExecuteWrite(ctx, cypher, params); err != nil {
		return types.WrapRetryableError(types.SYNC_GRAPH_WRITE_FAILED,
			fmt.Sprintf("failed to upsert %s %s", node.Label, node.ID), err)
	}
	return nil
}

// UpsertEdge matches both endpoints by label and key and merges the
// relationship between them. When either endpoint is absent the merge
// matches nothing and ErrEdgeEndpointMissing is returned.
func (r *CypherRepository) UpsertEdge(ctx context.Context, edge Edge) error {
	cypher := fmt.Sprintf(`
MATCH (a:%s {%s: $from_id})
MATCH (b:%s {%s: $to_id})
MERGE (a)-[r:%s]->(b)
SET r += $props,
    r.updated_at = datetime()
RETURN count(r) AS affected`,
		edge.FromLabel, edge.FromKey, edge.ToLabel, edge.ToKey, edge.Rel)

	props := edge.Props
	if props == nil {
		props = map[string]any{}
	}
	params := map[string]any{
		"from_id": edge.FromID,
		"to_id":   edge.ToID,
		"props":   props,
	}
	result, err := r.client.ExecuteWrite(ctx, cypher, params)
	if err != nil {
		return types.WrapRetryableError(types.SYNC_GRAPH_WRITE_FAILED,
			fmt.Sprintf("failed to upsert (%s)-[%s]->(%s)", edge.FromLabel, edge.Rel, edge.ToLabel), err)
	}
	// The ungrouped count(r) aggregation always yields one row; a zero
	// count is how a failed endpoint match reports itself.
	if mergedCount(result) == 0 {
		return fmt.Errorf("(%s {%s: %s})-[%s]->(%s {%s: %s}): %w",
			edge.FromLabel, edge.FromKey, edge.FromID,
			edge.Rel,
			edge.ToLabel, edge.ToKey, edge.ToID,
			ErrEdgeEndpointMissing)
	}
	return nil
}

// mergedCount extracts the merged edge count from the affected column.
// Driver versions and fakes disagree on the numeric type, so every
// plausible shape is accepted; an unreadable result falls back to the
// summary counters.
func mergedCount(result graph.QueryResult) int {
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
