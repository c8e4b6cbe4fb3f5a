package sync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/leductinjl/backend/internal/types"
)

// Node is the graph representation of one source record: a label, the
// name of its key property, the identifier, and a flat map of scalar
// properties.
type Node struct {
	Label string
	Key   string
	ID    string
	Props map[string]any
}

// MapNode transforms a normalized record into its node representation.
//
// Rules:
//   - the spec's key field must be present and non-empty, otherwise the
//     mapping fails (SYNC_MAPPING_FAILED);
//   - nil values are omitted rather than stored as null markers;
//   - structured values (maps, slices) are JSON serialized, since graph
//     store properties are scalar-only;
//   - strings and scalars pass through unchanged.
func MapNode(spec EntitySpec, record Record) (Node, error) {
	id := record.StringField(spec.KeyField)
	if id == "" {
		return Node{}, types.NewError(types.SYNC_MAPPING_FAILED,
			fmt.Sprintf("required identifier %q missing for %s", spec.KeyField, spec.Type))
	}

	props := make(map[string]any, len(record))
	for name, value := range record {
		if value == nil {
			continue
		}
		scalar, err := toScalar(value)
		if err != nil {
			return Node{}, types.WrapError(types.SYNC_MAPPING_FAILED,
				fmt.Sprintf("cannot serialize property %q for %s %s", name, spec.Type, id), err)
		}
		props[name] = scalar
	}
	// The key property is written by the MERGE clause, not the SET map.
	delete(props, spec.KeyField)

	return Node{
		Label: spec.Label,
		Key:   spec.KeyField,
		ID:    id,
		Props: props,
	}, nil
}

// toScalar converts a property value to a form the graph store accepts.
// Maps and slices become canonical JSON strings.
func toScalar(value any) (any, error) {
	switch v := value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case map[string]any, []any, []string, []int, []float64, []map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	default:
		// Remaining structured shapes (nested structs, typed maps) are
		// serialized the same way.
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	}
}
