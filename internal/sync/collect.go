package sync

import (
	"reflect"

	"github.com/leductinjl/backend/internal/relational"
)

// Collect flattens a bulk fetch result into its items regardless of
// shape. Readers may return a bare slice, a counted page, or nil; all
// three normalize to the same item list so bulk synchronization never
// depends on which shape a source produced.
func Collect(result any) []any {
	switch v := result.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []map[string]any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items
	case []Record:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items
	case relational.Page:
		return v.Items
	case *relational.Page:
		if v == nil {
			return nil
		}
		return v.Items
	}

	rv := reflect.ValueOf(result)
	if rv.Kind() == reflect.Slice {
		items := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
		return items
	}
	return []any{result}
}
