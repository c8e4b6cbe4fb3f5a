// Package sync projects relational entities into the knowledge graph.
// It contains the record normalization, node mapping, relationship
// resolution, graph upsert, and orchestration layers.
package sync

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/leductinjl/backend/internal/types"
)

// Record is the canonical, loosely-typed shape of one source entity.
// Both typed structs and key/value maps normalize into it at the fetch
// boundary; everything downstream consumes only Record.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// StringField returns the record field converted to a string identifier.
// Numeric values are rendered without a decimal point where possible so
// identifiers stay stable across fetch paths. Returns "" when the field
// is absent or nil.
func (r Record) StringField(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", s)
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	case float32:
		if s == float32(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Normalize converts either a typed struct (by `db` tag, falling back to
// the snake_case of the field name) or a key/value map into a Record.
// Nil pointer fields are dropped; non-nil pointers are dereferenced.
// Both shapes of the same data normalize to identical records.
func Normalize(v any) (Record, error) {
	if v == nil {
		return nil, types.NewError(types.SYNC_MAPPING_FAILED, "record is nil")
	}

	switch m := v.(type) {
	case Record:
		return m.Clone(), nil
	case map[string]any:
		return Record(m).Clone(), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, types.NewError(types.SYNC_MAPPING_FAILED, "record is a nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, types.NewError(types.SYNC_MAPPING_FAILED,
			fmt.Sprintf("unsupported record shape %T", v))
	}

	record := make(Record)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = snakeCase(field.Name)
		}

		value := rv.Field(i)
		if value.Kind() == reflect.Pointer {
			if value.IsNil() {
				continue
			}
			value = value.Elem()
		}

		record[name] = value.Interface()
	}

	return record, nil
}

// snakeCase converts an exported Go field name to its snake_case column
// form, e.g. "ExamID" -> "exam_id", "StartDate" -> "start_date".
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && !unicode.IsUpper(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
