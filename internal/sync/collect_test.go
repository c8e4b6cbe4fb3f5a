package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leductinjl/backend/internal/relational"
)

func TestCollect(t *testing.T) {
	row := map[string]any{"exam_id": "E1"}

	t.Run("bare item slice", func(t *testing.T) {
		items := Collect([]any{row, row})
		assert.Len(t, items, 2)
	})

	t.Run("map slice", func(t *testing.T) {
		items := Collect([]map[string]any{row})
		assert.Len(t, items, 1)
		assert.Equal(t, row, items[0])
	})

	t.Run("counted page", func(t *testing.T) {
		items := Collect(relational.Page{Total: 2, Items: []any{row, row}})
		assert.Len(t, items, 2)
	})

	t.Run("page pointer", func(t *testing.T) {
		items := Collect(&relational.Page{Total: 1, Items: []any{row}})
		assert.Len(t, items, 1)
	})

	t.Run("typed slice via reflection", func(t *testing.T) {
		items := Collect([]examRow{{ExamID: "E1"}, {ExamID: "E2"}})
		assert.Len(t, items, 2)
	})

	t.Run("nil is empty", func(t *testing.T) {
		assert.Empty(t, Collect(nil))
	})

	t.Run("single item wraps into one-element list", func(t *testing.T) {
		items := Collect(row)
		assert.Len(t, items, 1)
	})
}
