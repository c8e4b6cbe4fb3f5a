package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	order := registry.Order()

	position := make(map[string]int, len(order))
	for i, entityType := range order {
		position[entityType] = i
	}

	t.Run("edge targets come before their sources", func(t *testing.T) {
		assert.Less(t, position["exam_location"], position["exam_room"])
		assert.Less(t, position["exam"], position["exam_schedule"])
		assert.Less(t, position["subject"], position["exam_schedule"])
		assert.Less(t, position["candidate"], position["certificate"])
		assert.Less(t, position["exam"], position["certificate"])
		assert.Less(t, position["score"], position["score_review"])
	})

	t.Run("join entities run last", func(t *testing.T) {
		for _, joinType := range []string{
			"candidate_exam", "education_history", "school_major", "exam_subject",
		} {
			spec, ok := registry.Spec(joinType)
			require.True(t, ok, joinType)
			assert.True(t, spec.EdgeOnly, joinType)
			assert.Greater(t, position[joinType], position["recognition"], joinType)
		}
	})

	t.Run("registration-joined types declare the join field", func(t *testing.T) {
		for _, entityType := range []string{"certificate", "award", "recognition"} {
			spec, ok := registry.Spec(entityType)
			require.True(t, ok, entityType)
			assert.Equal(t, "candidate_exam_id", spec.JoinField, entityType)
		}
	})

	t.Run("every spec has a backing table", func(t *testing.T) {
		for _, entityType := range order {
			spec, _ := registry.Spec(entityType)
			assert.NotEmpty(t, spec.Table, entityType)
		}
	})
}

func TestNewRegistryRejectsBadSpecs(t *testing.T) {
	_, err := NewRegistry([]EntitySpec{{Type: "", KeyField: "id"}})
	assert.Error(t, err)

	_, err = NewRegistry([]EntitySpec{{Type: "exam", Label: "Exam", KeyField: "exam_id"},
		{Type: "exam", Label: "Exam", KeyField: "exam_id"}})
	assert.Error(t, err)

	_, err = NewRegistry([]EntitySpec{{Type: "exam", KeyField: "exam_id"}})
	assert.Error(t, err)
}
