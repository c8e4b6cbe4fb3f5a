package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leductinjl/backend/internal/types"
)

type examRow struct {
	ExamID    string `db:"exam_id"`
	ExamName  string `db:"exam_name"`
	StartDate *string
	Attempts  int
	internal  string
}

func TestNormalize(t *testing.T) {
	t.Run("map and struct shapes produce identical records", func(t *testing.T) {
		start := "2025-06-01"
		fromStruct, err := Normalize(examRow{
			ExamID:    "E1",
			ExamName:  "Midterm",
			StartDate: &start,
			Attempts:  2,
		})
		require.NoError(t, err)

		fromMap, err := Normalize(map[string]any{
			"exam_id":    "E1",
			"exam_name":  "Midterm",
			"start_date": "2025-06-01",
			"attempts":   2,
		})
		require.NoError(t, err)

		assert.Equal(t, fromMap, fromStruct)
	})

	t.Run("nil pointer fields are dropped", func(t *testing.T) {
		rec, err := Normalize(examRow{ExamID: "E2", ExamName: "Final"})
		require.NoError(t, err)
		_, present := rec["start_date"]
		assert.False(t, present)
	})

	t.Run("unexported fields are ignored", func(t *testing.T) {
		rec, err := Normalize(examRow{ExamID: "E3", internal: "hidden"})
		require.NoError(t, err)
		_, present := rec["internal"]
		assert.False(t, present)
	})

	t.Run("pointer to struct is dereferenced", func(t *testing.T) {
		rec, err := Normalize(&examRow{ExamID: "E4"})
		require.NoError(t, err)
		assert.Equal(t, "E4", rec.StringField("exam_id"))
	})

	t.Run("nil input fails with mapping code", func(t *testing.T) {
		_, err := Normalize(nil)
		require.Error(t, err)
		assert.Equal(t, types.SYNC_MAPPING_FAILED, types.CodeOf(err))
	})

	t.Run("scalar input fails with mapping code", func(t *testing.T) {
		_, err := Normalize(42)
		require.Error(t, err)
		assert.Equal(t, types.SYNC_MAPPING_FAILED, types.CodeOf(err))
	})
}

func TestRecordStringField(t *testing.T) {
	rec := Record{
		"string_id": "C1",
		"int_id":    int64(17),
		"float_id":  float64(17),
		"frac":      1.5,
		"missing":   nil,
	}

	assert.Equal(t, "C1", rec.StringField("string_id"))
	assert.Equal(t, "17", rec.StringField("int_id"))
	assert.Equal(t, "17", rec.StringField("float_id"))
	assert.Equal(t, "1.5", rec.StringField("frac"))
	assert.Equal(t, "", rec.StringField("missing"))
	assert.Equal(t, "", rec.StringField("absent"))
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ExamID":     "exam_id",
		"StartDate":  "start_date",
		"Name":       "name",
		"SchoolID":   "school_id",
		"HTTPStatus": "http_status",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
