package relational

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Conn().Exec(`
		CREATE TABLE exam (
			exam_id TEXT PRIMARY KEY,
			exam_name TEXT NOT NULL,
			start_date TEXT
		)
	`)
	require.NoError(t, err)

	_, err = db.Conn().Exec(`
		INSERT INTO exam (exam_id, exam_name, start_date) VALUES
			('E1', 'Midterm', '2024-01-10'),
			('E2', 'Final', NULL)
	`)
	require.NoError(t, err)

	return db
}

func TestTableReader_GetByID(t *testing.T) {
	db := setupTestDB(t)
	reader := NewTableReader(db, "exam", "exam_id")

	result, err := reader.GetByID(context.Background(), "E1")
	require.NoError(t, err)
	require.NotNil(t, result)

	record, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "E1", record["exam_id"])
	assert.Equal(t, "Midterm", record["exam_name"])
	assert.Equal(t, "2024-01-10", record["start_date"])
}

func TestTableReader_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	reader := NewTableReader(db, "exam", "exam_id")

	result, err := reader.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestTableReader_GetAll(t *testing.T) {
	db := setupTestDB(t)
	reader := NewTableReader(db, "exam", "exam_id")

	result, err := reader.GetAll(context.Background())
	require.NoError(t, err)

	page, ok := result.(Page)
	require.True(t, ok)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Items, 2)

	first, ok := page.Items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "E1", first["exam_id"])
	// NULL columns come back as nil, not empty strings.
	second := page.Items[1].(map[string]any)
	assert.Nil(t, second["start_date"])
}

func TestDB_Health(t *testing.T) {
	db := setupTestDB(t)
	status := db.Health(context.Background())
	assert.True(t, status.IsHealthy())
}
