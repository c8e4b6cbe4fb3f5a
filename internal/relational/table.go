package relational

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leductinjl/backend/internal/types"
)

// TableReader implements Reader over a single relational table. Rows are
// returned as loosely-typed maps keyed by column name, which is the
// shape the sync engine's normalization step already tolerates.
type TableReader struct {
	db        *DB
	table     string
	keyColumn string
}

// NewTableReader creates a reader for the given table and key column.
func NewTableReader(db *DB, table, keyColumn string) *TableReader {
	return &TableReader{
		db:        db,
		table:     table,
		keyColumn: keyColumn,
	}
}

// GetByID returns the row with the given key as a map, or nil when no
// row matches.
func (r *TableReader) GetByID(ctx context.Context, id string) (any, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", r.table, r.keyColumn)

	rows, err := r.db.conn.QueryContext(ctx, query, id)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED,
			fmt.Sprintf("failed to query %s", r.table), err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// GetAll returns every row of the table as a Page. The page shape keeps
// the total count alongside the items, matching how the wider query
// layer reports list results.
func (r *TableReader) GetAll(ctx context.Context) (any, error) {
	query := fmt.Sprintf("SELECT * FROM %s", r.table)

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED,
			fmt.Sprintf("failed to query %s", r.table), err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	items := make([]any, len(records))
	for i, rec := range records {
		items[i] = rec
	}
	return Page{Total: len(items), Items: items}, nil
}

// scanRows converts a result set into maps keyed by column name.
// []byte values are converted to string so downstream serialization
// stays stable.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, types.WrapError(types.DB_SCAN_FAILED, "failed to read columns", err)
	}

	var records []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, types.WrapError(types.DB_SCAN_FAILED, "failed to scan row", err)
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				record[col] = string(v)
			default:
				record[col] = v
			}
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_SCAN_FAILED, "row iteration failed", err)
	}
	return records, nil
}
