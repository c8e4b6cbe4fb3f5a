package relational

import "context"

// Reader is the read interface the sync engine consumes, one per entity
// type. Implementations may return the full set as a bare collection or
// as a Page carrying both the total count and the items; callers must
// normalize the shape before iterating.
type Reader interface {
	// GetByID returns a single record, or nil when no record matches.
	// The concrete shape may be a map or a typed struct.
	GetByID(ctx context.Context, id string) (any, error)

	// GetAll returns every record of the entity type. The result is a
	// bare collection or a (count, collection) Page.
	GetAll(ctx context.Context) (any, error)
}

// Page is the (count, collection) fetch shape some readers return.
type Page struct {
	Total int
	Items []any
}

// ReaderSet maps entity type names to their readers.
type ReaderSet map[string]Reader
