package gateway

import "context"

// Row is a stored record keyed by column name.
type Row map[string]any

// Record is an object a Session can persist. Each tracked field maps onto one
// or more storage columns.
type Record interface {
	// Table names the storage table or collection.
	Table() string
	// KeyColumn names the primary key column.
	KeyColumn() string
	// Key returns the primary key value.
	Key() string
	// Columns returns the column values that persist field.
	Columns(field string) (map[string]any, error)
	// PersistedFields lists every field written on insert.
	PersistedFields() []string
}

// Session is a scoped handle to the external store. Sessions are created per
// sync or removal and must be closed on every exit path.
type Session interface {
	// Attach starts tracking r as an existing, unmodified record.
	Attach(r Record) error
	// MarkModified flags field of an attached record for persistence.
	MarkModified(r Record, field string) error
	// Add stages r for insertion with all of its persisted fields.
	Add(r Record) error
	// Remove stages r for deletion.
	Remove(r Record) error
	// Find loads the row of table whose keyColumn equals key. Returns
	// ErrNotFound when absent.
	Find(ctx context.Context, table, keyColumn, key string) (Row, error)
	// SaveChanges commits everything staged and reports affected rows.
	SaveChanges(ctx context.Context) (int64, error)
	// Close releases the session.
	Close() error
}

// Factory produces a new, independent Session.
type Factory func(ctx context.Context) (Session, error)
