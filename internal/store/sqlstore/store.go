// Package sqlstore implements gateway sessions on database/sql. SQLite runs on
// the pure Go modernc driver and Postgres on pgx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/pkg/query"
)

const (
	defaultSQLitePath = "syncable.db"
	defaultDSN        = "postgres://localhost/syncable?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store hands out sessions on one database handle.
type Store struct {
	db      *sql.DB
	dialect query.Dialect
}

// New wraps an open database.
func New(db *sql.DB, dialect query.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// OpenSQLite opens (creating if needed) a SQLite database at path. Use
// ":memory:" for a private in-memory database.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	openMu.Lock()
	db, err := sqlOpen("sqlite", path)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)
	return New(db, query.SQLite), nil
}

// OpenPostgres connects to Postgres using dsn (falls back to defaultDSN).
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen("pgx", dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db, query.Postgres), nil
}

// Migrate executes each DDL statement in order.
func (s *Store) Migrate(ctx context.Context, ddl ...string) error {
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// Factory returns a gateway.Factory producing sessions on s.
func (s *Store) Factory() gateway.Factory {
	return func(context.Context) (gateway.Session, error) {
		return newSession(s), nil
	}
}

// Dialect reports the placeholder syntax in use.
func (s *Store) Dialect() query.Dialect { return s.dialect }

// DB exposes the underlying sql.DB for tests and tooling.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }
