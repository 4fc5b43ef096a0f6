package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/pkg/query"
)

type session struct {
	gateway.Staging
	store *Store
}

func newSession(s *Store) *session {
	return &session{store: s}
}

func (s *session) Find(ctx context.Context, table, keyColumn, key string) (gateway.Row, error) {
	if err := s.CheckOpen(); err != nil {
		return nil, err
	}

	stmt := query.From(table).Where(query.Eq(keyColumn, key)).Build(s.store.dialect)
	rows, err := s.store.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s/%s", gateway.ErrNotFound, table, key)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	row := make(gateway.Row, len(cols))
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row, nil
}

// SaveChanges runs every staged write in one transaction and returns the sum
// of rows affected.
func (s *session) SaveChanges(ctx context.Context) (count int64, err error) {
	if err := s.CheckOpen(); err != nil {
		return 0, err
	}

	stmts, err := s.statements()
	if err != nil {
		return 0, err
	}
	if len(stmts) == 0 {
		return 0, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	for _, stmt := range stmts {
		res, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return 0, fmt.Errorf("exec %q: %w", stmt.SQL, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		count += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.Changes().Reset()
	return count, nil
}

// statements renders inserts, then updates, then deletes.
func (s *session) statements() ([]query.Statement, error) {
	d := s.store.dialect

	inserts, err := s.Changes().Inserts()
	if err != nil {
		return nil, err
	}
	updates, err := s.Changes().Updates()
	if err != nil {
		return nil, err
	}

	var out []query.Statement
	for _, w := range inserts {
		out = append(out, query.InsertInto(w.Table).ValueMap(w.Columns).Build(d))
	}
	for _, w := range updates {
		out = append(out, query.Update(w.Table).SetMap(w.Columns).Where(query.Eq(w.KeyColumn, w.Key)).Build(d))
	}
	for _, w := range s.Changes().Deletes() {
		out = append(out, query.DeleteFrom(w.Table).Where(query.Eq(w.KeyColumn, w.Key)).Build(d))
	}
	return out, nil
}

func (s *session) Close() error {
	s.MarkClosed()
	return nil
}
