package memory

import (
	"context"
	"fmt"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
)

type session struct {
	gateway.Staging
	store *Store
}

func newSession(s *Store) *session {
	return &session{store: s}
}

func (s *session) Find(_ context.Context, table, _, key string) (gateway.Row, error) {
	if err := s.CheckOpen(); err != nil {
		return nil, err
	}
	row, ok := s.store.Get(table, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", gateway.ErrNotFound, table, key)
	}
	return row, nil
}

// SaveChanges builds every write first so that a mapping error leaves the
// store untouched, then applies them under the store lock.
func (s *session) SaveChanges(ctx context.Context) (int64, error) {
	if err := s.CheckOpen(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	onSave, failure := s.store.takeHooks()
	if onSave != nil {
		onSave()
	}
	if failure != nil {
		return 0, failure
	}

	updates, err := s.Changes().Updates()
	if err != nil {
		return 0, err
	}
	inserts, err := s.Changes().Inserts()
	if err != nil {
		return 0, err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, w := range inserts {
		if _, exists := s.store.tables[w.Table][w.Key]; exists {
			return 0, fmt.Errorf("%w: %s/%s", ErrDuplicateKey, w.Table, w.Key)
		}
	}

	var count int64
	for _, w := range inserts {
		s.store.tableLocked(w.Table)[w.Key] = w.Columns
		count++
	}
	for _, w := range updates {
		row, ok := s.store.tables[w.Table][w.Key]
		if !ok {
			continue
		}
		for col, v := range w.Columns {
			row[col] = v
		}
		count++
	}
	for _, w := range s.Changes().Deletes() {
		t := s.store.tables[w.Table]
		if _, ok := t[w.Key]; ok {
			delete(t, w.Key)
			count++
		}
	}

	s.Changes().Reset()
	return count, nil
}

func (s *session) Close() error {
	if s.MarkClosed() {
		s.store.markClosed()
	}
	return nil
}
