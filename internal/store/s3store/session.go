package s3store

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

func (s *session) Find(ctx context.Context, table, _, key string) (gateway.Row, error) {
	if err := s.CheckOpen(); err != nil {
		return nil, err
	}
	row, ok, err := s.store.get(ctx, table, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", gateway.ErrNotFound, table, key)
	}
	return row, nil
}

// SaveChanges writes documents one by one. S3 has no multi-object
// transaction: a failure leaves earlier writes of the same call in place.
// Updates read the document, merge the modified columns and write it back; a
// missing document counts zero.
func (s *session) SaveChanges(ctx context.Context) (int64, error) {
	if err := s.CheckOpen(); err != nil {
		return 0, err
	}

	inserts, err := s.Changes().Inserts()
	if err != nil {
		return 0, err
	}
	updates, err := s.Changes().Updates()
	if err != nil {
		return 0, err
	}

	var count int64
	for _, w := range inserts {
		exists, err := s.store.exists(ctx, w.Table, w.Key)
		if err != nil {
			return count, err
		}
		if exists {
			return count, fmt.Errorf("%w: %s/%s", ErrDuplicateKey, w.Table, w.Key)
		}
		if err := s.store.put(ctx, w.Table, w.Key, w.Columns); err != nil {
			return count, err
		}
		count++
	}

	for _, w := range updates {
		row, ok, err := s.store.get(ctx, w.Table, w.Key)
		if err != nil {
			return count, err
		}
		if !ok {
			continue
		}
		for col, v := range w.Columns {
			row[col] = v
		}
		if err := s.store.put(ctx, w.Table, w.Key, row); err != nil {
			return count, err
		}
		count++
	}

	for _, w := range s.Changes().Deletes() {
		exists, err := s.store.exists(ctx, w.Table, w.Key)
		if err != nil {
			return count, err
		}
		if !exists {
			continue
		}
		if err := s.store.delete(ctx, w.Table, w.Key); err != nil {
			return count, err
		}
		count++
	}

	s.Changes().Reset()
	return count, nil
}

func (s *session) Close() error {
	s.MarkClosed()
	return nil
}
