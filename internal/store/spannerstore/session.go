package spannerstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/pkg/committer"
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

	stmt := query.From(table).Where(query.Eq(keyColumn, key)).Limit(1).Build(query.Spanner)
	iter := s.store.client.Single().Query(ctx, stmt.Spanner())
	defer iter.Stop()

	row, err := iter.Next()
	if errors.Is(err, iterator.Done) || spanner.ErrCode(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s/%s", gateway.ErrNotFound, table, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return decodeRow(row)
}

// SaveChanges plans and buffers all staged writes in one read-write
// transaction. The count is the number of record mutations; outbox rows are
// not counted.
func (s *session) SaveChanges(ctx context.Context) (int64, error) {
	if err := s.CheckOpen(); err != nil {
		return 0, err
	}
	if s.Changes().IsEmpty() {
		return 0, nil
	}

	var count int64
	err := s.store.committer.ApplyWithReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*committer.CommitPlan, error) {
		built, err := s.store.build(ctx, s.Changes(), txnExists(txn))
		if err != nil {
			return nil, err
		}
		count = built.count
		return built.plan, nil
	})
	if err != nil {
		return 0, err
	}

	s.Changes().Reset()
	return count, nil
}

func (s *session) Close() error {
	s.MarkClosed()
	return nil
}

func txnExists(txn *spanner.ReadWriteTransaction) existsFunc {
	return func(ctx context.Context, table, keyColumn, key string) (bool, error) {
		_, err := txn.ReadRow(ctx, table, spanner.Key{key}, []string{keyColumn})
		if spanner.ErrCode(err) == codes.NotFound {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to read %s/%s: %w", table, key, err)
		}
		return true, nil
	}
}
