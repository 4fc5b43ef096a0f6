package spannerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/syncable/internal/models/m_outbox"
	"github.com/light-bringer/syncable/internal/pkg/query"
)

var eventColumns = []string{
	m_outbox.EventID,
	m_outbox.EventType,
	m_outbox.AggregateID,
	m_outbox.Payload,
	m_outbox.Status,
	m_outbox.CreatedAt,
}

func recentEventsQuery(limit int64) query.Statement {
	return query.From(m_outbox.TableName).
		Select(eventColumns...).
		OrderBy(m_outbox.CreatedAt, query.Desc).
		Limit(limit).
		Build(query.Spanner)
}

// ListEvents returns the newest outbox events, newest first.
func (s *Store) ListEvents(ctx context.Context, limit int64) ([]m_outbox.Data, error) {
	iter := s.client.Single().Query(ctx, recentEventsQuery(limit).Spanner())
	defer iter.Stop()

	var events []m_outbox.Data
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}

		var d m_outbox.Data
		var createdAt spanner.NullTime
		if err := row.Columns(&d.EventID, &d.EventType, &d.AggregateID, &d.Payload, &d.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		d.CreatedAt = createdAt.Time
		events = append(events, d)
	}
	return events, nil
}

func purgeStatements(before time.Time) (count, purge query.Statement) {
	older := query.Lt(m_outbox.CreatedAt, before)
	count = query.From(m_outbox.TableName).Where(older).Count().Build(query.Spanner)
	purge = query.DeleteFrom(m_outbox.TableName).Where(older).Build(query.Spanner)
	return count, purge
}

// PurgeEvents deletes outbox events created before the cutoff and reports how
// many matched. With dryRun nothing is deleted.
func (s *Store) PurgeEvents(ctx context.Context, before time.Time, dryRun bool) (int64, error) {
	countStmt, purgeStmt := purgeStatements(before)

	if dryRun {
		iter := s.client.Single().Query(ctx, countStmt.Spanner())
		defer iter.Stop()
		row, err := iter.Next()
		if err != nil {
			return 0, fmt.Errorf("failed to count events: %w", err)
		}
		var n int64
		if err := row.Columns(&n); err != nil {
			return 0, fmt.Errorf("failed to parse count: %w", err)
		}
		return n, nil
	}

	var deleted int64
	_, err := s.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		n, err := txn.Update(ctx, purgeStmt.Spanner())
		if err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cleanup transaction failed: %w", err)
	}
	return deleted, nil
}
