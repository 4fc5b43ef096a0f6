package spannerstore

import (
	"context"
	"sort"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/models/m_outbox"
	"github.com/light-bringer/syncable/internal/pkg/committer"
)

// existsFunc reports whether a row is stored.
type existsFunc func(ctx context.Context, table, keyColumn, key string) (bool, error)

// eventPayload is the JSON body of an outbox event.
type eventPayload struct {
	Table  string   `json:"table"`
	Key    string   `json:"key"`
	Fields []string `json:"fields,omitempty"`
}

type builtPlan struct {
	plan   *committer.CommitPlan
	count  int64
	events []*m_outbox.Data
}

// build turns the staged changes into mutations. Updates and deletes of rows
// that exist are planned; the rest are skipped and not counted.
func (s *Store) build(ctx context.Context, changes *gateway.ChangeSet, exists existsFunc) (*builtPlan, error) {
	inserts, err := changes.Inserts()
	if err != nil {
		return nil, err
	}
	updates, err := changes.Updates()
	if err != nil {
		return nil, err
	}

	out := &builtPlan{plan: committer.NewPlan()}

	for _, w := range inserts {
		cols, vals := columnsAndValues(w, false)
		out.plan.Add(spanner.Insert(w.Table, cols, vals))
		out.addEvent(s, m_outbox.EventRecordAdded, w)
	}

	for _, w := range updates {
		ok, err := exists(ctx, w.Table, w.KeyColumn, w.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		cols, vals := columnsAndValues(w, true)
		out.plan.Add(spanner.Update(w.Table, cols, vals))
		out.addEvent(s, m_outbox.EventRecordSynced, w)
	}

	for _, w := range changes.Deletes() {
		ok, err := exists(ctx, w.Table, w.KeyColumn, w.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out.plan.Add(spanner.Delete(w.Table, spanner.Key{w.Key}))
		out.addEvent(s, m_outbox.EventRecordRemoved, w)
	}

	return out, nil
}

func (b *builtPlan) addEvent(s *Store, eventType string, w gateway.Write) {
	b.count++
	if !s.outboxEnabled {
		return
	}
	data := &m_outbox.Data{
		EventID:     s.newID(),
		EventType:   eventType,
		AggregateID: w.Table + "/" + w.Key,
		Payload: spanner.NullJSON{
			Value: eventPayload{Table: w.Table, Key: w.Key, Fields: w.Fields},
			Valid: true,
		},
		Status: m_outbox.StatusPending,
	}
	b.events = append(b.events, data)
	b.plan.Add(s.outbox.InsertMut(data))
}

// columnsAndValues orders columns by name. Updates lead with the key column
// because Spanner locates the row by it.
func columnsAndValues(w gateway.Write, withKey bool) ([]string, []interface{}) {
	names := make([]string, 0, len(w.Columns)+1)
	for col := range w.Columns {
		if col == w.KeyColumn {
			continue
		}
		names = append(names, col)
	}
	sort.Strings(names)

	cols := make([]string, 0, len(names)+1)
	vals := make([]interface{}, 0, len(names)+1)
	if withKey || hasColumn(w.Columns, w.KeyColumn) {
		cols = append(cols, w.KeyColumn)
		vals = append(vals, w.Key)
	}
	for _, col := range names {
		cols = append(cols, col)
		vals = append(vals, w.Columns[col])
	}
	return cols, vals
}

func hasColumn(m map[string]any, col string) bool {
	_, ok := m[col]
	return ok
}
