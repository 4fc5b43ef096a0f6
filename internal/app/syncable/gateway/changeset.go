package gateway

import (
	"fmt"
)

// Write is one staged row change.
type Write struct {
	Table     string
	KeyColumn string
	Key       string
	// Columns holds the values to write. Empty for deletes.
	Columns map[string]any
	// Fields lists the tracked fields behind Columns, in marking order.
	Fields []string
}

type entry struct {
	record   Record
	modified []string
	seen     map[string]struct{}
}

// ChangeSet is the staging area shared by session implementations. It is not
// safe for concurrent use; a session has a single owner.
type ChangeSet struct {
	attached map[string]*entry
	order    []string
	added    []Record
	removed  []Record
}

// NewChangeSet returns an empty ChangeSet.
func NewChangeSet() *ChangeSet {
	c := &ChangeSet{}
	c.Reset()
	return c
}

// Attach starts tracking r. Attaching twice is a no-op.
func (c *ChangeSet) Attach(r Record) {
	id := RecordID(r)
	if _, ok := c.attached[id]; ok {
		return
	}
	c.attached[id] = &entry{record: r, seen: make(map[string]struct{})}
	c.order = append(c.order, id)
}

// MarkModified flags field of an attached record.
func (c *ChangeSet) MarkModified(r Record, field string) error {
	e, ok := c.attached[RecordID(r)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAttached, RecordID(r))
	}
	if _, dup := e.seen[field]; !dup {
		e.seen[field] = struct{}{}
		e.modified = append(e.modified, field)
	}
	return nil
}

// Add stages r for insertion.
func (c *ChangeSet) Add(r Record) { c.added = append(c.added, r) }

// Remove stages r for deletion.
func (c *ChangeSet) Remove(r Record) { c.removed = append(c.removed, r) }

// Updates maps every attached record with modified fields onto its columns,
// in attach order. Records without modifications are skipped.
func (c *ChangeSet) Updates() ([]Write, error) {
	var out []Write
	for _, id := range c.order {
		e := c.attached[id]
		if len(e.modified) == 0 {
			continue
		}
		cols, err := columnsOf(e.record, e.modified)
		if err != nil {
			return nil, err
		}
		out = append(out, newWrite(e.record, cols, e.modified))
	}
	return out, nil
}

// Inserts maps every added record onto all of its persisted columns plus the
// key column.
func (c *ChangeSet) Inserts() ([]Write, error) {
	out := make([]Write, 0, len(c.added))
	for _, r := range c.added {
		fields := r.PersistedFields()
		cols, err := columnsOf(r, fields)
		if err != nil {
			return nil, err
		}
		cols[r.KeyColumn()] = r.Key()
		out = append(out, newWrite(r, cols, fields))
	}
	return out, nil
}

// Deletes lists the staged removals.
func (c *ChangeSet) Deletes() []Write {
	out := make([]Write, 0, len(c.removed))
	for _, r := range c.removed {
		out = append(out, newWrite(r, nil, nil))
	}
	return out
}

// IsEmpty reports whether nothing would be written.
func (c *ChangeSet) IsEmpty() bool {
	if len(c.added) > 0 || len(c.removed) > 0 {
		return false
	}
	for _, e := range c.attached {
		if len(e.modified) > 0 {
			return false
		}
	}
	return true
}

// Reset drops everything staged.
func (c *ChangeSet) Reset() {
	c.attached = make(map[string]*entry)
	c.order = nil
	c.added = nil
	c.removed = nil
}

// RecordID identifies r within a store as table/key.
func RecordID(r Record) string {
	return fmt.Sprintf("%s/%s", r.Table(), r.Key())
}

func newWrite(r Record, cols map[string]any, fields []string) Write {
	return Write{
		Table:     r.Table(),
		KeyColumn: r.KeyColumn(),
		Key:       r.Key(),
		Columns:   cols,
		Fields:    append([]string(nil), fields...),
	}
}

func columnsOf(r Record, fields []string) (map[string]any, error) {
	cols := make(map[string]any)
	for _, f := range fields {
		c, err := r.Columns(f)
		if err != nil {
			return nil, err
		}
		for k, v := range c {
			cols[k] = v
		}
	}
	return cols, nil
}
