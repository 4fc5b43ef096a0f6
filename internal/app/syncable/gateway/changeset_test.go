package gateway

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	key  string
	vals map[string]any
}

func (r fakeRecord) Table() string     { return "things" }
func (r fakeRecord) KeyColumn() string { return "thing_id" }
func (r fakeRecord) Key() string       { return r.key }

func (r fakeRecord) Columns(field string) (map[string]any, error) {
	v, ok := r.vals[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return map[string]any{field + "_col": v}, nil
}

func (r fakeRecord) PersistedFields() []string { return []string{"a", "b"} }

func TestChangeSet(t *testing.T) {
	r := fakeRecord{key: "k1", vals: map[string]any{"a": 1, "b": "two"}}

	t.Run("updates follow attach order and skip clean records", func(t *testing.T) {
		c := NewChangeSet()
		other := fakeRecord{key: "k2", vals: map[string]any{"a": 9}}
		c.Attach(other)
		c.Attach(r)
		c.Attach(r)
		require.NoError(t, c.MarkModified(r, "b"))
		require.NoError(t, c.MarkModified(r, "a"))
		require.NoError(t, c.MarkModified(r, "b"))

		ws, err := c.Updates()
		require.NoError(t, err)
		require.Len(t, ws, 1)
		assert.Equal(t, Write{
			Table:     "things",
			KeyColumn: "thing_id",
			Key:       "k1",
			Columns:   map[string]any{"a_col": 1, "b_col": "two"},
			Fields:    []string{"b", "a"},
		}, ws[0])
		assert.False(t, c.IsEmpty())
	})

	t.Run("mark requires attach", func(t *testing.T) {
		c := NewChangeSet()
		assert.ErrorIs(t, c.MarkModified(r, "a"), ErrNotAttached)
		assert.True(t, c.IsEmpty())
	})

	t.Run("unknown field surfaces on build", func(t *testing.T) {
		c := NewChangeSet()
		c.Attach(r)
		require.NoError(t, c.MarkModified(r, "zzz"))
		_, err := c.Updates()
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("inserts carry the key column", func(t *testing.T) {
		c := NewChangeSet()
		c.Add(r)
		ws, err := c.Inserts()
		require.NoError(t, err)
		require.Len(t, ws, 1)
		assert.Equal(t, map[string]any{"thing_id": "k1", "a_col": 1, "b_col": "two"}, ws[0].Columns)
	})

	t.Run("deletes and reset", func(t *testing.T) {
		c := NewChangeSet()
		c.Remove(r)
		ds := c.Deletes()
		require.Len(t, ds, 1)
		assert.Equal(t, "k1", ds[0].Key)
		assert.Nil(t, ds[0].Columns)

		c.Reset()
		assert.True(t, c.IsEmpty())
		assert.Empty(t, c.Deletes())
	})

	assert.Equal(t, "things/k1", RecordID(r))
}
