package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/app/syncable/tracker"
	"github.com/light-bringer/syncable/internal/pkg/fields"
	"github.com/light-bringer/syncable/internal/store/memory"
)

const noteTable = "notes"

type note struct {
	*tracker.Object
	id   string
	text string
	set  *fields.Set
}

func newNote(id string, gw *gateway.Gateway) *note {
	n := &note{id: id}
	n.set = fields.NewSet(fields.Define("text", func() string { return n.text }, func(v string) { n.text = v }))
	n.Object = tracker.New(n, gw, tracker.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return n
}

func (n *note) SetText(v string) error { return tracker.Set(n.Object, &n.text, v, "text") }

func (n *note) FieldSet() *fields.Set     { return n.set }
func (n *note) Table() string             { return noteTable }
func (n *note) KeyColumn() string         { return "id" }
func (n *note) Key() string               { return n.id }
func (n *note) PersistedFields() []string { return []string{"text"} }

func (n *note) Columns(field string) (map[string]any, error) {
	if field == "text" {
		return map[string]any{"text": n.text}, nil
	}
	return nil, fmt.Errorf("%w: %s", gateway.ErrUnknownField, field)
}

func seededStore(keys ...string) (*memory.Store, *gateway.Gateway) {
	store := memory.NewStore()
	for _, k := range keys {
		store.Put(noteTable, k, gateway.Row{"id": k, "text": ""})
	}
	return store, gateway.New(store.Factory())
}

func TestCollection_Membership(t *testing.T) {
	c := New[*note](nil)
	a, b := newNote("a", nil), newNote("b", nil)

	assert.True(t, c.IsEmpty())
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []*note{a, b}, c.Items())

	assert.ErrorIs(t, c.Add(nil), ErrNilItem)

	assert.True(t, c.Remove(a))
	assert.False(t, c.Remove(a))
	assert.False(t, c.Remove(nil))
	assert.Equal(t, []*note{b}, c.Items())
}

func TestCollection_RemoveFromStore(t *testing.T) {
	ctx := context.Background()

	t.Run("stored item is deleted and dropped", func(t *testing.T) {
		store, gw := seededStore("a")
		c := New[*note](gw)
		a := newNote("a", gw)
		require.NoError(t, c.Add(a))

		ok, err := c.RemoveFromStore(ctx, a)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, store.Len(noteTable))
		assert.True(t, c.IsEmpty())

		opened, closed := store.Sessions()
		assert.Equal(t, opened, closed)
	})

	t.Run("missing item reports false and stays", func(t *testing.T) {
		store, gw := seededStore()
		c := New[*note](gw)
		a := newNote("a", gw)
		require.NoError(t, c.Add(a))

		ok, err := c.RemoveFromStore(ctx, a)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, c.Len())

		opened, closed := store.Sessions()
		assert.Equal(t, 1, opened)
		assert.Equal(t, 1, closed)
	})

	t.Run("no gateway configured", func(t *testing.T) {
		c := New[*note](gateway.New(nil))
		_, err := c.RemoveFromStore(ctx, newNote("a", nil))
		assert.ErrorIs(t, err, gateway.ErrNotConfigured)
	})

	t.Run("store error closes the session", func(t *testing.T) {
		store, gw := seededStore("a")
		boom := errors.New("boom")
		store.FailNext(boom)
		c := New[*note](gw)

		ok, err := c.RemoveFromStore(ctx, newNote("a", gw))
		assert.ErrorIs(t, err, boom)
		assert.False(t, ok)
		assert.Equal(t, 1, store.Len(noteTable))

		opened, closed := store.Sessions()
		assert.Equal(t, opened, closed)
	})

	t.Run("nil item", func(t *testing.T) {
		c := New[*note](nil)
		_, err := c.RemoveFromStore(ctx, nil)
		assert.ErrorIs(t, err, ErrNilItem)
	})
}

func TestCollection_SyncAll(t *testing.T) {
	ctx := context.Background()

	t.Run("only dirty items sync", func(t *testing.T) {
		store, gw := seededStore("a", "b", "c")
		c := New[*note](gw)
		c.SyncLimit = 2
		a, b, cc := newNote("a", gw), newNote("b", gw), newNote("c", gw)
		for _, n := range []*note{a, b, cc} {
			require.NoError(t, c.Add(n))
		}
		require.NoError(t, a.SetText("first"))
		require.NoError(t, cc.SetText("third"))

		n, err := c.SyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.True(t, a.IsSynced())
		assert.True(t, cc.IsSynced())

		row, _ := store.Get(noteTable, "c")
		assert.Equal(t, "third", row["text"])
		opened, _ := store.Sessions()
		assert.Equal(t, 2, opened)
	})

	t.Run("missing rows count as not synced", func(t *testing.T) {
		_, gw := seededStore("a")
		c := New[*note](gw)
		a, ghost := newNote("a", gw), newNote("ghost", gw)
		require.NoError(t, c.Add(a))
		require.NoError(t, c.Add(ghost))
		require.NoError(t, a.SetText("x"))
		require.NoError(t, ghost.SetText("y"))

		n, err := c.SyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.False(t, ghost.IsSynced())
	})

	t.Run("error is returned", func(t *testing.T) {
		c := New[*note](nil)
		a := newNote("a", gateway.New(nil))
		require.NoError(t, c.Add(a))
		require.NoError(t, a.SetText("x"))

		_, err := c.SyncAll(ctx)
		assert.ErrorIs(t, err, gateway.ErrNotConfigured)
		assert.False(t, a.IsSynced())
	})

	t.Run("empty collection", func(t *testing.T) {
		n, err := New[*note](nil).SyncAll(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
