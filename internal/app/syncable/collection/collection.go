// Package collection groups tracked objects that share a gateway and adds the
// store-backed operations that act on a whole item.
package collection

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/app/syncable/tracker"
)

// ErrNilItem is returned when a nil item is added.
var ErrNilItem = errors.New("item is nil")

// Item is a tracked object that can be persisted.
type Item interface {
	tracker.Host
	IsSynced() bool
	Sync(ctx context.Context) (bool, error)
}

// Collection is an ordered set of items.
type Collection[T Item] struct {
	gw *gateway.Gateway

	mu    sync.RWMutex
	items []T

	// SyncLimit caps concurrent syncs in SyncAll. Zero means no limit.
	SyncLimit int
}

// New creates an empty collection whose removals go through gw.
func New[T Item](gw *gateway.Gateway) *Collection[T] {
	return &Collection[T]{gw: gw}
}

// Add appends item.
func (c *Collection[T]) Add(item T) error {
	if isNil(item) {
		return ErrNilItem
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return nil
}

// Remove drops item from the collection without touching the store.
// Reports whether the item was present.
func (c *Collection[T]) Remove(item T) bool {
	if isNil(item) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if any(it) == any(item) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// IsEmpty reports Len() == 0.
func (c *Collection[T]) IsEmpty() bool { return c.Len() == 0 }

// Items returns a copy of the items.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// RemoveFromStore deletes item from the store. It reports true when a row
// was removed; the item is then dropped from the collection as well.
func (c *Collection[T]) RemoveFromStore(ctx context.Context, item T) (bool, error) {
	if isNil(item) {
		return false, ErrNilItem
	}

	var count int64
	err := gateway.WithSession(ctx, c.gw, func(s gateway.Session) error {
		if err := s.Remove(item); err != nil {
			return err
		}
		n, err := s.SaveChanges(ctx)
		count = n
		return err
	})
	if err != nil {
		return false, err
	}
	if count <= 0 {
		return false, nil
	}
	c.Remove(item)
	return true, nil
}

// SyncAll syncs every dirty item concurrently and returns how many synced.
// Each item keeps its own state; the first error cancels the remaining syncs.
func (c *Collection[T]) SyncAll(ctx context.Context) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	if c.SyncLimit > 0 {
		g.SetLimit(c.SyncLimit)
	}

	var mu sync.Mutex
	synced := 0
	for _, item := range c.Items() {
		if item.IsSynced() {
			continue
		}
		g.Go(func() error {
			ok, err := item.Sync(gctx)
			if err != nil {
				return err
			}
			if ok {
				mu.Lock()
				synced++
				mu.Unlock()
			}
			return nil
		})
	}
	err := g.Wait()
	return synced, err
}

func isNil[T any](v T) bool {
	var zero T
	return any(v) == any(zero)
}
