// Package tracker records which fields of an object changed since the last
// successful sync, keeps one undo record per changed field and pushes the
// changed fields to the store through a gateway session.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/light-bringer/syncable/internal/app/syncable/command"
	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/app/syncable/reset"
	"github.com/light-bringer/syncable/internal/pkg/fields"
	"github.com/light-bringer/syncable/internal/pkg/metrics"
	"github.com/light-bringer/syncable/internal/pkg/notify"
)

// Host is the object being tracked. It publishes its field table and knows how
// to map its fields onto storage columns.
type Host interface {
	fields.Settable
	gateway.Record
}

// Object is the tracking state of one Host. Host types embed *Object and route
// every field write through Set or SetFunc.
//
// Field values belong to the host and are not guarded: Sync reads them through
// Columns while saving, so callers must serialize field writes with Sync. Only
// the dirty set and pending resets are locked.
type Object struct {
	host     Host
	gw       *gateway.Gateway
	notifier notify.Notifier
	log      *slog.Logger
	metrics  metrics.Recorder

	syncWhileDirty bool
	syncCmd        *command.Async
	revertAllCmd   *command.Delegate

	mu        sync.Mutex
	gen       uint64
	dirty     map[string]uint64 // field -> write generation
	pending   map[string]*reset.Action
	restoring string
}

// New starts tracking host. The object begins Synced with no pending resets.
func New(host Host, gw *gateway.Gateway, opts ...Option) *Object {
	if host == nil {
		panic("tracker: nil host")
	}

	o := &Object{
		host:    host,
		gw:      gw,
		log:     slog.Default(),
		metrics: metrics.Nop{},
		dirty:   make(map[string]uint64),
		pending: make(map[string]*reset.Action),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.syncCmd = command.NewAsync(func(ctx context.Context) error {
		_, err := o.Sync(ctx)
		return err
	}, o.canSync)
	o.revertAllCmd = command.New(o.RevertAll, func() bool { return !o.IsSynced() })

	return o
}

// Set is the tracked form of set-and-notify for comparable values.
func Set[T comparable](o *Object, slot *T, v T, field string) error {
	return SetFunc(o, slot, v, field, func(a, b T) bool { return a == b })
}

// SetFunc is Set with a caller-supplied equality.
//
// The first write that dirties field captures a reset to the value held
// before the write; a zero previous value means nothing was recorded yet and
// the new value becomes the baseline. Later writes in the same streak leave
// that reset alone.
func SetFunc[T any](o *Object, slot *T, v T, field string, eq func(a, b T) bool) error {
	old := *slot
	if eq(old, v) {
		return nil
	}

	if o.isRestoring(field) {
		*slot = v
		return nil
	}

	var zero T
	baseline := old
	if eq(old, zero) {
		baseline = v
	}
	if err := o.snapshot(field, baseline); err != nil {
		return err
	}

	*slot = v
	o.markModified(field)
	return nil
}

func (o *Object) isRestoring(field string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.restoring != "" && o.restoring == field
}

func (o *Object) snapshot(field string, baseline any) error {
	o.mu.Lock()
	_, dirty := o.dirty[field]
	o.mu.Unlock()
	if dirty {
		return nil
	}

	action, err := reset.New(o.host, field, baseline)
	if err != nil {
		return fmt.Errorf("failed to track field %q: %w", field, err)
	}

	o.mu.Lock()
	o.pending[field] = action
	o.mu.Unlock()
	return nil
}

func (o *Object) markModified(field string) {
	o.mu.Lock()
	o.gen++
	o.dirty[field] = o.gen
	o.mu.Unlock()

	o.log.Debug("field modified", "table", o.host.Table(), "key", o.host.Key(), "field", field)
	o.metrics.FieldWritten(o.host.Table(), field)
	o.notifier.Notify(o.host, field)
	o.RefreshCommands()
}

// IsModified reports whether field changed since the last sync.
func (o *Object) IsModified(field string) bool {
	if field == "" {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.dirty[field]
	return ok
}

// Status returns Synced when no field is dirty.
func (o *Object) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.dirty) == 0 {
		return Synced
	}
	return Dirty
}

// IsSynced reports Status() == Synced.
func (o *Object) IsSynced() bool { return o.Status() == Synced }

// DirtyFields returns the modified field names, sorted.
func (o *Object) DirtyFields() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return sortedKeys(o.dirty)
}

// Subscribe registers fn for field-changed events. Events fire on every
// committed write and every revert.
func (o *Object) Subscribe(fn func(notify.Event)) (unsubscribe func()) {
	return o.notifier.Subscribe(fn)
}

// Revert restores field to its baseline. Unknown, empty or never tracked
// fields are ignored. The reset stays registered for later streaks.
func (o *Object) Revert(field string) {
	if field == "" {
		return
	}

	o.mu.Lock()
	action, ok := o.pending[field]
	if ok {
		o.restoring = field
	}
	o.mu.Unlock()
	if !ok {
		return
	}

	func() {
		defer func() {
			o.mu.Lock()
			o.restoring = ""
			o.mu.Unlock()
		}()
		action.Apply()
	}()

	o.mu.Lock()
	delete(o.dirty, field)
	o.mu.Unlock()

	o.log.Debug("field reverted", "table", o.host.Table(), "key", o.host.Key(), "field", field)
	o.metrics.FieldReverted(o.host.Table(), field)
	o.notifier.Notify(o.host, field)
	o.RefreshCommands()
}

// RevertAll reverts every dirty field.
func (o *Object) RevertAll() {
	for _, field := range o.DirtyFields() {
		o.Revert(field)
	}
}

// Sync persists the dirty fields through a new gateway session. It reports
// true when the store affected at least one row; the persisted fields are
// then clean. Fields dirtied after the snapshot (e.g. from a save hook) stay dirty.
// A zero count leaves all state untouched. Store errors are returned as is.
func (o *Object) Sync(ctx context.Context) (bool, error) {
	o.mu.Lock()
	snap := make(map[string]uint64, len(o.dirty))
	for f, g := range o.dirty {
		snap[f] = g
	}
	o.mu.Unlock()

	table := o.host.Table()
	var count int64
	err := gateway.WithSession(ctx, o.gw, func(s gateway.Session) error {
		if err := s.Attach(o.host); err != nil {
			return err
		}
		for _, f := range sortedKeys(snap) {
			if err := s.MarkModified(o.host, f); err != nil {
				return err
			}
		}
		n, err := s.SaveChanges(ctx)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		o.metrics.SyncFinished(table, metrics.ResultError)
		o.log.Warn("sync failed", "table", table, "key", o.host.Key(), "error", err)
		return false, err
	}

	if count <= 0 {
		o.metrics.SyncFinished(table, metrics.ResultNoChange)
		o.log.Info("sync affected no rows", "table", table, "key", o.host.Key(), "fields", len(snap))
		return false, nil
	}

	o.mu.Lock()
	for f, g := range snap {
		if o.dirty[f] == g {
			delete(o.dirty, f)
		}
	}
	o.mu.Unlock()

	o.metrics.SyncFinished(table, metrics.ResultSynced)
	o.log.Info("synced", "table", table, "key", o.host.Key(), "fields", len(snap), "rows", count)
	o.RefreshCommands()
	return true, nil
}

// Insert adds the host to the store as a new record. On success every field
// counts as persisted and the object is Synced.
func (o *Object) Insert(ctx context.Context) (bool, error) {
	var count int64
	err := gateway.WithSession(ctx, o.gw, func(s gateway.Session) error {
		if err := s.Add(o.host); err != nil {
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
	o.MarkSynced()
	return true, nil
}

// MarkSynced forgets all modifications without touching the store, e.g.
// after the host was loaded or inserted.
func (o *Object) MarkSynced() {
	o.mu.Lock()
	o.dirty = make(map[string]uint64)
	o.mu.Unlock()
	o.RefreshCommands()
}

// SyncCommand wraps Sync for bindings.
func (o *Object) SyncCommand() command.Command { return o.syncCmd }

// RevertAllCommand wraps RevertAll for bindings. Enabled while Dirty.
func (o *Object) RevertAllCommand() command.Command { return o.revertAllCmd }

// RefreshCommands asks both commands' subscribers to re-evaluate enablement.
func (o *Object) RefreshCommands() {
	o.syncCmd.RaiseCanExecuteChanged()
	o.revertAllCmd.RaiseCanExecuteChanged()
}

// canSync keeps the historical predicate (enabled while synced) unless the
// object was built WithSyncWhileDirty.
func (o *Object) canSync() bool {
	if o.syncWhileDirty {
		return !o.IsSynced()
	}
	return o.IsSynced()
}

func sortedKeys(m map[string]uint64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
