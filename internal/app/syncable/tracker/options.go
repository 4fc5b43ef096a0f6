package tracker

import (
	"log/slog"

	"github.com/light-bringer/syncable/internal/pkg/metrics"
)

// Option configures an Object.
type Option func(*Object)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Object) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics sets the metrics recorder. Defaults to metrics.Nop.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *Object) {
		if r != nil {
			o.metrics = r
		}
	}
}

// WithSyncWhileDirty enables the sync command only while there are changes
// to persist. Without it the sync command keeps its historical predicate and
// is enabled only while the object is already synced.
func WithSyncWhileDirty() Option {
	return func(o *Object) {
		o.syncWhileDirty = true
	}
}
