package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/light-bringer/syncable/internal/app/product/contracts"
	"github.com/light-bringer/syncable/internal/app/product/repo"
	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/app/syncable/tracker"
	"github.com/light-bringer/syncable/internal/config"
	"github.com/light-bringer/syncable/internal/models/m_product"
	"github.com/light-bringer/syncable/internal/pkg/clock"
	"github.com/light-bringer/syncable/internal/pkg/metrics"
	"github.com/light-bringer/syncable/internal/pkg/query"
	"github.com/light-bringer/syncable/internal/store/memory"
	"github.com/light-bringer/syncable/internal/store/s3store"
	"github.com/light-bringer/syncable/internal/store/spannerstore"
	"github.com/light-bringer/syncable/internal/store/sqlstore"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	Config      config.Config
	Logger      *slog.Logger
	Clock       clock.Clock
	Gateway     *gateway.Gateway
	Registry    *prometheus.Registry
	ProductRepo contracts.ProductRepository

	// SQL is set for the sqlite and postgres backends.
	SQL *sqlstore.Store
	// Spanner is set for the spanner backend.
	Spanner *spannerstore.Store

	trackerOpts []tracker.Option
	closers     []func() error
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg config.Config, logger *slog.Logger) (*ServiceOptions, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ServiceOptions{
		Config: cfg,
		Logger: logger,
		Clock:  clock.NewRealClock(),
	}

	// 1. Open the store
	factory, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	s.Gateway = gateway.New(factory)

	// 2. Tracker options shared by every product
	s.trackerOpts = []tracker.Option{tracker.WithLogger(logger)}
	if cfg.Tracker.SyncWhileDirty {
		s.trackerOpts = append(s.trackerOpts, tracker.WithSyncWhileDirty())
	}
	if cfg.Metrics.Enabled {
		s.Registry = prometheus.NewRegistry()
		rec, err := metrics.NewPrometheus(s.Registry)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		s.trackerOpts = append(s.trackerOpts, tracker.WithMetrics(rec))
	}

	// 3. Create repositories
	s.ProductRepo = repo.NewProductRepo(s.Gateway, cfg.Tracker.SyncLimit, s.trackerOpts...)

	logger.Debug("services ready", "store", cfg.Store)
	return s, nil
}

func (s *ServiceOptions) openStore(ctx context.Context) (gateway.Factory, error) {
	cfg := s.Config
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore().Factory(), nil

	case config.StoreSQLite, config.StorePostgres:
		var (
			st  *sqlstore.Store
			err error
		)
		if cfg.Store == config.StoreSQLite {
			st, err = sqlstore.OpenSQLite(cfg.SQL.Path)
		} else {
			st, err = sqlstore.OpenPostgres(ctx, cfg.SQL.DSN)
		}
		if err != nil {
			return nil, err
		}
		s.SQL = st
		s.closers = append(s.closers, st.Close)
		return st.Factory(), nil

	case config.StoreSpanner:
		var opts []spannerstore.Option
		if !cfg.Spanner.Outbox {
			opts = append(opts, spannerstore.WithoutOutbox())
		}
		st, err := spannerstore.Open(ctx, spannerstore.Config{
			Database:     cfg.Spanner.Database,
			EmulatorHost: cfg.Spanner.EmulatorHost,
		}, opts...)
		if err != nil {
			return nil, err
		}
		s.Spanner = st
		s.closers = append(s.closers, func() error { st.Close(); return nil })
		return st.Factory(), nil

	case config.StoreS3:
		st, err := s3store.New(ctx, s3store.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return st.Factory(), nil
	}
	return nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalid, cfg.Store)
}

// TrackerOptions returns the options applied to every tracked product.
func (s *ServiceOptions) TrackerOptions() []tracker.Option {
	return append([]tracker.Option(nil), s.trackerOpts...)
}

// Migrate creates the tables the configured store needs. Memory and S3 need
// no schema.
func (s *ServiceOptions) Migrate(ctx context.Context) error {
	switch {
	case s.SQL != nil:
		ddl := m_product.SQLiteDDL
		if s.SQL.Dialect() == query.Postgres {
			ddl = m_product.PostgresDDL
		}
		return s.SQL.Migrate(ctx, ddl)
	case s.Spanner != nil:
		return s.Spanner.Migrate(ctx, spannerstore.Schema()...)
	}
	return nil
}

// Close closes all resources.
func (s *ServiceOptions) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
