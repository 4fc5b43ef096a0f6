// Package spannerstore implements gateway sessions on Cloud Spanner. Each
// SaveChanges becomes one read-write transaction carrying the row mutations
// and one outbox event per written record.
package spannerstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/models/m_outbox"
	"github.com/light-bringer/syncable/internal/pkg/committer"
)

// Config selects the database. EmulatorHost, when set, connects without
// credentials over plaintext gRPC.
type Config struct {
	Database     string
	EmulatorHost string
}

// Option customises a Store.
type Option func(*Store)

// WithoutOutbox skips outbox events.
func WithoutOutbox() Option {
	return func(s *Store) { s.outboxEnabled = false }
}

// WithIDFunc overrides outbox event id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store hands out sessions on one Spanner database.
type Store struct {
	cfg       Config
	client    *spanner.Client
	committer *committer.Committer
	outbox    *m_outbox.Model

	outboxEnabled bool
	newID         func() string
}

func (c Config) clientOptions() []option.ClientOption {
	if c.EmulatorHost == "" {
		return nil
	}
	return []option.ClientOption{
		option.WithEndpoint(c.EmulatorHost),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

// Open creates a Spanner client for cfg and wraps it.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	client, err := spanner.NewClient(ctx, cfg.Database, cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spanner client: %w", err)
	}
	st := New(client, opts...)
	st.cfg = cfg
	return st, nil
}

// New wraps an existing client.
func New(client *spanner.Client, opts ...Option) *Store {
	s := &Store{
		client:        client,
		committer:     committer.NewCommitter(client),
		outbox:        m_outbox.NewModel(),
		outboxEnabled: true,
		newID:         func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Factory returns a gateway.Factory producing sessions on s.
func (s *Store) Factory() gateway.Factory {
	return func(context.Context) (gateway.Session, error) {
		return newSession(s), nil
	}
}

// Client exposes the Spanner client.
func (s *Store) Client() *spanner.Client { return s.client }

// Close closes the Spanner client.
func (s *Store) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
