// Package gateway is the boundary between tracked objects and the external
// store: it hands out persistence sessions from a swappable factory.
package gateway

import (
	"context"
	"fmt"
	"sync"
)

// Gateway holds at most one session factory. Tracked objects receive a
// Gateway at construction instead of reaching for global state.
type Gateway struct {
	mu      sync.RWMutex
	factory Factory
}

// New returns a Gateway, optionally pre-configured with f.
func New(f Factory) *Gateway {
	return &Gateway{factory: f}
}

var defaultGateway = &Gateway{}

// Default returns the process-wide Gateway for hosts that register their
// store once at startup.
func Default() *Gateway { return defaultGateway }

// SetFactory replaces the registered factory. Last write wins.
func (g *Gateway) SetFactory(f Factory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.factory = f
}

// Configured reports whether a factory is registered.
func (g *Gateway) Configured() bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.factory != nil
}

// CreateSession invokes the registered factory.
func (g *Gateway) CreateSession(ctx context.Context) (Session, error) {
	if g == nil {
		return nil, ErrNotConfigured
	}
	g.mu.RLock()
	f := g.factory
	g.mu.RUnlock()

	if f == nil {
		return nil, ErrNotConfigured
	}

	s, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// WithSession runs fn with a fresh session and closes it on every exit path.
// A close error is reported only when fn itself succeeded.
func WithSession(ctx context.Context, g *Gateway, fn func(Session) error) (err error) {
	s, err := g.CreateSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close session: %w", cerr)
		}
	}()
	return fn(s)
}
