package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	Session // unimplemented methods panic
	name     string
	closeErr error
	closed   int
}

func (s *stubSession) Close() error {
	s.closed++
	return s.closeErr
}

func factoryFor(s *stubSession) Factory {
	return func(context.Context) (Session, error) { return s, nil }
}

func TestGateway_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		g := New(nil)
		assert.False(t, g.Configured())
		_, err := g.CreateSession(ctx)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("nil gateway", func(t *testing.T) {
		var g *Gateway
		assert.False(t, g.Configured())
		_, err := g.CreateSession(ctx)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("last factory wins", func(t *testing.T) {
		first, second := &stubSession{name: "first"}, &stubSession{name: "second"}
		g := New(factoryFor(first))
		g.SetFactory(factoryFor(second))

		s, err := g.CreateSession(ctx)
		require.NoError(t, err)
		assert.Same(t, second, s)
	})

	t.Run("factory error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		g := New(func(context.Context) (Session, error) { return nil, boom })

		_, err := g.CreateSession(ctx)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to create session")
	})

	t.Run("default gateway is shared", func(t *testing.T) {
		assert.Same(t, Default(), Default())
	})
}

func TestWithSession(t *testing.T) {
	ctx := context.Background()

	t.Run("closes after success", func(t *testing.T) {
		s := &stubSession{}
		err := WithSession(ctx, New(factoryFor(s)), func(got Session) error {
			assert.Same(t, s, got)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, s.closed)
	})

	t.Run("closes after failure and keeps the callback error", func(t *testing.T) {
		boom := errors.New("boom")
		s := &stubSession{closeErr: errors.New("close failed")}
		err := WithSession(ctx, New(factoryFor(s)), func(Session) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, s.closed)
	})

	t.Run("close error surfaces when the callback succeeded", func(t *testing.T) {
		closeErr := errors.New("close failed")
		s := &stubSession{closeErr: closeErr}
		err := WithSession(ctx, New(factoryFor(s)), func(Session) error { return nil })
		assert.ErrorIs(t, err, closeErr)
	})

	t.Run("closes on panic", func(t *testing.T) {
		s := &stubSession{}
		assert.Panics(t, func() {
			_ = WithSession(ctx, New(factoryFor(s)), func(Session) error { panic("boom") })
		})
		assert.Equal(t, 1, s.closed)
	})

	t.Run("callback not run without a factory", func(t *testing.T) {
		called := false
		err := WithSession(ctx, New(nil), func(Session) error { called = true; return nil })
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.False(t, called)
	})
}
