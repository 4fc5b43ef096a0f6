// Package memory provides an in-process session store. It keeps rows as
// column maps and applies each SaveChanges atomically under one lock.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
)

// ErrDuplicateKey is returned when an added record already exists.
var ErrDuplicateKey = errors.New("duplicate key")

// Store is a table → key → row map shared by every session it creates.
type Store struct {
	mu     sync.Mutex
	tables map[string]map[string]gateway.Row

	hookMu   sync.Mutex
	failNext error
	onSave   func()
	opened   int
	closed   int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{tables: make(map[string]map[string]gateway.Row)}
}

// Factory returns a gateway.Factory producing sessions on s.
func (s *Store) Factory() gateway.Factory {
	return func(context.Context) (gateway.Session, error) {
		s.hookMu.Lock()
		s.opened++
		s.hookMu.Unlock()
		return newSession(s), nil
	}
}

// Put stores a copy of row under table/key, replacing any existing row.
func (s *Store) Put(table, key string, row gateway.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tableLocked(table)[key] = copyRow(row)
}

// Get returns a copy of the row stored under table/key.
func (s *Store) Get(table, key string) (gateway.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tables[table][key]
	if !ok {
		return nil, false
	}
	return copyRow(row), true
}

// Len returns the number of rows in table.
func (s *Store) Len(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

// FailNext makes the next SaveChanges return err without applying anything.
func (s *Store) FailNext(err error) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.failNext = err
}

// OnSave registers fn to run at the start of every SaveChanges, before the
// store lock is taken.
func (s *Store) OnSave(fn func()) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onSave = fn
}

// Sessions reports how many sessions were opened and closed.
func (s *Store) Sessions() (opened, closed int) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	return s.opened, s.closed
}

func (s *Store) tableLocked(table string) map[string]gateway.Row {
	t, ok := s.tables[table]
	if !ok {
		t = make(map[string]gateway.Row)
		s.tables[table] = t
	}
	return t
}

func (s *Store) takeHooks() (func(), error) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	err := s.failNext
	s.failNext = nil
	return s.onSave, err
}

func (s *Store) markClosed() {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.closed++
}

func copyRow(row gateway.Row) gateway.Row {
	out := make(gateway.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
