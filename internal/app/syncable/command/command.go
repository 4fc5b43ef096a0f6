// Package command wraps actions with an enablement predicate and a
// can-execute-changed signal that bindings can observe.
package command

import (
	"context"
	"sync"
	"sync/atomic"
)

// Command is an externally invocable action.
type Command interface {
	// Execute runs the action if CanExecute reports true.
	Execute(ctx context.Context) error
	// CanExecute evaluates the enablement predicate.
	CanExecute() bool
	// OnCanExecuteChanged subscribes fn to re-evaluation requests.
	OnCanExecuteChanged(fn func()) (unsubscribe func())
	// RaiseCanExecuteChanged asks subscribers to re-evaluate CanExecute.
	RaiseCanExecuteChanged()
}

type signal struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
	order  []int
}

func (s *signal) subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; !ok {
			return
		}
		delete(s.subs, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *signal) raise() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, id := range s.order {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Delegate is a synchronous Command.
type Delegate struct {
	action     func()
	canExecute func() bool
	changed    signal
}

// New builds a synchronous command. A nil canExecute means always enabled.
func New(action func(), canExecute func() bool) *Delegate {
	return &Delegate{action: action, canExecute: canExecute}
}

// Execute implements Command.
func (d *Delegate) Execute(context.Context) error {
	if !d.CanExecute() {
		return nil
	}
	d.action()
	return nil
}

// CanExecute implements Command.
func (d *Delegate) CanExecute() bool {
	return d.canExecute == nil || d.canExecute()
}

// OnCanExecuteChanged implements Command.
func (d *Delegate) OnCanExecuteChanged(fn func()) func() { return d.changed.subscribe(fn) }

// RaiseCanExecuteChanged implements Command.
func (d *Delegate) RaiseCanExecuteChanged() { d.changed.raise() }

// Async is a Command whose action may block. It is disabled while running.
type Async struct {
	action     func(ctx context.Context) error
	canExecute func() bool
	executing  atomic.Bool
	changed    signal
}

// NewAsync builds a blocking command. A nil canExecute means always enabled.
func NewAsync(action func(ctx context.Context) error, canExecute func() bool) *Async {
	return &Async{action: action, canExecute: canExecute}
}

// IsExecuting reports whether the action is running.
func (a *Async) IsExecuting() bool { return a.executing.Load() }

// CanExecute implements Command.
func (a *Async) CanExecute() bool {
	return !a.executing.Load() && (a.canExecute == nil || a.canExecute())
}

// Execute implements Command. Overlapping calls are dropped.
func (a *Async) Execute(ctx context.Context) error {
	if a.canExecute != nil && !a.canExecute() {
		return nil
	}
	if !a.executing.CompareAndSwap(false, true) {
		return nil
	}
	a.changed.raise()
	defer func() {
		a.executing.Store(false)
		a.changed.raise()
	}()
	return a.action(ctx)
}

// OnCanExecuteChanged implements Command.
func (a *Async) OnCanExecuteChanged(fn func()) func() { return a.changed.subscribe(fn) }

// RaiseCanExecuteChanged implements Command.
func (a *Async) RaiseCanExecuteChanged() { a.changed.raise() }
