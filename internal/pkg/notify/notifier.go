// Package notify provides the change-notification primitive that tracked
// objects build on: a synchronous subscriber list plus a "set field and
// notify if changed" helper.
package notify

import "sync"

// Event describes a committed field write or a field revert.
type Event struct {
	Source any
	Field  string
}

// Notifier fans events out to its subscribers.
// Delivery is synchronous and follows subscription order.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn and returns a function that removes it again.
func (n *Notifier) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs = append(n.subs, subscriber{id: id, fn: fn})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify delivers (source, field) to every subscriber.
func (n *Notifier) Notify(source any, field string) {
	n.mu.Lock()
	subs := make([]subscriber, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	ev := Event{Source: source, Field: field}
	for _, s := range subs {
		s.fn(ev)
	}
}

// SetAndNotify writes v into slot and notifies when the value changed.
// Equal values are a no-op. Reports whether a write happened.
func SetAndNotify[T comparable](n *Notifier, source any, slot *T, v T, field string) bool {
	if *slot == v {
		return false
	}
	*slot = v
	n.Notify(source, field)
	return true
}

// SetAndNotifyFunc is SetAndNotify for values compared with eq, e.g. types
// that are not comparable or that carry their own notion of equality.
func SetAndNotifyFunc[T any](n *Notifier, source any, slot *T, v T, field string, eq func(a, b T) bool) bool {
	if eq(*slot, v) {
		return false
	}
	*slot = v
	n.Notify(source, field)
	return true
}
