// Package bus is a small typed publish/subscribe utility.
//
// Delivery is synchronous and in subscription order. Nothing is queued for
// subscribers that join later.
package bus

import "sync"

// Subscription identifies a handler so it can be removed.
type Subscription uint64

// Topic carries events of one payload type.
type Topic[T any] struct {
	name string

	mu   sync.Mutex
	next Subscription
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id Subscription
	fn func(T)
}

// NewTopic returns an empty topic.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// On registers fn and returns its subscription.
func (t *Topic[T]) On(fn func(T)) Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.subs = append(t.subs, subscriber[T]{id: t.next, fn: fn})
	return t.next
}

// Off removes a subscription. Unknown ids are ignored.
func (t *Topic[T]) Off(id Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// Emit calls every handler with v. Handlers may subscribe or unsubscribe
// while being called; the change applies from the next Emit.
func (t *Topic[T]) Emit(v T) {
	t.mu.Lock()
	subs := t.subs
	t.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of handlers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
