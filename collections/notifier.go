package collections

import (
	"sync"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slices"
)

// Subscription is the handle returned by [Observable.Subscribe].
//
// Holding the handle is not required to keep the subscription alive; the
// only way to end it is Dispose. Dispose is idempotent and safe to call on a
// nil handle.
type Subscription struct {
	// ID identifies the subscription in logs.
	ID ulid.ULID

	once   sync.Once
	cancel func()
}

// Dispose stops delivery to the subscribed handler. A notification already
// being delivered when Dispose is called may still reach the handler.
func (s *Subscription) Dispose() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

type subscriber[T any] struct {
	id      ulid.ULID
	handler ChangeHandler[T]
}

// notifier is an ordered registry of change handlers.
// The subscriber list is copied on update, so delivery iterates over a
// snapshot and handlers may subscribe or unsubscribe while being notified.
type notifier[T any] struct {
	mu          sync.Mutex
	subscribers []subscriber[T]
}

func (n *notifier[T]) subscribe(handler ChangeHandler[T]) *Subscription {
	id := ulid.Make()
	if handler == nil {
		return &Subscription{ID: id}
	}

	n.mu.Lock()
	next := slices.Clone(n.subscribers)
	next = append(next, subscriber[T]{id: id, handler: handler})
	n.subscribers = next
	n.mu.Unlock()

	glog.V(3).Infof("collections: subscribed %s", id)
	return &Subscription{ID: id, cancel: func() { n.unsubscribe(id) }}
}

func (n *notifier[T]) unsubscribe(id ulid.ULID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.IndexFunc(n.subscribers, func(s subscriber[T]) bool { return s.id == id })
	if i < 0 {
		return false
	}
	next := slices.Clone(n.subscribers)
	n.subscribers = slices.Delete(next, i, i+1)
	glog.V(3).Infof("collections: unsubscribed %s", id)
	return true
}

func (n *notifier[T]) snapshot() []subscriber[T] {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.subscribers
}

// notify delivers e to every subscriber in subscription order.
func (n *notifier[T]) notify(e ChangeEvent[T]) {
	for _, s := range n.snapshot() {
		s.handler(e)
	}
}
