package collections

import (
	"fmt"

	"github.com/golang/glog"
)

// Mapped is a live, read-only list holding transform(item) for every item of
// a source list, in source order.
//
// When the source is [Observable], every source change is translated into
// one change of the derived list and republished to Mapped's subscribers
// after the derived list has been updated. Derived values implementing
// [Disposable] are disposed once, when they are removed or replaced, when a
// reset rebuilds the list, or when the register itself is disposed. Moved
// values keep their identity and are not disposed.
type Mapped[S, D any] struct {
	buffer[D]

	source       ReadOnlyList[S]
	transform    func(S) D
	subscription *Subscription
	changes      notifier[D]
	opts         options
}

// NewMapped builds a register over source. The derived list is computed
// eagerly; if source is [Observable] the register subscribes to it.
//
// transform is called once for every derived value created, including on
// rebuilds, and must not have side effects the caller relies on.
// Returns an [*ArgumentError] when source or transform is nil.
func NewMapped[S, D any](source ReadOnlyList[S], transform func(S) D, opts ...Option) (*Mapped[S, D], error) {
	if isNil(source) {
		return nil, &ArgumentError{Name: "source"}
	}
	if transform == nil {
		return nil, &ArgumentError{Name: "transform"}
	}

	m := &Mapped[S, D]{
		source:    source,
		transform: transform,
		opts:      buildOptions("mapped", opts),
	}
	m.items = MapAll(source, transform)
	if observable, ok := source.(Observable[S]); ok {
		m.subscription = observable.Subscribe(m.onSourceChanged)
	}
	m.state = StateActive

	glog.V(2).Infof("collections: %s active with %d items", m.opts.name, len(m.items))
	return m, nil
}

// Subscribe registers handler for every translated change.
func (m *Mapped[S, D]) Subscribe(handler ChangeHandler[D]) *Subscription {
	return m.changes.subscribe(handler)
}

// Dispose unsubscribes from the source and disposes every derived value
// still held. It publishes nothing. Calling Dispose again does nothing.
func (m *Mapped[S, D]) Dispose() {
	m.mu.Lock()
	if m.state == StateDisposed {
		m.mu.Unlock()
		return
	}
	m.state = StateDisposed
	evicted := m.items
	m.items = nil
	subscription := m.subscription
	m.subscription = nil
	m.mu.Unlock()

	subscription.Dispose()
	n := disposeAll(evicted)
	m.opts.metrics.disposed(m.opts.name, n)
	glog.V(2).Infof("collections: %s disposed, released %d items", m.opts.name, len(evicted))
}

func (m *Mapped[S, D]) onSourceChanged(e ChangeEvent[S]) {
	out, evicted, active, err := m.apply(e)
	if !active {
		m.opts.metrics.notificationDropped(m.opts.name)
		glog.V(2).Infof("collections: %s ignored %s after dispose", m.opts.name, e.Kind)
		return
	}
	if err != nil {
		// the source broke its contract; continuing would leave the derived
		// list permanently out of sync
		panic(fmt.Errorf("%s: %w", m.opts.name, err))
	}

	m.opts.metrics.disposed(m.opts.name, disposeAll(evicted))
	if out == nil {
		return
	}
	glog.V(2).Infof("collections: %s translated %s -> %s", m.opts.name, e, out)
	m.opts.metrics.eventTranslated(m.opts.name, out.Kind)
	m.changes.notify(*out)
}

// apply translates e and mutates the buffer under the write lock.
func (m *Mapped[S, D]) apply(e ChangeEvent[S]) (out *ChangeEvent[D], evicted []D, active bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return nil, nil, false, nil
	}

	s, out, err := translate(e, m.items, m.transform)
	if err != nil {
		return nil, nil, true, err
	}
	if s.rebuild {
		evicted = m.items
		m.items = MapAll(m.source, m.transform)
		return out, evicted, true, nil
	}
	m.items, evicted = applySplice(m.items, s)
	return out, evicted, true, nil
}
