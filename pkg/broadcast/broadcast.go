package broadcast

import (
	"context"
	"sync"
)

// Subscriber receives values published through a Broadcaster.
// Implementations are safe for concurrent use.
type Subscriber[T any] interface {
	// C returns the channel values are delivered on. The channel is closed
	// when the subscriber or the owning broadcaster is closed.
	C() <-chan T

	// Close releases the subscription. Idempotent.
	Close() error
}

// Broadcaster fans published values out to all active subscribers.
type Broadcaster[T any] interface {
	// Subscribe registers a new subscriber. The subscription is released
	// automatically when ctx is cancelled. Subscribing to a closed
	// broadcaster returns an already-closed subscriber.
	Subscribe(ctx context.Context) Subscriber[T]

	// Publish delivers v to every active subscriber without blocking.
	// Subscribers with a full buffer miss the value.
	Publish(v T)

	// Close shuts the broadcaster down and closes every subscriber.
	// Idempotent.
	Close() error
}

type subscriber[T any] struct {
	ch     chan T
	mu     sync.Mutex
	closed bool
}

func (s *subscriber[T]) C() <-chan T { return s.ch }

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

// send returns false when the subscriber is closed or its buffer is full.
func (s *subscriber[T]) send(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}

// Memory is an in-process Broadcaster. Publish never blocks: values are
// dropped for subscribers that cannot keep up.
type Memory[T any] struct {
	mu      sync.RWMutex
	subs    map[*subscriber[T]]struct{}
	bufSize int
	closed  bool
	wg      sync.WaitGroup
}

// NewMemory creates an in-memory broadcaster whose subscribers buffer up to
// bufSize values. A minimum buffer of 1 is enforced so sends stay
// non-blocking.
func NewMemory[T any](bufSize int) *Memory[T] {
	return &Memory[T]{
		subs:    make(map[*subscriber[T]]struct{}),
		bufSize: max(bufSize, 1),
	}
}

func (m *Memory[T]) Subscribe(ctx context.Context) Subscriber[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := &subscriber[T]{ch: make(chan T, m.bufSize)}
	if m.closed {
		_ = sub.Close()
		return sub
	}
	m.subs[sub] = struct{}{}

	if ctx.Done() != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			<-ctx.Done()
			m.remove(sub)
		}()
	}
	return sub
}

func (m *Memory[T]) Publish(v T) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	for sub := range m.subs {
		sub.send(v)
	}
}

func (m *Memory[T]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for sub := range m.subs {
		_ = sub.Close()
	}
	clear(m.subs)
	m.mu.Unlock()

	// Cleanup goroutines hold no locks at this point; waiting here keeps
	// Close a full resource barrier.
	m.wg.Wait()
	return nil
}

func (m *Memory[T]) remove(sub *subscriber[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, sub)
	_ = sub.Close()
}
