package connection

import (
	"context"
	"sync/atomic"

	"github.com/dmitrymomot/notisync/pkg/broadcast"
)

// MemoryTransport is an in-process push channel. Hosts and tests inject
// events with Emit; every open connection receives them.
type MemoryTransport struct {
	hub       *broadcast.Memory[Event]
	authorize func(credential string) error
	closed    atomic.Bool
}

// MemoryTransportOption configures a MemoryTransport.
type MemoryTransportOption func(*MemoryTransport)

// WithAuthorizer installs a credential check performed on Open. Without one,
// every credential is accepted.
func WithAuthorizer(fn func(credential string) error) MemoryTransportOption {
	return func(t *MemoryTransport) {
		if fn != nil {
			t.authorize = fn
		}
	}
}

// NewMemoryTransport creates an in-memory transport.
func NewMemoryTransport(opts ...MemoryTransportOption) *MemoryTransport {
	t := &MemoryTransport{
		hub: broadcast.NewMemory[Event](16),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open acknowledges immediately and delivers events until ctx is cancelled or
// the transport is closed.
func (t *MemoryTransport) Open(ctx context.Context, credential string) (<-chan Event, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if t.authorize != nil {
		if err := t.authorize(credential); err != nil {
			return nil, err
		}
	}
	return t.hub.Subscribe(ctx).C(), nil
}

// Emit delivers an event to every open connection.
func (t *MemoryTransport) Emit(ev Event) {
	t.hub.Publish(ev)
}

// EmitJSON marshals payload and emits it under the given event name.
func (t *MemoryTransport) EmitJSON(name string, payload any) error {
	ev, err := NewEvent(name, payload)
	if err != nil {
		return err
	}
	t.hub.Publish(ev)
	return nil
}

// Close drops every open connection.
func (t *MemoryTransport) Close() error {
	t.closed.Store(true)
	return t.hub.Close()
}
