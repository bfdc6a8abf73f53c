package connection

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/notisync/pkg/logger"
)

// State is the manager's connection state. It transitions only in response
// to explicit Connect/Disconnect calls and transport-level signals.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Transport establishes the underlying push channel.
//
// Open blocks until the channel is acknowledged and returns a receive
// channel that closes when the transport drops or ctx is cancelled.
// Implementations must be safe for concurrent use.
type Transport interface {
	Open(ctx context.Context, credential string) (<-chan Event, error)
}

// Handler receives the raw payload of one event occurrence. Handlers for the
// same event run in no guaranteed order.
type Handler func(data json.RawMessage)

// Manager owns at most one live push connection per credential.
type Manager struct {
	transport Transport
	log       *slog.Logger

	mu         sync.Mutex
	state      State
	credential string
	cancel     context.CancelFunc
	gen        uint64

	handlers  map[string]map[uint64]Handler
	handlerID uint64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger for the Manager.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a manager over the given transport.
// Panics if transport is nil.
func NewManager(transport Transport, opts ...ManagerOption) *Manager {
	if transport == nil {
		panic("connection: nil transport")
	}

	m := &Manager{
		transport: transport,
		log:       slog.Default(),
		state:     StateDisconnected,
		handlers:  make(map[string]map[uint64]Handler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect opens the push channel with the given credential.
//
// Idempotent: if the manager is already Connected or Connecting with the same
// credential, the call is a no-op. A different credential tears down the
// existing connection first. Transport failures never surface to the caller;
// they leave the manager Disconnected and are logged.
func (m *Manager) Connect(ctx context.Context, credential string) {
	m.mu.Lock()
	if (m.state == StateConnected || m.state == StateConnecting) && m.credential == credential {
		m.mu.Unlock()
		return
	}

	m.teardownLocked()
	m.state = StateConnecting
	m.credential = credential
	m.gen++
	gen := m.gen

	connCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	go m.run(connCtx, gen, credential)
}

// Disconnect tears down the transport and deregisters every handler that was
// registered through this manager. Safe to call when already disconnected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	m.state = StateDisconnected
	m.credential = ""
	clear(m.handlers)
}

// On registers a handler for a named event and returns its deregistration
// function. Multiple handlers per event are permitted.
func (m *Manager) On(event string, h Handler) (off func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlerID++
	id := m.handlerID
	if m.handlers[event] == nil {
		m.handlers[event] = make(map[uint64]Handler)
	}
	m.handlers[event][id] = h

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if hs, ok := m.handlers[event]; ok {
			delete(hs, id)
		}
	}
}

// IsConnected reports whether the manager currently holds an acknowledged
// connection. Diagnostic only: the answer may be stale against a concurrent
// transport failure and must not gate correctness.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) run(ctx context.Context, gen uint64, credential string) {
	events, err := m.transport.Open(ctx, credential)
	if err != nil {
		m.log.LogAttrs(ctx, slog.LevelWarn, "Push channel failed to open",
			logger.Component("connection"),
			logger.Error(err),
		)
		m.settle(gen, StateDisconnected)
		return
	}

	if !m.settle(gen, StateConnected) {
		// A newer Connect/Disconnect superseded this attempt while the
		// transport was opening.
		return
	}
	m.log.LogAttrs(ctx, slog.LevelDebug, "Push channel connected",
		logger.Component("connection"),
	)

	for ev := range events {
		m.dispatch(ev)
	}

	m.settle(gen, StateDisconnected)
	m.log.LogAttrs(ctx, slog.LevelDebug, "Push channel closed",
		logger.Component("connection"),
	)
}

// settle applies a transport-signalled state change unless a newer
// connection generation has taken over.
func (m *Manager) settle(gen uint64, state State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false
	}
	m.state = state
	return true
}

func (m *Manager) dispatch(ev Event) {
	m.mu.Lock()
	hs := make([]Handler, 0, len(m.handlers[ev.Name]))
	for _, h := range m.handlers[ev.Name] {
		hs = append(hs, h)
	}
	m.mu.Unlock()

	for _, h := range hs {
		h(ev.Data)
	}
}

func (m *Manager) teardownLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
}
