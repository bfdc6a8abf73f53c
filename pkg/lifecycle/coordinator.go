package lifecycle

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notisync"
	"github.com/dmitrymomot/notisync/pkg/connection"
	"github.com/dmitrymomot/notisync/pkg/logger"
	"github.com/dmitrymomot/notisync/pkg/store"
)

// Identity is one authenticated session as seen by the engine. The identity
// system owns it; the coordinator only reacts to its transitions.
type Identity struct {
	UserID     string
	Credential string
}

// Coordinator drives the store and the connection manager through the
// identity and visibility lifecycle.
type Coordinator struct {
	store    *store.Store
	conn     *connection.Manager
	vis      Visibility
	clock    Clock
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	identity *Identity
	offs     []func()
	started  bool
	closed   bool

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConfig applies environment-derived settings. Zero values fall back to
// defaults.
func WithConfig(cfg Config) Option {
	return func(c *Coordinator) {
		if cfg.PollInterval > 0 {
			c.interval = cfg.PollInterval
		}
	}
}

// WithPollInterval overrides the reconciliation interval.
// Panics on non-positive values to enforce fail-fast initialization.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d <= 0 {
			panic("lifecycle: poll interval must be positive")
		}
		c.interval = d
	}
}

// WithVisibility sets the visibility source. Nil sources are ignored.
func WithVisibility(v Visibility) Option {
	return func(c *Coordinator) {
		if v != nil {
			c.vis = v
		}
	}
}

// WithClock sets the time source. Nil clocks are ignored.
func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger for the Coordinator.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCoordinator wires the coordinator to its two components.
// Panics if either is nil.
func NewCoordinator(st *store.Store, conn *connection.Manager, opts ...Option) *Coordinator {
	if st == nil {
		panic("lifecycle: nil store")
	}
	if conn == nil {
		panic("lifecycle: nil connection manager")
	}

	c := &Coordinator{
		store:    st,
		conn:     conn,
		vis:      AlwaysVisible{},
		clock:    SystemClock{},
		interval: DefaultPollInterval,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the reconciliation loop. Must be called exactly once before
// SetIdentity; calling it twice or after Close is programmer misuse and
// panics.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		panic("lifecycle: coordinator already started or closed")
	}
	c.started = true
	c.runCtx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run(c.runCtx)
}

// SetIdentity applies an identity transition.
//
// A new identity seeds the store with the provided snapshot when one is
// supplied (no loading flash) or triggers a reconciliation otherwise, then
// routes push events into the store and connects the push channel with the
// identity's credential. A nil identity means logout: the connection is torn
// down, the store is wiped, and the identity is forgotten. Repeating the
// current identity is a no-op.
func (c *Coordinator) SetIdentity(id *Identity, snapshot *notisync.Snapshot) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.started {
		c.mu.Unlock()
		panic("lifecycle: coordinator not started")
	}

	if id == nil {
		if c.identity == nil {
			c.mu.Unlock()
			return
		}
		userID := c.identity.UserID
		c.identity = nil
		c.detachLocked()
		ctx := c.runCtx
		c.mu.Unlock()

		c.conn.Disconnect()
		c.store.Reset()
		c.log.LogAttrs(ctx, slog.LevelDebug, "Identity lost, notification state wiped",
			logger.Component("lifecycle"),
			logger.UserID(userID),
		)
		return
	}

	if c.identity != nil && *c.identity == *id {
		c.mu.Unlock()
		return
	}

	c.detachLocked()
	ident := *id
	c.identity = &ident
	c.offs = []func(){
		c.conn.On(connection.EventNotification, c.handleNotification),
		c.conn.On(connection.EventUnreadCount, c.handleUnreadCount),
	}
	ctx := c.runCtx
	if snapshot == nil {
		// Adding to the wait group under the lock keeps it ordered against
		// Close, which marks closed before waiting.
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if snapshot != nil {
		c.store.Seed(snapshot.Notifications, snapshot.UnreadCount)
	} else {
		// No snapshot from the host; pull one. Run off the caller's path so
		// identity propagation is never blocked on the network.
		go func() {
			defer c.wg.Done()
			c.store.Reconcile(ctx)
		}()
	}

	c.conn.Connect(ctx, id.Credential)
	c.log.LogAttrs(ctx, slog.LevelDebug, "Identity established, push channel requested",
		logger.Component("lifecycle"),
		logger.UserID(id.UserID),
	)
}

// Close releases every timer, visibility listener, and handler registration
// made by the coordinator and tears down the connection. The store keeps its
// last-known state: discarding the coordinator is not a logout. Idempotent.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.detachLocked()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.conn.Disconnect()
	return nil
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	changes := c.vis.Changes()
	wasVisible := c.vis.Visible()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C():
			if c.hasIdentity() && c.vis.Visible() {
				c.store.Reconcile(ctx)
			}

		case visible, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if visible && !wasVisible && c.hasIdentity() {
				// Returning to the foreground catches up on anything a
				// dropped connection missed while backgrounded.
				c.store.Reconcile(ctx)
			}
			wasVisible = visible
		}
	}
}

func (c *Coordinator) hasIdentity() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity != nil
}

func (c *Coordinator) detachLocked() {
	for _, off := range c.offs {
		off()
	}
	c.offs = nil
}

func (c *Coordinator) handleNotification(data json.RawMessage) {
	var n notisync.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		c.log.LogAttrs(context.Background(), slog.LevelWarn, "Dropping malformed notification event",
			logger.Component("lifecycle"),
			logger.Event(connection.EventNotification),
			logger.Error(err),
		)
		return
	}
	c.store.Append(n)
}

func (c *Coordinator) handleUnreadCount(data json.RawMessage) {
	var count int
	if err := json.Unmarshal(data, &count); err != nil {
		c.log.LogAttrs(context.Background(), slog.LevelWarn, "Dropping malformed unread count event",
			logger.Component("lifecycle"),
			logger.Event(connection.EventUnreadCount),
			logger.Error(err),
		)
		return
	}
	// The event carries an authoritative absolute value, never a delta.
	c.store.SetUnreadCount(count)
}
