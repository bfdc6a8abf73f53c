package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/notisync"
	"github.com/dmitrymomot/notisync/pkg/async"
	"github.com/dmitrymomot/notisync/pkg/broadcast"
	"github.com/dmitrymomot/notisync/pkg/logger"
)

// DefaultCapacity is the preview list bound when no option overrides it.
const DefaultCapacity = 10

// State is the read-only projection exposed to UI consumers.
type State struct {
	Notifications []notisync.Notification
	UnreadCount   int
	Loading       bool
}

// Store is the single source of truth for the notification list and unread
// counter. All mutation methods are safe for concurrent use; external
// components consume state only through State and Subscribe.
type Store struct {
	mu       sync.Mutex
	items    []notisync.Notification
	unread   int
	loading  bool
	capacity int

	remote  Remote
	log     *slog.Logger
	changes *broadcast.Memory[State]
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the preview list bound.
// Panics on non-positive values to enforce fail-fast initialization.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n < 1 {
			panic("store: capacity must be positive")
		}
		s.capacity = n
	}
}

// WithLogger sets the logger for the Store.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Store bound to the given remote collaborator.
// Panics if remote is nil: constructing a store without its collaborator is
// programmer misuse, not a runtime condition.
func New(remote Remote, opts ...Option) *Store {
	if remote == nil {
		panic("store: nil remote")
	}

	s := &Store{
		capacity: DefaultCapacity,
		remote:   remote,
		log:      slog.Default(),
		changes:  broadcast.NewMemory[State](8),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe returns a change feed delivering a full State after every
// mutation. The subscription is released when ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context) broadcast.Subscriber[State] {
	return s.changes.Subscribe(ctx)
}

// Seed replaces the entire list and counter unconditionally (last seed wins).
// Used for the first snapshot after identity establishment and as the apply
// step of reconciliation.
func (s *Store) Seed(list []notisync.Notification, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = normalize(list, s.capacity)
	s.unread = max(count, 0)
	s.publishLocked()
}

// Append inserts a pushed notification, keeps the list sorted newest-first
// and capped, and increments the unread counter unless the record arrives
// already read.
//
// Append does not check the incoming ID against the existing list: the list
// is a capped preview, and a push racing a reconciliation may briefly show
// the same item twice until the next reconciliation replaces the list. That
// window is an accepted property of the sync model.
func (s *Store) Append(n notisync.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, _ := slices.BinarySearchFunc(s.items, n, func(a, b notisync.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	s.items = slices.Insert(s.items, at, n)
	if len(s.items) > s.capacity {
		s.items = s.items[:s.capacity]
	}
	if !n.Read {
		s.unread++
	}
	s.publishLocked()
}

// MarkAsRead optimistically flips the matching record to read and decrements
// the unread counter, floored at zero, before asking the remote collaborator
// to persist the change. A failed confirmation is logged and never rolls the
// local state back; the counter is corrected by the next reconciliation.
func (s *Store) MarkAsRead(ctx context.Context, id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			break
		}
	}
	s.unread = max(s.unread-1, 0)
	s.publishLocked()
	s.mu.Unlock()

	if err := s.remote.ConfirmRead(ctx, id); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "Failed to confirm mark-as-read, keeping optimistic local state",
			logger.Component("store"),
			logger.NotificationID(id),
			logger.Error(err),
		)
	}
}

// MarkAllAsRead is the optimistic bulk variant: every record becomes read and
// the unread counter resets to zero, with the same non-rollback policy on
// confirmation failure.
func (s *Store) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
	s.publishLocked()
	s.mu.Unlock()

	if err := s.remote.ConfirmReadAll(ctx); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "Failed to confirm mark-all-as-read, keeping optimistic local state",
			logger.Component("store"),
			logger.Error(err),
		)
	}
}

// SetUnreadCount overwrites the counter with an authoritative absolute value
// from the collaborator, floored at zero. This is the ingestion path for the
// push channel's counter event; it never increments.
func (s *Store) SetUnreadCount(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = max(count, 0)
	s.publishLocked()
}

// Reconcile pulls a fresh list and counter from the remote collaborator and
// applies them with seed semantics. At most one reconciliation runs at a
// time: while one is in flight, further calls are no-ops. List and counter
// fetches run concurrently and are applied independently, so a partial
// failure still refreshes whatever succeeded.
func (s *Store) Reconcile(ctx context.Context) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.log.LogAttrs(ctx, slog.LevelDebug, "Reconciliation already in flight, skipping",
			logger.Component("store"),
		)
		return
	}
	s.loading = true
	limit := s.capacity
	s.publishLocked()
	s.mu.Unlock()

	listFuture := async.Run(ctx, func(ctx context.Context) ([]notisync.Notification, error) {
		return s.remote.FetchNotifications(ctx, limit)
	})
	countFuture := async.Run(ctx, func(ctx context.Context) (int, error) {
		return s.remote.FetchUnreadCount(ctx)
	})

	list, listErr := listFuture.Await()
	count, countErr := countFuture.Await()

	if listErr != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "Failed to fetch notifications during reconciliation",
			logger.Component("store"),
			logger.Error(listErr),
		)
	}
	if countErr != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "Failed to fetch unread count during reconciliation",
			logger.Component("store"),
			logger.Error(countErr),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if listErr == nil {
		s.items = normalize(list, s.capacity)
	}
	if countErr == nil {
		s.unread = max(count, 0)
	}
	s.loading = false
	s.publishLocked()
}

// Reset wipes the store back to its empty state. Called on identity loss;
// the store is session-scoped and never persists across sessions.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.unread = 0
	s.loading = false
	s.publishLocked()
}

// Close shuts down the change feed. The store itself remains readable.
func (s *Store) Close() error {
	return s.changes.Close()
}

func (s *Store) stateLocked() State {
	return State{
		Notifications: slices.Clone(s.items),
		UnreadCount:   s.unread,
		Loading:       s.loading,
	}
}

func (s *Store) publishLocked() {
	s.changes.Publish(s.stateLocked())
}

// normalize sorts newest-first, drops records repeating an already-seen ID,
// and truncates to the capacity bound. Applied to full replacements only;
// Append intentionally skips the de-dup step.
func normalize(list []notisync.Notification, capacity int) []notisync.Notification {
	items := slices.Clone(list)
	slices.SortStableFunc(items, func(a, b notisync.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, n := range items {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	if len(out) > capacity {
		out = out[:capacity]
	}
	return out
}
