package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notisync"
	"github.com/dmitrymomot/notisync/pkg/store"
)

// MockRemote for testing Store against the commerce collaborator.
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) FetchNotifications(ctx context.Context, limit int) ([]notisync.Notification, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notisync.Notification), args.Error(1)
}

func (m *MockRemote) FetchUnreadCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRemote) ConfirmRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRemote) ConfirmReadAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func notif(id string, createdAt time.Time, read bool) notisync.Notification {
	return notisync.Notification{
		ID:        id,
		Type:      notisync.TypeOrderPlaced,
		Title:     "Order update",
		Message:   "Order " + id,
		Read:      read,
		CreatedAt: createdAt,
	}
}

func TestStore_New(t *testing.T) {
	t.Parallel()

	t.Run("nil remote panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { store.New(nil) })
	})

	t.Run("non-positive capacity panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { store.New(new(MockRemote), store.WithCapacity(0)) })
	})
}

func TestStore_Seed(t *testing.T) {
	t.Parallel()

	t.Run("seed replaces any prior state", func(t *testing.T) {
		t.Parallel()

		st := store.New(new(MockRemote))
		base := time.Now()

		st.Seed([]notisync.Notification{notif("old", base, false)}, 5)
		st.Append(notif("pushed", base.Add(time.Minute), false))

		fresh := []notisync.Notification{notif("new", base.Add(time.Hour), false)}
		st.Seed(fresh, 3)

		state := st.State()
		require.Len(t, state.Notifications, 1)
		assert.Equal(t, "new", state.Notifications[0].ID)
		assert.Equal(t, 3, state.UnreadCount)
	})

	t.Run("seed sorts newest first and truncates to capacity", func(t *testing.T) {
		t.Parallel()

		st := store.New(new(MockRemote), store.WithCapacity(3))
		base := time.Now()

		var list []notisync.Notification
		for i := 0; i < 5; i++ {
			list = append(list, notif(fmt.Sprintf("n%d", i), base.Add(time.Duration(i)*time.Minute), false))
		}

		st.Seed(list, 5)

		state := st.State()
		require.Len(t, state.Notifications, 3)
		assert.Equal(t, "n4", state.Notifications[0].ID)
		assert.Equal(t, "n3", state.Notifications[1].ID)
		assert.Equal(t, "n2", state.Notifications[2].ID)
	})

	t.Run("seed drops duplicate ids and clamps negative count", func(t *testing.T) {
		t.Parallel()

		st := store.New(new(MockRemote))
		base := time.Now()

		st.Seed([]notisync.Notification{
			notif("a", base.Add(time.Minute), false),
			notif("a", base, false),
			notif("b", base, false),
		}, -2)

		state := st.State()
		require.Len(t, state.Notifications, 2)
		assert.Equal(t, "a", state.Notifications[0].ID)
		assert.Equal(t, "b", state.Notifications[1].ID)
		assert.Zero(t, state.UnreadCount)
	})
}

func TestStore_Append(t *testing.T) {
	t.Parallel()

	t.Run("prepends newest and increments unread", func(t *testing.T) {
		t.Parallel()

		st := store.New(new(MockRemote))
		base := time.Now()

		st.Append(notif("a", base, false))
		st.Append(notif("b", base.Add(time.Minute), false))

		state := st.State()
		require.Len(t, state.Notifications, 2)
		assert.Equal(t, "b", state.Notifications[0].ID)
		assert.Equal(t, "a", state.Notifications[1].ID)
		assert.Equal(t, 2, state.UnreadCount)
	})

	t.Run("already-read record does not bump unread", func(t *testing.T) {
		t.Parallel()

		st := store.New(new(MockRemote))
		st.Append(notif("a", time.Now(), true))

		assert.Zero(t, st.State().UnreadCount)
	})

	t.Run("list never exceeds capacity and stays sorted", func(t *testing.T) {
		t.Parallel()

		st := store.New(new(MockRemote))
		base := time.Now()

		// Interleave newer and older arrivals to exercise ordered insertion.
		for i := 0; i < 25; i++ {
			offset := time.Duration(i) * time.Minute
			if i%3 == 0 {
				offset = -offset
			}
			st.Append(notif(fmt.Sprintf("n%d", i), base.Add(offset), false))

			state := st.State()
			assert.LessOrEqual(t, len(state.Notifications), store.DefaultCapacity)
			for j := 1; j < len(state.Notifications); j++ {
				assert.False(t, state.Notifications[j].CreatedAt.After(state.Notifications[j-1].CreatedAt),
					"list must stay sorted newest-first")
			}
		}

		assert.Equal(t, 25, st.State().UnreadCount, "unread counter is independent of the capped list")
	})

	t.Run("append does not de-duplicate pushed ids", func(t *testing.T) {
		t.Parallel()

		st := store.New(new(MockRemote))
		n := notif("dup", time.Now(), false)

		st.Append(n)
		st.Append(n)

		// The preview may show the same item twice until the next
		// reconciliation replaces the list. Characterized, not fixed.
		state := st.State()
		assert.Len(t, state.Notifications, 2)
		assert.Equal(t, 2, state.UnreadCount)
	})
}

func TestStore_MarkAsRead(t *testing.T) {
	t.Parallel()

	t.Run("optimistic flip and decrement", func(t *testing.T) {
		t.Parallel()

		remote := new(MockRemote)
		remote.On("ConfirmRead", mock.Anything, "a").Return(nil)

		st := store.New(remote)
		base := time.Now()
		st.Seed([]notisync.Notification{
			notif("b", base.Add(time.Minute), false),
			notif("a", base, false),
		}, 2)

		st.MarkAsRead(context.Background(), "a")

		state := st.State()
		assert.True(t, state.Notifications[1].Read)
		assert.False(t, state.Notifications[0].Read)
		assert.Equal(t, 1, state.UnreadCount)
		remote.AssertExpectations(t)
	})

	t.Run("local state is kept when confirmation fails", func(t *testing.T) {
		t.Parallel()

		remote := new(MockRemote)
		remote.On("ConfirmRead", mock.Anything, "a").Return(errors.New("network down"))

		st := store.New(remote)
		st.Seed([]notisync.Notification{notif("a", time.Now(), false)}, 1)

		st.MarkAsRead(context.Background(), "a")

		state := st.State()
		assert.True(t, state.Notifications[0].Read, "no rollback on remote failure")
		assert.Zero(t, state.UnreadCount)
		remote.AssertExpectations(t)
	})

	t.Run("unread count never goes negative", func(t *testing.T) {
		t.Parallel()

		remote := new(MockRemote)
		remote.On("ConfirmRead", mock.Anything, mock.Anything).Return(nil)

		st := store.New(remote)
		st.Seed([]notisync.Notification{notif("a", time.Now(), false)}, 1)

		for i := 0; i < 5; i++ {
			st.MarkAsRead(context.Background(), "a")
		}
		st.MarkAsRead(context.Background(), "missing")

		assert.Zero(t, st.State().UnreadCount)
	})
}

func TestStore_MarkAllAsRead(t *testing.T) {
	t.Parallel()

	t.Run("flips every record and zeroes the counter", func(t *testing.T) {
		t.Parallel()

		remote := new(MockRemote)
		remote.On("ConfirmReadAll", mock.Anything).Return(nil)

		st := store.New(remote)
		base := time.Now()
		st.Seed([]notisync.Notification{
			notif("a", base, false),
			notif("b", base.Add(time.Minute), false),
		}, 7)

		st.MarkAllAsRead(context.Background())

		state := st.State()
		for _, n := range state.Notifications {
			assert.True(t, n.Read)
		}
		assert.Zero(t, state.UnreadCount)
		remote.AssertExpectations(t)
	})

	t.Run("failed confirmation keeps optimistic state", func(t *testing.T) {
		t.Parallel()

		remote := new(MockRemote)
		remote.On("ConfirmReadAll", mock.Anything).Return(errors.New("network down"))

		st := store.New(remote)
		st.Seed([]notisync.Notification{notif("a", time.Now(), false)}, 1)

		st.MarkAllAsRead(context.Background())

		state := st.State()
		assert.True(t, state.Notifications[0].Read)
		assert.Zero(t, state.UnreadCount)
	})
}

func TestStore_Reconcile(t *testing.T) {
	t.Parallel()

	t.Run("replaces list and counter", func(t *testing.T) {
		t.Parallel()

		base := time.Now()
		remote := new(MockRemote)
		remote.On("FetchNotifications", mock.Anything, store.DefaultCapacity).
			Return([]notisync.Notification{notif("fresh", base, false)}, nil)
		remote.On("FetchUnreadCount", mock.Anything).Return(4, nil)

		st := store.New(remote)
		st.Seed([]notisync.Notification{notif("stale", base.Add(-time.Hour), false)}, 1)

		st.Reconcile(context.Background())

		state := st.State()
		require.Len(t, state.Notifications, 1)
		assert.Equal(t, "fresh", state.Notifications[0].ID)
		assert.Equal(t, 4, state.UnreadCount)
		assert.False(t, state.Loading)
		remote.AssertExpectations(t)
	})

	t.Run("partial failure applies what succeeded", func(t *testing.T) {
		t.Parallel()

		remote := new(MockRemote)
		remote.On("FetchNotifications", mock.Anything, mock.Anything).
			Return(nil, errors.New("list endpoint down"))
		remote.On("FetchUnreadCount", mock.Anything).Return(9, nil)

		st := store.New(remote)
		st.Seed([]notisync.Notification{notif("kept", time.Now(), false)}, 1)

		st.Reconcile(context.Background())

		state := st.State()
		require.Len(t, state.Notifications, 1)
		assert.Equal(t, "kept", state.Notifications[0].ID, "last-known-good list survives fetch failure")
		assert.Equal(t, 9, state.UnreadCount)
		assert.False(t, state.Loading)
	})

	t.Run("overlapping reconciliations are skipped", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		var fetches sync.WaitGroup
		fetches.Add(1)

		remote := new(MockRemote)
		remote.On("FetchNotifications", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				fetches.Done()
				<-release
			}).
			Return([]notisync.Notification{}, nil).Once()
		remote.On("FetchUnreadCount", mock.Anything).Return(0, nil).Once()

		st := store.New(remote)

		done := make(chan struct{})
		go func() {
			defer close(done)
			st.Reconcile(context.Background())
		}()

		fetches.Wait()
		assert.True(t, st.State().Loading)

		// Second call while the first is in flight must not hit the remote.
		st.Reconcile(context.Background())

		close(release)
		<-done
		remote.AssertExpectations(t)
	})

	t.Run("push event after reconcile reintroduces an item", func(t *testing.T) {
		t.Parallel()

		base := time.Now()
		resolved := notif("a", base, true)

		remote := new(MockRemote)
		remote.On("FetchNotifications", mock.Anything, mock.Anything).
			Return([]notisync.Notification{resolved}, nil)
		remote.On("FetchUnreadCount", mock.Anything).Return(0, nil)

		st := store.New(remote)
		st.Reconcile(context.Background())

		// A push for the same id arriving after the reconcile is applied on
		// top of it: the accepted cross-source inconsistency window.
		st.Append(notif("a", base, false))

		state := st.State()
		assert.Len(t, state.Notifications, 2)
		assert.Equal(t, 1, state.UnreadCount)
	})
}

func TestStore_SetUnreadCount(t *testing.T) {
	t.Parallel()

	st := store.New(new(MockRemote))
	st.Seed(nil, 3)

	st.SetUnreadCount(12)
	assert.Equal(t, 12, st.State().UnreadCount, "absolute overwrite, not an increment")

	st.SetUnreadCount(-1)
	assert.Zero(t, st.State().UnreadCount)
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()

	st := store.New(new(MockRemote))
	st.Seed([]notisync.Notification{notif("a", time.Now(), false)}, 5)

	st.Reset()

	state := st.State()
	assert.Empty(t, state.Notifications)
	assert.Zero(t, state.UnreadCount)
	assert.False(t, state.Loading)
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()

	st := store.New(new(MockRemote))
	defer st.Close()

	sub := st.Subscribe(context.Background())
	defer sub.Close()

	st.Seed([]notisync.Notification{notif("a", time.Now(), false)}, 1)

	select {
	case state := <-sub.C():
		require.Len(t, state.Notifications, 1)
		assert.Equal(t, 1, state.UnreadCount)
	case <-time.After(time.Second):
		t.Fatal("no state change delivered to subscriber")
	}
}
