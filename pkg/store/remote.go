package store

import (
	"context"

	"github.com/dmitrymomot/notisync"
)

// Remote is the commerce API collaborator the store pulls from and confirms
// mutations against. Implementations must be safe for concurrent use.
type Remote interface {
	// FetchNotifications returns the newest notifications, at most limit.
	FetchNotifications(ctx context.Context, limit int) ([]notisync.Notification, error)

	// FetchUnreadCount returns the authoritative unread total.
	FetchUnreadCount(ctx context.Context) (int, error)

	// ConfirmRead persists a single mark-as-read server-side.
	ConfirmRead(ctx context.Context, id string) error

	// ConfirmReadAll persists a bulk mark-all-as-read server-side.
	ConfirmReadAll(ctx context.Context) error
}
