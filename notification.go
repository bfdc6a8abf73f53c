package notisync

import (
	"time"
)

// Type classifies a notification for presentation purposes only.
// Synchronization logic never branches on it.
type Type string

const (
	TypeOrderPlaced    Type = "order_placed"
	TypeOrderCancelled Type = "order_cancelled"
	TypeOrderReturned  Type = "order_returned"
	TypeLowStock       Type = "low_stock"
	TypeReviewCreated  Type = "review_created"
	TypeSystem         Type = "system"
)

// Notification is one user-facing event. Title, Message and Link are an
// opaque display payload; ID is stable and unique across all sources.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is a server-provided view of notification state: a capped preview
// list plus the authoritative unread total. The count may exceed the number of
// items materialized in the list.
type Snapshot struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}
