package connection

import (
	"encoding/json"
)

// Event names delivered over the push channel.
const (
	// EventNotification carries one notification record.
	EventNotification = "notification"
	// EventUnreadCount carries an authoritative absolute unread total.
	EventUnreadCount = "unreadCount"
)

// Event is one named message from the push channel. Data is left opaque;
// handlers decode it according to the event name.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// NewEvent builds an Event by marshaling payload into its Data field.
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: data}, nil
}
