package lifecycle

import "sync"

// Visibility reports whether the host page is currently foreground-visible
// and signals transitions. The engine only reads it; the host adapter owns
// the underlying platform signal.
type Visibility interface {
	// Visible returns the current visibility.
	Visible() bool

	// Changes delivers visibility values on every transition. A nil channel
	// is permitted for sources that never change.
	Changes() <-chan bool
}

// AlwaysVisible is a Visibility source for hosts without a visibility signal:
// the page counts as permanently foregrounded.
type AlwaysVisible struct{}

func (AlwaysVisible) Visible() bool        { return true }
func (AlwaysVisible) Changes() <-chan bool { return nil }

// ManualVisibility is a host-driven Visibility source. The host adapter calls
// Set on each platform visibility change.
type ManualVisibility struct {
	mu      sync.Mutex
	visible bool
	ch      chan bool
}

// NewManualVisibility creates a manual source with the given initial state.
func NewManualVisibility(visible bool) *ManualVisibility {
	return &ManualVisibility{
		visible: visible,
		// Transitions are rare (user tabbing in and out); a small buffer
		// keeps Set non-blocking.
		ch: make(chan bool, 16),
	}
}

func (v *ManualVisibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *ManualVisibility) Changes() <-chan bool {
	return v.ch
}

// Set records a visibility change. Repeated values are ignored; only
// transitions are delivered.
func (v *ManualVisibility) Set(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.visible == visible {
		return
	}
	v.visible = visible

	select {
	case v.ch <- visible:
	default:
		// A full buffer only delays the foreground reconcile until the next
		// poll tick picks it up.
	}
}
