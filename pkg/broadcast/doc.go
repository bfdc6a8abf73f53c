// Package broadcast provides a minimal typed fan-out primitive used to push
// values from a single producer to many consumers without blocking the
// producer.
//
// The engine uses it in two places: the in-memory push transport publishes
// channel events through it, and the synchronization store publishes state
// snapshots to UI consumers through it.
//
// Delivery is best-effort: a subscriber whose buffer is full misses the value.
// That is acceptable for both call sites because every published value is a
// full snapshot or is followed by a reconciliation safety net.
//
//	b := broadcast.NewMemory[int](8)
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	b.Publish(42)
//	v := <-sub.C()
package broadcast
