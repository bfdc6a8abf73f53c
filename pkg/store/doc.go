// Package store implements the synchronization store: the single writable
// location for client-side notification state.
//
// Three mutation sources feed it — a server-seeded snapshot, incremental push
// events, and a periodic reconciliation pull — and the store reconciles them
// without producing inconsistent state:
//
//   - Seed and Reconcile fully replace the list and counter (last write wins).
//   - Append prepends a pushed notification, keeps the list capped and sorted
//     newest-first, and bumps the unread counter.
//   - MarkAsRead and MarkAllAsRead mutate locally first, then confirm with the
//     remote collaborator best-effort. A failed confirmation is logged and the
//     optimistic local state is kept; availability wins over strict
//     consistency here.
//
// The list is a capped preview, not an accounting ledger. The unread counter
// is tracked independently and reflects the authoritative server-side total,
// which may exceed the number of items materialized locally.
//
// All methods are safe for concurrent use. UI consumers observe state either
// by polling State or by subscribing to the change feed:
//
//	sub := st.Subscribe(ctx)
//	for state := range sub.C() {
//		render(state)
//	}
package store
