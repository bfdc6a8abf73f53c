// Package notisync keeps a client-resident notification preview and unread
// counter consistent across three asynchronous sources: a server-seeded
// initial snapshot, a persistent push channel delivering incremental events,
// and a periodic visibility-gated reconciliation poll.
//
// The engine is composed of three parts, each in its own package:
//
//   - pkg/store: the synchronization store, single source of truth for the
//     notification list and unread counter. Optimistic local mutation with
//     best-effort remote confirmation.
//   - pkg/connection: the push-channel connection manager. Owns at most one
//     live transport per credential and routes named events to handlers.
//   - pkg/lifecycle: the coordinator binding both components to the external
//     identity lifecycle and to the host's visibility signal.
//
// This root package holds the shared domain model. The engine is purely
// in-memory and session-scoped: state is seeded once an identity is known,
// mutated for the lifetime of that identity, and wiped on logout.
//
// # Basic Usage
//
//	remote, err := commerce.New(cfg, credential)
//	st := store.New(remote)
//	conn := connection.NewManager(connection.NewMemoryTransport())
//	coord := lifecycle.NewCoordinator(st, conn)
//	coord.Start(ctx)
//	defer coord.Close()
//
//	coord.SetIdentity(&lifecycle.Identity{UserID: "u1", Credential: token}, snapshot)
package notisync
