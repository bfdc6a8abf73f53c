// Package connection maintains at most one live push-channel connection per
// session credential and routes named, typed events to registered handlers.
//
// The manager knows nothing about notification semantics; it transports
// opaque events whose payloads are raw JSON. Event routing and state
// interpretation belong to the lifecycle coordinator.
//
// Connect is idempotent per credential and never fails synchronously:
// transport errors surface only as the absence of a Connected state. The
// manager does not reconnect on its own; the engine compensates for dropped
// connections with periodic reconciliation.
//
// Two transports ship with the package: an in-memory one backed by
// pkg/broadcast for tests and embedding hosts, and a Redis pub/sub one for
// deployments where the commerce backend fans events out through Redis.
package connection
