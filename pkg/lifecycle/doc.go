// Package lifecycle binds the synchronization store and the connection
// manager to the external identity lifecycle and to the host's visibility
// signal. The coordinator is the only component that decides when to connect,
// poll, or tear down.
//
// Behavior:
//
//   - When an identity becomes known, the store is seeded with the provided
//     snapshot (avoiding a loading flash) or reconciled when no snapshot is
//     supplied, push events are routed into the store, and the connection
//     manager is connected with the identity's credential.
//   - While an identity is known, a recurring timer triggers a reconciliation
//     whenever the host is foreground-visible, and a background-to-foreground
//     transition triggers one immediately. This is the safety net for push
//     events missed during a dropped connection.
//   - On identity loss the connection is torn down, the store is reset, and
//     the last-known identity is forgotten.
//   - Close releases every timer, visibility listener, and handler
//     registration; nothing registered by the coordinator outlives it.
//
// The clock and visibility source are injected so tests can drive fake time
// and visibility transitions deterministically.
package lifecycle
