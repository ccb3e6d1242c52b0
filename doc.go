// Package donorlink provides the client-side session and shared-state core
// for the DonorLink blood-donation coordination application: a persistent
// session store, a role-based authorization guard, and a process-wide
// broadcast store for shared profile state.
//
// The package is designed for embedding in view shells: Client methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// donorlink is the public surface. It exposes [Client], [Builder], [Config],
// and value types (Session, MetricsSnapshot, AuditEvent). Persistence is an
// injected [kv.Store] capability; the remote authentication backend is
// consumed through [authapi.Client]; navigation is a fire-and-forget
// collaborator supplied by the embedding shell.
//
// # What this package must NOT do
//
//   - Verify credentials locally. Passwords travel to the remote backend and
//     are never hashed, compared, or retained here.
//   - Treat a persistence failure as fatal. The in-memory snapshot stays
//     authoritative; failures degrade to absent-session or absent-value.
//   - Issue navigation itself. Redirect decisions are computed by the guard
//     state machine and handed to the shell's navigator exactly once per
//     transition.
//
// # Failure contract
//
// No error in this subsystem crashes the process. A malformed persisted
// record is discarded and reported through the audit sink; a rejected login
// surfaces [ErrAuthentication]; an unreachable backend surfaces
// [ErrTransport]; storage failures surface only through audit and metrics.
package donorlink
