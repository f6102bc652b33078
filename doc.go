// Package ktxclient provides the client-side session layer for the ktx
// dormitory API: a multi-identity credential store, an active-identity
// resolver, and an authenticated request dispatcher with exactly-once
// handling of credential expiry.
//
// Several identities can be logged in concurrently against one shared
// store. Each identity's bearer token and cached profile live under their
// own namespaced keys, so operations on one identity never touch another's
// record. The identity used for a given call is resolved per navigation
// context: an explicit selector wins, the last identity that completed a
// login is the fallback.
//
// # Architecture boundaries
//
// ktxclient is the public surface. It exposes [Client], [Builder], [Config],
// and value types (Profile, SessionInfo, LoginResult, Link). Persistence
// lives in the session subpackage, request dispatch in transport, bearer
// inspection in token, and flow orchestration under internal/.
//
// # What this package must NOT do
//
//   - Interpret business-specific response bodies (reports, check-ins);
//     those are returned intact to the caller. See the dormapi subpackage
//     for typed wrappers.
//   - Retry, back off, or time out requests on its own. A call resolves
//     with a response or fails with a transport error, once.
//   - Hold ambient globals. All state hangs off a built [Client].
//
// # Concurrency contract
//
// Client methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. When concurrent requests all hit
// credential expiry, exactly one of them performs the logout side effect;
// the rest only fail their own call.
package ktxclient
