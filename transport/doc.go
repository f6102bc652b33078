// Package transport dispatches authenticated requests to the ktx API.
//
// A [Dispatcher] resolves the active identity's bearer credential for every
// call, normalizes headers, and intercepts authorization failures exactly
// once per dispatcher lifetime: the first 401/403 flips an explicit state
// machine from active to logged-out and runs the configured auth-failure
// callback; every concurrent loser still fails its own call with
// [ErrUnauthorized] but performs no side effect.
//
// # What this package must NOT do
//
//   - Read or write the session store directly (the credential source and
//     auth-failure callback are injected).
//   - Interpret non-auth error bodies; non-2xx responses other than 401/403
//     are returned intact.
//   - Retry or time out on its own. Deadlines belong to the injected
//     http.Client and the caller's context.
package transport
