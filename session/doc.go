// Package session persists per-identity session records in a shared,
// namespaced Redis keyspace.
//
// # Keyspace
//
// For namespace ns and identity u the store owns exactly three key shapes:
//
//	ns:token:<u>       bearer credential string
//	ns:user:<u>        JSON-encoded profile
//	ns:lastActiveUser  identity name of the most recent login
//
// Credential and profile are written and removed together, so a record
// either exists in full or not at all. The last-active pointer only ever
// names an identity that holds a live record; clearing that identity also
// clears the pointer (atomically, via a Lua script).
//
// # Architecture boundaries
//
// This package owns persistence only. It never issues network requests to
// the API and never decides which identity is active — that is the
// resolver's job in the root package.
package session
