// Package flows contains orchestration logic for multi-step client flows,
// decoupled from transport, storage, and the public API through explicit
// dependency structs of functions.
//
// The host package (ktxclient root) owns sentinel errors, audit events, and
// metrics; flows receive everything they need through deps and never import
// the root package.
package flows
