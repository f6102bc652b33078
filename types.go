package ktxclient

import (
	"time"

	"github.com/ktxhub/ktxclient/session"
)

// Profile is the cached snapshot of a user's attributes, keyed by identity.
// It is non-authoritative: it may go stale and is only replaced on login or
// an explicit profile fetch.
type Profile = session.Profile

// SessionContext is the resolved view of the current navigation context:
// which identity is active plus its stored credential and profile. All
// fields are zero when no identity could be resolved.
type SessionContext struct {
	Identity   string
	Credential string
	Profile    Profile
}

// SessionInfo is the introspection view of one stored session, used to
// render session-switcher lists. ExpiresAt is read from the bearer token
// without verifying it (the server stays authoritative) and is zero when
// the credential is not an inspectable token.
type SessionInfo struct {
	Identity  string
	Role      string
	FullName  string
	ExpiresAt time.Time
	Active    bool
}

// LoginResult is returned by [Client.Login] on success.
type LoginResult struct {
	Identity    string
	Role        string
	AccessToken string
	Profile     Profile

	// Landing is the role-based destination with the identity selector
	// already attached, e.g. "/admin/admin.html?u=alice".
	Landing string
}

// Link is one navigation target in a page's link model. Only links that
// explicitly opt in via KeepIdentity are rewritten to carry the identity
// selector; external links stay untouched.
type Link struct {
	Href         string
	KeepIdentity bool
}
