package ktxclient

import "errors"

var (
	// ErrClientNotReady is returned when a Client method is called on a nil
	// or incompletely built client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrInvalidCredentials is returned by Login when the token endpoint
	// rejects the username/password pair. No session record is created.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProfileUnavailable is returned by Login when a token was issued but
	// the follow-up profile fetch failed. The token is still valid; it is
	// carried on the returned *ProfileError so the caller can retry.
	ErrProfileUnavailable = errors.New("could not load profile")
	// ErrUnauthorized is returned by authenticated calls whose credential
	// the remote side rejected as invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoActiveIdentity is returned when neither a navigation selector nor
	// the last-active pointer yields an identity.
	ErrNoActiveIdentity = errors.New("no active identity")
	// ErrSessionNotFound is returned when the named identity holds no
	// session record.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEndpointUnavailable wraps transport-level failures reaching the
	// remote API. It is never retried automatically.
	ErrEndpointUnavailable = errors.New("endpoint unavailable")
	// ErrForbiddenRole is returned by RequireRole when the active identity's
	// cached role is not in the allowed set.
	ErrForbiddenRole = errors.New("role not permitted")
)

// ProfileError carries the issued token alongside ErrProfileUnavailable so
// callers can retry the profile fetch without a second login.
type ProfileError struct {
	Identity    string
	AccessToken string
	Cause       error
}

func (e *ProfileError) Error() string {
	return ErrProfileUnavailable.Error()
}

func (e *ProfileError) Unwrap() []error {
	return []error{ErrProfileUnavailable, e.Cause}
}
