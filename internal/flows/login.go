package flows

import (
	"context"
	"strings"

	"github.com/ktxhub/ktxclient/session"
)

// LoginResult is the flow-local login outcome.
type LoginResult struct {
	Identity    string
	Role        string
	AccessToken string
	Profile     session.Profile
	Landing     string
}

// LoginDeps captures the login flow's dependencies. ExchangeCredentials and
// FetchProfile surface host-level sentinel errors themselves;
// ProfileUnavailable constructs the distinct token-retaining error for a
// profile fetch that failed after a token was already issued.
type LoginDeps struct {
	ExchangeCredentials func(ctx context.Context, username, password string) (string, error)
	FetchProfile        func(ctx context.Context, accessToken string) (session.Profile, error)
	SaveSession         func(ctx context.Context, rec session.Record) error
	LandingFor          func(role, identity string) string

	InvalidInput       error
	ProfileUnavailable func(identity, accessToken string, cause error) error
}

// Login runs the credential exchange, profile fetch, persistence, and
// landing computation in order. No session record is created unless both
// the token and the profile were obtained; a profile failure after token
// issuance keeps the token alive on the returned error.
func Login(ctx context.Context, deps LoginDeps, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, deps.InvalidInput
	}

	accessToken, err := deps.ExchangeCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	profile, err := deps.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, deps.ProfileUnavailable(username, accessToken, err)
	}

	// The server's view of the username is authoritative for the namespace
	// key; the submitted one only matters when the profile omits it.
	identity := profile.Username
	if identity == "" {
		identity = username
		profile.Username = username
	}

	rec := session.Record{
		Identity:   identity,
		Credential: accessToken,
		Profile:    profile,
	}
	if err := deps.SaveSession(ctx, rec); err != nil {
		return nil, err
	}

	return &LoginResult{
		Identity:    identity,
		Role:        profile.Role,
		AccessToken: accessToken,
		Profile:     profile,
		Landing:     deps.LandingFor(profile.Role, identity),
	}, nil
}
