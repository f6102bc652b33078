package ktxclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ktxhub/ktxclient/internal/flows"
	"github.com/ktxhub/ktxclient/session"
	"github.com/ktxhub/ktxclient/transport"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a token, fetches the profile, persists
// the session record, and marks the new identity active. On success the
// returned result carries the role-based landing path with the identity
// selector attached.
//
// A rejected credential fails with [ErrInvalidCredentials]. A profile fetch
// failure after the token was issued fails with a [*ProfileError] that
// retains the token, and no session record is created.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}

	deps := flows.LoginDeps{
		ExchangeCredentials: c.exchangeCredentials,
		FetchProfile:        c.fetchProfile,
		SaveSession: func(ctx context.Context, rec session.Record) error {
			if err := c.store.Save(ctx, rec); err != nil {
				return err
			}
			c.metricInc(MetricSessionSaved)
			return nil
		},
		LandingFor: c.landingFor,

		InvalidInput: ErrInvalidCredentials,
		ProfileUnavailable: func(identity, accessToken string, cause error) error {
			return &ProfileError{Identity: identity, AccessToken: accessToken, Cause: cause}
		},
	}

	res, err := flows.Login(ctx, deps, username, password)
	if err != nil {
		c.recordLoginFailure(ctx, username, err)
		return nil, err
	}

	if err := c.store.SetLastActive(ctx, res.Identity); err != nil {
		return nil, err
	}

	c.metricInc(MetricLoginSuccess)
	c.emit(ctx, AuditEvent{
		EventType: EventLoginSuccess,
		Identity:  res.Identity,
		Success:   true,
		Metadata:  map[string]string{"role": res.Role},
	})

	return &LoginResult{
		Identity:    res.Identity,
		Role:        res.Role,
		AccessToken: res.AccessToken,
		Profile:     res.Profile,
		Landing:     res.Landing,
	}, nil
}

// CompleteLogin retries the profile fetch for a token obtained earlier,
// typically from a [*ProfileError], and persists the session on success.
func (c *Client) CompleteLogin(ctx context.Context, accessToken string) (*LoginResult, error) {
	if c == nil || c.store == nil {
		return nil, ErrClientNotReady
	}

	profile, err := c.fetchProfile(ctx, accessToken)
	if err != nil {
		c.metricInc(MetricProfileFetchFailure)
		return nil, &ProfileError{AccessToken: accessToken, Cause: err}
	}

	rec := session.Record{
		Identity:   profile.Username,
		Credential: accessToken,
		Profile:    profile,
	}
	if err := c.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	c.metricInc(MetricSessionSaved)

	if err := c.store.SetLastActive(ctx, rec.Identity); err != nil {
		return nil, err
	}

	c.metricInc(MetricLoginSuccess)
	c.emit(ctx, AuditEvent{
		EventType: EventLoginSuccess,
		Identity:  rec.Identity,
		Success:   true,
		Metadata:  map[string]string{"role": profile.Role},
	})

	return &LoginResult{
		Identity:    rec.Identity,
		Role:        profile.Role,
		AccessToken: accessToken,
		Profile:     profile,
		Landing:     c.landingFor(profile.Role, rec.Identity),
	}, nil
}

// Register creates a new account through the anonymous dispatcher. It does
// not log the new user in; callers follow up with [Client.Login].
func (c *Client) Register(ctx context.Context, username, password, fullName string) error {
	if c == nil || c.authAPI == nil {
		return ErrClientNotReady
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}

	body := map[string]string{
		"username":  username,
		"password":  password,
		"full_name": fullName,
	}
	resp, err := c.authAPI.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.config.Endpoint.RegisterPath,
		Body:   encodeJSON(body),
	})
	if err != nil {
		if errors.Is(err, transport.ErrUnavailable) {
			return fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	c.emit(ctx, AuditEvent{
		EventType: EventRegisterSuccess,
		Identity:  username,
		Success:   true,
	})
	return nil
}

// exchangeCredentials POSTs the form-encoded credential pair to the token
// endpoint. It goes through the anonymous dispatcher: a 401 here means bad
// credentials, never an expired session, so no interception fires.
func (c *Client) exchangeCredentials(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.authAPI.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        c.config.Endpoint.TokenPath,
		Body:        strings.NewReader(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return "", fmt.Errorf("%w: credential rejected", ErrInvalidCredentials)
		}
		if errors.Is(err, transport.ErrUnavailable) {
			return "", fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	// 400 also means the endpoint rejected the credential pair (malformed
	// or missing fields); the caller sees one error either way.
	if resp.StatusCode == http.StatusBadRequest {
		return "", fmt.Errorf("%w: credential rejected", ErrInvalidCredentials)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp)
	}

	var tr tokenResponse
	if err := decodeJSON(resp, &tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned no access token", ErrEndpointUnavailable)
	}
	return tr.AccessToken, nil
}

// fetchProfile reads the authenticated user's profile with an explicitly
// attached credential, bypassing the store. The anonymous dispatcher is used
// so a failure here never trips the session-expiry interrupt mid-login.
func (c *Client) fetchProfile(ctx context.Context, accessToken string) (session.Profile, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.authAPI.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.config.Endpoint.ProfilePath,
		Header: header,
	})
	if err != nil {
		return session.Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return session.Profile{}, newAPIError(resp)
	}

	var profile session.Profile
	if err := decodeJSON(resp, &profile); err != nil {
		return session.Profile{}, err
	}
	return profile, nil
}

func (c *Client) recordLoginFailure(ctx context.Context, username string, cause error) {
	var pe *ProfileError
	if errors.As(cause, &pe) {
		c.metricInc(MetricProfileFetchFailure)
		c.emit(ctx, AuditEvent{
			EventType: EventProfileFetchFailure,
			Identity:  pe.Identity,
			Success:   false,
			Error:     cause.Error(),
		})
		return
	}

	c.metricInc(MetricLoginFailure)
	c.emit(ctx, AuditEvent{
		EventType: EventLoginFailure,
		Identity:  strings.TrimSpace(username),
		Success:   false,
		Error:     cause.Error(),
	})
}
