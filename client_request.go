package ktxclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ktxhub/ktxclient/session"
	"github.com/ktxhub/ktxclient/transport"
)

// APIError carries a non-2xx, non-auth response body back to the caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// Request issues one authenticated call through the intercepting dispatcher.
// The active identity's credential is attached automatically; a 401/403
// answer fails with [ErrUnauthorized] and, once per client lifetime, runs
// the logout interrupt. The caller owns the response body on every non-auth
// outcome.
func (c *Client) Request(ctx context.Context, req transport.Request) (*http.Response, error) {
	if c == nil || c.api == nil {
		return nil, ErrClientNotReady
	}

	c.metricInc(MetricRequestIssued)
	start := time.Now()

	resp, err := c.api.Do(ctx, req)
	c.observeLatency(MetricRequestLatency, time.Since(start))

	if err != nil {
		switch {
		case errors.Is(err, transport.ErrUnauthorized):
			c.metricInc(MetricRequestUnauthorized)
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		case errors.Is(err, transport.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
		}
		return nil, err
	}
	return resp, nil
}

// RequestJSON issues the call and decodes a 2xx response body into out.
// Non-2xx responses fail with [*APIError]; out may be nil to discard the
// body.
func (c *Client) RequestJSON(ctx context.Context, req transport.Request, out any) error {
	resp, err := c.Request(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeJSON(resp, out)
}

// Me fetches the authenticated user's profile from the server and refreshes
// the stored snapshot for the active identity.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	sc, err := c.Context(ctx)
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	err = c.RequestJSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.config.Endpoint.ProfilePath,
	}, &profile)
	if err != nil {
		return Profile{}, err
	}

	// Refresh best-effort; the fetched profile is the result either way.
	rec := session.Record{Identity: sc.Identity, Credential: sc.Credential, Profile: profile}
	if err := c.store.Save(ctx, rec); err == nil {
		c.metricInc(MetricSessionSaved)
	}
	return profile, nil
}

// RequireRole resolves the active session and checks its stored role
// against the allowed set. An empty set admits any live session. Surfaces
// gate on this before rendering; the server remains authoritative and
// re-checks every call.
func (c *Client) RequireRole(ctx context.Context, roles ...string) (SessionContext, error) {
	sc, err := c.Context(ctx)
	if err != nil {
		return SessionContext{}, err
	}
	if len(roles) == 0 {
		return sc, nil
	}
	for _, role := range roles {
		if sc.Profile.Role == role {
			return sc, nil
		}
	}
	return SessionContext{}, fmt.Errorf("%w: role %q not in allowed set", ErrForbiddenRole, sc.Profile.Role)
}

func (c *Client) observeLatency(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

func encodeJSON(v any) io.Reader {
	buf := &bytes.Buffer{}
	json.NewEncoder(buf).Encode(v)
	return buf
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}
