package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned for any call whose credential the remote side
// rejected, whether or not that call won the interception race.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnavailable wraps transport-level failures (connection refused, DNS,
// context cancellation). No response was observed.
var ErrUnavailable = errors.New("endpoint unavailable")

// State is the dispatcher lifecycle state.
type State int32

const (
	// StateActive is the initial state: requests are dispatched normally.
	StateActive State = iota
	// StateLoggedOut is terminal: the auth-failure callback has run and the
	// surrounding page is being replaced. Requests still dispatch (callers
	// may have work in flight) but no further interception happens.
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// CredentialSource resolves the active identity and its bearer credential
// for one call. Empty credential means the request goes out anonymous.
type CredentialSource func(ctx context.Context) (identity, credential string)

// AuthFailureFunc runs exactly once per dispatcher lifetime, on the first
// authorization failure. It receives the identity whose credential was
// rejected ("" when the request went out anonymous).
type AuthFailureFunc func(ctx context.Context, identity string)

// Request describes one outbound call. Path is resolved against the
// dispatcher's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   io.Reader

	// ContentType labels Body. When empty and Body is non-nil the request
	// defaults to application/json — unless Binary is set, which leaves the
	// header unset so the boundary-aware writer (multipart) owns it.
	ContentType string
	Binary      bool
}

// Dispatcher issues authenticated requests against one API endpoint.
// Safe for concurrent use.
type Dispatcher struct {
	base          *url.URL
	client        *http.Client
	creds         CredentialSource
	onAuthFailure AuthFailureFunc
	state         atomic.Int32
}

var duplicateSlashes = regexp.MustCompile(`/{2,}`)

// New creates a [Dispatcher]. client may be nil, in which case
// http.DefaultClient is used. creds may be nil for a purely anonymous
// dispatcher; onAuthFailure may be nil when no interception is wanted.
func New(baseURL string, client *http.Client, creds CredentialSource, onAuthFailure AuthFailureFunc) (*Dispatcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Dispatcher{
		base:          base,
		client:        client,
		creds:         creds,
		onAuthFailure: onAuthFailure,
	}, nil
}

// State returns the current lifecycle state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Do issues the request. The caller owns the response body on any non-auth
// outcome, success or not; on 401/403 the body is closed here and the call
// fails with [ErrUnauthorized].
func (d *Dispatcher) Do(ctx context.Context, req Request) (*http.Response, error) {
	httpReq, identity, err := d.build(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		d.intercept(ctx, identity)
		return nil, fmt.Errorf("%w: %s %s", ErrUnauthorized, req.Method, req.Path)
	}

	return resp, nil
}

func (d *Dispatcher) build(ctx context.Context, req Request) (*http.Request, string, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := *d.base
	target.Path = duplicateSlashes.ReplaceAllString(singleJoin(d.base.Path, req.Path), "/")
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	switch {
	case req.ContentType != "":
		httpReq.Header.Set("Content-Type", req.ContentType)
	case req.Body != nil && !req.Binary && httpReq.Header.Get("Content-Type") == "":
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}

	var identity string
	if d.creds != nil {
		var credential string
		identity, credential = d.creds(ctx)
		if credential != "" {
			httpReq.Header.Set("Authorization", "Bearer "+credential)
		}
	}

	return httpReq, identity, nil
}

// intercept flips active → logged-out with a single CAS. Exactly one caller
// wins and runs the callback; everyone else returns immediately.
func (d *Dispatcher) intercept(ctx context.Context, identity string) {
	if !d.state.CompareAndSwap(int32(StateActive), int32(StateLoggedOut)) {
		return
	}
	if d.onAuthFailure != nil {
		d.onAuthFailure(ctx, identity)
	}
}

func singleJoin(base, path string) string {
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(base, "/") + path
}
