package ktxclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ktxhub/ktxclient/session"
)

// fakeBackend mimics the auth endpoints: form-encoded token exchange, then
// a bearer-gated profile read.
type fakeBackend struct {
	t        *testing.T
	password string
	profile  session.Profile
	token    string

	profileBroken atomic.Bool
	profileCalls  atomic.Int64
}

func newFakeBackend(t *testing.T, username, password, role string) *fakeBackend {
	return &fakeBackend{
		t:        t,
		password: password,
		token:    testToken(t, username, 7, role),
		profile: session.Profile{
			ID:       7,
			Username: username,
			FullName: "Test " + username,
			Role:     role,
		},
	}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/token":
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			b.t.Errorf("token endpoint content type: %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.PostFormValue("username") != b.profile.Username || r.PostFormValue("password") != b.password {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		writeJSON(b.t, w, http.StatusOK, map[string]string{
			"access_token": b.token,
			"token_type":   "bearer",
		})
	case "/auth/users/me":
		b.profileCalls.Add(1)
		if b.profileBroken.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+b.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(b.t, w, http.StatusOK, b.profile)
	case "/auth/register":
		w.WriteHeader(http.StatusCreated)
	default:
		http.NotFound(w, r)
	}
}

func TestLoginSuccessPersistsSessionAndRoutes(t *testing.T) {
	backend := newFakeBackend(t, "amy", "s3cret", "student")
	env := newTestEnv(t, backend)

	res, err := env.client.Login(context.Background(), "amy", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Identity != "amy" || res.Role != "student" || res.AccessToken != backend.token {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Landing != "/student/student.html?u=amy" {
		t.Fatalf("member landing: %q", res.Landing)
	}

	// The new identity is active and its record is intact.
	sc, err := env.client.Context(context.Background())
	if err != nil {
		t.Fatalf("context after login: %v", err)
	}
	if sc.Identity != "amy" || sc.Credential != backend.token {
		t.Fatalf("unexpected context: %+v", sc)
	}
}

func TestLoginAdminLanding(t *testing.T) {
	backend := newFakeBackend(t, "root", "s3cret", "admin")
	env := newTestEnv(t, backend)

	res, err := env.client.Login(context.Background(), "root", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Landing != "/admin/admin.html?u=root" {
		t.Fatalf("admin landing: %q", res.Landing)
	}
}

func TestLoginTrimsUsername(t *testing.T) {
	backend := newFakeBackend(t, "amy", "s3cret", "student")
	env := newTestEnv(t, backend)

	res, err := env.client.Login(context.Background(), "  amy  ", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Identity != "amy" {
		t.Fatalf("identity not trimmed: %q", res.Identity)
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	backend := newFakeBackend(t, "amy", "s3cret", "student")
	env := newTestEnv(t, backend)

	_, err := env.client.Login(context.Background(), "amy", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	// Bad credentials never create a record and never trip the logout
	// interrupt.
	if _, err := env.client.ActiveIdentity(context.Background()); !errors.Is(err, ErrNoActiveIdentity) {
		t.Fatalf("no session should exist, got %v", err)
	}
	if got := env.client.State().String(); got != "active" {
		t.Fatalf("login failure must not flip dispatcher state: %s", got)
	}
	if len(env.notices) != 0 || len(env.visits) != 0 {
		t.Fatalf("no interrupt hooks should fire: %v %v", env.notices, env.visits)
	}
}

func TestLoginBadRequestFromTokenEndpoint(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "malformed form", http.StatusBadRequest)
	})
	env := newTestEnv(t, handler)

	_, err := env.client.Login(context.Background(), "amy", "s3cret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("400 from the token endpoint should map like a rejection, got %v", err)
	}
	if _, err := env.client.ActiveIdentity(context.Background()); !errors.Is(err, ErrNoActiveIdentity) {
		t.Fatalf("no session should exist, got %v", err)
	}
}

func TestLoginEmptyInput(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.client.Login(context.Background(), "", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty username: %v", err)
	}
	if _, err := env.client.Login(context.Background(), "amy", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty password: %v", err)
	}
}

func TestLoginProfileFailureRetainsToken(t *testing.T) {
	backend := newFakeBackend(t, "amy", "s3cret", "student")
	backend.profileBroken.Store(true)
	env := newTestEnv(t, backend)

	_, err := env.client.Login(context.Background(), "amy", "s3cret")
	if !errors.Is(err, ErrProfileUnavailable) {
		t.Fatalf("want ErrProfileUnavailable, got %v", err)
	}

	var pe *ProfileError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ProfileError, got %T", err)
	}
	if pe.AccessToken != backend.token {
		t.Fatal("issued token must survive the profile failure")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("profile failure must stay distinct from credential rejection")
	}

	// Half a login is no login: nothing persisted.
	if _, err := env.client.ActiveIdentity(context.Background()); !errors.Is(err, ErrNoActiveIdentity) {
		t.Fatalf("no session should exist, got %v", err)
	}
}

func TestCompleteLoginResumesWithRetainedToken(t *testing.T) {
	backend := newFakeBackend(t, "amy", "s3cret", "student")
	backend.profileBroken.Store(true)
	env := newTestEnv(t, backend)

	_, err := env.client.Login(context.Background(), "amy", "s3cret")
	var pe *ProfileError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ProfileError, got %v", err)
	}

	backend.profileBroken.Store(false)
	res, err := env.client.CompleteLogin(context.Background(), pe.AccessToken)
	if err != nil {
		t.Fatalf("complete login: %v", err)
	}
	if res.Identity != "amy" || res.Landing != "/student/student.html?u=amy" {
		t.Fatalf("unexpected result: %+v", res)
	}

	sc, err := env.client.Context(context.Background())
	if err != nil || sc.Identity != "amy" {
		t.Fatalf("session should now exist: %+v, %v", sc, err)
	}
}

func TestLoginSecondIdentityCoexists(t *testing.T) {
	backend := newFakeBackend(t, "amy", "s3cret", "student")
	env := newTestEnv(t, backend)
	env.seedSession(t, "bob", "token-bob", "student", true)

	res, err := env.client.Login(context.Background(), "amy", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Identity != "amy" {
		t.Fatalf("identity: %q", res.Identity)
	}

	// The newcomer takes the pointer; the earlier session stays readable.
	identity, err := env.client.ActiveIdentity(context.Background())
	if err != nil || identity != "amy" {
		t.Fatalf("amy should be active: %q, %v", identity, err)
	}
	ctx := WithIdentitySelector(context.Background(), "bob")
	if _, err := env.client.Context(ctx); err != nil {
		t.Fatalf("bob should survive: %v", err)
	}
}

func TestRegister(t *testing.T) {
	backend := newFakeBackend(t, "amy", "s3cret", "student")
	env := newTestEnv(t, backend)

	if err := env.client.Register(context.Background(), "newbie", "pw123", "New Person"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := env.client.Register(context.Background(), "", "pw123", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty username: %v", err)
	}
}
