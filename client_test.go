package ktxclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ktxhub/ktxclient/session"
	"github.com/redis/go-redis/v9"
)

type testEnv struct {
	client  *Client
	mr      *miniredis.Miniredis
	server  *httptest.Server
	notices []string
	visits  []string
}

func newTestEnv(t *testing.T, handler http.Handler, configure ...func(*Builder)) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	if handler == nil {
		handler = http.NotFoundHandler()
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	env := &testEnv{mr: mr, server: server}

	b := New().
		WithBaseURL(server.URL).
		WithRedis(rdb).
		WithHTTPClient(server.Client()).
		WithNotifier(func(message string) { env.notices = append(env.notices, message) }).
		WithNavigator(func(target string) { env.visits = append(env.visits, target) })
	for _, fn := range configure {
		fn(b)
	}

	client, err := b.Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(client.Close)

	env.client = client
	return env
}

// seedSession writes a record straight into the store, bypassing the login
// flow, and optionally marks it active.
func (e *testEnv) seedSession(t *testing.T, identity, credential, role string, active bool) {
	t.Helper()

	rec := session.Record{
		Identity:   identity,
		Credential: credential,
		Profile: session.Profile{
			ID:       1,
			Username: identity,
			FullName: "Test " + identity,
			Role:     role,
		},
	}
	ctx := context.Background()
	if err := e.client.store.Save(ctx, rec); err != nil {
		t.Fatalf("seed session %s: %v", identity, err)
	}
	if active {
		if err := e.client.store.SetLastActive(ctx, identity); err != nil {
			t.Fatalf("seed last active %s: %v", identity, err)
		}
	}
}

var testTokenExpiry = time.Now().Add(2 * time.Hour).Truncate(time.Second)

func testToken(t *testing.T, username string, userID int64, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":     username,
		"user_id": userID,
		"role":    role,
		"exp":     jwt.NewNumericDate(testTokenExpiry).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}
