package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, sub, role string, userID int64, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":     sub,
		"role":    role,
		"user_id": userID,
		"exp":     exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestInspectReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	credential := mintToken(t, "amy", "admin", 7, exp)

	claims, err := Inspect(credential)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Subject != "amy" || claims.Role != "admin" || claims.UserID != 7 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("expected exp %v, got %v", exp, claims.ExpiresAt)
	}
}

func TestInspectOpaqueCredential(t *testing.T) {
	if _, err := Inspect("not-a-jwt"); !errors.Is(err, ErrOpaque) {
		t.Fatalf("expected ErrOpaque, got %v", err)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := mintToken(t, "amy", "student", 1, now.Add(-time.Minute))
	future := mintToken(t, "amy", "student", 1, now.Add(time.Minute))

	if !Expired(past, now) {
		t.Fatal("expected past token to read expired")
	}
	if Expired(future, now) {
		t.Fatal("expected future token to read live")
	}
	if Expired("opaque-credential", now) {
		t.Fatal("opaque credentials must never read expired")
	}
}
