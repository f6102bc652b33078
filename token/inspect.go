package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaque is returned when a credential is not an inspectable token.
// Callers should treat such credentials as valid-until-rejected.
var ErrOpaque = errors.New("credential is opaque")

// Claims is the informational view of a bearer credential. Zero fields mean
// the token did not carry the claim.
type Claims struct {
	Subject   string
	UserID    int64
	Role      string
	ExpiresAt time.Time
}

type accessClaims struct {
	UserID int64  `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes the credential without verifying its signature.
func Inspect(credential string) (Claims, error) {
	var claims accessClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(credential, &claims); err != nil {
		return Claims{}, errors.Join(ErrOpaque, err)
	}

	out := Claims{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Expired reports whether the credential carries an exp claim in the past.
// Opaque credentials and tokens without exp are never reported expired;
// the server decides for those.
func Expired(credential string, now time.Time) bool {
	claims, err := Inspect(credential)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
