// Package token decodes session tokens issued by the platform backend.
//
// The client never verifies token signatures: it holds no signing key, and
// the server re-validates every request anyway. Decoding here only recovers
// the claims the client needs to drive its own state (who is logged in,
// which role, until when).
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a raw token cannot be parsed into claims.
var ErrMalformedToken = errors.New("malformed token")

// Claims is the decoded payload of a session token.
//
// Subject and ExpiresAt are always present on tokens the backend issues.
// Role is optional on legacy tokens (see session.ResolveRole for the
// fallback policy). FullName is set on student tokens only.
type Claims struct {
	Subject   string
	Role      string
	FullName  string
	ExpiresAt int64 // epoch seconds
}

// Decode parses a raw token into Claims without verifying the signature.
// It fails with ErrMalformedToken when the token is not a structurally
// valid JWT or carries no subject.
func Decode(raw string) (Claims, error) {
	payload := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(raw, payload); err != nil {
		return Claims{}, ErrMalformedToken
	}

	c := Claims{}

	sub, ok := payload["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, ErrMalformedToken
	}
	c.Subject = sub

	// exp is a JSON number; absent exp leaves ExpiresAt at zero, which every
	// expiry check treats as already expired.
	if exp, ok := payload["exp"].(float64); ok {
		c.ExpiresAt = int64(exp)
	}
	if role, ok := payload["role"].(string); ok {
		c.Role = role
	}
	if name, ok := payload["full_name"].(string); ok {
		c.FullName = name
	}

	return c, nil
}

// Expired reports whether the claims are past their expiry at the given
// instant. The comparison is exp*1000 < now in UTC-epoch milliseconds,
// with no clock-skew allowance.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt*1000 < now.UnixMilli()
}
