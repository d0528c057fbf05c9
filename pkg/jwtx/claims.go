// Package jwtx implements the signed, time-bounded tokens that carry an
// authenticated identity between the marketplace client and the server.
// Tokens are HMAC-SHA256 signed JWTs; the design is deliberately stateless,
// so there is no server-side revocation list and a token stays valid until
// natural expiry (short TTLs keep that exposure small).
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Each flow can override these via configuration.
const (
	// DefaultSessionTTL is the lifetime of the access token a client holds
	// for ordinary API calls.
	DefaultSessionTTL = time.Hour

	// DefaultRefreshTTL is the lifetime of the refresh token used to obtain
	// a new session without re-entering credentials.
	DefaultRefreshTTL = 7 * 24 * time.Hour

	// DefaultResetTTL is the lifetime of a password-reset token.
	DefaultResetTTL = 30 * time.Minute
)

// TokenUse scopes a token to a single flow so a reset token can never pass
// as a session token and vice versa.
type TokenUse string

const (
	UseSession TokenUse = "session"
	UseRefresh TokenUse = "refresh"
	UseReset   TokenUse = "reset"
)

// Claims are the identity claims embedded in every token.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`

	// Role is the user's access level (buyer, supplier, admin, publisher).
	Role string `json:"role,omitempty"`

	// CompanyID links the user to their company, when they have one.
	CompanyID string `json:"cid,omitempty"`

	// Use scopes the token to one flow: session, refresh or reset.
	Use TokenUse `json:"use,omitempty"`
}

// NewClaims builds minimally-correct claims for the given identity and flow.
func NewClaims(
	subject, email, role, companyID string,
	use TokenUse,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		Use:       use,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateUse checks the token was issued for the expected flow.
func (c *Claims) ValidateUse(want TokenUse) error {
	if c.Use != want {
		return ErrWrongUse
	}
	return nil
}

// TTL returns the remaining lifetime of the token relative to now, never
// negative.
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Time.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
