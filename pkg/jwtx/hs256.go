package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret is a configuration error: the service must refuse to
	// operate without a signing secret rather than accept unsigned tokens.
	ErrNoSecret = errors.New("jwtx: no signing secret configured")

	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrNotYetValid      = errors.New("jwtx: token not yet valid")
	ErrIssuer           = errors.New("jwtx: issuer mismatch")
	ErrWrongUse         = errors.New("jwtx: token issued for a different flow")
)

// Verifier validates a compact token string and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 signs and verifies tokens with a single server-held secret
// (symmetric HMAC-SHA256). It implements Verifier.
type HS256 struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewHS256 builds a signer/verifier from the server secret. An empty secret
// is a fatal configuration error.
func NewHS256(secret, issuer string) (*HS256, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &HS256{secret: []byte(secret), issuer: issuer}, nil
}

// WithLeeway returns a copy that tolerates the given clock skew when
// validating exp/nbf.
func (s *HS256) WithLeeway(leeway time.Duration) *HS256 {
	c := *s
	c.leeway = leeway
	return &c
}

// Sign turns claims into a signed compact token string.
func (s *HS256) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify recomputes the MAC and validates the time bounds. Expired tokens
// are reported distinctly from tampered or malformed ones because callers
// react differently: a tampered token is never trusted, while an expired one
// is merely stale.
func (s *HS256) Verify(token string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	return claims, nil
}

// mapParseError reduces golang-jwt's joined errors to our sentinel taxonomy.
// Signature failures are checked first so a tampered token never reads as
// merely expired.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return ErrMalformed
	}
}
