package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
)

const (
	testSecret = "test-secret-at-least-32-bytes-long!!"
	testIssuer = "tradepost-auth"
)

func newTestSigner(t *testing.T) *jwtx.HS256 {
	t.Helper()
	s, err := jwtx.NewHS256(testSecret, testIssuer)
	require.NoError(t, err)
	return s
}

func testClaims(use jwtx.TokenUse, ttl time.Duration, now time.Time) jwtx.Claims {
	return jwtx.NewClaims(
		"01J0USER00000000000000USER",
		"alice@example.com",
		"supplier",
		"01J0COMP00000000000000COMP",
		use,
		ttl,
		testIssuer,
		now,
	)
}

func TestNewHS256_EmptySecret(t *testing.T) {
	_, err := jwtx.NewHS256("", testIssuer)
	require.ErrorIs(t, err, jwtx.ErrNoSecret)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	s := newTestSigner(t)
	claims := testClaims(jwtx.UseSession, time.Hour, time.Now())

	token, err := s.Sign(claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	got, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, got.Subject)
	require.Equal(t, claims.Email, got.Email)
	require.Equal(t, claims.Role, got.Role)
	require.Equal(t, claims.CompanyID, got.CompanyID)
	require.Equal(t, claims.Use, got.Use)
	require.Equal(t, claims.ID, got.ID)
	require.WithinDuration(t, claims.ExpiresAt.Time, got.ExpiresAt.Time, time.Second)
}

func TestVerify_TamperedSignature(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Sign(testClaims(jwtx.UseSession, time.Hour, time.Now()))
	require.NoError(t, err)

	// Flip one character of the signature segment.
	i := strings.LastIndex(token, ".") + 1
	mutated := token[:i] + flip(token[i:i+1]) + token[i+1:]

	_, err = s.Verify(mutated)
	require.ErrorIs(t, err, jwtx.ErrInvalidSignature)
}

func TestVerify_TamperedPayload(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Sign(testClaims(jwtx.UseSession, time.Hour, time.Now()))
	require.NoError(t, err)

	// Mutating any byte of the payload must fail verification, never
	// silently succeed.
	parts := strings.Split(token, ".")
	for i := range parts[1] {
		mutated := parts[0] + "." + parts[1][:i] + flip(parts[1][i:i+1]) + parts[1][i+1:] + "." + parts[2]
		_, err := s.Verify(mutated)
		require.Error(t, err, "mutation at payload byte %d verified", i)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Sign(testClaims(jwtx.UseSession, time.Hour, time.Now()))
	require.NoError(t, err)

	other, err := jwtx.NewHS256("a-completely-different-secret-value", testIssuer)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSignature)
}

func TestVerify_Expiry(t *testing.T) {
	s := newTestSigner(t)
	const ttl = time.Hour

	t.Run("valid just before expiry", func(t *testing.T) {
		issued := time.Now().Add(-ttl + 10*time.Second)
		token, err := s.Sign(testClaims(jwtx.UseSession, ttl, issued))
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.NoError(t, err)
	})

	t.Run("expired just after expiry", func(t *testing.T) {
		issued := time.Now().Add(-ttl - 10*time.Second)
		token, err := s.Sign(testClaims(jwtx.UseSession, ttl, issued))
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}

func TestVerify_Malformed(t *testing.T) {
	s := newTestSigner(t)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d", "!!!.???.###"} {
		_, err := s.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", token)
	}
}

func TestVerify_IssuerMismatch(t *testing.T) {
	foreign, err := jwtx.NewHS256(testSecret, "someone-else")
	require.NoError(t, err)

	token, err := foreign.Sign(jwtx.NewClaims(
		"u1", "a@example.com", "buyer", "", jwtx.UseSession, time.Hour, "someone-else", time.Now(),
	))
	require.NoError(t, err)

	s := newTestSigner(t)
	_, err = s.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestValidateUse(t *testing.T) {
	claims := testClaims(jwtx.UseReset, time.Hour, time.Now())

	require.NoError(t, claims.ValidateUse(jwtx.UseReset))
	require.ErrorIs(t, claims.ValidateUse(jwtx.UseSession), jwtx.ErrWrongUse)
	require.ErrorIs(t, claims.ValidateUse(jwtx.UseRefresh), jwtx.ErrWrongUse)
}

func TestWithLeeway(t *testing.T) {
	s := newTestSigner(t)

	issued := time.Now().Add(-time.Hour - 10*time.Second)
	token, err := s.Sign(testClaims(jwtx.UseSession, time.Hour, issued))
	require.NoError(t, err)

	_, err = s.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	_, err = s.WithLeeway(time.Minute).Verify(token)
	require.NoError(t, err)
}

func TestClaims_TTL(t *testing.T) {
	now := time.Now()
	claims := testClaims(jwtx.UseSession, time.Hour, now)

	require.InDelta(t, time.Hour, claims.TTL(now), float64(time.Second))
	require.Zero(t, claims.TTL(now.Add(2*time.Hour)))
}

// flip deterministically replaces a single base64url character with another.
func flip(s string) string {
	if s == "A" {
		return "B"
	}
	return "A"
}
