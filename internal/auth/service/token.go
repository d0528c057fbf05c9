package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/ratelimit"
	"github.com/tradepost/tradepost-auth/pkg/slogx"
)

// Rate-limit classes owned by the auth flows.
const (
	ClassLogin         ratelimit.Class = "login"
	ClassPasswordReset ratelimit.Class = "password-reset"
	ClassRefresh       ratelimit.Class = "refresh"
)

var (
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	ErrInvalidRefresh     = errors.New("service: invalid refresh token")
	ErrTooManyAttempts    = errors.New("service: too many attempts")
)

// RateLimitedError reports that an attempt was rejected by the limiter. It
// matches ErrTooManyAttempts under errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("service: rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrTooManyAttempts
}

// TokenService issues and refreshes the session/refresh token pair. Tokens
// are stateless HS256 JWTs; nothing is persisted server-side, so a token
// stays valid until expiry and short TTLs bound the exposure.
type TokenService struct {
	Signer     *jwtx.HS256
	Store      store.Store
	Limiter    ratelimit.Limiter
	Security   *SecurityService
	Issuer     string
	SessionTTL time.Duration
	RefreshTTL time.Duration
}

// Login verifies credentials and issues a token pair.
//
// The attempt limit is checked before any hashing work runs so a flood of
// invalid attempts is throttled before it gets expensive. A successful login
// resets the caller's failure counter (documented policy: earlier failures
// stop counting once the caller proves they hold the password). All
// credential failures collapse into ErrInvalidCredentials so responses never
// reveal whether the email exists.
func (s *TokenService) Login(ctx context.Context, email, password, clientID string) (*domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	key := loginKey(clientID, email)

	if d := s.Limiter.Check(ctx, key, ClassLogin); !d.Allowed {
		s.Security.Record(ctx, domain.EventRateLimitExceeded, clientID, nil, map[string]any{
			"class": string(ClassLogin),
		})
		return nil, &RateLimitedError{RetryAfter: d.RetryAfter}
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so unknown emails are not distinguishable
			// by response latency.
			verifyDummy(password)
			s.Security.Record(ctx, domain.EventLoginFailure, clientID, nil, map[string]any{
				"reason": "unknown_email",
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !verifyPassword(password, u.PasswordHash) {
		s.Security.Record(ctx, domain.EventLoginFailure, clientID, &u.ID, map[string]any{
			"reason": "bad_password",
		})
		return nil, ErrInvalidCredentials
	}

	s.Limiter.Reset(ctx, key, ClassLogin)

	pair, err := s.issuePair(u, time.Now())
	if err != nil {
		return nil, err
	}

	s.Security.Record(ctx, domain.EventLoginSuccess, clientID, &u.ID, nil)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The user record is
// reloaded so role or company changes take effect on the next session, and a
// deleted user cannot refresh at all.
func (s *TokenService) Refresh(ctx context.Context, refreshToken, clientID string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if d := s.Limiter.Check(ctx, clientID, ClassRefresh); !d.Allowed {
		s.Security.Record(ctx, domain.EventRateLimitExceeded, clientID, nil, map[string]any{
			"class": string(ClassRefresh),
		})
		return nil, &RateLimitedError{RetryAfter: d.RetryAfter}
	}

	claims, err := s.Signer.Verify(refreshToken)
	if err != nil {
		s.recordTokenFailure(ctx, clientID, err)
		return nil, ErrInvalidRefresh
	}
	if err := claims.ValidateUse(jwtx.UseRefresh); err != nil {
		s.Security.Record(ctx, domain.EventTokenInvalid, clientID, nil, map[string]any{
			"reason": "wrong_use",
			"use":    string(claims.Use),
		})
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	pair, err := s.issuePair(u, time.Now())
	if err != nil {
		return nil, err
	}

	l.Info("token refreshed", "user_id", u.ID)
	s.Security.Record(ctx, domain.EventTokenRefreshed, clientID, &u.ID, nil)
	return pair, nil
}

// issuePair signs a fresh session token and refresh token for the user.
func (s *TokenService) issuePair(u domain.User, now time.Time) (*domain.TokenPair, error) {
	companyID := ""
	if u.CompanyID != nil {
		companyID = *u.CompanyID
	}

	session, err := s.Signer.Sign(jwtx.NewClaims(
		u.ID, u.Email, string(u.Role), companyID,
		jwtx.UseSession, s.SessionTTL, s.Issuer, now,
	))
	if err != nil {
		return nil, err
	}

	refresh, err := s.Signer.Sign(jwtx.NewClaims(
		u.ID, u.Email, string(u.Role), companyID,
		jwtx.UseRefresh, s.RefreshTTL, s.Issuer, now,
	))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  session,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.SessionTTL.Seconds()),
	}, nil
}

func (s *TokenService) recordTokenFailure(ctx context.Context, clientID string, err error) {
	evType := domain.EventTokenInvalid
	if errors.Is(err, jwtx.ErrExpired) {
		evType = domain.EventTokenExpired
	}
	s.Security.Record(ctx, evType, clientID, nil, map[string]any{"error": err.Error()})
}

func loginKey(clientID, email string) string {
	return clientID + ":" + email
}
