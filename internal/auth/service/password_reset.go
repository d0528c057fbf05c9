package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/cryptox"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/ratelimit"
)

// ErrResetTokenInvalid covers every bad reset token: tampered, expired, or
// issued for a different flow. Callers surface one generic
// "invalid or expired" message.
var ErrResetTokenInvalid = errors.New("service: invalid or expired reset token")

// ResetDelivery receives freshly minted reset tokens for out-of-band
// delivery (email in production). The auth core never returns the token in
// an HTTP response.
type ResetDelivery interface {
	DeliverResetToken(ctx context.Context, email, token string) error
}

// PasswordResetService implements the two-step reset flow. The reset token
// is a short-TTL reset-scoped JWT, so no server-side reset state is kept.
type PasswordResetService struct {
	Signer   *jwtx.HS256
	Store    store.Store
	Limiter  ratelimit.Limiter
	Security *SecurityService
	Delivery ResetDelivery
	Issuer   string
	ResetTTL time.Duration
}

// Request starts a reset for the given email. It deliberately reports
// success whether or not the account exists, so the endpoint cannot be used
// to enumerate accounts. Rate limited per client+email before any lookup.
func (s *PasswordResetService) Request(ctx context.Context, email, clientID string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if d := s.Limiter.Check(ctx, clientID+":"+email, ClassPasswordReset); !d.Allowed {
		s.Security.Record(ctx, domain.EventRateLimitExceeded, clientID, nil, map[string]any{
			"class": string(ClassPasswordReset),
		})
		return &RateLimitedError{RetryAfter: d.RetryAfter}
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same outward behaviour as the success path.
			return nil
		}
		return err
	}

	token, err := s.Signer.Sign(jwtx.NewClaims(
		u.ID, u.Email, string(u.Role), "",
		jwtx.UseReset, s.ResetTTL, s.Issuer, time.Now(),
	))
	if err != nil {
		return err
	}

	if s.Delivery != nil {
		if err := s.Delivery.DeliverResetToken(ctx, u.Email, token); err != nil {
			return err
		}
	}

	s.Security.Record(ctx, domain.EventPasswordResetRequest, clientID, &u.ID, map[string]any{
		"token_fp": cryptox.FingerprintToken(token),
	})
	return nil
}

// Confirm validates a reset token and overwrites the stored hash. An
// expired or tampered token leaves the stored hash untouched.
func (s *PasswordResetService) Confirm(ctx context.Context, token, newPassword, clientID string) error {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		s.Security.Record(ctx, domain.EventPasswordResetFailure, clientID, nil, map[string]any{
			"reason": reasonForTokenError(err),
		})
		return ErrResetTokenInvalid
	}
	if err := claims.ValidateUse(jwtx.UseReset); err != nil {
		s.Security.Record(ctx, domain.EventPasswordResetFailure, clientID, nil, map[string]any{
			"reason": "wrong_use",
		})
		return ErrResetTokenInvalid
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return err
	}

	s.Security.Record(ctx, domain.EventPasswordResetSuccess, clientID, &u.ID, nil)
	return nil
}

func reasonForTokenError(err error) string {
	if errors.Is(err, jwtx.ErrExpired) {
		return "expired"
	}
	return "invalid"
}
