package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store/drivers/sqlite"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
)

// captureDelivery records delivered tokens instead of sending email.
type captureDelivery struct {
	email string
	token string
}

func (d *captureDelivery) DeliverResetToken(_ context.Context, email, token string) error {
	d.email = email
	d.token = token
	return nil
}

func newTestResetService(t *testing.T, st *sqlite.Store, delivery *captureDelivery) *PasswordResetService {
	t.Helper()

	return &PasswordResetService{
		Signer:   newTestSigner(t),
		Store:    st,
		Limiter:  newTestLimiter(5),
		Security: &SecurityService{Store: st, Logger: newTestLogger()},
		Delivery: delivery,
		Issuer:   testIssuer,
		ResetTTL: 30 * time.Minute,
	}
}

func TestPasswordResetRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("known email delivers a reset-scoped token", func(t *testing.T) {
		st := newTestStore(t)
		delivery := &captureDelivery{}
		svc := newTestResetService(t, st, delivery)
		u := mustCreateUser(t, st, "buyer@example.com", "hunter2abc1", domain.RoleBuyer, nil)

		require.NoError(t, svc.Request(ctx, "buyer@example.com", "198.51.100.1"))
		require.Equal(t, "buyer@example.com", delivery.email)
		require.NotEmpty(t, delivery.token)

		claims, err := svc.Signer.Verify(delivery.token)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.NoError(t, claims.ValidateUse(jwtx.UseReset))
	})

	t.Run("unknown email reports success and delivers nothing", func(t *testing.T) {
		st := newTestStore(t)
		delivery := &captureDelivery{}
		svc := newTestResetService(t, st, delivery)

		require.NoError(t, svc.Request(ctx, "nobody@example.com", "198.51.100.1"))
		require.Empty(t, delivery.token)
	})

	t.Run("requests beyond the limit are rejected", func(t *testing.T) {
		st := newTestStore(t)
		delivery := &captureDelivery{}
		svc := newTestResetService(t, st, delivery)
		mustCreateUser(t, st, "buyer@example.com", "hunter2abc1", domain.RoleBuyer, nil)

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.Request(ctx, "buyer@example.com", "198.51.100.1"))
		}

		err := svc.Request(ctx, "buyer@example.com", "198.51.100.1")
		var rl *RateLimitedError
		require.ErrorAs(t, err, &rl)
	})
}

func TestPasswordResetConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token overwrites the hash", func(t *testing.T) {
		st := newTestStore(t)
		delivery := &captureDelivery{}
		svc := newTestResetService(t, st, delivery)
		tokens := newTestTokenService(t, st, 10)
		mustCreateUser(t, st, "buyer@example.com", "old-pass-a1", domain.RoleBuyer, nil)

		require.NoError(t, svc.Request(ctx, "buyer@example.com", "198.51.100.1"))
		require.NoError(t, svc.Confirm(ctx, delivery.token, "new-pass-b2", "198.51.100.1"))

		_, err := tokens.Login(ctx, "buyer@example.com", "new-pass-b2", "198.51.100.1")
		require.NoError(t, err)

		_, err = tokens.Login(ctx, "buyer@example.com", "old-pass-a1", "203.0.113.9")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("expired token leaves the hash unchanged", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestResetService(t, st, &captureDelivery{})
		tokens := newTestTokenService(t, st, 10)
		u := mustCreateUser(t, st, "buyer@example.com", "old-pass-a1", domain.RoleBuyer, nil)

		expired, err := svc.Signer.Sign(jwtx.NewClaims(
			u.ID, u.Email, string(u.Role), "",
			jwtx.UseReset, 30*time.Minute, testIssuer, time.Now().Add(-time.Hour),
		))
		require.NoError(t, err)

		err = svc.Confirm(ctx, expired, "new-pass-b2", "198.51.100.1")
		require.ErrorIs(t, err, ErrResetTokenInvalid)

		_, err = tokens.Login(ctx, "buyer@example.com", "old-pass-a1", "198.51.100.1")
		require.NoError(t, err)
	})

	t.Run("session token is not accepted as reset token", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestResetService(t, st, &captureDelivery{})
		tokens := newTestTokenService(t, st, 10)
		mustCreateUser(t, st, "buyer@example.com", "old-pass-a1", domain.RoleBuyer, nil)

		pair, err := tokens.Login(ctx, "buyer@example.com", "old-pass-a1", "198.51.100.1")
		require.NoError(t, err)

		err = svc.Confirm(ctx, pair.AccessToken, "new-pass-b2", "198.51.100.1")
		require.ErrorIs(t, err, ErrResetTokenInvalid)
	})

	t.Run("weak replacement password is rejected", func(t *testing.T) {
		st := newTestStore(t)
		delivery := &captureDelivery{}
		svc := newTestResetService(t, st, delivery)
		mustCreateUser(t, st, "buyer@example.com", "old-pass-a1", domain.RoleBuyer, nil)

		require.NoError(t, svc.Request(ctx, "buyer@example.com", "198.51.100.1"))

		err := svc.Confirm(ctx, delivery.token, "short", "198.51.100.1")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("failures land in the security event log", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestResetService(t, st, &captureDelivery{})

		err := svc.Confirm(ctx, "not.a.token", "new-pass-b2", "198.51.100.1")
		require.ErrorIs(t, err, ErrResetTokenInvalid)

		events, err := st.SecurityEvents().ListRecent(ctx, 10)
		require.NoError(t, err)
		require.NotEmpty(t, events)
		require.Equal(t, domain.EventPasswordResetFailure, events[0].Type)
	})
}
