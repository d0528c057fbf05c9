package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/pkg/idx"
)

func TestSecurityServiceRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SecurityService{Store: st, Logger: newTestLogger()}

	user := mustCreateUser(t, st, "buyer@example.com", "hunter2abc1", domain.RoleBuyer, nil)

	svc.Record(ctx, domain.EventLoginFailure, "198.51.100.1", &user.ID, map[string]any{
		"email": user.Email,
	})
	svc.Record(ctx, domain.EventTokenInvalid, "198.51.100.2", nil, nil)

	events, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	require.Equal(t, domain.EventTokenInvalid, events[0].Type)
	require.Equal(t, "198.51.100.2", events[0].ClientID)
	require.Nil(t, events[0].UserID)
	require.Empty(t, events[0].Metadata)

	require.Equal(t, domain.EventLoginFailure, events[1].Type)
	require.NotNil(t, events[1].UserID)
	require.Equal(t, user.ID, *events[1].UserID)
	require.Contains(t, events[1].Metadata, "buyer@example.com")
}

func TestSecurityServiceListRecentLimit(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SecurityService{Store: st, Logger: newTestLogger()}

	for range 5 {
		svc.Record(ctx, domain.EventLoginSuccess, "198.51.100.1", nil, nil)
	}

	events, err := svc.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Out-of-range limits fall back to the default of 100.
	events, err = svc.ListRecent(ctx, -1)
	require.NoError(t, err)
	require.Len(t, events, 5)
}

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	appendAt := func(ts time.Time) {
		err := st.SecurityEvents().Append(ctx, domain.SecurityEvent{
			ID:        idx.New().String(),
			Type:      domain.EventLoginFailure,
			ClientID:  "198.51.100.1",
			CreatedAt: ts,
		})
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	appendAt(now.Add(-100 * 24 * time.Hour))
	appendAt(now.Add(-91 * 24 * time.Hour))
	appendAt(now.Add(-time.Hour))

	svc := NewHousekeepingService(st, newTestLogger(), time.Hour, 90*24*time.Hour)
	svc.cleanup()

	events, err := st.SecurityEvents().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.WithinDuration(t, now.Add(-time.Hour), events[0].CreatedAt, time.Minute)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)

	svc := NewHousekeepingService(st, newTestLogger(), 10*time.Millisecond, time.Hour)
	svc.Start()
	time.Sleep(30 * time.Millisecond)
	svc.Stop()
}
