package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
)

func TestMembershipApply(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MembershipService{Store: st}

	company := mustCreateCompany(t, st, "Acme Traders")

	t.Run("creates a pending application", func(t *testing.T) {
		a, err := svc.Apply(ctx, company.ID, domain.TierGold)
		require.NoError(t, err)
		require.NotEmpty(t, a.ID)
		require.Equal(t, company.ID, a.CompanyID)
		require.Equal(t, domain.TierGold, a.Tier)
		require.Equal(t, domain.MembershipPending, a.Status)
		require.Nil(t, a.DecidedBy)
	})

	t.Run("rejects an unknown tier", func(t *testing.T) {
		_, err := svc.Apply(ctx, company.ID, domain.MembershipTier("platinum"))
		require.Error(t, err)
	})
}

func TestMembershipDecide(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MembershipService{Store: st}

	company := mustCreateCompany(t, st, "Acme Traders")
	admin := mustCreateUser(t, st, "admin@example.com", "hunter2abc1", domain.RoleAdmin, nil)

	t.Run("approve", func(t *testing.T) {
		a, err := svc.Apply(ctx, company.ID, domain.TierSilver)
		require.NoError(t, err)

		decided, err := svc.Decide(ctx, a.ID, true, admin.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MembershipApproved, decided.Status)
		require.NotNil(t, decided.DecidedBy)
		require.Equal(t, admin.ID, *decided.DecidedBy)

		stored, err := st.Memberships().GetApplicationByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MembershipApproved, stored.Status)
	})

	t.Run("reject", func(t *testing.T) {
		a, err := svc.Apply(ctx, company.ID, domain.TierBasic)
		require.NoError(t, err)

		decided, err := svc.Decide(ctx, a.ID, false, admin.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MembershipRejected, decided.Status)
	})

	t.Run("second decision fails", func(t *testing.T) {
		a, err := svc.Apply(ctx, company.ID, domain.TierGold)
		require.NoError(t, err)

		_, err = svc.Decide(ctx, a.ID, true, admin.ID)
		require.NoError(t, err)

		_, err = svc.Decide(ctx, a.ID, false, admin.ID)
		require.ErrorIs(t, err, ErrAlreadyDecided)

		stored, err := st.Memberships().GetApplicationByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, domain.MembershipApproved, stored.Status)
	})

	t.Run("unknown application", func(t *testing.T) {
		_, err := svc.Decide(ctx, "does-not-exist", true, admin.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestMembershipList(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MembershipService{Store: st}

	company := mustCreateCompany(t, st, "Acme Traders")
	admin := mustCreateUser(t, st, "admin@example.com", "hunter2abc1", domain.RoleAdmin, nil)

	first, err := svc.Apply(ctx, company.ID, domain.TierBasic)
	require.NoError(t, err)
	second, err := svc.Apply(ctx, company.ID, domain.TierGold)
	require.NoError(t, err)

	_, err = svc.Decide(ctx, first.ID, true, admin.ID)
	require.NoError(t, err)

	pending, err := svc.List(ctx, domain.MembershipPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, pending[0].ID)

	approved, err := svc.List(ctx, domain.MembershipApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	require.Equal(t, first.ID, approved[0].ID)

	rejected, err := svc.List(ctx, domain.MembershipRejected)
	require.NoError(t, err)
	require.Empty(t, rejected)
}
