package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/idx"
)

// ErrAlreadyDecided is returned when an admin decides an application that is
// no longer pending.
var ErrAlreadyDecided = errors.New("service: application already decided")

// MembershipService is the membership-tier workflow gated by the admin role
// check. The authorization decision itself lives in the HTTP guard; this
// service only executes the status transitions.
type MembershipService struct {
	Store store.Store
}

// Apply files a membership application for the principal's company.
func (s *MembershipService) Apply(ctx context.Context, companyID string, tier domain.MembershipTier) (domain.MembershipApplication, error) {
	switch tier {
	case domain.TierBasic, domain.TierSilver, domain.TierGold:
	default:
		return domain.MembershipApplication{}, fmt.Errorf("service: unknown tier %q", tier)
	}

	a := domain.MembershipApplication{
		ID:        idx.New().String(),
		CompanyID: companyID,
		Tier:      tier,
		Status:    domain.MembershipPending,
	}
	if err := s.Store.Memberships().CreateApplication(ctx, a); err != nil {
		return domain.MembershipApplication{}, err
	}
	return a, nil
}

func (s *MembershipService) List(ctx context.Context, status domain.MembershipStatus) ([]domain.MembershipApplication, error) {
	return s.Store.Memberships().ListApplications(ctx, status)
}

// Decide transitions a pending application to approved or rejected. The
// read-check-write runs in one transaction so two concurrent decisions
// cannot both land.
func (s *MembershipService) Decide(ctx context.Context, id string, approve bool, adminID string) (domain.MembershipApplication, error) {
	status := domain.MembershipRejected
	if approve {
		status = domain.MembershipApproved
	}

	var out domain.MembershipApplication
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Memberships().GetApplicationByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status != domain.MembershipPending {
			return ErrAlreadyDecided
		}
		if err := tx.Memberships().UpdateApplicationStatus(ctx, id, status, adminID); err != nil {
			return err
		}
		a.Status = status
		a.DecidedBy = &adminID
		out = a
		return nil
	})
	if err != nil {
		return domain.MembershipApplication{}, err
	}
	return out, nil
}
