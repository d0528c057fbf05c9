package domain

import "time"

// MembershipTier is the paid tier a company applies for.
type MembershipTier string

const (
	TierBasic   MembershipTier = "basic"
	TierSilver  MembershipTier = "silver"
	TierGold    MembershipTier = "gold"
)

// MembershipStatus is the application lifecycle state. Transitions are
// pending -> approved | rejected, decided only by an admin.
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipApproved MembershipStatus = "approved"
	MembershipRejected MembershipStatus = "rejected"
)

type MembershipApplication struct {
	ID        string
	CompanyID string
	Tier      MembershipTier
	Status    MembershipStatus
	DecidedBy *string // admin user ID, set on approval/rejection
	CreatedAt time.Time
	UpdatedAt time.Time
}
