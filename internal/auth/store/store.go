package store

import (
	"context"
	"errors"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement it. Sub-repositories keep concerns tidy and
// individually mockable.
type Store interface {
	Users() Users
	Companies() Companies
	SecurityEvents() SecurityEvents
	Memberships() Memberships

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and password reset. Email match
	// is case-insensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists for a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at. Only
	// registration and password-reset write this column.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	DeleteUser(ctx context.Context, userID string) error
}

type Companies interface {
	GetCompanyByID(ctx context.Context, id string) (domain.Company, error)
	CreateCompany(ctx context.Context, c domain.Company) error
}

// SecurityEvents is the append-only audit log. Events are never mutated;
// housekeeping prunes whole age ranges.
type SecurityEvents interface {
	Append(ctx context.Context, ev domain.SecurityEvent) error

	// ListRecent returns the newest events first, at most limit rows.
	ListRecent(ctx context.Context, limit int) ([]domain.SecurityEvent, error)

	// DeleteOlderThan removes events created before cutoff (housekeeping).
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}

type Memberships interface {
	CreateApplication(ctx context.Context, a domain.MembershipApplication) error
	GetApplicationByID(ctx context.Context, id string) (domain.MembershipApplication, error)

	// ListApplications returns applications filtered by status, or all when
	// status is empty, newest first.
	ListApplications(ctx context.Context, status domain.MembershipStatus) ([]domain.MembershipApplication, error)

	// UpdateApplicationStatus records an admin decision. Fails with
	// ErrNotFound when the application does not exist.
	UpdateApplicationStatus(ctx context.Context, id string, status domain.MembershipStatus, decidedBy string) error
}
