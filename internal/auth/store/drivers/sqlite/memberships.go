package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
)

type membershipsRepo struct {
	q dbtx
}

const membershipColumns = `id, company_id, tier, status, decided_by, created_at, updated_at`

func (r *membershipsRepo) CreateApplication(ctx context.Context, a domain.MembershipApplication) error {
	now := time.Now().UTC()
	status := a.Status
	if status == "" {
		status = domain.MembershipPending
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO membership_applications (id, company_id, tier, status, decided_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CompanyID, string(a.Tier), string(status),
		mapOptionalString(a.DecidedBy), now, now,
	)
	return mapConstraint(err)
}

func (r *membershipsRepo) GetApplicationByID(ctx context.Context, id string) (domain.MembershipApplication, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM membership_applications WHERE id = ?`, id)
	return scanApplication(row.Scan)
}

func (r *membershipsRepo) ListApplications(ctx context.Context, status domain.MembershipStatus) ([]domain.MembershipApplication, error) {
	query := `SELECT ` + membershipColumns + ` FROM membership_applications`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MembershipApplication
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) UpdateApplicationStatus(
	ctx context.Context,
	id string,
	status domain.MembershipStatus,
	decidedBy string,
) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE membership_applications SET status = ?, decided_by = ?, updated_at = ? WHERE id = ?`,
		string(status), decidedBy, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanApplication(scan func(dest ...any) error) (domain.MembershipApplication, error) {
	var (
		a         domain.MembershipApplication
		tier      string
		status    string
		decidedBy sql.NullString
	)
	err := scan(&a.ID, &a.CompanyID, &tier, &status, &decidedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.MembershipApplication{}, mapNotFound(err)
	}
	a.Tier = domain.MembershipTier(tier)
	a.Status = domain.MembershipStatus(status)
	a.DecidedBy = mapNullString(decidedBy)
	return a, nil
}
