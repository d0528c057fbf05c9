package sqlite

import (
	"context"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
)

type companiesRepo struct {
	q dbtx
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	var c domain.Company
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, country, created_at, updated_at FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Country, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Company{}, mapNotFound(err)
	}
	return c, nil
}

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO companies (id, name, country, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Country, now, now,
	)
	return mapConstraint(err)
}
