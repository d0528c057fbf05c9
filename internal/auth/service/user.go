package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/cryptox"
	"github.com/tradepost/tradepost-auth/pkg/idx"
)

var (
	ErrEmailTaken     = errors.New("service: email already registered")
	ErrRoleNotAllowed = errors.New("service: role not allowed for self-registration")
)

// RegisterParams carries a self-registration request. CompanyName is
// optional; when present a company record is created alongside the user.
type RegisterParams struct {
	Email       string
	Name        string
	Password    string
	Role        domain.Role
	CompanyName string
	Country     string
}

type UserService struct {
	Store    store.Store
	Security *SecurityService
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// Register creates a marketplace account. Only buyer and supplier accounts
// can self-register; admin and publisher accounts are provisioned out of
// band. The company (when given) and the user are created in one
// transaction so a duplicate email never leaves an orphaned company behind.
func (s *UserService) Register(ctx context.Context, p RegisterParams, clientID string) (domain.User, error) {
	if p.Role != domain.RoleBuyer && p.Role != domain.RoleSupplier {
		return domain.User{}, ErrRoleNotAllowed
	}
	if err := validatePassword(p.Password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(p.Email)),
		Name:         strings.TrimSpace(p.Name),
		PasswordHash: hash,
		Role:         p.Role,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if p.CompanyName != "" {
			company := domain.Company{
				ID:      idx.New().String(),
				Name:    strings.TrimSpace(p.CompanyName),
				Country: strings.TrimSpace(p.Country),
			}
			if err := tx.Companies().CreateCompany(ctx, company); err != nil {
				return err
			}
			u.CompanyID = &company.ID
		}
		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	s.Security.Record(ctx, domain.EventRegistration, clientID, &u.ID, map[string]any{
		"role": string(u.Role),
	})
	return u, nil
}
