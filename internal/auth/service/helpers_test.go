package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/store/drivers/sqlite"
	"github.com/tradepost/tradepost-auth/pkg/cryptox"
	"github.com/tradepost/tradepost-auth/pkg/idx"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/ratelimit"
)

const (
	testIssuer = "tradepost-auth-test"
	testSecret = "test-secret-at-least-32-bytes-long!!"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSigner(t *testing.T) *jwtx.HS256 {
	t.Helper()

	signer, err := jwtx.NewHS256(testSecret, testIssuer)
	require.NoError(t, err)
	return signer
}

func newTestLimiter(maxAttempts int) *ratelimit.Memory {
	return ratelimit.NewMemory(map[ratelimit.Class]ratelimit.Limit{
		ClassLogin:         {Window: time.Minute, MaxAttempts: maxAttempts},
		ClassPasswordReset: {Window: time.Minute, MaxAttempts: maxAttempts},
		ClassRefresh:       {Window: time.Minute, MaxAttempts: maxAttempts},
	})
}

func newTestTokenService(t *testing.T, st *sqlite.Store, maxAttempts int) *TokenService {
	t.Helper()

	return &TokenService{
		Signer:     newTestSigner(t),
		Store:      st,
		Limiter:    newTestLimiter(maxAttempts),
		Security:   &SecurityService{Store: st, Logger: newTestLogger()},
		Issuer:     testIssuer,
		SessionTTL: time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// mustCreateUser inserts a user with a hashed password straight into the
// store, bypassing the registration flow.
func mustCreateUser(t *testing.T, st *sqlite.Store, email, password string, role domain.Role, companyID *string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         role,
		CompanyID:    companyID,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func mustCreateCompany(t *testing.T, st *sqlite.Store, name string) domain.Company {
	t.Helper()

	c := domain.Company{
		ID:      idx.New().String(),
		Name:    name,
		Country: "AU",
	}
	require.NoError(t, st.Companies().CreateCompany(context.Background(), c))
	return c
}
