package auth_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "tradepost-auth-test:latest"

	testTokenSecret = "e2e-token-secret-at-least-32-bytes!!"

	buyerEmail    = "buyer@example.com"
	buyerName     = "Alice Buyer"
	buyerPassword = "Buyer123secret"

	supplierEmail    = "supplier@example.com"
	supplierName     = "Bob Supplier"
	supplierPassword = "Supplier123secret"

	adminEmail    = "admin@example.com"
	adminPassword = "Admin123secret"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// baseEnv is the container environment shared by all setups.
func baseEnv() map[string]string {
	return map[string]string{
		"AUTH_TOKEN_SECRET":   testTokenSecret,
		"AUTH_ISSUER":         "tradepost-auth",
		"AUTH_DATABASE_FILE":  "/auth.db",
		"AUTH_PEPPER_FILE":    "/pepper",
		"AUTH_ADMIN_EMAIL":    adminEmail,
		"AUTH_ADMIN_PASSWORD": adminPassword,
		"ENV":                 "test",
		"LOG_LEVEL":           "info",
		"LOG_FORMAT":          "json",
	}
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// setupAuthContainer starts the auth service with relaxed rate limits so
// rapid test traffic never trips the strict production limits.
func setupAuthContainer(t *testing.T) (string, func()) {
	t.Helper()

	env := baseEnv()
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"
	env["ATTEMPTS_LOGIN_MAX"] = "1000"
	env["ATTEMPTS_RESET_MAX"] = "1000"
	env["ATTEMPTS_REFRESH_MAX"] = "1000"

	return startContainer(t, env)
}

// setupAuthContainerWithDefaultLimits starts the auth service with the
// production rate limits. Only the rate limiting tests should use this;
// everything else goes through setupAuthContainer.
func setupAuthContainerWithDefaultLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, baseEnv())
}

// registerBuyer creates the standard buyer account with a company.
func registerBuyer(t *testing.T, client *authsdk.SDKClient) *authsdk.RegisterResponse {
	t.Helper()

	resp, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Email:          buyerEmail,
		Password:       buyerPassword,
		Name:           buyerName,
		Role:           "buyer",
		CompanyName:    "Acme Imports",
		CompanyCountry: "AU",
	})
	require.NoError(t, err, "Buyer registration should succeed")
	require.NotEmpty(t, resp.UserID)
	require.NotEmpty(t, resp.CompanyID)

	return resp
}

// registerSupplier creates the standard supplier account with a company.
func registerSupplier(t *testing.T, client *authsdk.SDKClient) *authsdk.RegisterResponse {
	t.Helper()

	resp, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Email:          supplierEmail,
		Password:       supplierPassword,
		Name:           supplierName,
		Role:           "supplier",
		CompanyName:    "Widget Works",
		CompanyCountry: "DE",
	})
	require.NoError(t, err, "Supplier registration should succeed")
	require.NotEmpty(t, resp.UserID)
	require.NotEmpty(t, resp.CompanyID)

	return resp
}

// loginAs authenticates an existing account and returns the session.
func loginAs(t *testing.T, client *authsdk.SDKClient, email, password string) *authsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), email, password)
	require.NoError(t, err, "Login should succeed")
	require.NotNil(t, session, "Session should not be nil")

	return session
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.Positive(t, resp.ExpiresIn, "Access token lifetime should be positive")
}

// assertAPIError verifies an error is an APIError with the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) *authsdk.APIError {
	t.Helper()
	require.Error(t, err)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr, "error should be an APIError, got: %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
