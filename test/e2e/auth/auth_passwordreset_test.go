package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
)

// TestPasswordResetEndpoints covers the HTTP surface of the reset flow. The
// reset token itself travels out of band, so the happy-path confirm is
// covered by the service tests; here we verify the endpoint contract.
func TestPasswordResetEndpoints(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerBuyer(t, client)

	t.Run("known email is accepted", func(t *testing.T) {
		err := client.RequestPasswordReset(t.Context(), buyerEmail)
		require.NoError(t, err)
	})

	t.Run("unknown email is indistinguishable", func(t *testing.T) {
		err := client.RequestPasswordReset(t.Context(), "nobody@example.com")
		require.NoError(t, err)
	})

	t.Run("garbage token cannot confirm", func(t *testing.T) {
		err := client.ConfirmPasswordReset(t.Context(), "not-a-jwt", "NewPassword123")
		assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
	})

	t.Run("a session token cannot confirm", func(t *testing.T) {
		session := loginAs(t, client, buyerEmail, buyerPassword)

		err := client.ConfirmPasswordReset(t.Context(), session.AccessToken(), "NewPassword123")
		assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

		// The original password still works.
		_ = loginAs(t, client, buyerEmail, buyerPassword)
	})
}
