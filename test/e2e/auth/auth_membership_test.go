package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
)

// TestMembershipWorkflow walks the membership application lifecycle and its
// role gating: company members apply, only admins list and decide.
func TestMembershipWorkflow(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	buyer := registerBuyer(t, client)

	buyerSession := loginAs(t, client, buyerEmail, buyerPassword)
	adminSession := loginAs(t, client, adminEmail, adminPassword)

	var applicationID string

	t.Run("buyer applies for a tier", func(t *testing.T) {
		app, err := buyerSession.ApplyMembership(t.Context(), "gold")
		require.NoError(t, err)
		require.NotEmpty(t, app.ID)
		require.Equal(t, buyer.CompanyID, app.CompanyID)
		require.Equal(t, "gold", app.Tier)
		require.Equal(t, "pending", app.Status)

		applicationID = app.ID
	})

	t.Run("buyer cannot list applications", func(t *testing.T) {
		_, err := buyerSession.ListMembershipApplications(t.Context(), "")
		assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)
	})

	t.Run("buyer cannot decide applications", func(t *testing.T) {
		_, err := buyerSession.DecideMembershipApplication(t.Context(), applicationID, "approved")
		assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)
	})

	t.Run("admin sees the pending application", func(t *testing.T) {
		apps, err := adminSession.ListMembershipApplications(t.Context(), "pending")
		require.NoError(t, err)
		require.Len(t, apps, 1)
		require.Equal(t, applicationID, apps[0].ID)
	})

	t.Run("admin approves it", func(t *testing.T) {
		app, err := adminSession.DecideMembershipApplication(t.Context(), applicationID, "approved")
		require.NoError(t, err)
		require.Equal(t, "approved", app.Status)
		require.NotEmpty(t, app.DecidedBy)
	})

	t.Run("second decision conflicts", func(t *testing.T) {
		_, err := adminSession.DecideMembershipApplication(t.Context(), applicationID, "rejected")
		assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeConflict)
	})

	t.Run("deciding an unknown application is a 404", func(t *testing.T) {
		_, err := adminSession.DecideMembershipApplication(t.Context(), "does-not-exist", "approved")

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})
}
