package http

import (
	"errors"
	"net/http"

	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
)

// UserInfoHandler serves GET /v1/auth/me.
type UserInfoHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Current User Profile
//	@Description	Returns the authenticated principal's profile, loaded fresh from the store.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserInfoResponse	"user_id, email, name, role, company_id"
//	@Failure		401	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/auth/me [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFromRequest(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
			"authentication required")
		return
	}

	u, err := h.UserService.GetUserByID(ctx, principal.UserID)
	if err != nil {
		// The account can vanish while its token is still valid.
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
				"account no longer exists")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	resp := authsdk.UserInfoResponse{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
	}
	if u.CompanyID != nil {
		resp.CompanyID = *u.CompanyID
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
