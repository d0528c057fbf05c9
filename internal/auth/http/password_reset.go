package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tradepost/tradepost-auth/internal/auth/metrics"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
)

// PasswordResetHandler serves the two-step password reset flow.
type PasswordResetHandler struct {
	ResetService *service.PasswordResetService
}

// HandleRequest godoc
//
//	@Summary		Request Password Reset
//	@Description	Starts the reset flow for an email address. The response is 202 whether or not
//	@Description	the email maps to an account, so account existence is never revealed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordResetRequest	true	"Email address"
//	@Success		202		{object}	authsdk.AcceptedResponse		"status"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		429		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/auth/password-reset/request [post].
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.PasswordResetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		httpx.WriteValidationError(w, map[string]string{"email": "required"})
		return
	}

	if err := h.ResetService.Request(ctx, req.Email, httpx.IPKeyExtractor(r)); err != nil {
		var rl *service.RateLimitedError
		if errors.As(err, &rl) {
			metrics.ObserveAttemptLimited(string(service.ClassPasswordReset))
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, authsdk.AcceptedResponse{Status: "accepted"})
}

// HandleConfirm godoc
//
//	@Summary		Confirm Password Reset
//	@Description	Completes the reset flow. An expired or invalid token leaves the stored hash unchanged.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	authsdk.PasswordResetConfirm	true	"Reset token and new password"
//	@Success		204		"password updated"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description, fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/password-reset/confirm [post].
func (h *PasswordResetHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.PasswordResetConfirm
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}
	if req.Token == "" {
		httpx.WriteValidationError(w, map[string]string{"token": "required"})
		return
	}

	err := h.ResetService.Confirm(ctx, req.Token, req.NewPassword, httpx.IPKeyExtractor(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
				"the reset token is invalid or expired")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteValidationError(w, map[string]string{
				"new_password": "must be at least 8 characters with a letter and a digit",
			})
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
