package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tradepost/tradepost-auth/internal/auth/metrics"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges email and password for a session/refresh token pair.
//	@Description	All credential failures return the same 401 so the response never reveals whether the email exists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		413		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Header			429		{string}	Retry-After				"seconds until the next attempt is allowed"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteValidationError(w, map[string]string{
			"email":    "required",
			"password": "required",
		})
		return
	}

	pair, err := h.TokenService.Login(ctx, req.Email, req.Password, httpx.IPKeyExtractor(r))
	if err != nil {
		var rl *service.RateLimitedError
		switch {
		case errors.As(err, &rl):
			metrics.ObserveLogin("rate_limited")
			metrics.ObserveAttemptLimited(string(service.ClassLogin))
			writeRateLimited(w, rl)
		case errors.Is(err, service.ErrInvalidCredentials):
			metrics.ObserveLogin("failure")
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials,
				"invalid email or password")
		default:
			metrics.ObserveLogin("failure")
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError,
				"internal server error")
		}
		return
	}

	metrics.ObserveLogin("success")
	metrics.ObserveTokenIssued(string(jwtx.UseSession))
	metrics.ObserveTokenIssued(string(jwtx.UseRefresh))

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn),
	})
}
