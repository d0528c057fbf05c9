package http

import (
	"errors"
	"net/http"

	"github.com/tradepost/tradepost-auth/internal/auth/metrics"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
)

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Tokens
//	@Description	Exchanges a valid refresh token for a new session/refresh token pair.
//	@Description	The user record is reloaded, so role changes take effect and deleted users cannot refresh.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteValidationError(w, map[string]string{"refresh_token": "required"})
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken, httpx.IPKeyExtractor(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
				"the refresh token is missing, invalid or expired")
			return
		}
		var rl *service.RateLimitedError
		if errors.As(err, &rl) {
			metrics.ObserveAttemptLimited(string(service.ClassRefresh))
		}
		writeServiceError(w, r, err)
		return
	}

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
