package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
	"github.com/tradepost/tradepost-auth/pkg/slogx"
)

// principalFromRequest rebuilds the domain principal from the claims the
// authn middleware verified. ok is false only when a handler is reached
// without the middleware, which is a wiring bug.
func principalFromRequest(r *http.Request) (domain.Principal, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return domain.Principal{}, false
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, false
	}
	return domain.Principal{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      role,
		CompanyID: claims.CompanyID,
	}, true
}

// writeRateLimited maps a service attempt-limit rejection to 429 with a
// Retry-After header.
func writeRateLimited(w http.ResponseWriter, rl *service.RateLimitedError) {
	retryAfter := int(rl.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httpx.WriteError(w, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited,
		"Too many attempts. Please try again later.")
}

// writeServiceError is the fallback translation for errors no handler maps
// explicitly. Detail stays in the server log; the body is generic.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var rl *service.RateLimitedError
	if errors.As(err, &rl) {
		writeRateLimited(w, rl)
		return
	}

	slogx.FromContext(r.Context()).Error("request failed", "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError,
		"internal server error")
}
