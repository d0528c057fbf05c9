package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/slogx"
)

// RejectHook is called when a middleware rejects a request, so callers can
// record the rejection (e.g. into the security event log) without this
// package knowing about the event store.
type RejectHook func(r *http.Request, err error)

// AuthnMiddleware verifies the bearer token and injects the session claims
// into the request context. Tokens minted for other flows (refresh, reset)
// are rejected even when their signature is valid. onReject may be nil.
func AuthnMiddleware(v jwtx.Verifier, onReject RejectHook) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err == nil {
				err = claims.ValidateUse(jwtx.UseSession)
			}
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				if onReject != nil {
					onReject(r, err)
				}
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth. The description is
// deliberately uniform so callers cannot distinguish a bad signature from an
// expired token.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
