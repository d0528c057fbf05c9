package httpx

import (
	"errors"
	"net/http"
	"strings"
)

// ErrRoleDenied is the error passed to the RejectHook when a principal
// reaches a route its role does not permit.
var ErrRoleDenied = errors.New("httpx: role not permitted for this route")

// RequireRole admits the request only when the authenticated principal holds
// one of the allowed roles. Must run after AuthnMiddleware. onDenied may be
// nil.
func RequireRole(onDenied RejectHook, allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := roleFromCtx(r.Context())

			if _, ok := want[have]; ok {
				next.ServeHTTP(w, r)
				return
			}

			writeBearerRoleError(w, allowed...)
			if onDenied != nil {
				onDenied(r, ErrRoleDenied)
			}
		})
	}
}

// RFC 6750-compliant error response for insufficient privileges.
func writeBearerRoleError(w http.ResponseWriter, allowed ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(allowed, " ")+`"`)
	WriteError(w, http.StatusForbidden, "forbidden",
		"This operation requires one of the following roles: "+strings.Join(allowed, ", ")+".")
}
