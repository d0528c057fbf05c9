package httpx

import "net/http"

// DefaultMaxBodyBytes bounds request bodies before any parsing happens.
const DefaultMaxBodyBytes = 64 * 1024

// MaxBodyBytes rejects oversized requests with 413 before the handler reads
// the body. Requests that lie about Content-Length are still cut off by
// http.MaxBytesReader while parsing.
func MaxBodyBytes(limit int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
					"Request body exceeds the allowed size.")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
