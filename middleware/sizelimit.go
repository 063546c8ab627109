// middleware/sizelimit.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/audiencekit/httputil"
)

// LimitBodySize caps request bodies at maxBytes. maxBytes <= 0 disables the
// limit. Install it before any handler that reads the body.
func LimitBodySize(maxBytes int64) func(next http.Handler) http.Handler {
	if maxBytes <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.JSONError(w, http.StatusRequestEntityTooLarge,
					"request_too_large",
					"request body too large",
				)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
