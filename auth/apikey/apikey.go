// auth/apikey/apikey.go
package apikey

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/audiencekit/httputil"
	"github.com/dalemusser/audiencekit/pantry/requestid"
	"go.uber.org/zap"
)

// Header is the alternative to an Authorization bearer token.
const Header = "X-API-Key"

// Options control how the API-key middleware behaves.
type Options struct {
	// Realm is used in the WWW-Authenticate header. Defaults to "audiencekit".
	Realm string
}

// Require returns a middleware that enforces a static API key.
// Key lookup order:
//  1. Authorization: Bearer <token>
//  2. X-API-Key header
func Require(expected string, opts Options, logger *zap.Logger) func(next http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	if logger == nil {
		logger = zap.NewNop()
	}
	realm := strings.TrimSpace(opts.Realm)
	if realm == "" {
		realm = "audiencekit"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				logger.Warn("apikey.Require used with empty expected key")
				httputil.JSONError(w, http.StatusInternalServerError, "server_misconfigured", "server misconfigured")
				return
			}

			key, ok := fromRequest(r)
			if !ok || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
				logger.Warn("API key unauthorized",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("remote_ip", r.RemoteAddr),
					requestid.Field(r.Context()),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+realm+`"`)
				httputil.JSONError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func fromRequest(r *http.Request) (string, bool) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		if token := strings.TrimSpace(auth[len("bearer "):]); token != "" {
			return token, true
		}
	}

	if key := strings.TrimSpace(r.Header.Get(Header)); key != "" {
		return key, true
	}

	return "", false
}
