// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/audiencekit/config"
	"github.com/go-chi/cors"
)

// CORSFromConfig applies the CORS section of cfg. When CORS is disabled it
// returns an identity middleware, so it is safe to install unconditionally.
func CORSFromConfig(cfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if cfg == nil || !cfg.CORS.EnableCORS {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.CORSAllowedOrigins,
		AllowedMethods: cfg.CORS.CORSAllowedMethods,
		AllowedHeaders: cfg.CORS.CORSAllowedHeaders,
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         cfg.CORS.CORSMaxAge,
	})
}
