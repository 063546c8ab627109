// router/router.go
package router

import (
	"github.com/dalemusser/audiencekit/config"
	"github.com/dalemusser/audiencekit/logging"
	"github.com/dalemusser/audiencekit/metrics"
	"github.com/dalemusser/audiencekit/middleware"
	"github.com/dalemusser/audiencekit/pantry/requestid"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New creates a chi.Router with the standard middleware stack:
// - request id
// - RealIP
// - Recoverer (panic → 500)
// - CORS (when enabled)
// - body size limit (MaxRequestBodyBytes)
// - metrics HTTP middleware (when enabled)
// - request logging
// - NotFound / MethodNotAllowed JSON handlers
// Routes are mounted by the caller.
func New(cfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))
	r.Use(middleware.CORSFromConfig(cfg))
	r.Use(middleware.LimitBodySize(cfg.MaxRequestBodyBytes))
	if cfg.EnableMetrics {
		r.Use(metrics.HTTPMetrics)
	}
	r.Use(logging.RequestLogger(logger))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
