// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/audiencekit/app"
	"github.com/dalemusser/audiencekit/auth/apikey"
	"github.com/dalemusser/audiencekit/config"
	"github.com/dalemusser/audiencekit/internal/app/audience"
	"github.com/dalemusser/audiencekit/internal/app/features/mergebody"
	"github.com/dalemusser/audiencekit/internal/app/features/queryurl"
	"github.com/dalemusser/audiencekit/metrics"
	"github.com/dalemusser/audiencekit/middleware"
	"github.com/dalemusser/audiencekit/pantry/health"
	"github.com/dalemusser/audiencekit/pantry/merge"
	"github.com/dalemusser/audiencekit/pantry/ratelimit"
	"github.com/dalemusser/audiencekit/pantry/urlutil"
	"github.com/dalemusser/audiencekit/pantry/version"
	"github.com/dalemusser/audiencekit/router"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Name identifies the service in logs.
const Name = "audiencekit"

// Hooks returns the app hooks for `audiencekit serve`. args are the serve
// command's flags.
func Hooks(args []string) app.Hooks {
	return app.Hooks{
		Name: Name,
		LoadConfig: func(logger *zap.Logger) (*config.CoreConfig, error) {
			return config.Load(logger, args)
		},
		BuildHandler: BuildHandler,
	}
}

// BuildHandler wires the router, health, version, metrics and the /v1 API.
func BuildHandler(cfg *config.CoreConfig, logger *zap.Logger) (http.Handler, error) {
	r := router.New(cfg, logger)

	health.Mount(r, map[string]health.Check{
		"merge": checkMerge,
		"query": checkQuery,
	}, logger)
	version.Mount(r)
	if cfg.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	svc := audience.New(logger)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(ratelimit.Middleware(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		if cfg.APIKey != "" {
			v1.Use(apikey.Require(cfg.APIKey, apikey.Options{Realm: Name}, logger))
		}
		// Content type is checked per route so unknown methods still get 405.
		api := v1.With(middleware.RequireJSON())
		mergebody.NewHandler(svc, logger).Mount(api)
		queryurl.NewHandler(svc, logger).Mount(api)
	})

	return r, nil
}

// checkMerge runs a list-append merge on fresh mappings.
func checkMerge(context.Context) error {
	out := merge.ExtendCopy(
		merge.Mapping{"tags": merge.Strings("x")},
		merge.Mapping{"tags": merge.Strings("y")},
	)
	if l, ok := out["tags"].(*merge.List); !ok || l.Len() != 2 {
		return errMergeCheck
	}
	return nil
}

// checkQuery upserts into a fixed URL.
func checkQuery(context.Context) error {
	out, err := urlutil.SetQueryParam("https://example.com/p?id=1", "id", "2")
	if err != nil {
		return err
	}
	if out != "https://example.com/p?id=2" {
		return errQueryCheck
	}
	return nil
}
