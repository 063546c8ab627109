// pantry/health/health.go
package health

import (
	"context"
	"maps"
	"net/http"
	"slices"

	"github.com/dalemusser/audiencekit/httputil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Check is a single probe. It returns nil when healthy. ctx derives from
// the incoming request.
type Check func(ctx context.Context) error

// Response is the JSON body of the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler runs checks in name order on every request. With no checks it is
// a plain liveness probe returning {"status":"ok"}. Any failing check turns
// the response into 503 with {"status":"error", "checks":{...}}.
func Handler(checks map[string]Check, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	names := slices.Sorted(maps.Keys(checks))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(names) == 0 {
			httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"})
			return
		}

		resp := Response{Status: "ok", Checks: make(map[string]string, len(names))}
		for _, name := range names {
			check := checks[name]
			if check == nil {
				resp.Checks[name] = "ok"
				continue
			}
			if err := check(r.Context()); err != nil {
				resp.Status = "error"
				resp.Checks[name] = "error: " + err.Error()
				logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	})
}

// Mount attaches GET /health to r.
func Mount(r chi.Router, checks map[string]Check, logger *zap.Logger) {
	r.Method(http.MethodGet, "/health", Handler(checks, logger))
}
