// middleware/notfound.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/audiencekit/httputil"
	"github.com/dalemusser/audiencekit/pantry/requestid"
	"go.uber.org/zap"
)

// NotFoundHandler logs a 404 and returns a JSON error body.
// Pass it to chi.Router.NotFound.
func NotFoundHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logMiss(logger, "not_found", r)
		httputil.JSONError(w, http.StatusNotFound,
			"not_found",
			"The requested resource was not found",
		)
	}
}

// MethodNotAllowedHandler logs a 405 and returns a JSON error body.
// Pass it to chi.Router.MethodNotAllowed.
func MethodNotAllowedHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logMiss(logger, "method_not_allowed", r)
		httputil.JSONError(w, http.StatusMethodNotAllowed,
			"method_not_allowed",
			"The requested HTTP method is not allowed for this resource",
		)
	}
}

func logMiss(logger *zap.Logger, msg string, r *http.Request) {
	if logger == nil {
		return
	}
	logger.Info(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_ip", r.RemoteAddr),
		requestid.Field(r.Context()),
	)
}
