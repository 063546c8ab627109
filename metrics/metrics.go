// metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// reqDuration is labeled by route, method and status.
var reqDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	},
	[]string{"path", "method", "status"},
)

// mergeTotal counts merges by mode ("extend" or "copy").
var mergeTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audiencekit_merge_total",
		Help: "Object merges performed.",
	},
	[]string{"mode"},
)

// queryTotal counts query upserts by result ("inserted", "replaced" or "error").
var queryTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audiencekit_query_upsert_total",
		Help: "URL query parameter upserts.",
	},
	[]string{"result"},
)

// Merge modes and query results used as label values.
const (
	ModeExtend = "extend"
	ModeCopy   = "copy"

	ResultInserted = "inserted"
	ResultReplaced = "replaced"
	ResultError    = "error"
)

// RegisterDefault registers the Go runtime and process collectors, the HTTP
// request histogram and the audiencekit counters with the default registry.
// Call it once at startup. Registering twice is harmless; any other
// registration failure is fatal.
func RegisterDefault(logger *zap.Logger) {
	mustRegister(logger, "Go collector", collectors.NewGoCollector())
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mustRegister(logger, "HTTP request histogram", reqDuration)
	mustRegister(logger, "merge counter", mergeTotal)
	mustRegister(logger, "query counter", queryTotal)
}

// ObserveMerge records one merge in the given mode.
func ObserveMerge(mode string) {
	mergeTotal.WithLabelValues(mode).Inc()
}

// ObserveQuery records one query upsert outcome.
func ObserveQuery(result string) {
	queryTotal.WithLabelValues(result).Inc()
}

func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return
		}
		if logger != nil {
			logger.Fatal("failed to register "+name, zap.Error(err))
		}
		panic("metrics: failed to register " + name + ": " + err.Error())
	}
}

const maxPathLabelLength = 256

// HTTPMetrics records request durations in http_request_duration_seconds,
// labeled by chi route pattern (e.g. "/v1/merge"), method and status.
// Install it after logging.Recoverer so panics are recorded as 500.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, max(r.ProtoMajor, 1))

		next.ServeHTTP(ww, r)

		reqDuration.WithLabelValues(
			routeLabel(r),
			r.Method,
			strconv.Itoa(statusLabel(ww.Status())),
		).Observe(time.Since(start).Seconds())
	})
}

// statusLabel maps "never written" to 200 and clamps to 100..599.
func statusLabel(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	if status < 100 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// routeLabel prefers the chi route pattern over the raw path and truncates
// long paths on a rune boundary.
func routeLabel(r *http.Request) string {
	path := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			path = pattern
		}
	}
	if len(path) > maxPathLabelLength {
		path = truncateUTF8(path, maxPathLabelLength-3) + "..."
	}
	return path
}

// Handler returns an http.Handler that exposes the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// truncateUTF8 cuts s to at most maxBytes without splitting a rune.
func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
