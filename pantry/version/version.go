// pantry/version/version.go
package version

import (
	"net/http"
	"runtime"

	"github.com/dalemusser/audiencekit/httputil"
	"github.com/go-chi/chi/v5"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/dalemusser/audiencekit/pantry/version.Version=1.0.0 \
//	                   -X github.com/dalemusser/audiencekit/pantry/version.Commit=abc123 \
//	                   -X github.com/dalemusser/audiencekit/pantry/version.BuildTime=2026-01-15T10:30:00Z"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build information reported by the CLI and GET /version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get returns the current build info.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Handler responds with Get() as JSON.
func Handler() http.Handler {
	info := Get()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, info)
	})
}

// Mount attaches GET /version to r.
func Mount(r chi.Router) {
	r.Method(http.MethodGet, "/version", Handler())
}

// String returns e.g. "1.2.3 (abc123, built 2026-01-15T10:30:00Z)", or "dev"
// for unstamped builds.
func String() string {
	if Version == "dev" {
		return "dev"
	}
	return Version + " (" + Commit + ", built " + BuildTime + ")"
}
