// pantry/requestid/requestid.go
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey struct{}

// Header carries the request id in both directions.
const Header = "X-Request-ID"

// maxLen bounds accepted incoming ids so they stay usable as log fields.
const maxLen = 128

// Middleware reuses a well-formed incoming X-Request-ID or assigns a new
// UUID. The id is stored in the request context and echoed on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !valid(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(Set(r.Context(), id)))
	})
}

// valid accepts 1..128 printable ASCII characters without spaces.
func valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}

// Get retrieves the request ID from the context, or "".
func Get(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Set adds a request ID to a context.
func Set(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}
