// pantry/requestid/logger.go
package requestid

import (
	"context"

	"go.uber.org/zap"
)

// Logger returns logger with the context's request id attached, or logger
// itself when there is none.
func Logger(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	id := Get(ctx)
	if id == "" {
		return logger
	}
	return logger.With(zap.String("request_id", id))
}

// Field returns a request_id field, or a skipped field without an id.
func Field(ctx context.Context) zap.Field {
	id := Get(ctx)
	if id == "" {
		return zap.Skip()
	}
	return zap.String("request_id", id)
}
