// pantry/testing/helpers.go
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger returns a no-op logger for tests.
func TestLogger() *zap.Logger {
	return zap.NewNop()
}

// ObservedLogger returns a logger that records entries at level and above.
func ObservedLogger(level zap.AtomicLevel) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// TempFile writes content to name inside a per-test temp dir and returns
// its path.
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
