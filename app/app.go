// app/app.go
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/audiencekit/config"
	"github.com/dalemusser/audiencekit/httputil"
	"github.com/dalemusser/audiencekit/logging"
	"github.com/dalemusser/audiencekit/metrics"
	"github.com/dalemusser/audiencekit/server"
	"go.uber.org/zap"
)

// Hooks are the integration points a service provides to Run.
type Hooks struct {
	// Name is used only for logging.
	Name string

	// LoadConfig returns the validated service config. It typically wraps
	// config.Load.
	LoadConfig func(logger *zap.Logger) (*config.CoreConfig, error)

	// BuildHandler constructs the final http.Handler: router, middleware
	// and routes.
	BuildHandler func(cfg *config.CoreConfig, logger *zap.Logger) (http.Handler, error)
}

// Run executes the startup sequence:
//
//  1. Bootstrap logger
//  2. Load config (Hooks.LoadConfig)
//  3. Build the final logger from config
//  4. Register metrics (when enabled)
//  5. Wire shutdown signals to a context
//  6. Build the HTTP handler (Hooks.BuildHandler)
//  7. Serve until shutdown
func Run(ctx context.Context, hooks Hooks) error {
	bootstrap := logging.BootstrapLogger()
	defer func() { _ = bootstrap.Sync() }()

	cfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}
	bootstrap.Info("config loaded",
		zap.String("app", hooks.Name),
		zap.String("env", cfg.Env),
		zap.String("log_level", cfg.LogLevel),
	)

	logger, err := logging.BuildLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	httputil.SetLogger(logger)
	logger.Debug("effective config", zap.String("config", cfg.Dump()))

	if cfg.EnableMetrics {
		metrics.RegisterDefault(logger)
	}

	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	handler, err := hooks.BuildHandler(cfg, logger)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		return fmt.Errorf("build handler: %w", err)
	}

	if err := server.ListenAndServeWithContext(ctx, cfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped", zap.String("app", hooks.Name))
	return nil
}
