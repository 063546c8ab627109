// server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dalemusser/audiencekit/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WithShutdownSignals returns a context that is canceled on SIGINT or
// SIGTERM. The returned cancel function also stops signal delivery.
func WithShutdownSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			if logger != nil {
				logger.Info("shutdown signal received", zap.Any("signal", sig))
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// ListenAndServeWithContext listens on cfg.HTTP.HTTPPort and serves handler
// until ctx is canceled or the server fails. TLS is expected to terminate
// in front of the service.
func ListenAndServeWithContext(
	ctx context.Context,
	cfg *config.CoreConfig,
	handler http.Handler,
	logger *zap.Logger,
) error {
	if cfg == nil {
		return errors.New("ListenAndServeWithContext: cfg is nil")
	}
	addr := ":" + strconv.Itoa(cfg.HTTP.HTTPPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", addr, err)
	}
	return Serve(ctx, ln, cfg.HTTP, handler, logger)
}

// Serve runs an http.Server with the configured timeouts on ln and shuts it
// down gracefully within ShutdownTimeout once ctx is done. The listener is
// closed on return.
func Serve(ctx context.Context, ln net.Listener, cfg config.HTTPConfig, handler http.Handler, logger *zap.Logger) error {
	if handler == nil {
		_ = ln.Close()
		return errors.New("Serve: handler is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	if stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = stdlog
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		logger.Info("shutting down server…")
		// ctx is already done; the shutdown window is independent of it.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("server shutdown: %w", err)
		}
		<-serveErr
		logger.Info("server stopped gracefully")
		return nil

	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}
}
