// Package main provides the routinely proxy gateway server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"routinely/internal/config"
	"routinely/internal/gateway"
	"routinely/internal/metrics"
)

func main() {
	cfg := config.LoadGateway()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	slog.Info("starting routinely-gateway", "addr", cfg.Addr, "provider", cfg.Provider)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	provider, err := gateway.NewProvider(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("failed to create provider", "error", err)
		os.Exit(1)
	}

	srv := gateway.NewServer(provider, logger, metrics.NewCollector())

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 180 * time.Second, // Long for upstream model responses
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("relay endpoint available", "addr", cfg.Addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
