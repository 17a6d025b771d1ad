package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/partforge/ooxmlsvc/internal/config"
	"github.com/partforge/ooxmlsvc/internal/handler"
	"github.com/partforge/ooxmlsvc/internal/session"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	var sessions *session.Store
	if cfg.ObjectStoreBucket != "" {
		blobs, err := session.NewLocalBlobStore(cfg.BlobDir, cfg.BlobBaseURL)
		if err != nil {
			logger.Error("failed to initialize blob store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		sessions = session.NewStore(cfg.SessionTTL, cfg.SignedURLTTL, blobs)
		defer sessions.Close()
	} else {
		logger.Warn("OBJECT_STORE_BUCKET unset: session mode disabled, inline requests only")
	}

	srvHandler := handler.NewServer(logger, sessions, cfg.OpSoftTimeout, cfg.MaxInlineBodyBytes, version)
	router := handler.NewRouter(srvHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
