// Command mockbackend runs the mock authentication and catalog server
// the discovery sync core develops against.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusorient/discovery-sync/config"
	"github.com/campusorient/discovery-sync/internal/mockbackend"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	srv := mockbackend.New(cfg.MockBackend, logger)
	seedDemoUser(logger, srv)

	httpServer := &http.Server{
		Addr:              cfg.MockBackend.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock backend listening", "addr", cfg.MockBackend.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down mock backend")
	return httpServer.Shutdown(shutdownCtx)
}

// seedDemoUser keeps a known login around for local development.
func seedDemoUser(logger *slog.Logger, srv *mockbackend.Server) {
	user, err := srv.Store().CreateUser(demoUser(), "password123")
	if err != nil {
		logger.Warn("seed demo user failed", "error", err)
		return
	}
	logger.Info("seeded demo user", "email", user.Email)
}
