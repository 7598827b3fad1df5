package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/firmdesk/internal/advisory"
	"github.com/celerix-dev/firmdesk/internal/app"
	"github.com/celerix-dev/firmdesk/internal/config"
	"github.com/celerix-dev/firmdesk/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	if cfg.Level() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting firmdesk daemon", "driver", cfg.Driver, "data_dir", cfg.DataDir, "prefix", cfg.Prefix)
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var adv *advisory.Advisor
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		if adv, err = a.Advisor(ctx); err != nil {
			logger.Warn("advisory disabled", "error", err)
		}
	} else {
		logger.Info("advisory disabled: no API key in environment")
	}

	srv := server.New(server.NewRouter(a.Handler(adv), a.Registry))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.HTTPPort) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
		<-errCh
		logger.Info("shutdown complete")
	}
}
