package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/TravelGo/internal/app"
	"github.com/utafrali/TravelGo/internal/config"
	pkgconfig "github.com/utafrali/TravelGo/pkg/config"
	"github.com/utafrali/TravelGo/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// A local .env is optional; real environment variables win.
	if err := pkgconfig.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closer := logger.NewWithFile(cfg.ServiceName, cfg.LogLevel, cfg.LogFileOptions())
	defer closer.Close()
	slog.SetDefault(log)

	log.Info("starting travelgo api",
		slog.String("environment", cfg.Environment),
		slog.String("version", cfg.Version),
		slog.Int("http_port", cfg.HTTPPort),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}

	log.Info("travelgo api stopped")
	return nil
}
