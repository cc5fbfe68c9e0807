// Command server runs the creator lounge API.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakif/creator-lounge/internal/config"
	"github.com/sakif/creator-lounge/internal/server"
	"github.com/sakif/creator-lounge/internal/service"
	"github.com/sakif/creator-lounge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	// Uploads are optional: without a bucket the rest of the API still runs.
	var store service.ObjectStore
	if cfg.S3.Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3, logger)
		if err != nil {
			logger.Error("failed to configure object storage", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = s3Store
	}

	srv, err := server.New(ctx, cfg, logger, store, nil)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger writes text locally and JSON in production, at LOG_LEVEL.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
