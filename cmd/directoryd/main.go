// Command directoryd runs the artist directory HTTP service.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/goliatone/go-artist-directory/config"
	"github.com/goliatone/go-artist-directory/directory"
	"github.com/goliatone/go-artist-directory/httpapi"
	"github.com/goliatone/go-artist-directory/pkg/di"
)

func main() {
	if err := run(); err != nil {
		slog.Error("directoryd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if cfg.AutoMigrate {
		logger.Info("applying schema")
		if err := directory.CreateSchema(ctx, db); err != nil {
			return err
		}
	}

	container, err := di.NewContainer(db, cfg.Cache.CacheService(), logger)
	if err != nil {
		return err
	}

	server := httpapi.NewServer(cfg.HTTPAddr, container.IngestService(), container.QueryService(), logger)
	return server.Run(ctx)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
