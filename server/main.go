package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/meikuraledutech/workflow/postgres"
)

func main() {
	cfg := loadConfig(os.Getenv)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := newApp(cfg, postgres.New(pool), logger, reg)

	logger.Info("listening", slog.String("addr", cfg.ListenAddr))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.Error("listen", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
