package main

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"GameCatalog/internal/config"
	"GameCatalog/internal/games"
	"GameCatalog/pkg/kit"
)

func main() {
	service := "games"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, service, log); err != nil {
		log.Error("service stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, service string, log *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	s := &games.Server{
		Service: games.NewCatalog(store, log),
		Log:     log,
	}
	if cfg.WriteLimitPerMin > 0 {
		s.WriteLimiter = kit.NewIPRateLimiter(cfg.WriteLimitPerMin, time.Minute)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := games.NewHandler(s, games.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		TrustProxy:     cfg.TrustProxy,
	})

	return kit.RunHTTPServer(ctx, cfg.Addr(), h, log, cfg.ShutdownTimeout.Duration)
}

// openStore picks Postgres when a DSN is configured and memory otherwise.
// The returned close func releases whatever was opened.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (games.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		return games.NewMemStore(), func() {}, nil
	}

	db, err := games.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using postgres store")

	return games.NewPostgresStore(db), func() {
		if err := db.Close(); err != nil {
			log.Warn("close postgres failed", zap.Error(err))
		}
	}, nil
}
