package main

import (
	"context"
	"fmt"

	"github.com/kislikjeka/fintrack/internal/infra/gateway/financeapi"
	"github.com/kislikjeka/fintrack/internal/infra/memory"
	infraRedis "github.com/kislikjeka/fintrack/internal/infra/redis"
	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/dashboard"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/fintrack/pkg/config"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// app is the wired application state behind every command
type app struct {
	svc     *dashboard.Service
	checks  map[string]handler.Check
	closers []func()
}

// newApp wires the configured data source into a dashboard. limit bounds the
// transactions the dashboard keeps; 0 keeps everything.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, limit int) (*app, error) {
	a := &app{checks: map[string]handler.Check{}}

	var backend dashboard.Backend
	switch cfg.DataSource {
	case config.SourceRemote:
		b, err := a.remoteBackend(ctx, cfg, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		backend = b
	default:
		src, err := memory.NewFromFile(cfg.SeedFile, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed data: %w", err)
		}
		backend = src
		log.Info("Using in-memory data source", "seed_file", cfg.SeedFile)
	}

	a.svc = dashboard.NewService(
		ledger.NewStore(limit),
		backend,
		log,
		dashboard.WithCurrency(cfg.CurrencySymbol),
	)

	a.checks["ledger"] = func(context.Context) error {
		status, err := a.svc.Status()
		if status == ledger.StatusReady {
			return nil
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("ledger is %s", status)
	}

	return a, nil
}

func (a *app) remoteBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*financeapi.Backend, error) {
	client := financeapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, log)

	var opts []financeapi.ServiceOption
	if cfg.CacheEnabled() {
		redisClient, err := infraRedis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { redisClient.Close() })
		a.checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		opts = append(opts, financeapi.WithCache(infraRedis.NewCache(redisClient, cfg.CacheTTL, log)))
		log.Info("Redis connection established")
	}

	// The API has no account resource; kinds and contacts come from the seed accounts
	directory := memory.DefaultSeed()
	if cfg.SeedFile != "" {
		snap, err := memory.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load account directory: %w", err)
		}
		directory = snap
	}

	log.Info("Using remote finance API", "base_url", cfg.APIBaseURL, "cache", cfg.CacheEnabled())
	return financeapi.NewBackend(financeapi.NewService(client, log, opts...), directory.Accounts), nil
}

// Close releases connections opened while wiring
func (a *app) Close() {
	for _, c := range a.closers {
		c()
	}
}
