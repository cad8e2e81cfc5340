package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/undercity/undercity-engine/internal/api/rest"
	"github.com/undercity/undercity-engine/internal/domain/guild"
	"github.com/undercity/undercity-engine/internal/infrastructure/clock"
	"github.com/undercity/undercity-engine/internal/infrastructure/config"
	"github.com/undercity/undercity-engine/internal/infrastructure/ledger"
	"github.com/undercity/undercity-engine/internal/infrastructure/random"
	"github.com/undercity/undercity-engine/internal/infrastructure/repository"
	"github.com/undercity/undercity-engine/internal/infrastructure/store"
	"github.com/undercity/undercity-engine/internal/infrastructure/telemetry"
	"github.com/undercity/undercity-engine/internal/metrics"
	crimesvc "github.com/undercity/undercity-engine/internal/service/crime"
	"github.com/undercity/undercity-engine/internal/service/jailing"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building zap logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	docs, err := store.NewRedisStore(store.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, zapLogger)
	if err != nil {
		return err
	}
	defer docs.Close()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	bank, err := ledger.NewPostgresLedger(pool, zapLogger)
	if err != nil {
		return err
	}

	defaults := guild.Settings{
		BailMultiplier:  cfg.Engine.BailMultiplier,
		AllowBail:       cfg.Engine.AllowBail,
		MinStealBalance: cfg.Engine.MinStealBalance,
		MaxStealAmount:  cfg.Engine.MaxStealAmount,
		EnableEvents:    cfg.Engine.EnableEvents,
		NotifyCost:      cfg.Engine.NotifyCost,
	}
	repo := repository.New(docs, defaults)

	clk := clock.NewSystem()
	rng := random.NewSource(uint64(time.Now().UnixNano()), uint64(os.Getpid()))
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	jailSvc := jailing.NewService(repo, bank, clk, rng, nil, logger, collector, jailing.Config{
		JailbreakEnabled: cfg.Engine.JailbreakEnabled,
		Pacing:           cfg.Engine.PacingDelays,
	})
	defer jailSvc.Stop()

	crimeSvc := crimesvc.NewService(repo, bank, clk, rng, jailSvc, nil, logger, collector, crimesvc.Config{
		Pacing: cfg.Engine.PacingDelays,
	})

	api := rest.NewServer(crimeSvc, jailSvc, logger, cfg.Server)
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
