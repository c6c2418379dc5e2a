package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/muzz-matcher/internal/app"
	"github.com/oggyb/muzz-matcher/internal/cache"
	"github.com/oggyb/muzz-matcher/internal/config"
	"github.com/oggyb/muzz-matcher/internal/db"
	"github.com/oggyb/muzz-matcher/internal/gateway"
	"github.com/oggyb/muzz-matcher/internal/logger"
	"github.com/oggyb/muzz-matcher/internal/server"
	"github.com/oggyb/muzz-matcher/internal/service/explore"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}

	appCtx, err := app.New(cfg, database, redisCache, log)
	if err != nil {
		return err
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, appCtx.Scorer, uint64(time.Now().UnixNano()), log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	// The geo index is derived data; rebuild it from the store on boot.
	n, err := appCtx.Ranker.Reindex(ctx)
	if err != nil {
		log.Warn("geo reindex failed, discovery will use the fallback", "err", err)
	} else {
		log.Info("geo index rebuilt", "users", n)
	}

	httpSrv := &http.Server{
		Addr: cfg.HTTP.Host + ":" + cfg.HTTP.Port,
		Handler: gateway.NewHandler(explore.NewExploreService(appCtx), log, gateway.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			Checks: map[string]gateway.HealthCheck{
				"db": func(ctx context.Context) error {
					sqlDB, err := database.DB()
					if err != nil {
						return err
					}
					return sqlDB.PingContext(ctx)
				},
				"redis": redisCache.Ping,
			},
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 2)
	go func() {
		log.Info("starting HTTP gateway", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http gateway: %w", err)
		}
	}()
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		if err := server.StartGRPCServer(ctx, cfg, log, explore.NewRegistrar(appCtx)); err != nil {
			errs <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errs:
		stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
