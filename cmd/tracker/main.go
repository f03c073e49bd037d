package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"vidsphere/internal/httpapi"
	"vidsphere/internal/pkg/logger"
	"vidsphere/internal/pkg/shutdown"
	"vidsphere/internal/repositories"
)

func main() {
	_ = godotenv.Load()

	logCfg := logger.DefaultConfig()
	if logCfg.ServiceName == "vidsphere" {
		logCfg.ServiceName = "vidsphere-tracker"
	}
	log := logger.New(logCfg)

	cfg, err := httpapi.LoadConfig()
	if err != nil {
		log.LogFatal("invalid configuration", err)
	}

	ctx := context.Background()
	mgr := shutdown.NewManager(log, cfg.ShutdownTimeout)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	mgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	repo := repositories.NewVideoStatusRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.LogFatal("failed to prepare schema", err)
	}
	log.Info("PostgreSQL connected")

	deps := httpapi.Deps{
		Store:          repo,
		DB:             pool,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		mgr.Register("redis", func(ctx context.Context) error {
			return rdb.Close()
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Progress lookups degrade; status tracking still works.
			log.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "error", err.Error())
		}
		deps.Progress = rdb
	}

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.HTTPPort,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	mgr.Register("http-server", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	if err := mgr.Wait(ctx); err != nil {
		log.Error("shutdown incomplete", "error", err.Error())
		os.Exit(1)
	}
}
