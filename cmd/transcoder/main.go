package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vidsphere/internal/pkg/errors"
	"vidsphere/internal/pkg/logger"
	"vidsphere/internal/worker"
)

func main() {
	// A missing .env is fine; real deployments inject the environment.
	_ = godotenv.Load()

	cfg := logger.DefaultConfig()
	if cfg.ServiceName == "vidsphere" {
		cfg.ServiceName = "vidsphere-transcoder"
	}
	log := logger.New(cfg)

	wcfg, err := worker.LoadConfig()
	if err != nil {
		log.Error("invalid configuration",
			"error", err.Error(),
			"fields", errors.GetFields(err),
		)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	log.Info("transcoder started", "job_source", wcfg.JobSource)

	if err := worker.Run(ctx, wcfg, log); err != nil {
		log.Error("transcoder finished with failure",
			"error", err.Error(),
			"code", string(errors.GetCode(err)),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		stop()
		os.Exit(1)
	}

	log.Info("transcoder finished", "duration_ms", time.Since(start).Milliseconds())
}
