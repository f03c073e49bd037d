package worker

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"vidsphere/internal/models"
	"vidsphere/internal/pkg/errors"
	"vidsphere/internal/pkg/logger"
	"vidsphere/internal/storage"
	"vidsphere/internal/worker/engine"
	"vidsphere/internal/worker/processor"
	"vidsphere/internal/worker/queue"
	"vidsphere/internal/worker/status"
)

// Run processes exactly one job and returns its outcome. With JOB_SOURCE=redis
// an empty queue is not an error: Run returns nil without doing anything.
func Run(ctx context.Context, cfg Config, log *logger.Logger) error {
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	job, ok, err := resolveJob(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("job queue empty, nothing to do", "queue", cfg.QueueName)
		return nil
	}
	log = log.WithJobID(job.JobID())

	storageCfg := cfg.Storage
	storageCfg.Bucket = job.Bucket
	sp, err := storage.NewProvider(ctx, storageCfg)
	if err != nil {
		return errors.Wrap(err, "worker.storage", "failed to build storage provider")
	}

	var sinks []status.Sink
	if job.StatusEndpoint != "" {
		sinks = append(sinks, status.NewHTTPSink(job.StatusEndpoint, cfg.StatusTimeout))
	}
	if rdb != nil {
		sinks = append(sinks, status.NewRedisSink(rdb, cfg.StatusRedisTTL))
	}
	if len(cfg.KafkaBrokers) > 0 {
		ks := status.NewKafkaSink(status.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer func() {
			if err := ks.Close(); err != nil {
				log.WithError(err).Warn("kafka writer close failed")
			}
		}()
		sinks = append(sinks, ks)
	}

	p := processor.New(processor.Deps{
		SP:                sp,
		Engine:            engine.New(engine.Deps{FFmpegPath: cfg.FFmpegPath, Log: log}),
		Status:            status.NewNotifier(status.Deps{Sinks: sinks, Timeout: cfg.StatusTimeout, Log: log}),
		WorkDir:           cfg.WorkDir,
		UploadConcurrency: cfg.UploadConcurrency,
		Log:               log,
	})

	log.Info("processing job",
		"provider", sp.Provider(),
		"renditions", cfg.Catalog.Names(),
		"sinks", len(sinks),
	)
	return p.Run(ctx, job, cfg.Catalog)
}

func resolveJob(ctx context.Context, cfg Config, rdb *redis.Client) (models.JobDescriptor, bool, error) {
	if cfg.JobSource != JobSourceRedis {
		job, err := models.NewJobDescriptor(cfg.Bucket, cfg.Key, cfg.StatusEndpoint)
		if err != nil {
			return models.JobDescriptor{}, false, err
		}
		return job, true, nil
	}

	if rdb == nil {
		return models.JobDescriptor{}, false, errors.ValidationField("REDIS_ADDR", "REDIS_ADDR is required when JOB_SOURCE=redis")
	}
	d, ok, err := queue.NewRedisQueue(rdb, cfg.QueueName).Pop(ctx, cfg.QueueWait)
	if err != nil || !ok {
		return models.JobDescriptor{}, false, err
	}
	return descriptorFromQueue(d, cfg)
}

// descriptorFromQueue fills fields missing from the queued payload with the
// process defaults. A job with nowhere to report status is rejected.
func descriptorFromQueue(d queue.Descriptor, cfg Config) (models.JobDescriptor, bool, error) {
	bucket := d.Bucket
	if bucket == "" {
		bucket = cfg.Bucket
	}
	endpoint := strings.TrimSpace(d.StatusEndpoint)
	if endpoint == "" {
		endpoint = cfg.StatusEndpoint
	}
	if endpoint == "" {
		return models.JobDescriptor{}, false, errors.ValidationField("status_endpoint",
			"queued job has no status endpoint and VIDEO_STATUS_API is unset").WithField("key", d.Key)
	}
	job, err := models.NewJobDescriptor(bucket, d.Key, endpoint)
	if err != nil {
		return models.JobDescriptor{}, false, err
	}
	return job, true, nil
}
