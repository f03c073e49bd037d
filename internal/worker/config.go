package worker

import (
	"strings"
	"time"

	"vidsphere/internal/models"
	"vidsphere/internal/pkg/errors"
	"vidsphere/internal/storage"
	"vidsphere/internal/worker/util"
)

const (
	JobSourceEnv   = "env"
	JobSourceRedis = "redis"
)

// Config is everything one transcoder invocation needs.
type Config struct {
	JobSource string

	// Job descriptor when JobSource is env; defaults for queued jobs.
	Bucket         string
	Key            string
	StatusEndpoint string

	Storage storage.Config

	WorkDir           string
	FFmpegPath        string
	Catalog           models.Catalog
	UploadConcurrency int
	StatusTimeout     time.Duration

	RedisAddr      string
	QueueName      string
	QueueWait      time.Duration
	StatusRedisTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig reads and validates the process environment.
func LoadConfig() (Config, error) {
	cfg := Config{
		JobSource:      strings.ToLower(util.Env("JOB_SOURCE", JobSourceEnv)),
		Bucket:         util.Env("BUCKET_NAME", ""),
		Key:            util.Env("KEY", ""),
		StatusEndpoint: util.Env("VIDEO_STATUS_API", ""),
		Storage: storage.Config{
			Provider:           util.Env("STORAGE_PROVIDER", storage.ProviderS3),
			Endpoint:           util.Env("S3_ENDPOINT", ""),
			Region:             util.Env("AWS_REGION", "us-east-1"),
			AccessKey:          util.Env("AWS_ACCESS_KEY_ID", ""),
			SecretKey:          util.Env("AWS_SECRET_ACCESS_KEY", ""),
			UseSSL:             util.BoolEnv("S3_USE_SSL", true),
			HeaderTimeout:      util.DurationEnv("S3_HEADER_TIMEOUT", time.Minute),
			LocalRoot:          util.Env("STORAGE_LOCAL_ROOT", ""),
			GDriveClientID:     util.Env("GDRIVE_CLIENT_ID", ""),
			GDriveClientSecret: util.Env("GDRIVE_CLIENT_SECRET", ""),
			GDriveRefreshToken: util.Env("GDRIVE_REFRESH_TOKEN", ""),
			GDriveFolderID:     util.Env("GDRIVE_FOLDER_ID", ""),
		},
		WorkDir:           util.Env("WORK_DIR", ""),
		FFmpegPath:        util.Env("FFMPEG_PATH", "ffmpeg"),
		UploadConcurrency: util.IntEnv("UPLOAD_CONCURRENCY", 4),
		StatusTimeout:     util.DurationEnv("STATUS_TIMEOUT", 10*time.Second),
		RedisAddr:         util.Env("REDIS_ADDR", ""),
		QueueName:         util.Env("JOB_QUEUE_NAME", "vidsphere:jobs"),
		QueueWait:         util.DurationEnv("JOB_QUEUE_WAIT", 5*time.Second),
		StatusRedisTTL:    util.DurationEnv("STATUS_REDIS_TTL", 24*time.Hour),
		KafkaBrokers:      util.ListEnv("KAFKA_BROKERS"),
		KafkaTopic:        util.Env("KAFKA_STATUS_TOPIC", "video-status"),
	}

	mode, err := models.ParseOutputMode(util.Env("RENDITION_MODE", string(models.OutputSingleFile)))
	if err != nil {
		return Config{}, err
	}
	if raw := util.Env("RENDITION_CATALOG", ""); raw != "" {
		cfg.Catalog, err = models.ParseCatalog(raw, mode)
		if err != nil {
			return Config{}, err
		}
	} else {
		cfg.Catalog = models.DefaultCatalog(mode)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.JobSource {
	case JobSourceEnv:
		if c.Bucket == "" {
			return errors.ValidationField("BUCKET_NAME", "BUCKET_NAME is required")
		}
		if c.Key == "" {
			return errors.ValidationField("KEY", "KEY is required")
		}
		if c.StatusEndpoint == "" {
			return errors.ValidationField("VIDEO_STATUS_API", "VIDEO_STATUS_API is required")
		}
	case JobSourceRedis:
		if c.RedisAddr == "" {
			return errors.ValidationField("REDIS_ADDR", "REDIS_ADDR is required when JOB_SOURCE=redis")
		}
	default:
		return errors.ValidationField("JOB_SOURCE", "JOB_SOURCE must be env or redis")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.ValidationField("KAFKA_STATUS_TOPIC", "KAFKA_STATUS_TOPIC is required with KAFKA_BROKERS")
	}
	return c.Catalog.Validate()
}
