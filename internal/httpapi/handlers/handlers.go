package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"

	"vidsphere/internal/models"
	"vidsphere/internal/pkg/logger"
)

// StatusStore persists the last reported status per video.
type StatusStore interface {
	Upsert(ctx context.Context, videoID string, status models.JobStatus) (models.VideoStatus, error)
	Get(ctx context.Context, videoID string) (models.VideoStatus, error)
}

// ProgressReader reads the per-job progress hash the transcoder writes.
type ProgressReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Store    StatusStore
	Progress ProgressReader // optional
	DB       Pinger         // optional
	Log      *logger.Logger
}

type Handler struct {
	store    StatusStore
	progress ProgressReader
	db       Pinger
	log      *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault().WithComponent("httpapi")
	}
	return &Handler{
		store:    d.Store,
		progress: d.Progress,
		db:       d.DB,
		log:      log,
	}
}
