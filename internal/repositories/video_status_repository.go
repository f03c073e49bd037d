package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"vidsphere/internal/httpkit"
	"vidsphere/internal/models"
	"vidsphere/internal/pkg/errors"
)

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS video_status (
	video_id   TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// A completed row only accepts another completed write.
const upsertSQL = `
INSERT INTO video_status (video_id, status, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (video_id) DO UPDATE
	SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	WHERE video_status.status <> 'completed' OR EXCLUDED.status = 'completed'`

const getSQL = `SELECT video_id, status, updated_at FROM video_status WHERE video_id = $1`

type VideoStatusRepository struct {
	db  Querier
	now func() time.Time
}

func NewVideoStatusRepository(db Querier) *VideoStatusRepository {
	return &VideoStatusRepository{db: db, now: time.Now}
}

func (r *VideoStatusRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "repositories.ensure_schema", "create video_status table")
	}
	return nil
}

// Upsert records status for videoID. Moving a completed video back to
// transcoding is rejected with a conflict.
func (r *VideoStatusRepository) Upsert(ctx context.Context, videoID string, status models.JobStatus) (models.VideoStatus, error) {
	if videoID == "" {
		return models.VideoStatus{}, errors.ValidationField("videoId", "videoId is required")
	}
	if !status.Valid() {
		return models.VideoStatus{}, errors.ValidationField("status", "unknown status: "+string(status))
	}

	now := r.now().UTC()
	tag, err := r.db.Exec(ctx, upsertSQL, videoID, string(status), now)
	if err != nil {
		return models.VideoStatus{}, errors.Wrap(err, "repositories.upsert", "store video status")
	}
	if tag.RowsAffected() == 0 {
		return models.VideoStatus{}, errors.Conflict("status cannot move from completed to " + string(status)).
			WithField("videoId", videoID)
	}

	return models.VideoStatus{VideoID: videoID, Status: status, UpdatedAt: now}, nil
}

func (r *VideoStatusRepository) Get(ctx context.Context, videoID string) (models.VideoStatus, error) {
	var (
		out    models.VideoStatus
		status string
	)
	err := r.db.QueryRow(ctx, getSQL, videoID).Scan(&out.VideoID, &status, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || httpkit.IsUndefinedTable(err) {
			return models.VideoStatus{}, errors.NotFound("video", videoID)
		}
		return models.VideoStatus{}, errors.Wrap(err, "repositories.get", "load video status")
	}
	out.Status = models.JobStatus(status)
	return out, nil
}
