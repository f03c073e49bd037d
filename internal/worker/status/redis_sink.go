package status

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	v0 "vidsphere/internal/contracts/status/v0"
)

// hashWriter is the subset of redis.Cmdable the sink needs.
type hashWriter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisSink mirrors job progress into the job:<id> hash.
type RedisSink struct {
	rdb hashWriter
	ttl time.Duration
	now func() time.Time
}

func NewRedisSink(rdb hashWriter, ttl time.Duration) *RedisSink {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSink{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, update v0.StatusUpdate) error {
	key := v0.ProgressKey(update.VideoID)
	if err := s.rdb.HSet(ctx, key,
		v0.ProgressFieldStatus, update.Status,
		v0.ProgressFieldUpdatedAt, s.now().UTC().Format(time.RFC3339),
	).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisSink) SendRendition(ctx context.Context, videoID, rendition, objectKey string) error {
	key := v0.ProgressKey(videoID)
	if err := s.rdb.HSet(ctx, key, rendition, v0.RenditionPublished).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}
