package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"vidsphere/internal/pkg/errors"
)

// Descriptor is the queued form of one transcoding job.
type Descriptor struct {
	Bucket         string `json:"bucket"`
	Key            string `json:"key"`
	StatusEndpoint string `json:"status_endpoint"`
}

type listPopper interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

type RedisQueue struct {
	rdb       listPopper
	queueName string
}

func NewRedisQueue(rdb listPopper, queueName string) *RedisQueue {
	return &RedisQueue{rdb: rdb, queueName: queueName}
}

// Pop waits up to wait for one descriptor (BRPOP). ok is false when the
// queue stayed empty.
func (q *RedisQueue) Pop(ctx context.Context, wait time.Duration) (d Descriptor, ok bool, err error) {
	res, err := q.rdb.BRPop(ctx, wait, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Descriptor{}, false, nil
		}
		return Descriptor{}, false, errors.Wrap(err, "queue.pop", "redis pop failed")
	}
	if len(res) < 2 {
		return Descriptor{}, false, nil
	}

	if err := json.Unmarshal([]byte(res[1]), &d); err != nil {
		return Descriptor{}, false, errors.WrapWithCode(err, errors.CodeValidation, "queue.pop", "invalid job payload").
			WithField("payload", res[1])
	}
	return d, true, nil
}
