package status

import (
	"context"
	"time"

	v0 "vidsphere/internal/contracts/status/v0"
	"vidsphere/internal/models"
	"vidsphere/internal/pkg/logger"
)

const defaultSinkTimeout = 10 * time.Second

type Deps struct {
	Sinks   []Sink
	Timeout time.Duration
	Log     *logger.Logger
}

// Notifier fans status transitions out to every sink. Delivery is
// best-effort: failures are logged and never returned.
type Notifier struct {
	sinks   []Sink
	timeout time.Duration
	log     *logger.Logger
}

func NewNotifier(d Deps) *Notifier {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	return &Notifier{
		sinks:   d.Sinks,
		timeout: timeout,
		log:     log.WithComponent("status"),
	}
}

func (n *Notifier) Report(ctx context.Context, videoID string, status models.JobStatus) {
	update := v0.StatusUpdate{VideoID: videoID, Status: string(status)}
	for _, s := range n.sinks {
		sctx, cancel := context.WithTimeout(ctx, n.timeout)
		err := s.Send(sctx, update)
		cancel()
		if err != nil {
			n.log.WithJobID(videoID).WithError(err).Warn("status report failed",
				"sink", s.Name(),
				"status", string(status),
			)
			continue
		}
		n.log.WithJobID(videoID).Debug("status reported", "sink", s.Name(), "status", string(status))
	}
}

// Rendition records that one rendition finished publishing. Only sinks
// that track progress receive it.
func (n *Notifier) Rendition(ctx context.Context, videoID, rendition, objectKey string) {
	for _, s := range n.sinks {
		rs, ok := s.(RenditionSink)
		if !ok {
			continue
		}
		sctx, cancel := context.WithTimeout(ctx, n.timeout)
		err := rs.SendRendition(sctx, videoID, rendition, objectKey)
		cancel()
		if err != nil {
			n.log.WithJobID(videoID).WithRendition(rendition).WithError(err).Warn("rendition progress failed",
				"sink", s.Name(),
			)
		}
	}
}
