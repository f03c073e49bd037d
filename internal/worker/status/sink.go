package status

import (
	"context"

	v0 "vidsphere/internal/contracts/status/v0"
)

// Sink delivers one status transition somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, update v0.StatusUpdate) error
}

// RenditionSink is implemented by sinks that also track per-rendition progress.
type RenditionSink interface {
	SendRendition(ctx context.Context, videoID, rendition, objectKey string) error
}
