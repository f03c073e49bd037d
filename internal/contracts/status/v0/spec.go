package v0

import "time"

// StatusUpdate is the PATCH body sent to the status endpoint.
// The field name videoId is what deployed trackers expect.
type StatusUpdate struct {
	VideoID string `json:"videoId"`
	Status  string `json:"status"`
}

// StatusEvent is published on the status topic.
type StatusEvent struct {
	VideoID    string    `json:"videoId"`
	Status     string    `json:"status"`
	Rendition  string    `json:"rendition,omitempty"`
	ObjectKey  string    `json:"objectKey,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Progress hash layout shared by the transcoder and the tracker.
const (
	ProgressFieldStatus    = "status"
	ProgressFieldUpdatedAt = "updated_at"
	RenditionPublished     = "published"
)

// ProgressKey is the Redis hash holding a job's progress.
func ProgressKey(videoID string) string {
	return "job:" + videoID
}
