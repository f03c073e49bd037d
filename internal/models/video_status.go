package models

import "time"

// VideoStatus is the tracker's record of the last status reported for a video.
type VideoStatus struct {
	VideoID    string            `json:"video_id"`
	Status     JobStatus         `json:"status"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Renditions map[string]string `json:"renditions,omitempty"`
}
