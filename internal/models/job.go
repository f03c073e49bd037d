package models

import (
	"path"
	"strings"

	"vidsphere/internal/pkg/errors"
)

// sourceKeySegments is the exact number of path segments in a source key:
// <root>/<ownerId>/video/<jobId>/<originalName>.
const sourceKeySegments = 5

// SourceKey is a parsed source object key.
type SourceKey struct {
	Raw          string
	Root         string
	OwnerID      string
	JobID        string
	OriginalName string
}

// ParseSourceKey validates the source key shape. Any deviation is a
// validation error; nothing is defaulted.
func ParseSourceKey(key string) (SourceKey, error) {
	parts := strings.Split(key, "/")
	if len(parts) != sourceKeySegments {
		return SourceKey{}, errors.Validationf(
			"source key %q must have the form <root>/<ownerId>/video/<jobId>/<name>, got %d segments",
			key, len(parts),
		).WithField("key", key)
	}
	for i, p := range parts {
		if strings.TrimSpace(p) == "" || p == "." || p == ".." {
			return SourceKey{}, errors.Validationf("source key %q has an invalid segment at position %d", key, i).
				WithField("key", key)
		}
	}
	if parts[2] != "video" {
		return SourceKey{}, errors.Validationf("source key %q: third segment must be \"video\", got %q", key, parts[2]).
			WithField("key", key)
	}

	return SourceKey{
		Raw:          key,
		Root:         parts[0],
		OwnerID:      parts[1],
		JobID:        parts[3],
		OriginalName: parts[4],
	}, nil
}

// BasePath is the job-scoped prefix every rendition is published under.
func (k SourceKey) BasePath() string {
	return path.Join(k.Root, k.OwnerID, "video", k.JobID)
}

// JobDescriptor identifies the one source object a transcoder process works on.
// It is built once at startup and never mutated.
type JobDescriptor struct {
	Bucket         string
	Source         SourceKey
	StatusEndpoint string
}

// NewJobDescriptor validates its inputs and parses the key.
func NewJobDescriptor(bucket, key, statusEndpoint string) (JobDescriptor, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return JobDescriptor{}, errors.ValidationField("bucket", "bucket is required")
	}
	src, err := ParseSourceKey(strings.TrimSpace(key))
	if err != nil {
		return JobDescriptor{}, err
	}
	return JobDescriptor{
		Bucket:         bucket,
		Source:         src,
		StatusEndpoint: strings.TrimSpace(statusEndpoint),
	}, nil
}

// JobID is the identifier reported to the status endpoint.
func (j JobDescriptor) JobID() string {
	return j.Source.JobID
}

// SourceKey returns the original object key.
func (j JobDescriptor) SourceKey() string {
	return j.Source.Raw
}

// JobStatus is a reported lifecycle state. The string values are the wire
// literals other systems read.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "transcoding"
	JobStatusCompleted  JobStatus = "completed"
)

// Valid reports whether s is one of the known literals.
func (s JobStatus) Valid() bool {
	return s == JobStatusProcessing || s == JobStatusCompleted
}
