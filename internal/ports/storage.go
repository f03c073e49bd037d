package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	// Size must be set for backends that need a Content-Length (s3).
	Size int64
}

type PutObjectOutput struct {
	ObjectKey string
	Size      int64
}

// StorageProvider is the blob store the transcoder reads sources from and
// publishes renditions to. Implementations: localfs, gdrive, s3.
//
// GetObject must return the body unbuffered; the caller drains and closes it.
// A missing object is reported as an errors.CodeNotFound error.
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
	DeleteObject(ctx context.Context, objectKey string) error
}
