package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vidsphere/internal/pkg/errors"
	"vidsphere/internal/ports"
)

const defaultRegion = "us-east-1"

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// HeaderTimeout bounds the wait for response headers. Bodies stream
	// without a deadline. 0 leaves it unbounded.
	HeaderTimeout time.Duration
}

// Client is an S3-compatible object store addressed with path-style URLs.
type Client struct {
	mc     *minio.Client
	bucket string
}

func New(cfg Config) (*Client, error) {
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	if cfg.Bucket == "" {
		return nil, errors.ValidationField("bucket", "bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	host, secure, err := resolveEndpoint(cfg)
	if err != nil {
		return nil, err
	}

	transport, err := minio.DefaultTransport(secure)
	if err != nil {
		return nil, fmt.Errorf("s3 transport: %w", err)
	}
	transport.ResponseHeaderTimeout = cfg.HeaderTimeout

	mc, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure:       secure,
		Region:       cfg.Region,
		Transport:    transport,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, errors.Validationf("invalid s3 endpoint %q: %v", host, err)
	}
	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

// resolveEndpoint accepts "host:port", "scheme://host" or empty (AWS regional endpoint).
func resolveEndpoint(cfg Config) (host string, secure bool, err error) {
	raw := strings.TrimSpace(cfg.Endpoint)
	switch {
	case raw == "":
		return fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region), true, nil
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return "", false, errors.Validationf("invalid s3 endpoint %q", raw)
		}
		return u.Host, u.Scheme == "https", nil
	default:
		return raw, cfg.UseSSL, nil
	}
}

func (c *Client) Provider() string { return "s3" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if strings.TrimSpace(in.ObjectKey) == "" {
		return ports.PutObjectOutput{}, errors.ValidationField("object_key", "object_key is required")
	}
	size := in.Size
	if size < 0 {
		size = -1
	}

	info, err := c.mc.PutObject(ctx, c.bucket, in.ObjectKey, in.Reader, size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("upload object %s: %w", in.ObjectKey, err)
	}
	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: info.Size}, nil
}

// GetObject returns the object body unbuffered; the caller closes it.
func (c *Client) GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", 0, fmt.Errorf("download object %s: %w", objectKey, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, "", 0, errors.NotFound("object", objectKey)
		}
		return nil, "", 0, fmt.Errorf("download object %s: %w", objectKey, err)
	}
	return obj, info.ContentType, info.Size, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return errors.NotFound("object", objectKey)
		}
		return fmt.Errorf("delete object %s: %w", objectKey, err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}
