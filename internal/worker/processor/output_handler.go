package processor

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"vidsphere/internal/models"
	"vidsphere/internal/ports"
)

const defaultUploadConcurrency = 4

type OutputHandler struct {
	sp          ports.StorageProvider
	concurrency int
}

func NewOutputHandler(sp ports.StorageProvider, concurrency int) *OutputHandler {
	if concurrency <= 0 {
		concurrency = defaultUploadConcurrency
	}
	return &OutputHandler{sp: sp, concurrency: concurrency}
}

// Publish uploads every artifact of one rendition under basePath. Uploads
// run concurrently and in no particular order; the first failure fails the
// whole batch. The returned keys follow the artifact order.
func (oh *OutputHandler) Publish(ctx context.Context, basePath string, profile models.RenditionProfile, arts []models.LocalArtifact) ([]string, error) {
	keys := make([]string, len(arts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(oh.concurrency)
	for i, a := range arts {
		key := a.ObjectKey(basePath, profile)
		keys[i] = key
		g.Go(func() error {
			return oh.upload(gctx, key, a)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Restore re-publishes the local source under its original key.
func (oh *OutputHandler) Restore(ctx context.Context, objectKey string, src models.LocalArtifact) error {
	return oh.upload(ctx, objectKey, src)
}

func (oh *OutputHandler) upload(ctx context.Context, key string, a models.LocalArtifact) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.RelName, err)
	}
	defer f.Close()

	size := a.Size
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	if _, err := oh.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: a.ContentType,
		Reader:      f,
		Size:        size,
	}); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
