package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vidsphere/internal/models"
	"vidsphere/internal/ports"
)

type InputHandler struct {
	sp ports.StorageProvider
}

func NewInputHandler(sp ports.StorageProvider) *InputHandler {
	return &InputHandler{sp: sp}
}

// Fetch streams objectKey into localPath. It returns only after the local
// file was fully written, synced and closed; any sink error fails the fetch.
func (ih *InputHandler) Fetch(ctx context.Context, objectKey, localPath string) (models.LocalArtifact, error) {
	rc, contentType, _, err := ih.sp.GetObject(ctx, objectKey)
	if err != nil {
		return models.LocalArtifact{}, err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return models.LocalArtifact{}, fmt.Errorf("create source dir: %w", err)
	}

	n, err := ih.saveToLocal(localPath, rc)
	if err != nil {
		return models.LocalArtifact{}, fmt.Errorf("save source locally: %w", err)
	}

	return models.LocalArtifact{
		Path:        localPath,
		RelName:     filepath.Base(localPath),
		ContentType: sourceContentType(contentType, localPath),
		Size:        n,
	}, nil
}

func (ih *InputHandler) saveToLocal(localPath string, r io.Reader) (int64, error) {
	f, err := os.Create(localPath)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return n, err
	}
	return n, f.Close()
}
