package processor

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is the job's private scratch directory. Everything the job
// writes locally lives under it so one RemoveAll releases it all.
type Workspace struct {
	dir string
}

func NewWorkspace(root, jobID string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	dir := filepath.Join(root, SanitizeFilename(jobID)+"-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, err
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

// SourcePath is where the fetched source is written.
func (w *Workspace) SourcePath(originalName string) string {
	return filepath.Join(w.dir, "source", SanitizeFilename(originalName))
}

// RenditionDir is the engine output directory for one profile.
func (w *Workspace) RenditionDir(profile string) string {
	return filepath.Join(w.dir, "renditions", SanitizeFilename(profile))
}

// RemoveRendition deletes one profile's local artifacts.
func (w *Workspace) RemoveRendition(profile string) error {
	return os.RemoveAll(w.RenditionDir(profile))
}

// Close removes the workspace. Safe to call more than once.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}
