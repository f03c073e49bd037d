package models

import "path"

// Content types of published artifacts.
const (
	ContentTypeMP4     = "video/mp4"
	ContentTypeHLS     = "application/vnd.apple.mpegurl"
	ContentTypeSegment = "video/mp2t"
)

// LocalArtifact is one file the engine wrote for a rendition. RelName is the
// name relative to the rendition's output directory and becomes the key suffix.
type LocalArtifact struct {
	Path        string
	RelName     string
	ContentType string
	Size        int64
}

// ObjectKey is where the artifact is published.
//
// Single files go to <base>/<rendition><ext> so a rendition has exactly one
// object; bundles go under <base>/<rendition>/<file>.
func (a LocalArtifact) ObjectKey(basePath string, p RenditionProfile) string {
	if p.Mode == OutputSingleFile {
		return path.Join(basePath, p.Name+path.Ext(a.RelName))
	}
	return path.Join(p.KeyPrefix(basePath), a.RelName)
}
