package processor

import (
	"mime"
	"path/filepath"
	"strings"

	"vidsphere/internal/models"
)

// SanitizeFilename makes s safe to use as a single path element.
func SanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "..", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "input"
	}
	return s
}

// sourceContentType picks the type to restore the source with: whatever the
// store reported, else one derived from the extension, else video/mp4.
func sourceContentType(reported, name string) string {
	if ct := strings.TrimSpace(reported); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return models.ContentTypeMP4
}
