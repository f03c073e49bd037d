package models

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	v0 "vidsphere/internal/contracts/status/v0"
	"vidsphere/internal/pkg/errors"
)

// OutputMode selects what the engine produces for a rendition.
type OutputMode string

const (
	// OutputSingleFile is one MP4 file per rendition.
	OutputSingleFile OutputMode = "mp4"
	// OutputSegmented is an HLS manifest plus numbered segments.
	OutputSegmented OutputMode = "hls"
)

// ParseOutputMode accepts the config spellings of an output mode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mp4", "file", "single":
		return OutputSingleFile, nil
	case "hls", "segmented", "stream":
		return OutputSegmented, nil
	default:
		return "", errors.Validationf("unknown rendition output mode %q", s)
	}
}

// RenditionProfile is one target resolution.
type RenditionProfile struct {
	Name   string     `json:"name"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Mode   OutputMode `json:"mode"`
}

// Scale is the WxH size string handed to the engine.
func (p RenditionProfile) Scale() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// KeyPrefix is where the rendition lives under the job base path.
func (p RenditionProfile) KeyPrefix(basePath string) string {
	return path.Join(basePath, p.Name)
}

// Catalog is the ordered list of renditions produced for every job.
type Catalog []RenditionProfile

// DefaultCatalog is the standard four-step ladder.
func DefaultCatalog(mode OutputMode) Catalog {
	return Catalog{
		{Name: "360p", Width: 480, Height: 360, Mode: mode},
		{Name: "480p", Width: 858, Height: 480, Mode: mode},
		{Name: "720p", Width: 1280, Height: 720, Mode: mode},
		{Name: "1080p", Width: 1920, Height: 1080, Mode: mode},
	}
}

// ParseCatalog decodes a JSON array of profiles. Profiles without a mode get
// defaultMode.
func ParseCatalog(raw string, defaultMode OutputMode) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "catalog.parse", "invalid rendition catalog JSON")
	}
	for i := range c {
		if c[i].Mode == "" {
			c[i].Mode = defaultMode
			continue
		}
		mode, err := ParseOutputMode(string(c[i].Mode))
		if err != nil {
			return nil, err
		}
		c[i].Mode = mode
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the catalog invariants: at least one profile, unique
// path-safe names that do not shadow progress hash fields, and positive
// dimensions.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return errors.Validation("rendition catalog is empty")
	}
	seen := make(map[string]struct{}, len(c))
	for i, p := range c {
		name := strings.TrimSpace(p.Name)
		if name == "" || name != p.Name || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return errors.Validationf("rendition %d has an invalid name %q", i, p.Name)
		}
		if name == v0.ProgressFieldStatus || name == v0.ProgressFieldUpdatedAt {
			return errors.Validationf("rendition name %q is reserved by the progress hash", name)
		}
		if _, dup := seen[name]; dup {
			return errors.Validationf("rendition name %q is not unique", name)
		}
		seen[name] = struct{}{}
		if p.Width <= 0 || p.Height <= 0 {
			return errors.Validationf("rendition %q must have positive dimensions, got %dx%d", name, p.Width, p.Height)
		}
		if p.Mode != OutputSingleFile && p.Mode != OutputSegmented {
			return errors.Validationf("rendition %q has unknown mode %q", name, p.Mode)
		}
	}
	return nil
}

// Names lists the profile names in order.
func (c Catalog) Names() []string {
	out := make([]string, len(c))
	for i, p := range c {
		out[i] = p.Name
	}
	return out
}
