package processor

import (
	"context"

	"vidsphere/internal/models"
)

// Transcoder renders one input at one profile into outDir.
type Transcoder interface {
	Transcode(ctx context.Context, input string, profile models.RenditionProfile, outDir string) ([]models.LocalArtifact, error)
}

type TranscodeHandler struct {
	engine Transcoder
}

func NewTranscodeHandler(engine Transcoder) *TranscodeHandler {
	return &TranscodeHandler{engine: engine}
}

// Render produces profile's artifacts inside the workspace.
func (th *TranscodeHandler) Render(ctx context.Context, ws *Workspace, src models.LocalArtifact, profile models.RenditionProfile) ([]models.LocalArtifact, error) {
	return th.engine.Transcode(ctx, src.Path, profile, ws.RenditionDir(profile.Name))
}
