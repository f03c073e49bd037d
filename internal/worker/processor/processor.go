package processor

import (
	"context"
	"time"

	"vidsphere/internal/models"
	"vidsphere/internal/pkg/errors"
	"vidsphere/internal/pkg/logger"
	"vidsphere/internal/ports"
)

// StatusReporter receives lifecycle transitions. Implementations must not
// block the pipeline on delivery failures.
type StatusReporter interface {
	Report(ctx context.Context, videoID string, status models.JobStatus)
	Rendition(ctx context.Context, videoID, rendition, objectKey string)
}

type Deps struct {
	SP                ports.StorageProvider
	Engine            Transcoder
	Status            StatusReporter
	WorkDir           string
	UploadConcurrency int
	Log               *logger.Logger
}

type Processor struct {
	sp      ports.StorageProvider
	status  StatusReporter
	workDir string
	log     *logger.Logger

	inputHandler     *InputHandler
	transcodeHandler *TranscodeHandler
	outputHandler    *OutputHandler
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("processor")

	return &Processor{
		sp:               d.SP,
		status:           d.Status,
		workDir:          d.WorkDir,
		log:              log,
		inputHandler:     NewInputHandler(d.SP),
		transcodeHandler: NewTranscodeHandler(d.Engine),
		outputHandler:    NewOutputHandler(d.SP, d.UploadConcurrency),
	}
}

// Run drives one job end to end: report processing, fetch the source,
// delete it from the store, then transcode and publish every profile in
// order. A failure after the fetch restores the source under its original
// key. The local workspace is removed on every path.
func (p *Processor) Run(ctx context.Context, job models.JobDescriptor, catalog models.Catalog) error {
	jobID := job.JobID()
	ctx = logger.ContextWithJobID(ctx, jobID)
	log := p.log.WithJobID(jobID)
	start := time.Now()

	if err := catalog.Validate(); err != nil {
		return p.fail(ctx, errors.Wrap(err, "processor.catalog", "invalid rendition catalog"))
	}

	ws, err := NewWorkspace(p.workDir, jobID)
	if err != nil {
		return p.fail(ctx, errors.Wrap(err, "processor.workspace", "failed to create workspace"))
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.WithError(err).Warn("workspace cleanup failed", "dir", ws.Dir())
		}
	}()

	// 1. Processing
	p.status.Report(ctx, jobID, models.JobStatusProcessing)

	// 2. Fetch source
	log.Info("fetching source", "bucket", job.Bucket, "key", job.SourceKey())
	src, err := p.inputHandler.Fetch(ctx, job.SourceKey(), ws.SourcePath(job.Source.OriginalName))
	if err != nil {
		return p.fail(ctx, errors.Wrap(err, "processor.fetch", "failed to fetch source"))
	}
	log.Debug("source fetched", "bytes", src.Size)

	// 3. Delete source (best-effort)
	if err := p.sp.DeleteObject(ctx, job.SourceKey()); err != nil {
		log.WithError(err).Warn("source delete failed", "key", job.SourceKey())
	}

	// 4. Renditions, strictly in catalog order
	basePath := job.Source.BasePath()
	for _, profile := range catalog {
		if err := p.processRendition(ctx, ws, src, basePath, jobID, profile); err != nil {
			p.compensate(ctx, job, src)
			return p.fail(ctx, err)
		}
	}

	// 5. Completed
	p.status.Report(ctx, jobID, models.JobStatusCompleted)
	log.Info("job completed",
		"renditions", len(catalog),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *Processor) processRendition(ctx context.Context, ws *Workspace, src models.LocalArtifact, basePath, jobID string, profile models.RenditionProfile) error {
	log := p.log.WithJobID(jobID).WithRendition(profile.Name)
	defer func() {
		if err := ws.RemoveRendition(profile.Name); err != nil {
			log.WithError(err).Warn("rendition cleanup failed")
		}
	}()

	log.Info("transcoding", "scale", profile.Scale(), "mode", string(profile.Mode))
	arts, err := p.transcodeHandler.Render(ctx, ws, src, profile)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeEngine, "processor.transcode", "transcode failed").
			WithField("rendition", profile.Name)
	}

	if len(arts) == 0 {
		return errors.New(errors.CodeEngine, "engine produced no artifacts").
			WithField("rendition", profile.Name)
	}

	keys, err := p.outputHandler.Publish(ctx, basePath, profile, arts)
	if err != nil {
		return errors.Wrap(err, "processor.publish", "publish failed").
			WithField("rendition", profile.Name)
	}
	log.Info("rendition published", "objects", len(keys), "key", keys[0])

	p.status.Rendition(ctx, jobID, profile.Name, keys[0])
	return nil
}

// compensate puts the source back where the job found it. Best-effort.
// It still runs when ctx was canceled by a shutdown signal.
func (p *Processor) compensate(ctx context.Context, job models.JobDescriptor, src models.LocalArtifact) {
	log := p.log.WithJobID(job.JobID())
	ctx = context.WithoutCancel(ctx)
	if err := p.outputHandler.Restore(ctx, job.SourceKey(), src); err != nil {
		log.WithError(err).Error("source restore failed", "key", job.SourceKey())
		return
	}
	log.Info("source restored", "key", job.SourceKey())
}

func (p *Processor) fail(ctx context.Context, cause error) error {
	log := p.log.FromContext(ctx)

	var vsErr *errors.Error
	if errors.As(cause, &vsErr) {
		args := []any{
			"code", string(vsErr.Code),
			"op", vsErr.Op,
			"message", vsErr.Message,
		}
		for k, v := range vsErr.Fields {
			args = append(args, k, v)
		}
		log.WithError(vsErr.Unwrap()).Error("job failed", args...)
	} else {
		log.WithError(cause).Error("job failed")
	}
	return cause
}
