package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"vidsphere/internal/models"
	"vidsphere/internal/pkg/logger"
)

const (
	// ManifestName is the fixed playlist file name of a segmented bundle.
	ManifestName = "index.m3u8"

	segmentPrefix  = "segment_"
	segmentSuffix  = ".ts"
	segmentPattern = segmentPrefix + "%03d" + segmentSuffix

	hlsSegmentSeconds = "10"
	hlsAudioRate      = "48000"
	hlsAudioBitrate   = "128k"
)

type Deps struct {
	FFmpegPath string
	Log        *logger.Logger
}

// FFmpeg produces renditions by shelling out to the ffmpeg binary.
type FFmpeg struct {
	path   string
	runner commandRunner
	log    *logger.Logger

	mkdirAll func(path string, perm os.FileMode) error
	readDir  func(name string) ([]os.DirEntry, error)
	stat     func(name string) (os.FileInfo, error)
}

func New(d Deps) *FFmpeg {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	path := strings.TrimSpace(d.FFmpegPath)
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{
		path:     path,
		runner:   execRunner{},
		log:      log.WithComponent("engine"),
		mkdirAll: os.MkdirAll,
		readDir:  os.ReadDir,
		stat:     os.Stat,
	}
}

// Transcode renders input at profile's resolution into outDir and returns
// the produced files. No retry is attempted on failure.
func (f *FFmpeg) Transcode(ctx context.Context, input string, profile models.RenditionProfile, outDir string) ([]models.LocalArtifact, error) {
	if err := f.mkdirAll(outDir, 0o755); err != nil {
		return nil, &Error{Profile: profile.Name, Mode: profile.Mode, Message: "create output dir", Err: err}
	}

	var args []string
	switch profile.Mode {
	case models.OutputSegmented:
		args = segmentedArgs(input, profile, outDir)
	default:
		args = singleFileArgs(input, profile, outDir)
	}

	log := f.log.WithRendition(profile.Name)
	log.Debug("running ffmpeg", "mode", string(profile.Mode), "scale", profile.Scale())

	res, err := f.runner.Run(ctx, f.path, args...)
	if err != nil {
		return nil, &Error{
			Profile:  profile.Name,
			Mode:     profile.Mode,
			ExitCode: res.ExitCode,
			Stderr:   tail(res.Stderr, stderrTailBytes),
			Message:  "ffmpeg failed",
			Err:      err,
		}
	}

	if profile.Mode == models.OutputSegmented {
		return f.collectBundle(profile, outDir)
	}
	return f.collectFile(profile, outDir)
}

func singleFileArgs(input string, profile models.RenditionProfile, outDir string) []string {
	return []string{
		"-hide_banner", "-y",
		"-i", input,
		"-vf", fmt.Sprintf("scale=%d:%d", profile.Width, profile.Height),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-f", "mp4",
		filepath.Join(outDir, profile.Name+".mp4"),
	}
}

func segmentedArgs(input string, profile models.RenditionProfile, outDir string) []string {
	return []string{
		"-hide_banner", "-y",
		"-i", input,
		"-vf", fmt.Sprintf("scale=%d:%d", profile.Width, profile.Height),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-ar", hlsAudioRate,
		"-b:a", hlsAudioBitrate,
		"-f", "hls",
		"-hls_time", hlsSegmentSeconds,
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(outDir, segmentPattern),
		filepath.Join(outDir, ManifestName),
	}
}

func (f *FFmpeg) collectFile(profile models.RenditionProfile, outDir string) ([]models.LocalArtifact, error) {
	name := profile.Name + ".mp4"
	p := filepath.Join(outDir, name)
	st, err := f.stat(p)
	if err != nil {
		return nil, &Error{Profile: profile.Name, Mode: profile.Mode, Message: "output file missing", Err: err}
	}
	return []models.LocalArtifact{{
		Path:        p,
		RelName:     name,
		ContentType: models.ContentTypeMP4,
		Size:        st.Size(),
	}}, nil
}

// collectBundle lists the manifest and its segments and checks that the
// segment sequence starts at 000 and has no gaps.
func (f *FFmpeg) collectBundle(profile models.RenditionProfile, outDir string) ([]models.LocalArtifact, error) {
	bundleErr := func(msg string, err error) error {
		return &Error{Profile: profile.Name, Mode: profile.Mode, Message: msg, Err: err}
	}

	entries, err := f.readDir(outDir)
	if err != nil {
		return nil, bundleErr("read output dir", err)
	}

	type indexed struct {
		n   int
		art models.LocalArtifact
	}
	var (
		manifest *models.LocalArtifact
		segments []indexed
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		info, err := e.Info()
		if err != nil {
			return nil, bundleErr("stat "+name, err)
		}
		switch {
		case name == ManifestName:
			manifest = &models.LocalArtifact{
				Path:        filepath.Join(outDir, name),
				RelName:     name,
				ContentType: models.ContentTypeHLS,
				Size:        info.Size(),
			}
		case strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, segmentSuffix):
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, segmentPrefix), segmentSuffix))
			if err != nil {
				return nil, bundleErr("unexpected segment name "+name, err)
			}
			segments = append(segments, indexed{n: n, art: models.LocalArtifact{
				Path:        filepath.Join(outDir, name),
				RelName:     name,
				ContentType: models.ContentTypeSegment,
				Size:        info.Size(),
			}})
		}
	}

	if manifest == nil {
		return nil, bundleErr("manifest "+ManifestName+" missing", nil)
	}
	if len(segments) == 0 {
		return nil, bundleErr("no segments produced", nil)
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].n < segments[j].n })

	out := make([]models.LocalArtifact, 0, len(segments)+1)
	out = append(out, *manifest)
	for i, s := range segments {
		if s.n != i {
			return nil, bundleErr(fmt.Sprintf("segment sequence has a gap at %03d", i), nil)
		}
		out = append(out, s.art)
	}
	return out, nil
}
