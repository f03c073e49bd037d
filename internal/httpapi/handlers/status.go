package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	v0 "vidsphere/internal/contracts/status/v0"
	"vidsphere/internal/httpkit"
	"vidsphere/internal/models"
	"vidsphere/internal/pkg/errors"
)

// PatchStatus handles PATCH /videos/status.
func (h *Handler) PatchStatus(w http.ResponseWriter, r *http.Request) error {
	var body v0.StatusUpdate
	if err := httpkit.DecodeJSON(r, &body); err != nil {
		return errors.New(errors.CodeBadRequest, "invalid json body")
	}

	videoID := strings.TrimSpace(body.VideoID)
	if videoID == "" {
		return errors.ValidationField("videoId", "videoId is required")
	}
	status := models.JobStatus(strings.TrimSpace(body.Status))
	if !status.Valid() {
		return errors.ValidationField("status", "status must be transcoding or completed")
	}

	rec, err := h.store.Upsert(r.Context(), videoID, status)
	if err != nil {
		return err
	}

	h.log.FromContext(r.Context()).Info("video status updated",
		"video_id", videoID,
		"status", string(status),
	)
	httpkit.WriteJSON(w, http.StatusOK, rec)
	return nil
}

// GetVideo handles GET /videos/{videoId}.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	videoID := chi.URLParam(r, "videoId")

	rec, err := h.store.Get(ctx, videoID)
	if err != nil {
		return err
	}

	if h.progress != nil {
		fields, err := h.progress.HGetAll(ctx, v0.ProgressKey(videoID)).Result()
		if err != nil {
			// Progress is advisory; the stored status still answers the request.
			h.log.FromContext(ctx).Warn("progress lookup failed", "video_id", videoID, "error", err.Error())
		} else {
			rec.Renditions = renditionsFrom(fields)
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, rec)
	return nil
}

func renditionsFrom(fields map[string]string) map[string]string {
	var out map[string]string
	for k, v := range fields {
		if k == v0.ProgressFieldStatus || k == v0.ProgressFieldUpdatedAt {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(fields))
		}
		out[k] = v
	}
	return out
}
