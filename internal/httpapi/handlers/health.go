package handlers

import (
	"context"
	"net/http"
	"time"

	"vidsphere/internal/httpkit"
)

const healthCheckTimeout = 5 * time.Second

// Health handles GET /health. With ?deep=true it also pings Postgres and Redis.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]any{
		"status":  "ok",
		"service": "vidsphere-tracker",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := map[string]map[string]any{}
		if h.db != nil {
			checks["postgres"] = runCheck(ctx, h.db.Ping)
		}
		if h.progress != nil {
			checks["redis"] = runCheck(ctx, func(ctx context.Context) error {
				return h.progress.Ping(ctx).Err()
			})
		}
		health["checks"] = checks

		for _, check := range checks {
			if check["status"] != "ok" {
				health["status"] = "degraded"
				h.log.FromContext(ctx).Warn("health check degraded", "checks", checks)
				break
			}
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func runCheck(ctx context.Context, ping func(context.Context) error) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}
