package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidsphere/internal/httpapi/handlers"
	"vidsphere/internal/httpkit"
	"vidsphere/internal/pkg/logger"
	"vidsphere/internal/pkg/middleware"
)

type Deps struct {
	Store          handlers.StatusStore
	Progress       handlers.ProgressReader
	DB             handlers.Pinger
	AllowedOrigins []string
	Log            *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	h := handlers.New(handlers.Deps{
		Store:    d.Store,
		Progress: d.Progress,
		DB:       d.DB,
		Log:      log.WithComponent("httpapi"),
	})

	r.Get("/health", h.Health)

	r.Patch("/videos/status", middleware.WrapHandler(log, h.PatchStatus))
	r.Get("/videos/{videoId}", middleware.WrapHandler(log, h.GetVideo))

	return r
}
