package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/trimm-medical/magconfig/internal/admin"
	"github.com/trimm-medical/magconfig/internal/catalog"
	"github.com/trimm-medical/magconfig/internal/export"
	"github.com/trimm-medical/magconfig/internal/quote"
	"github.com/trimm-medical/magconfig/internal/templates"
	"github.com/trimm-medical/magconfig/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	QuoteHandler     *quote.Handler
	TemplatesHandler *templates.Handler
	ExportHandler    *export.Handler
	AdminHandler     *admin.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/catalog", params.CatalogHandler.MountRoutes)
	r.Route("/quotes", params.QuoteHandler.MountRoutes)
	r.Route("/export", params.ExportHandler.MountRoutes)
	r.Route("/templates", params.TemplatesHandler.MountRoutes)
	r.Route("/admin", params.AdminHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
