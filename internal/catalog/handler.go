package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trimm-medical/magconfig/internal/platform/httpx"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/modes", h.Modes)
	r.Get("/labels", h.Labels)
	r.Get("/options", h.Options)
	r.Get("/parts/{pn}", h.Part)
	r.Post("/reload", h.Reload)
}

// Modes lists the available device families.
func (h *Handler) Modes(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"modes": h.service.Modes()})
}

// Labels lists the option-category labels in display order.
func (h *Handler) Labels(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"labels": h.service.Labels()})
}

// Options lists choices for ?label=&mode=&side=.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	label := q.Get("label")
	mode := q.Get("mode")
	if label == "" || mode == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "label and mode are required")
		return
	}
	options, err := h.service.Options(label, mode, q.Get("side"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	if options == nil {
		options = []Option{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"options": options})
}

// Part resolves a part number against the reference table.
func (h *Handler) Part(w http.ResponseWriter, r *http.Request) {
	pn := chi.URLParam(r, "pn")
	rec, ok := h.service.Lookup(r.Context(), pn)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// Reload rebuilds the catalog from the database immediately.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Preload(r.Context()); err != nil {
		h.logger.Error("catalog reload failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "reloaded"})
}
