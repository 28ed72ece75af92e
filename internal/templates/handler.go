package templates

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trimm-medical/magconfig/internal/platform/httpx"
	"github.com/trimm-medical/magconfig/internal/quote"
	"github.com/trimm-medical/magconfig/internal/shared"
)

// ApplyRequest names the quote a template is applied to.
type ApplyRequest struct {
	QuoteID uuid.UUID `json:"quote_id" validate:"required"`
}

// ApplyResponse carries the updated quote plus how many template positions
// resolved against the reference catalog.
type ApplyResponse struct {
	Matched int                 `json:"matched"`
	Quote   quote.QuoteResponse `json:"quote"`
}

// Handler exposes templates over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the templates handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers template routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{name}/apply", h.Apply)
	r.Post("/reload", h.Reload)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list templates", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to list templates")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"templates": infos})
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req ApplyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	q, matched, err := h.service.Apply(r.Context(), req.QuoteID, name)
	switch {
	case errors.Is(err, ErrUnknownTemplate):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrQuoteExpired):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case err != nil:
		h.logger.Error("apply template", slog.String("template", name), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to apply template")
	default:
		httpx.JSON(w, http.StatusOK, ApplyResponse{Matched: matched, Quote: quote.NewQuoteResponse(q)})
	}
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		h.logger.Error("reload templates", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to reload templates")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
