package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/trimm-medical/magconfig/internal/platform/httpx"
	"github.com/trimm-medical/magconfig/internal/shared"
)

type UpdateRowRequest struct {
	Values map[string]string `json:"values" validate:"required,min=1"`
}

type InsertRowRequest struct {
	Values map[string]string `json:"values" validate:"required"`
}

type BulkUpdateRequest struct {
	Column string   `json:"column" validate:"required"`
	Value  string   `json:"value"`
	Keys   []string `json:"keys" validate:"required,min=1"`
}

type DeleteRowsRequest struct {
	Keys []string `json:"keys" validate:"required,min=1"`
}

// Handler exposes the maintenance grid over HTTP. The changed callback
// fires after every successful write so the catalog index can be rebuilt.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	changed  func(ctx context.Context, table string)
	validate *validator.Validate
}

// NewHandler constructs the admin handler. changed may be nil.
func NewHandler(logger *slog.Logger, service *Service, changed func(ctx context.Context, table string)) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		changed:  changed,
		validate: validator.New(),
	}
}

func (h *Handler) notifyChanged(ctx context.Context, table string) {
	if h.changed != nil {
		h.changed(ctx, table)
	}
}

// MountRoutes registers grid routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tables", h.Tables)
	r.Route("/tables/{table}", func(r chi.Router) {
		r.Get("/", h.Describe)
		r.Get("/rows", h.Rows)
		r.Post("/rows", h.Insert)
		r.Put("/rows/{key}", h.Update)
		r.Post("/rows/bulk-update", h.BulkUpdate)
		r.Post("/rows/delete", h.Delete)
	})
}

func (h *Handler) Tables(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Tables(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tables": names})
}

func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Describe(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}

func (h *Handler) Rows(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	p := shared.NewPagination(page, perPage, 0)
	set, err := h.service.Rows(r.Context(), chi.URLParam(r, "table"), p)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, set)
}

func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	var req InsertRowRequest
	if !h.decode(w, r, &req) {
		return
	}
	table := chi.URLParam(r, "table")
	key, err := h.service.Insert(r.Context(), table, req.Values)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.notifyChanged(r.Context(), table)
	httpx.JSON(w, http.StatusCreated, map[string]any{"key": key})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRowRequest
	if !h.decode(w, r, &req) {
		return
	}
	table := chi.URLParam(r, "table")
	err := h.service.Update(r.Context(), table, chi.URLParam(r, "key"), req.Values)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.notifyChanged(r.Context(), table)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	table := chi.URLParam(r, "table")
	n, err := h.service.BulkUpdate(r.Context(), table, req.Column, req.Value, req.Keys)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.notifyChanged(r.Context(), table)
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": n})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRowsRequest
	if !h.decode(w, r, &req) {
		return
	}
	table := chi.URLParam(r, "table")
	n, err := h.service.Delete(r.Context(), table, req.Keys)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.notifyChanged(r.Context(), table)
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": n})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNoPrimaryKey) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unsupported", err.Error())
		return
	}
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrDuplicate) {
		h.logger.Error("admin operation failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
