package quote

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trimm-medical/magconfig/internal/platform/httpx"
	"github.com/trimm-medical/magconfig/internal/shared"
)

// Handler exposes quote sessions over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the quote handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers quote routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Show)
		r.Delete("/", h.Delete)
		r.Post("/mode", h.SetMode)
		r.Patch("/params", h.PatchParams)
		r.Post("/lines", h.AddLine)
		r.Post("/selections", h.AddSelection)
		r.Post("/lines/remove", h.RemoveLines)
		r.Post("/lines/move-down", h.MoveDown)
		r.Post("/lines/clear-part-numbers", h.ClearPartNumbers)
		r.Put("/lines/{seq}/quantity", h.SetQuantity)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	q := h.service.Create(req.Mode)
	if req.Side != "" {
		if updated, err := h.service.SetMode(q.ID, q.Mode, req.Side); err == nil {
			q = updated
		}
	}
	httpx.JSON(w, http.StatusCreated, NewQuoteResponse(q))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	h.service.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	var req SetModeRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.SetMode(id, req.Mode, req.Side)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) PatchParams(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	var req PatchParamsRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.SetParams(id, req.DiscountPercent, req.Logistics, req.FxRate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	var req AddLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, _, err := h.service.AddByPartNumber(r.Context(), id, req.PartNumber, req.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) AddSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	var req AddSelectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.AddBySelection(r.Context(), id, req.Label, req.Option, req.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) RemoveLines(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	var req RemoveLinesRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.RemoveLines(id, req.Seqs)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) MoveDown(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	q, err := h.service.MoveFirstNumberedDown(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) ClearPartNumbers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	q, err := h.service.ClearPartNumbers(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil || seq < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid line seq")
		return
	}
	var req SetQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.SetQuantity(id, seq, req.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewQuoteResponse(q))
}

func (h *Handler) quoteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quote ID")
		return uuid.Nil, false
	}
	return id, true
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
	if errors.Is(err, shared.ErrQuoteExpired) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error("quote operation failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusBadRequest, "Operation Failed", err.Error())
}
