package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trimm-medical/magconfig/internal/platform/httpx"
	"github.com/trimm-medical/magconfig/internal/quote"
	"github.com/trimm-medical/magconfig/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Quotes is the slice of the quote service the exporter needs.
type Quotes interface {
	Get(id uuid.UUID) (*quote.Quote, error)
}

// Handler streams rendered offer workbooks.
type Handler struct {
	logger   *slog.Logger
	exporter *Exporter
	quotes   Quotes
}

// NewHandler constructs the export handler.
func NewHandler(logger *slog.Logger, exporter *Exporter, quotes Quotes) *Handler {
	return &Handler{logger: logger, exporter: exporter, quotes: quotes}
}

// MountRoutes registers export routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotes/{id}/offer.xlsx", h.Download)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quote ID")
		return
	}
	q, err := h.quotes.Get(id)
	if err != nil {
		if errors.Is(err, shared.ErrQuoteExpired) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("load quote for export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to load quote")
		return
	}

	f, err := h.exporter.Render(q)
	if err != nil {
		if errors.Is(err, ErrNoLines) {
			httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
			return
		}
		h.logger.Error("render offer", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to render offer")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exporter.Filename()))
	if _, err := f.WriteTo(w); err != nil {
		h.logger.Error("stream offer", slog.Any("error", err))
	}
}
