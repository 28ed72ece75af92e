package quote

import (
	"github.com/google/uuid"
)

type CreateQuoteRequest struct {
	Mode string `json:"mode" validate:"omitempty,max=20"`
	Side string `json:"side" validate:"omitempty,max=20"`
}

type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,max=20"`
	Side string `json:"side" validate:"omitempty,max=20"`
}

type AddLineRequest struct {
	PartNumber string `json:"part_number" validate:"required,max=64"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=99999"`
}

type AddSelectionRequest struct {
	Label    string `json:"label" validate:"required"`
	Option   string `json:"option" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=99999"`
}

type PatchParamsRequest struct {
	DiscountPercent *float64 `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	Logistics       *float64 `json:"logistics" validate:"omitempty,gte=0,lte=1000"`
	FxRate          *float64 `json:"fx_rate" validate:"omitempty,gte=0,lte=100000"`
}

type RemoveLinesRequest struct {
	Seqs []int `json:"seqs" validate:"required,min=1,dive,gte=1"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99999"`
}

// LineView is a quote line plus its live display cost.
type LineView struct {
	Line
	DisplayCost float64 `json:"display_cost"`
}

// QuoteResponse is the full session state returned by every mutation, so
// clients can redraw the grid and totals from a single payload.
type QuoteResponse struct {
	ID     uuid.UUID  `json:"id"`
	Mode   string     `json:"mode"`
	Side   string     `json:"side,omitempty"`
	Params Params     `json:"params"`
	Lines  []LineView `json:"lines"`
	Totals Totals     `json:"totals"`
}

// NewQuoteResponse assembles the response view of a quote.
func NewQuoteResponse(q *Quote) QuoteResponse {
	lines := make([]LineView, 0, len(q.Lines))
	for _, ln := range q.Lines {
		lines = append(lines, LineView{Line: ln, DisplayCost: q.DisplayCost(ln)})
	}
	return QuoteResponse{
		ID:     q.ID,
		Mode:   q.Mode,
		Side:   q.Side,
		Params: q.Params,
		Lines:  lines,
		Totals: q.Totals(),
	}
}
