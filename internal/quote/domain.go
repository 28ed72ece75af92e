// Package quote holds the in-memory quote line model: an ordered list of
// line items whose derived totals are recomputed on every mutation.
package quote

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Line is one row of the quote summary. List price and base cost are fixed
// at insertion from the reference catalog; only the logistics multiplier
// rescales the displayed cost afterwards.
type Line struct {
	Seq         int     `json:"seq"`
	PartNumber  string  `json:"part_number"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Control     string  `json:"control"`
	PackSize    string  `json:"pack_size,omitempty"`
	ListPrice   float64 `json:"list_price"`
	BaseCost    float64 `json:"base_cost"`
}

// Params are the quote-level pricing knobs.
type Params struct {
	DiscountPercent float64 `json:"discount_percent"`
	Logistics       float64 `json:"logistics"`
	FxRate          float64 `json:"fx_rate"`
}

// DefaultParams returns the neutral pricing knobs.
func DefaultParams() Params {
	return Params{DiscountPercent: 0, Logistics: 1, FxRate: 1}
}

// Totals are a pure function of the lines and params.
type Totals struct {
	ListTotal float64  `json:"list_total"`
	Total     float64  `json:"total"`
	CostTotal float64  `json:"cost_total"`
	Margin    *float64 `json:"margin,omitempty"`
}

// CalculateTotals derives the quote totals: the list total after discount
// and currency conversion, the logistics-scaled converted cost, and the
// margin over cost. Margin is undefined while the cost side is zero.
func CalculateTotals(lines []Line, p Params) Totals {
	var listTotal, costTotal float64
	for _, ln := range lines {
		qty := float64(ln.Quantity)
		listTotal += qty * ln.ListPrice
		costTotal += qty * ln.BaseCost * p.Logistics
	}

	total := listTotal * (1 - p.DiscountPercent/100) * p.FxRate
	costConverted := costTotal * p.FxRate

	t := Totals{ListTotal: listTotal, Total: total, CostTotal: costConverted}
	if costConverted > 0 {
		margin := (total - costConverted) / costConverted
		t.Margin = &margin
	}
	return t
}

// Quote is one quoting session. Lines have no identity beyond their grid
// position; deletion and reordering renumber but never reuse identity.
type Quote struct {
	ID        uuid.UUID `json:"id"`
	Mode      string    `json:"mode"`
	Side      string    `json:"side,omitempty"`
	Params    Params    `json:"params"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetMode switches the device family. The side filter only applies to the
// F family; any other mode clears it.
func (q *Quote) SetMode(mode, side string) {
	m := strings.TrimSpace(mode)
	q.Mode = m
	if strings.EqualFold(m, "F") {
		q.Side = side
	} else {
		q.Side = ""
	}
}

// Append adds a line at the end, clamping quantity to at least one and
// defaulting the control flag.
func (q *Quote) Append(line Line) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.Control == "" {
		line.Control = "1"
	}
	q.Lines = append(q.Lines, line)
	q.renumber()
}

// RemoveLines deletes the lines with the given sequence numbers and
// renumbers the remainder.
func (q *Quote) RemoveLines(seqs []int) {
	drop := make(map[int]struct{}, len(seqs))
	for _, s := range seqs {
		drop[s] = struct{}{}
	}
	kept := q.Lines[:0]
	for _, ln := range q.Lines {
		if _, gone := drop[ln.Seq]; !gone {
			kept = append(kept, ln)
		}
	}
	q.Lines = kept
	q.renumber()
}

// MoveFirstNumberedDown moves the topmost line that still carries a part
// number one position down. Used to push the lead item under a header row.
func (q *Quote) MoveFirstNumberedDown() {
	for i := 0; i < len(q.Lines)-1; i++ {
		if strings.TrimSpace(q.Lines[i].PartNumber) != "" {
			q.Lines[i], q.Lines[i+1] = q.Lines[i+1], q.Lines[i]
			break
		}
	}
	q.renumber()
}

// ClearPartNumbers blanks the part-number column on every line, keeping
// descriptions and prices intact.
func (q *Quote) ClearPartNumbers() {
	for i := range q.Lines {
		q.Lines[i].PartNumber = ""
	}
}

// SetQuantity updates one line's quantity.
func (q *Quote) SetQuantity(seq, qty int) bool {
	for i := range q.Lines {
		if q.Lines[i].Seq == seq {
			if qty < 0 {
				qty = 0
			}
			q.Lines[i].Quantity = qty
			return true
		}
	}
	return false
}

// Totals recomputes the derived totals.
func (q *Quote) Totals() Totals {
	return CalculateTotals(q.Lines, q.Params)
}

// DisplayCost is the line cost as shown in the grid: the insertion-time
// base cost rescaled by the current logistics multiplier.
func (q *Quote) DisplayCost(ln Line) float64 {
	return ln.BaseCost * q.Params.Logistics
}

func (q *Quote) renumber() {
	for i := range q.Lines {
		q.Lines[i].Seq = i + 1
	}
}
