package quote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/trimm-medical/magconfig/internal/catalog"
)

// Catalog is the slice of the catalog service the quote model needs.
type Catalog interface {
	Lookup(ctx context.Context, pn string) (catalog.Record, bool)
	ResolveOption(label, mode, side, optionLabel string) (string, bool, error)
	Modes() []string
}

// Service applies quote mutations, pricing every new line through the
// reference catalog at insertion time.
type Service struct {
	store   *Store
	catalog Catalog
	logger  *slog.Logger
}

// NewService constructs the quote service.
func NewService(store *Store, cat Catalog, logger *slog.Logger) *Service {
	return &Service{store: store, catalog: cat, logger: logger}
}

// Create opens a new quote session. An empty mode defaults to the first
// available device family.
func (s *Service) Create(mode string) *Quote {
	if mode == "" {
		if modes := s.catalog.Modes(); len(modes) > 0 {
			mode = modes[0]
		}
	}
	return s.store.Create(mode)
}

// Get returns a quote session.
func (s *Service) Get(id uuid.UUID) (*Quote, error) {
	return s.store.Get(id)
}

// Delete discards a quote session.
func (s *Service) Delete(id uuid.UUID) {
	s.store.Delete(id)
}

// SetMode switches the quote's device family and optional side filter.
func (s *Service) SetMode(id uuid.UUID, mode, side string) (*Quote, error) {
	return s.store.Update(id, func(q *Quote) error {
		q.SetMode(mode, side)
		return nil
	})
}

// SetParams patches the pricing knobs. Nil fields stay unchanged.
func (s *Service) SetParams(id uuid.UUID, discount, logistics, fxRate *float64) (*Quote, error) {
	return s.store.Update(id, func(q *Quote) error {
		if discount != nil {
			q.Params.DiscountPercent = *discount
		}
		if logistics != nil {
			q.Params.Logistics = *logistics
		}
		if fxRate != nil {
			q.Params.FxRate = *fxRate
		}
		return nil
	})
}

// AddByPartNumber appends a line for a part number. The catalog fixes the
// description and prices at insertion; an unknown part number still gets a
// line so the operator can fill it in by hand, matching the grid behavior.
// Blank part numbers are ignored.
func (s *Service) AddByPartNumber(ctx context.Context, id uuid.UUID, pn string, qty int) (*Quote, bool, error) {
	pn = strings.TrimSpace(pn)
	if pn == "" {
		q, err := s.store.Get(id)
		return q, false, err
	}

	line := Line{PartNumber: pn, Quantity: qty}
	if rec, ok := s.catalog.Lookup(ctx, pn); ok {
		line.Description = rec.Description
		line.PackSize = rec.PackSize
		if rec.ListPrice != nil {
			line.ListPrice = *rec.ListPrice
		}
		if rec.BasePrice != nil {
			line.BaseCost = *rec.BasePrice
		}
	}

	q, err := s.store.Update(id, func(q *Quote) error {
		q.Append(line)
		return nil
	})
	return q, err == nil, err
}

// AddBySelection appends a line chosen from an option category, resolving
// the display label to a part number under the quote's current mode/side.
func (s *Service) AddBySelection(ctx context.Context, id uuid.UUID, label, optionLabel string, qty int) (*Quote, error) {
	current, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	pn, ok, err := s.catalog.ResolveOption(label, current.Mode, current.Side, optionLabel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("option %q has no part number under mode %s", optionLabel, current.Mode)
	}
	q, _, err := s.AddByPartNumber(ctx, id, pn, qty)
	return q, err
}

// RemoveLines deletes lines by sequence number.
func (s *Service) RemoveLines(id uuid.UUID, seqs []int) (*Quote, error) {
	return s.store.Update(id, func(q *Quote) error {
		q.RemoveLines(seqs)
		return nil
	})
}

// MoveFirstNumberedDown pushes the first numbered line one position down.
func (s *Service) MoveFirstNumberedDown(id uuid.UUID) (*Quote, error) {
	return s.store.Update(id, func(q *Quote) error {
		q.MoveFirstNumberedDown()
		return nil
	})
}

// ClearPartNumbers blanks the part-number column.
func (s *Service) ClearPartNumbers(id uuid.UUID) (*Quote, error) {
	return s.store.Update(id, func(q *Quote) error {
		q.ClearPartNumbers()
		return nil
	})
}

// SetQuantity updates one line's quantity.
func (s *Service) SetQuantity(id uuid.UUID, seq, qty int) (*Quote, error) {
	return s.store.Update(id, func(q *Quote) error {
		if !q.SetQuantity(seq, qty) {
			return fmt.Errorf("no line with seq %d", seq)
		}
		return nil
	})
}
