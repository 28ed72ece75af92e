package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trimm-medical/magconfig/internal/quote"
)

// ErrUnknownTemplate means no template rows carry the requested type name.
var ErrUnknownTemplate = errors.New("templates: unknown template")

// Quotes is the slice of the quote service templates need.
type Quotes interface {
	SetMode(id uuid.UUID, mode, side string) (*quote.Quote, error)
	AddByPartNumber(ctx context.Context, id uuid.UUID, pn string, qty int) (*quote.Quote, bool, error)
}

// Info describes one loaded template for listings.
type Info struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	Mode  string `json:"mode,omitempty"`
	Side  string `json:"side,omitempty"`
}

// Service caches the templates table and applies selections onto quotes.
type Service struct {
	repo   Repository
	quotes Quotes
	logger *slog.Logger

	mu     sync.Mutex
	byName map[string][]Item
	loaded bool
}

// NewService constructs the templates service.
func NewService(repo Repository, quotes Quotes, logger *slog.Logger) *Service {
	return &Service{repo: repo, quotes: quotes, logger: logger}
}

// Reload refreshes the template cache from the database. A missing table
// leaves templates disabled rather than failing the caller.
func (s *Service) Reload(ctx context.Context) error {
	byName, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoTemplateColumns) {
			s.logger.Warn("templates disabled", slog.Any("error", err))
			s.mu.Lock()
			s.byName = nil
			s.loaded = true
			s.mu.Unlock()
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.byName = byName
	s.loaded = true
	s.mu.Unlock()
	s.logger.Info("templates loaded", slog.Int("count", len(byName)))
	return nil
}

// List returns loaded templates sorted by name, annotated with the mode and
// side their predefined set carries.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	byName, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(byName))
	for name, items := range byName {
		info := Info{Name: name, Items: len(items)}
		if set, ok := SetFor(name); ok {
			info.Name = set.Name
			info.Mode = set.Mode
			info.Side = set.Side
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Apply appends every template position onto the quote. A predefined set
// first switches the quote's mode and side. Returns the updated quote and
// the number of positions that matched the reference catalog.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, name string) (*quote.Quote, int, error) {
	byName, err := s.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, ok := byName[Key(name)]
	if !ok || len(items) == 0 {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	if set, found := SetFor(name); found {
		if _, err := s.quotes.SetMode(id, set.Mode, set.Side); err != nil {
			return nil, 0, err
		}
	}

	var (
		q       *quote.Quote
		matched int
	)
	for _, item := range items {
		updated, _, err := s.quotes.AddByPartNumber(ctx, id, item.PartNumber, item.Quantity)
		if err != nil {
			return nil, 0, err
		}
		q = updated
		if n := len(q.Lines); n > 0 && q.Lines[n-1].Description != "" {
			matched++
		}
	}
	return q, matched, nil
}

func (s *Service) load(ctx context.Context) (map[string][]Item, error) {
	s.mu.Lock()
	if s.loaded {
		byName := s.byName
		s.mu.Unlock()
		return byName, nil
	}
	s.mu.Unlock()
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byName, nil
}
