package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/trimm-medical/magconfig/internal/schema"
)

// ErrUnknownLabel reports an option-category label outside the fixed set.
var ErrUnknownLabel = errors.New("catalog: unknown category label")

// Service owns the preloaded catalog state: the reference index, the raw
// option rows per category table, and the available modes.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger

	mu      sync.RWMutex
	idx     *Index
	options map[string][]OptionRow
	modes   []string
	columns schema.ReferenceColumns
}

// NewService constructs the catalog service. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Warm loads the catalog from the Redis snapshot when available and falls
// back to a full database preload.
func (s *Service) Warm(ctx context.Context) error {
	if snap, err := s.cache.Load(ctx); err == nil {
		s.install(snap)
		s.logger.Info("catalog warmed from cache",
			slog.Int("records", len(snap.Records)),
			slog.Int("modes", len(snap.Modes)))
		return nil
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("catalog cache load", slog.Any("error", err))
	}
	return s.Preload(ctx)
}

// Preload rebuilds the catalog from the database and refreshes the snapshot
// cache. The ten category tables load concurrently; a missing category table
// yields an empty option set rather than failing the preload.
func (s *Service) Preload(ctx context.Context) error {
	columns, err := s.repo.ReferenceColumns(ctx)
	if err != nil {
		return err
	}
	modes := s.repo.Modes(ctx)

	var (
		records []Record
		optMu   sync.Mutex
		options = make(map[string][]OptionRow, len(schema.LabelToTable))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.repo.ReferenceRecords(gctx)
		if err != nil {
			return fmt.Errorf("preload reference: %w", err)
		}
		return nil
	})
	for _, table := range schema.LabelToTable {
		g.Go(func() error {
			rows, err := s.repo.OptionRows(gctx, table)
			if err != nil {
				s.logger.Warn("preload options", slog.String("table", table), slog.Any("error", err))
				rows = nil
			}
			optMu.Lock()
			options[table] = rows
			optMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	snap := &Snapshot{Columns: columns, Modes: modes, Records: records, Options: options}
	s.install(snap)

	if err := s.cache.Store(ctx, snap); err != nil {
		s.logger.Warn("catalog cache store", slog.Any("error", err))
	}
	s.logger.Info("catalog preloaded",
		slog.Int("records", len(records)),
		slog.Int("option_tables", len(options)))
	return nil
}

func (s *Service) install(snap *Snapshot) {
	idx := NewIndex(snap.Records)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = idx
	s.options = snap.Options
	s.modes = snap.Modes
	s.columns = snap.Columns
}

// Modes returns the available device families.
func (s *Service) Modes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.modes...)
}

// Labels returns the option-category labels in display order.
func (s *Service) Labels() []string {
	return append([]string(nil), schema.OrderedLabels...)
}

// Options lists the choices for one category under a mode and optional side.
func (s *Service) Options(label, mode, side string) ([]Option, error) {
	table, ok := schema.LabelToTable[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	s.mu.RLock()
	rows := s.options[table]
	s.mu.RUnlock()
	return BuildOptions(rows, mode, side), nil
}

// ResolveOption maps a (label, mode, side, option-label) selection to a
// part number.
func (s *Service) ResolveOption(label, mode, side, optionLabel string) (string, bool, error) {
	options, err := s.Options(label, mode, side)
	if err != nil {
		return "", false, err
	}
	pn, ok := ResolveOption(options, optionLabel)
	return pn, ok, nil
}

// Lookup resolves a part number, querying the database point lookup first
// and falling back to the in-memory index so quote entry keeps working when
// the database is briefly unreachable.
func (s *Service) Lookup(ctx context.Context, pn string) (Record, bool) {
	rec, found, err := s.repo.LookupPartNumber(ctx, pn)
	if err != nil {
		s.logger.Warn("part number lookup", slog.String("pn", pn), slog.Any("error", err))
	}
	if found && rec.Description != "" {
		return rec, true
	}
	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()
	if cached, ok := idx.Lookup(pn); ok {
		return cached, true
	}
	if found {
		return rec, true
	}
	return Record{}, false
}

// Invalidate bumps the snapshot cache version so the next warmup reloads.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}
