package catalog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trimm-medical/magconfig/internal/schema"
)

type fakeRepo struct {
	records   []Record
	options   map[string][]OptionRow
	modes     []string
	pointHits map[string]Record
	lookupErr error
}

func (f *fakeRepo) ReferenceColumns(ctx context.Context) (schema.ReferenceColumns, error) {
	return schema.ReferenceColumns{PartNumber: "REF #", Description: "Наименование"}, nil
}

func (f *fakeRepo) ReferenceRecords(ctx context.Context) ([]Record, error) {
	return f.records, nil
}

func (f *fakeRepo) LookupPartNumber(ctx context.Context, pn string) (Record, bool, error) {
	if f.lookupErr != nil {
		return Record{}, false, f.lookupErr
	}
	rec, ok := f.pointHits[pn]
	return rec, ok, nil
}

func (f *fakeRepo) OptionRows(ctx context.Context, table string) ([]OptionRow, error) {
	return f.options[table], nil
}

func (f *fakeRepo) Modes(ctx context.Context) []string {
	return f.modes
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()
	svc := NewService(repo, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, svc.Preload(context.Background()))
	return svc
}

func TestServicePreloadAndOptions(t *testing.T) {
	repo := &fakeRepo{
		records: []Record{{PartNumber: "5500", Description: "Контур", ListPrice: fptr(100)}},
		options: map[string][]OptionRow{
			"Circuits": {
				{Mode: "EVE", Label: "Контур дыхательный", PartNumber: "5500"},
			},
		},
		modes: []string{"EVE", "F", "S"},
	}
	svc := newTestService(t, repo)

	require.Equal(t, []string{"EVE", "F", "S"}, svc.Modes())
	require.Equal(t, schema.OrderedLabels, svc.Labels())

	options, err := svc.Options("Контуры", "EVE", "")
	require.NoError(t, err)
	require.Equal(t, []Option{{Label: "Контур дыхательный", PartNumber: "5500"}}, options)

	_, err = svc.Options("Неизвестно", "EVE", "")
	require.ErrorIs(t, err, ErrUnknownLabel)

	pn, ok, err := svc.ResolveOption("Контуры", "EVE", "", "Контур дыхательный")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5500", pn)
}

func TestServiceLookupPrefersPointQuery(t *testing.T) {
	repo := &fakeRepo{
		records: []Record{{PartNumber: "5500", Description: "из индекса"}},
		pointHits: map[string]Record{
			"5500": {PartNumber: "5500", Description: "из базы"},
		},
		modes: []string{"EVE"},
	}
	svc := newTestService(t, repo)

	rec, ok := svc.Lookup(context.Background(), "5500")
	require.True(t, ok)
	require.Equal(t, "из базы", rec.Description)
}

func TestServiceLookupFallsBackToIndex(t *testing.T) {
	repo := &fakeRepo{
		records:   []Record{{PartNumber: "5500", Description: "из индекса"}},
		lookupErr: errors.New("connection refused"),
		modes:     []string{"EVE"},
	}
	svc := newTestService(t, repo)

	rec, ok := svc.Lookup(context.Background(), "5500.0")
	require.True(t, ok)
	require.Equal(t, "из индекса", rec.Description)

	_, ok = svc.Lookup(context.Background(), "9999")
	require.False(t, ok)
}
