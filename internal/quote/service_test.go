package quote

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trimm-medical/magconfig/internal/catalog"
)

type fakeCatalog struct {
	records map[string]catalog.Record
	options map[string]string // "label|mode|side|option" → pn
	modes   []string
}

func (f *fakeCatalog) Lookup(ctx context.Context, pn string) (catalog.Record, bool) {
	rec, ok := f.records[catalog.NormalizePartNumber(pn)]
	return rec, ok
}

func (f *fakeCatalog) ResolveOption(label, mode, side, optionLabel string) (string, bool, error) {
	pn, ok := f.options[label+"|"+mode+"|"+side+"|"+optionLabel]
	return pn, ok, nil
}

func (f *fakeCatalog) Modes() []string {
	return f.modes
}

func fptr(f float64) *float64 { return &f }

func newTestService() (*Service, *fakeCatalog) {
	cat := &fakeCatalog{
		records: map[string]catalog.Record{
			"5500": {
				PartNumber:  "5500",
				Description: "Контур дыхательный",
				PackSize:    "10",
				ListPrice:   fptr(120),
				BasePrice:   fptr(80),
			},
		},
		options: map[string]string{
			"Контуры|EVE||Контур дыхательный": "5500",
		},
		modes: []string{"EVE", "F", "S"},
	}
	svc := NewService(NewStore(time.Hour), cat, slog.New(slog.DiscardHandler))
	return svc, cat
}

func TestServiceCreateDefaultsMode(t *testing.T) {
	svc, _ := newTestService()
	q := svc.Create("")
	require.Equal(t, "EVE", q.Mode)
}

func TestServiceAddByPartNumberPricesLine(t *testing.T) {
	svc, _ := newTestService()
	q := svc.Create("EVE")

	got, added, err := svc.AddByPartNumber(context.Background(), q.ID, " 5500.0 ", 2)
	require.NoError(t, err)
	require.True(t, added)
	require.Len(t, got.Lines, 1)

	ln := got.Lines[0]
	require.Equal(t, "Контур дыхательный", ln.Description)
	require.Equal(t, "10", ln.PackSize)
	require.InDelta(t, 120, ln.ListPrice, 1e-9)
	require.InDelta(t, 80, ln.BaseCost, 1e-9)
	require.Equal(t, 2, ln.Quantity)
}

func TestServiceAddUnknownPartStillAddsLine(t *testing.T) {
	svc, _ := newTestService()
	q := svc.Create("EVE")

	got, added, err := svc.AddByPartNumber(context.Background(), q.ID, "9999", 1)
	require.NoError(t, err)
	require.True(t, added)
	require.Len(t, got.Lines, 1)
	require.Empty(t, got.Lines[0].Description)
	require.Zero(t, got.Lines[0].ListPrice)
}

func TestServiceAddBlankPartNumberIgnored(t *testing.T) {
	svc, _ := newTestService()
	q := svc.Create("EVE")

	got, added, err := svc.AddByPartNumber(context.Background(), q.ID, "  ", 1)
	require.NoError(t, err)
	require.False(t, added)
	require.Empty(t, got.Lines)
}

func TestServiceAddBySelection(t *testing.T) {
	svc, _ := newTestService()
	q := svc.Create("EVE")

	got, err := svc.AddBySelection(context.Background(), q.ID, "Контуры", "Контур дыхательный", 1)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	require.Equal(t, "5500", got.Lines[0].PartNumber)

	_, err = svc.AddBySelection(context.Background(), q.ID, "Контуры", "Нет такой", 1)
	require.Error(t, err)
}

func TestServiceParamsDriveTotals(t *testing.T) {
	svc, _ := newTestService()
	q := svc.Create("EVE")

	_, _, err := svc.AddByPartNumber(context.Background(), q.ID, "5500", 1)
	require.NoError(t, err)

	got, err := svc.SetParams(q.ID, fptr(10), fptr(1.5), fptr(2))
	require.NoError(t, err)

	totals := got.Totals()
	// list 120 → total 120*0.9*2 = 216; cost 80*1.5*2 = 240
	require.InDelta(t, 216, totals.Total, 1e-9)
	require.InDelta(t, 240, totals.CostTotal, 1e-9)
	require.NotNil(t, totals.Margin)
	require.InDelta(t, -0.1, *totals.Margin, 1e-9)
}
