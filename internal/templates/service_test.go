package templates

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trimm-medical/magconfig/internal/quote"
)

type fakeRepo struct {
	byName map[string][]Item
	err    error
	loads  int
}

func (f *fakeRepo) Load(context.Context) (map[string][]Item, error) {
	f.loads++
	return f.byName, f.err
}

// fakeQuotes mutates a single quote in place, pricing part number 5500 the
// way the catalog would.
type fakeQuotes struct {
	q *quote.Quote
}

func (f *fakeQuotes) SetMode(id uuid.UUID, mode, side string) (*quote.Quote, error) {
	f.q.SetMode(mode, side)
	return f.q, nil
}

func (f *fakeQuotes) AddByPartNumber(ctx context.Context, id uuid.UUID, pn string, qty int) (*quote.Quote, bool, error) {
	ln := quote.Line{PartNumber: pn, Quantity: qty}
	if pn == "5500" {
		ln.Description = "Контур дыхательный"
		ln.ListPrice = 120
	}
	f.q.Append(ln)
	return f.q, true, nil
}

func newTestService(byName map[string][]Item) (*Service, *fakeQuotes, *fakeRepo) {
	repo := &fakeRepo{byName: byName}
	quotes := &fakeQuotes{q: &quote.Quote{ID: uuid.New(), Mode: "EVE", Params: quote.DefaultParams()}}
	return NewService(repo, quotes, slog.New(slog.DiscardHandler)), quotes, repo
}

func TestApplyAppendsItemsAndCountsMatches(t *testing.T) {
	svc, quotes, _ := newTestService(map[string][]Item{
		"eve tr": {
			{PartNumber: "5500", Quantity: 2},
			{PartNumber: "9999", Quantity: 1},
		},
	})

	q, matched, err := svc.Apply(context.Background(), quotes.q.ID, "EVE TR")
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	require.Equal(t, 1, matched, "only the catalog hit counts")
	require.Equal(t, 2, q.Lines[0].Quantity)
}

func TestApplySwitchesModeForKnownSet(t *testing.T) {
	svc, quotes, _ := newTestService(map[string][]Item{
		"f прав": {{PartNumber: "5500", Quantity: 1}},
	})

	_, _, err := svc.Apply(context.Background(), quotes.q.ID, "F прав")
	require.NoError(t, err)
	require.Equal(t, "F", quotes.q.Mode)
	require.Equal(t, "прав", quotes.q.Side)
}

func TestApplyUnknownTemplate(t *testing.T) {
	svc, quotes, _ := newTestService(map[string][]Item{})
	_, _, err := svc.Apply(context.Background(), quotes.q.ID, "нет такого")
	require.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestApplyNameCaseInsensitive(t *testing.T) {
	svc, quotes, _ := newTestService(map[string][]Item{
		"eve tr": {{PartNumber: "5500", Quantity: 1}},
	})
	_, _, err := svc.Apply(context.Background(), quotes.q.ID, "eve TR")
	require.NoError(t, err)
}

func TestListAnnotatesKnownSets(t *testing.T) {
	svc, _, _ := newTestService(map[string][]Item{
		"eve tr":  {{PartNumber: "5500", Quantity: 1}, {PartNumber: "6000", Quantity: 1}},
		"f лев":   {{PartNumber: "7000", Quantity: 1}},
		"разовый": {{PartNumber: "8000", Quantity: 1}},
	})

	infos, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 3)

	byName := make(map[string]Info)
	for _, info := range infos {
		byName[info.Name] = info
	}
	require.Equal(t, "EVE", byName["EVE TR"].Mode)
	require.Equal(t, 2, byName["EVE TR"].Items)
	require.Equal(t, "F", byName["F лев"].Mode)
	require.Equal(t, "лев", byName["F лев"].Side)
	require.Empty(t, byName["разовый"].Mode)
}

func TestLoadOnce(t *testing.T) {
	svc, _, repo := newTestService(map[string][]Item{})
	_, err := svc.List(context.Background())
	require.NoError(t, err)
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.loads)
}

func TestReloadDisablesOnMissingColumns(t *testing.T) {
	svc, quotes, repo := newTestService(nil)
	repo.err = ErrNoTemplateColumns

	require.NoError(t, svc.Reload(context.Background()))
	_, _, err := svc.Apply(context.Background(), quotes.q.ID, "EVE TR")
	require.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{
		"":    1,
		"2":   2,
		"2.0": 2,
		"2,0": 2,
		"0":   1,
		"-3":  1,
		"x":   1,
	}
	for raw, want := range cases {
		require.Equal(t, want, parseQuantity(raw), "raw=%q", raw)
	}
}
