package quote

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateTotals(t *testing.T) {
	lines := []Line{
		{Quantity: 2, ListPrice: 100, BaseCost: 60},
		{Quantity: 1, ListPrice: 50, BaseCost: 30},
	}
	p := Params{DiscountPercent: 10, Logistics: 1.2, FxRate: 2}

	got := CalculateTotals(lines, p)

	// list: 2*100 + 1*50 = 250; total: 250 * 0.9 * 2 = 450
	require.InDelta(t, 250, got.ListTotal, 1e-9)
	require.InDelta(t, 450, got.Total, 1e-9)
	// cost: (2*60 + 1*30) * 1.2 = 180; converted: 360
	require.InDelta(t, 360, got.CostTotal, 1e-9)
	require.NotNil(t, got.Margin)
	require.InDelta(t, 0.25, *got.Margin, 1e-9)
}

func TestCalculateTotalsMarginUndefinedWithoutCost(t *testing.T) {
	lines := []Line{{Quantity: 1, ListPrice: 100}}
	got := CalculateTotals(lines, DefaultParams())
	require.InDelta(t, 100, got.Total, 1e-9)
	require.Nil(t, got.Margin)
}

func TestCalculateTotalsEmpty(t *testing.T) {
	got := CalculateTotals(nil, DefaultParams())
	require.Zero(t, got.ListTotal)
	require.Zero(t, got.Total)
	require.Nil(t, got.Margin)
}

func TestAppendClampsAndNumbers(t *testing.T) {
	var q Quote
	q.Append(Line{PartNumber: "100", Quantity: 0})
	q.Append(Line{PartNumber: "200", Quantity: 3, Control: "0"})

	require.Len(t, q.Lines, 2)
	require.Equal(t, 1, q.Lines[0].Seq)
	require.Equal(t, 1, q.Lines[0].Quantity, "quantity clamps to one")
	require.Equal(t, "1", q.Lines[0].Control)
	require.Equal(t, 2, q.Lines[1].Seq)
	require.Equal(t, "0", q.Lines[1].Control, "explicit control flag kept")
}

func TestRemoveLinesRenumbers(t *testing.T) {
	var q Quote
	for _, pn := range []string{"a", "b", "c", "d"} {
		q.Append(Line{PartNumber: pn, Quantity: 1})
	}
	q.RemoveLines([]int{1, 3})

	require.Len(t, q.Lines, 2)
	require.Equal(t, "b", q.Lines[0].PartNumber)
	require.Equal(t, 1, q.Lines[0].Seq)
	require.Equal(t, "d", q.Lines[1].PartNumber)
	require.Equal(t, 2, q.Lines[1].Seq)
}

func TestMoveFirstNumberedDown(t *testing.T) {
	var q Quote
	q.Append(Line{PartNumber: "100", Quantity: 1})
	q.Append(Line{PartNumber: "200", Quantity: 1})
	q.Append(Line{PartNumber: "300", Quantity: 1})

	q.MoveFirstNumberedDown()

	require.Equal(t, []string{"200", "100", "300"}, partNumbers(q))
	require.Equal(t, []int{1, 2, 3}, seqs(q))
}

func TestMoveFirstNumberedDownSkipsBlank(t *testing.T) {
	var q Quote
	q.Append(Line{Description: "раздел", Quantity: 1})
	q.Lines[0].PartNumber = ""
	q.Append(Line{PartNumber: "100", Quantity: 1})
	q.Append(Line{PartNumber: "200", Quantity: 1})

	q.MoveFirstNumberedDown()

	require.Equal(t, []string{"", "200", "100"}, partNumbers(q))
}

func TestMoveFirstNumberedDownLastLineStays(t *testing.T) {
	var q Quote
	q.Append(Line{Description: "раздел"})
	q.Append(Line{PartNumber: "100"})

	q.MoveFirstNumberedDown()

	// The only numbered line is already last; nothing moves.
	require.Equal(t, []string{"", "100"}, partNumbers(q))
}

func TestClearPartNumbers(t *testing.T) {
	var q Quote
	q.Append(Line{PartNumber: "100", Description: "desc", ListPrice: 10})
	q.ClearPartNumbers()
	require.Empty(t, q.Lines[0].PartNumber)
	require.Equal(t, "desc", q.Lines[0].Description)
	require.InDelta(t, 10, q.Lines[0].ListPrice, 1e-9)
}

func TestSetModeClearsSideOutsideF(t *testing.T) {
	var q Quote
	q.SetMode("F", "прав")
	require.Equal(t, "F", q.Mode)
	require.Equal(t, "прав", q.Side)

	q.SetMode("EVE", "прав")
	require.Equal(t, "EVE", q.Mode)
	require.Empty(t, q.Side)
}

func TestDisplayCostScalesWithLogistics(t *testing.T) {
	q := Quote{Params: Params{Logistics: 1.5, FxRate: 1}}
	ln := Line{BaseCost: 100}
	require.InDelta(t, 150, q.DisplayCost(ln), 1e-9)
}

func partNumbers(q Quote) []string {
	out := make([]string, len(q.Lines))
	for i, ln := range q.Lines {
		out[i] = ln.PartNumber
	}
	return out
}

func seqs(q Quote) []int {
	out := make([]int, len(q.Lines))
	for i, ln := range q.Lines {
		out[i] = ln.Seq
	}
	return out
}
