package export

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trimm-medical/magconfig/internal/quote"
)

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SaveAs(path))
	return path
}

func testQuote(lines ...quote.Line) *quote.Quote {
	q := &quote.Quote{ID: uuid.New(), Mode: "EVE", Params: quote.DefaultParams()}
	for _, ln := range lines {
		q.Append(ln)
	}
	return q
}

func TestRenderLayout(t *testing.T) {
	e := NewExporter(writeTemplate(t), slog.New(slog.DiscardHandler))
	q := testQuote(
		quote.Line{PartNumber: "5500", Description: "Контур", Quantity: 2, ListPrice: 120},
		quote.Line{PartNumber: "6000", Description: "Фильтр", Quantity: 1, ListPrice: 30},
		quote.Line{PartNumber: "7000", Description: "Маска", Quantity: 3, ListPrice: 45},
	)

	f, err := e.Render(q)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	// First position lives in the header block.
	for cell, want := range map[string]string{
		"B5": "5500", "C5": "Контур", "D5": "2", "E5": "120",
	} {
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		require.Equal(t, want, got, cell)
	}
	formula, err := f.GetCellFormula(sheet, "F5")
	require.NoError(t, err)
	require.Equal(t, "E5*D5", formula)

	// Remaining positions continue in the detail block.
	b22, err := f.GetCellValue(sheet, "B22")
	require.NoError(t, err)
	require.Equal(t, "6000", b22)
	b23, err := f.GetCellValue(sheet, "B23")
	require.NoError(t, err)
	require.Equal(t, "7000", b23)
	formula, err = f.GetCellFormula(sheet, "F23")
	require.NoError(t, err)
	require.Equal(t, "E23*D23", formula)
}

func TestRenderSkipsEmptyLines(t *testing.T) {
	e := NewExporter(writeTemplate(t), slog.New(slog.DiscardHandler))
	q := testQuote(quote.Line{PartNumber: "5500", Quantity: 1, ListPrice: 10})
	q.Lines = append(q.Lines, quote.Line{Seq: 2}) // blank separator
	q.Lines = append(q.Lines, quote.Line{Seq: 3, PartNumber: "6000", Quantity: 1})

	f, err := e.Render(q)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	b22, err := f.GetCellValue(sheet, "B22")
	require.NoError(t, err)
	require.Equal(t, "6000", b22, "blank line does not consume a row")
}

func TestRenderEmptyQuote(t *testing.T) {
	e := NewExporter(writeTemplate(t), slog.New(slog.DiscardHandler))
	_, err := e.Render(testQuote())
	require.ErrorIs(t, err, ErrNoLines)
}

func TestRenderMissingTemplate(t *testing.T) {
	e := NewExporter(filepath.Join(t.TempDir(), "absent.xlsx"), slog.New(slog.DiscardHandler))
	_, err := e.Render(testQuote(quote.Line{PartNumber: "5500", Quantity: 1}))
	require.Error(t, err)
}

func TestFilename(t *testing.T) {
	e := NewExporter("template.xlsx", slog.New(slog.DiscardHandler))
	e.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	require.Equal(t, "KP_20260314_150926.xlsx", e.Filename())
}
