package export

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/trimm-medical/magconfig/internal/quote"
)

// ErrNoLines means the quote has nothing worth exporting.
var ErrNoLines = errors.New("export: quote has no lines")

// Row positions in the commercial offer template. The first position sits in
// the header block; the rest go into the detail block further down.
const (
	firstLineRow = 5
	restStartRow = 22
)

// Exporter fills the commercial offer workbook from a quote.
type Exporter struct {
	templatePath string
	logger       *slog.Logger
	now          func() time.Time
}

// NewExporter constructs an Exporter reading the template at path.
func NewExporter(templatePath string, logger *slog.Logger) *Exporter {
	return &Exporter{templatePath: templatePath, logger: logger, now: time.Now}
}

// Filename returns the timestamped output name for a workbook built now.
func (e *Exporter) Filename() string {
	return fmt.Sprintf("KP_%s.xlsx", e.now().Format("20060102_150405"))
}

// Render loads the template and writes the quote's non-empty lines into it.
// The caller owns the returned file and must Close it.
func (e *Exporter) Render(q *quote.Quote) (*excelize.File, error) {
	items := exportable(q)
	if len(items) == 0 {
		return nil, ErrNoLines
	}

	f, err := excelize.OpenFile(e.templatePath)
	if err != nil {
		return nil, fmt.Errorf("export: open template %q: %w", e.templatePath, err)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := writeLine(f, sheet, firstLineRow, items[0]); err != nil {
		f.Close()
		return nil, err
	}
	for i, item := range items[1:] {
		if err := writeLine(f, sheet, restStartRow+i, item); err != nil {
			f.Close()
			return nil, err
		}
	}

	e.logger.Info("offer rendered",
		slog.String("quote_id", q.ID.String()),
		slog.Int("lines", len(items)),
	)
	return f, nil
}

func writeLine(f *excelize.File, sheet string, row int, ln quote.Line) error {
	cells := []struct {
		col   string
		value any
	}{
		{"B", ln.PartNumber},
		{"C", ln.Description},
		{"D", ln.Quantity},
		{"E", ln.ListPrice},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", c.col, row), c.value); err != nil {
			return fmt.Errorf("export: write %s%d: %w", c.col, row, err)
		}
	}
	formula := fmt.Sprintf("E%d*D%d", row, row)
	if err := f.SetCellFormula(sheet, fmt.Sprintf("F%d", row), formula); err != nil {
		return fmt.Errorf("export: write formula F%d: %w", row, err)
	}
	return nil
}

// exportable drops lines with no part number, description, quantity or
// price; section separators in the grid export as gaps, not rows.
func exportable(q *quote.Quote) []quote.Line {
	var out []quote.Line
	for _, ln := range q.Lines {
		if ln.PartNumber == "" && ln.Description == "" && ln.Quantity == 0 && ln.ListPrice == 0 {
			continue
		}
		out = append(out, ln)
	}
	return out
}
