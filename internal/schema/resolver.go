package schema

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LabelToTable maps the business labels shown to sales staff onto the
// physical option tables they are backed by.
var LabelToTable = map[string]string{
	"Аппарат ИВЛ":      "Block_Main",
	"Лицензия":         "License",
	"Контуры":          "Circuits",
	"Клапаны, датчики": "Valves",
	"Маски":            "Masks",
	"Мобильная стойка": "Mobile_Cart",
	"Автокрепления":    "Holders",
	"Увлажнитель":      "Humidifier",
	"Датчик CO2":       "CO2",
	"Датчик SpO2":      "O2",
}

// OrderedLabels fixes the display order of the option categories.
var OrderedLabels = []string{
	"Аппарат ИВЛ", "Лицензия", "Контуры", "Клапаны, датчики",
	"Маски", "Мобильная стойка", "Автокрепления", "Увлажнитель",
	"Датчик CO2", "Датчик SpO2",
}

// DefaultModes is used when the Modes table is missing or empty.
var DefaultModes = []string{"EVE", "S", "F"}

// Sides recognised by side-filtered option tables.
const (
	SideRight = "прав"
	SideLeft  = "лев"
)

// Config names the well-known tables. Overridable because deployments
// rename the reference table per price-list revision.
type Config struct {
	ReferenceTable string
	TemplatesTable string
	ModesTable     string
	ModeColumn     string
	PriceTag       string
}

// DefaultConfig returns the table names of a stock deployment.
func DefaultConfig() Config {
	return Config{
		ReferenceTable: "EVE TIN ALL",
		TemplatesTable: "Templates",
		ModesTable:     "Modes",
		ModeColumn:     "Mode",
		PriceTag:       "25",
	}
}

// ReferenceColumns holds the detected physical columns of the reference table.
// BasePrice, PackSize and ListPrice may be empty when no candidate matched.
type ReferenceColumns struct {
	PartNumber  string
	Description string
	PackSize    string
	ListPrice   string
	BasePrice   string
}

// NormalizeName folds a column header for comparison: Unicode NFC,
// lower case, spaces removed.
func NormalizeName(s string) string {
	folded := strings.ToLower(norm.NFC.String(s))
	return strings.ReplaceAll(folded, " ", "")
}

// FindColumn locates a column by candidate names: exact case-insensitive
// match first, then a space-stripped match.
func FindColumn(cols []Column, candidates []string) (string, bool) {
	lower := make(map[string]string, len(cols))
	for _, c := range cols {
		key := strings.ToLower(norm.NFC.String(c.Name))
		if _, exists := lower[key]; !exists {
			lower[key] = c.Name
		}
	}
	for _, want := range candidates {
		if name, ok := lower[strings.ToLower(norm.NFC.String(want))]; ok {
			return name, true
		}
	}

	stripped := make(map[string]struct{}, len(candidates))
	for _, want := range candidates {
		stripped[NormalizeName(want)] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := stripped[NormalizeName(c.Name)]; ok {
			return c.Name, true
		}
	}
	return "", false
}

var (
	partNumberCandidates  = []string{"ref#", "ref #", "ref", "pn", "кат. №", "кат.#", "артикул"}
	descriptionCandidates = []string{"наименованиерус", "наименование", "описание", "описаное"}
	packSizeCandidates    = []string{"вуп-ке", "вуп", "упаковка", "шт/уп"}
)

// DetectReferenceColumns applies the naming heuristics to the reference
// table's columns. priceTag narrows price columns to the current price-list
// revision (e.g. "25" for the 2025 sheets).
func DetectReferenceColumns(cols []Column, priceTag string) ReferenceColumns {
	var rc ReferenceColumns

	partSet := make(map[string]struct{}, len(partNumberCandidates))
	for _, cand := range partNumberCandidates {
		partSet[NormalizeName(cand)] = struct{}{}
	}
	for _, c := range cols {
		n := NormalizeName(c.Name)
		if _, ok := partSet[n]; ok || strings.Contains(n, "ref") {
			rc.PartNumber = c.Name
			break
		}
	}
	if rc.PartNumber == "" && len(cols) > 0 {
		rc.PartNumber = cols[0].Name
	}

	descSet := make(map[string]struct{}, len(descriptionCandidates))
	for _, cand := range descriptionCandidates {
		descSet[NormalizeName(cand)] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := descSet[NormalizeName(c.Name)]; ok {
			rc.Description = c.Name
			break
		}
	}
	if rc.Description == "" && len(cols) > 1 {
		rc.Description = cols[1].Name
	}

	packSet := make(map[string]struct{}, len(packSizeCandidates))
	for _, cand := range packSizeCandidates {
		packSet[NormalizeName(cand)] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := packSet[NormalizeName(c.Name)]; ok {
			rc.PackSize = c.Name
			break
		}
	}

	for _, c := range cols {
		n := NormalizeName(c.Name)
		if rc.ListPrice == "" && strings.Contains(n, "лист") && strings.Contains(n, priceTag) {
			rc.ListPrice = c.Name
		}
		if rc.BasePrice == "" && hasBasePriceToken(n) && strings.Contains(n, priceTag) {
			rc.BasePrice = c.Name
		}
	}
	// Prefer the special-terms price column when the sheet carries one.
	if rc.BasePrice != "" {
		for _, c := range cols {
			n := NormalizeName(c.Name)
			if hasBasePriceToken(n) && strings.Contains(n, priceTag) && strings.Contains(n, "спец") {
				rc.BasePrice = c.Name
				break
			}
		}
	}
	return rc
}

// The buyer-price columns are labelled ТРМ/ТРИМ/ТРММ depending on who
// last edited the sheet.
func hasBasePriceToken(normalized string) bool {
	return strings.Contains(normalized, "трм") ||
		strings.Contains(normalized, "трим") ||
		strings.Contains(normalized, "трмм")
}

// Resolver binds the heuristics to a live database.
type Resolver struct {
	meta   MetaSource
	cfg    Config
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(meta MetaSource, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.ReferenceTable == "" {
		cfg = DefaultConfig()
	}
	return &Resolver{meta: meta, cfg: cfg, logger: logger}
}

// Config returns the resolver's table configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// ReferenceColumns introspects the reference table and detects its columns.
func (r *Resolver) ReferenceColumns(ctx context.Context) (ReferenceColumns, error) {
	cols, err := r.meta.Columns(ctx, r.cfg.ReferenceTable)
	if err != nil {
		return ReferenceColumns{}, err
	}
	rc := DetectReferenceColumns(cols, r.cfg.PriceTag)
	r.logger.Info("reference columns detected",
		slog.String("table", r.cfg.ReferenceTable),
		slog.String("part_number", rc.PartNumber),
		slog.String("description", rc.Description),
		slog.String("list_price", rc.ListPrice),
		slog.String("base_price", rc.BasePrice),
	)
	return rc, nil
}

// Modes loads the distinct device families from the Modes table, falling
// back to the built-in list when the table or its column is absent.
func (r *Resolver) Modes(ctx context.Context) []string {
	cols, err := r.meta.Columns(ctx, r.cfg.ModesTable)
	if err != nil || len(cols) == 0 {
		return append([]string(nil), DefaultModes...)
	}
	modeCol, ok := FindColumn(cols, []string{r.cfg.ModeColumn})
	if !ok {
		return append([]string(nil), DefaultModes...)
	}
	values, err := r.meta.DistinctValues(ctx, r.cfg.ModesTable, modeCol)
	if err != nil || len(values) == 0 {
		if err != nil {
			r.logger.Warn("load modes", slog.Any("error", err))
		}
		return append([]string(nil), DefaultModes...)
	}
	return values
}

// SideColumn probes an option table for its side column, which is named
// either Side or Сторона. Empty when the table has no sides.
func (r *Resolver) SideColumn(ctx context.Context, table string) (string, error) {
	cols, err := r.meta.Columns(ctx, table)
	if err != nil {
		return "", err
	}
	name, _ := FindColumn(cols, []string{"Side", "Сторона"})
	return name, nil
}

// TemplateColumns holds the physical Type/PN/Qts columns of the templates
// table. Quantity is optional.
type TemplateColumns struct {
	Type       string
	PartNumber string
	Quantity   string
}

// TemplateColumns introspects the templates table. The second return value
// is false when the Type or PN column could not be located, which disables
// templates entirely.
func (r *Resolver) TemplateColumns(ctx context.Context) (TemplateColumns, bool, error) {
	cols, err := r.meta.Columns(ctx, r.cfg.TemplatesTable)
	if err != nil {
		return TemplateColumns{}, false, err
	}
	var tc TemplateColumns
	tc.Type, _ = FindColumn(cols, []string{"Type", "Тип"})
	tc.PartNumber, _ = FindColumn(cols, []string{"PN", "Кат. №", "Артикул", "Ref", "REF", "REF #", "REF#"})
	tc.Quantity, _ = FindColumn(cols, []string{"Qts"})
	if tc.Type == "" || tc.PartNumber == "" {
		return tc, false, nil
	}
	return tc, true, nil
}
