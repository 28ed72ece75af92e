package catalog

import "github.com/trimm-medical/magconfig/internal/schema"

// Record is one row of the master reference table with prices parsed.
// Nil prices mean the deployment's sheet has no such column or the cell
// was blank.
type Record struct {
	PartNumber  string   `json:"part_number"`
	Description string   `json:"description"`
	PackSize    string   `json:"pack_size,omitempty"`
	ListPrice   *float64 `json:"list_price,omitempty"`
	BasePrice   *float64 `json:"base_price,omitempty"`
}

// OptionRow is one row of a per-category option table.
type OptionRow struct {
	Mode       string `json:"mode"`
	Label      string `json:"label"`
	PartNumber string `json:"part_number"`
	Side       string `json:"side,omitempty"`
}

// Option pairs a display label with the part number it resolves to.
type Option struct {
	Label      string `json:"label"`
	PartNumber string `json:"part_number"`
}

// Snapshot is the serialized form of a fully preloaded catalog, cached in
// Redis so restarts and the background worker can skip the bulk reload.
type Snapshot struct {
	Columns schema.ReferenceColumns `json:"columns"`
	Modes   []string                `json:"modes"`
	Records []Record                `json:"records"`
	Options map[string][]OptionRow  `json:"options"`
}
