package catalog

import "strings"

// BuildOptions filters option rows down to one device family and optional
// side, producing the label→part-number choices in row order. The first
// occurrence of a label wins. Rows without a side pass any side filter.
func BuildOptions(rows []OptionRow, mode, side string) []Option {
	wantMode := strings.ToLower(strings.TrimSpace(mode))
	wantSide := strings.ToLower(strings.TrimSpace(side))

	seen := make(map[string]struct{})
	var options []Option
	for _, r := range rows {
		if strings.ToLower(strings.TrimSpace(r.Mode)) != wantMode {
			continue
		}
		rowSide := strings.ToLower(strings.TrimSpace(r.Side))
		if wantSide != "" && rowSide != "" && rowSide != wantSide {
			continue
		}
		if r.Label == "" || r.PartNumber == "" {
			continue
		}
		if _, dup := seen[r.Label]; dup {
			continue
		}
		seen[r.Label] = struct{}{}
		options = append(options, Option{Label: r.Label, PartNumber: r.PartNumber})
	}
	return options
}

// ResolveOption finds the part number behind a display label.
func ResolveOption(options []Option, label string) (string, bool) {
	for _, o := range options {
		if o.Label == label {
			return o.PartNumber, true
		}
	}
	return "", false
}
