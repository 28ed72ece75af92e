package admin

import (
	"strconv"
	"strings"
	"time"
)

var truthy = map[string]bool{
	"true": true, "t": true, "1": true,
	"yes": true, "y": true, "on": true,
	"да": true,
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CoerceValue turns raw grid input into a typed parameter for the given
// information_schema data type. An empty string always becomes NULL.
// Input that does not parse is passed through as-is and left for the
// database to judge.
func CoerceValue(dataType, raw string) any {
	if raw == "" {
		return nil
	}
	dt := strings.ToLower(dataType)
	switch {
	case dt == "boolean":
		return truthy[strings.ToLower(strings.TrimSpace(raw))]
	case dt == "smallint" || dt == "integer" || dt == "bigint":
		if n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return n
		}
	case dt == "numeric" || dt == "decimal" || dt == "real" || dt == "double precision":
		if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64); err == nil {
			return f
		}
	case strings.HasPrefix(dt, "timestamp"):
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
				return ts
			}
		}
	case dt == "date":
		if d, err := time.Parse("2006-01-02", strings.TrimSpace(raw)); err == nil {
			return d
		}
	}
	return raw
}
