package templates

import "strings"

// Item is one template position: a part number and its quantity.
type Item struct {
	PartNumber string `json:"part_number"`
	Quantity   int    `json:"quantity"`
}

// Set is a predefined template selection that also switches the quote's
// device family, and for the F family a side, when applied.
type Set struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
	Side string `json:"side,omitempty"`
}

// KnownSets lists the predefined selections in their fixed order.
func KnownSets() []Set {
	return []Set{
		{Name: "EVE TR", Mode: "EVE"},
		{Name: "S", Mode: "S"},
		{Name: "F прав", Mode: "F", Side: "прав"},
		{Name: "EVE NEO", Mode: "EVE"},
		{Name: "F лев", Mode: "F", Side: "лев"},
		{Name: "EVE IN", Mode: "EVE"},
		{Name: "EVE ALL", Mode: "EVE"},
	}
}

// SetFor returns the predefined set matching name, case-insensitively.
func SetFor(name string) (Set, bool) {
	name = strings.TrimSpace(name)
	for _, s := range KnownSets() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Set{}, false
}

// Key normalizes a template name for map lookups.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
