package catalog

import "strings"

// Index answers part-number lookups against the preloaded reference table.
// Every record is registered under each key variant of its part number
// because the source data mixes text, float-exported and padded formats.
type Index struct {
	byKey map[string]Record
}

// NewIndex builds the multi-key index. Later rows win per key, matching
// the load order of the reference sheet.
func NewIndex(records []Record) *Index {
	idx := &Index{byKey: make(map[string]Record, len(records)*2)}
	for _, rec := range records {
		for _, key := range keyVariants(rec.PartNumber) {
			idx.byKey[key] = rec
		}
	}
	return idx
}

// Lookup resolves a part number by raw, normalized, then digits-only form.
func (idx *Index) Lookup(pn string) (Record, bool) {
	if idx == nil {
		return Record{}, false
	}
	for _, key := range []string{strings.TrimSpace(pn), NormalizePartNumber(pn), DigitsOnly(pn)} {
		if key == "" {
			continue
		}
		if rec, ok := idx.byKey[key]; ok {
			return rec, true
		}
	}
	return Record{}, false
}

// Len reports the number of distinct keys.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byKey)
}

func keyVariants(pn string) []string {
	seen := make(map[string]struct{}, 3)
	var keys []string
	for _, key := range []string{NormalizePartNumber(pn), strings.TrimSpace(pn), DigitsOnly(pn)} {
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
