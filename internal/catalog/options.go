package catalog

import (
	"sort"
	"strings"
)

// Options lists the selectable values per option field.
type Options struct {
	Database  []string
	Origin    []string
	PlantName []string
	Reference []string
}

// For returns the option list of field. Activity has no options.
func (o Options) For(field Field) []string {
	switch field {
	case FieldDatabase:
		return o.Database
	case FieldOrigin:
		return o.Origin
	case FieldPlantName:
		return o.PlantName
	case FieldReference:
		return o.Reference
	}
	return nil
}

// CollectOptions reduces records to the distinct non-empty values of each
// option field. Values are deduplicated by their normalized form; the first
// spelling seen is kept.
func CollectOptions(records []Record) Options {
	return Options{
		Database:  distinct(records, FieldDatabase),
		Origin:    distinct(records, FieldOrigin),
		PlantName: distinct(records, FieldPlantName),
		Reference: distinct(records, FieldReference),
	}
}

func distinct(records []Record, field Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		raw := field.Value(r)
		key := Normalize(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(raw))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
