package catalog

import "strings"

// ExactSet matches when the record value equals one of the options.
// An empty set never excludes.
type ExactSet []string

// Match reports whether value passes the set.
func (s ExactSet) Match(value string) bool {
	if len(s) == 0 {
		return true
	}
	v := Normalize(value)
	for _, opt := range s {
		if v == Normalize(opt) {
			return true
		}
	}
	return false
}

// SubstringSet matches when the record value contains one of the options.
// An empty set never excludes.
type SubstringSet []string

// Match reports whether value passes the set.
func (s SubstringSet) Match(value string) bool {
	if len(s) == 0 {
		return true
	}
	for _, opt := range s {
		if containsNorm(value, opt) {
			return true
		}
	}
	return false
}

// Keywords holds free-text keywords combined with OR. Blank entries are kept
// (the editor shows them as empty rows) but ignored when matching.
type Keywords []string

// Active returns the non-blank keywords.
func (k Keywords) Active() []string {
	out := make([]string, 0, len(k))
	for _, kw := range k {
		if strings.TrimSpace(kw) != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Match reports whether value contains any active keyword.
func (k Keywords) Match(value string) bool {
	active := k.Active()
	if len(active) == 0 {
		return true
	}
	for _, kw := range active {
		if containsNorm(value, kw) {
			return true
		}
	}
	return false
}

// FilterState is the set of field constraints currently selected.
// The zero value constrains nothing.
type FilterState struct {
	Database  ExactSet
	Origin    SubstringSet
	PlantName SubstringSet
	Reference SubstringSet
	Activity  Keywords
}

// IsEmpty reports whether no field constrains the result.
func (f FilterState) IsEmpty() bool {
	return len(f.Database) == 0 && len(f.Origin) == 0 && len(f.PlantName) == 0 &&
		len(f.Reference) == 0 && len(f.Activity.Active()) == 0
}

// Values returns the selections of field as plain strings.
func (f FilterState) Values(field Field) []string {
	switch field {
	case FieldDatabase:
		return f.Database
	case FieldOrigin:
		return f.Origin
	case FieldPlantName:
		return f.PlantName
	case FieldReference:
		return f.Reference
	case FieldActivity:
		return f.Activity
	}
	return nil
}

// With returns a copy of f whose field selections are replaced by values.
func (f FilterState) With(field Field, values []string) FilterState {
	out := f.Clone()
	vals := append([]string(nil), values...)
	switch field {
	case FieldDatabase:
		out.Database = vals
	case FieldOrigin:
		out.Origin = vals
	case FieldPlantName:
		out.PlantName = vals
	case FieldReference:
		out.Reference = vals
	case FieldActivity:
		out.Activity = vals
	}
	return out
}

// Clone returns a deep copy so callers can edit a draft without touching
// the applied state.
func (f FilterState) Clone() FilterState {
	return FilterState{
		Database:  append(ExactSet(nil), f.Database...),
		Origin:    append(SubstringSet(nil), f.Origin...),
		PlantName: append(SubstringSet(nil), f.PlantName...),
		Reference: append(SubstringSet(nil), f.Reference...),
		Activity:  append(Keywords(nil), f.Activity...),
	}
}

// Predicate decides whether a record belongs to the filtered view.
type Predicate func(Record) bool

// MatchSearch is the free-text predicate: term must occur in the name, the
// plant name or the database. An empty term passes everything.
func MatchSearch(r Record, term string) bool {
	if Normalize(term) == "" {
		return true
	}
	return containsNorm(r.Name, term) || containsNorm(r.PlantName, term) || containsNorm(r.Database, term)
}

// matcher returns the per-field predicate for field.
func (f FilterState) matcher(field Field) Predicate {
	switch field.Kind() {
	case KindExact:
		set := ExactSet(f.Values(field))
		return func(r Record) bool { return set.Match(field.Value(r)) }
	case KindSubstring:
		set := SubstringSet(f.Values(field))
		return func(r Record) bool { return set.Match(field.Value(r)) }
	case KindKeywords:
		kw := Keywords(f.Values(field))
		return func(r Record) bool { return kw.Match(field.Value(r)) }
	}
	return func(Record) bool { return true }
}

// Predicates returns the conjuncts that make up the filter for term.
func (f FilterState) Predicates(term string) []Predicate {
	preds := make([]Predicate, 0, len(Fields)+1)
	preds = append(preds, func(r Record) bool { return MatchSearch(r, term) })
	for _, field := range Fields {
		preds = append(preds, f.matcher(field))
	}
	return preds
}

// Apply returns the records passing every predicate, in input order.
// The result is always a fresh slice.
func Apply(records []Record, filters FilterState, term string) []Record {
	preds := filters.Predicates(term)
	out := make([]Record, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}
