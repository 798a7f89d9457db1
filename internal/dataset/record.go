package dataset

// Record is one CSV row keyed by column header.
type Record map[string]string

// Predicate requires a record's value at Column to equal Value exactly.
type Predicate struct {
	Column string `json:"column_name"`
	Value  string `json:"value"`
}

// Matches reports whether rec satisfies every predicate. A record without one
// of the filtered columns never matches.
func Matches(rec Record, filters []Predicate) bool {
	for _, f := range filters {
		v, ok := rec[f.Column]
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

// Filter returns the records matching all filters, in input order. The result
// is never nil so it encodes as an empty JSON array.
func Filter(recs []Record, filters []Predicate) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if Matches(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}
