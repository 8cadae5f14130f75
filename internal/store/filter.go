package store

import "sort"

// Order sorts a result set by one column.
type Order struct {
	Column    string
	Ascending bool
}

// Filters is a conjunction of column predicates plus optional ordering and
// limit. A zero Filters matches every record.
type Filters struct {
	Eq  map[string]any
	Gt  map[string]any
	Gte map[string]any
	Lt  map[string]any
	Lte map[string]any

	OrderBy *Order
	// Limit caps the result size; zero means unlimited.
	Limit int
}

// Where returns equality filters from alternating column/value pairs.
func Where(pairs ...any) Filters {
	f := Filters{Eq: make(map[string]any, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		col, _ := pairs[i].(string)
		f.Eq[col] = pairs[i+1]
	}
	return f
}

// Clone returns a deep copy of the predicate maps.
func (f Filters) Clone() Filters {
	out := Filters{
		Eq:    cloneMap(f.Eq),
		Gt:    cloneMap(f.Gt),
		Gte:   cloneMap(f.Gte),
		Lt:    cloneMap(f.Lt),
		Lte:   cloneMap(f.Lte),
		Limit: f.Limit,
	}
	if f.OrderBy != nil {
		o := *f.OrderBy
		out.OrderBy = &o
	}
	return out
}

// Match reports whether rec satisfies every predicate.
func (f Filters) Match(rec Record) bool {
	for col, v := range f.Eq {
		if !Equal(rec[col], v) {
			return false
		}
	}
	return matchRange(rec, f.Gt, func(c int) bool { return c > 0 }) &&
		matchRange(rec, f.Gte, func(c int) bool { return c >= 0 }) &&
		matchRange(rec, f.Lt, func(c int) bool { return c < 0 }) &&
		matchRange(rec, f.Lte, func(c int) bool { return c <= 0 })
}

func matchRange(rec Record, preds map[string]any, want func(int) bool) bool {
	for col, v := range preds {
		c, ok := Compare(rec[col], v)
		if !ok || !want(c) {
			return false
		}
	}
	return true
}

// Apply filters, orders and limits recs, returning a new slice.
func (f Filters) Apply(recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	if f.OrderBy != nil {
		SortBy(out, *f.OrderBy)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// SortBy is a stable sort on one column. Missing values sort first;
// incomparable pairs keep their relative order.
func SortBy(recs []Record, o Order) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i][o.Column], recs[j][o.Column]
		if a == nil || b == nil {
			// nil first in both directions
			return a == nil && b != nil
		}
		c, ok := Compare(a, b)
		if !ok {
			return false
		}
		if o.Ascending {
			return c < 0
		}
		return c > 0
	})
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
