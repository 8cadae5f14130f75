package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Record is a schemaless row. Values are scalars: strings, bools, nil and
// numbers (Go numeric types, json.Number or decimal.Decimal).
type Record map[string]any

// ID returns the primary key, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Pick returns a copy holding only the listed fields that r has.
func (r Record) Pick(fields []string) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// IndexKey renders a lookup value the way backends store it in an index.
// ok is false for values that cannot be indexed (nil, bools, composites).
func IndexKey(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return "s:" + x, true
	case nil, bool:
		return "", false
	}
	if d, ok := toDecimal(v); ok {
		return "n:" + d.String(), true
	}
	return "", false
}

// IndexKeys returns the index entries rec contributes for the given columns.
func IndexKeys(rec Record, columns []string) map[string]string {
	keys := make(map[string]string, len(columns))
	for _, col := range columns {
		if k, ok := IndexKey(rec[col]); ok {
			keys[col] = k
		}
	}
	return keys
}

// SortByID orders records by primary key in place.
func SortByID(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].ID() < recs[j].ID() })
}

// EncodeRecord serialises a record for backends that store bytes.
func EncodeRecord(rec Record) ([]byte, error) {
	return json.Marshal(normalize(rec))
}

// DecodeRecord is the inverse of EncodeRecord. Numbers decode as json.Number.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("store: decode record: %w", err)
	}
	return rec, nil
}

// normalize converts decimals to json.Number so encoding never depends on
// decimal's quoting mode.
func normalize(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		switch x := v.(type) {
		case decimal.Decimal:
			out[k] = json.Number(x.String())
		case *decimal.Decimal:
			if x == nil {
				out[k] = nil
			} else {
				out[k] = json.Number(x.String())
			}
		default:
			out[k] = v
		}
	}
	return out
}
