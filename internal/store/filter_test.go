package store

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		cmp  int
		ok   bool
	}{
		{"ints", 3, 5, -1, true},
		{"int vs float", 5, 5.0, 0, true},
		{"json number vs decimal", json.Number("12.50"), decimal.RequireFromString("12.5"), 0, true},
		{"numeric string vs number", "10", 9, 1, true},
		{"strings lexical", "Zinc", "Amoxicillin", 1, true},
		{"iso dates", "2025-01-02", "2025-01-10", -1, true},
		{"string vs bool", "a", true, 0, false},
		{"nil", nil, 1, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmp, ok := Compare(tc.a, tc.b)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.cmp, cmp)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, ""))
	assert.True(t, Equal(true, true))
	assert.False(t, Equal(true, 1))
	assert.True(t, Equal(json.Number("30"), 30))
	assert.True(t, Equal("abc", "abc"))
}

func TestFiltersApply(t *testing.T) {
	recs := []Record{
		{"id": "1", "name": "Zinc", "stock_quantity": 5},
		{"id": "2", "name": "Amoxicillin", "stock_quantity": 0},
		{"id": "3", "name": "Metformin", "stock_quantity": 20},
		{"id": "4", "stock_quantity": 2},
	}

	t.Run("range", func(t *testing.T) {
		f := Filters{Gt: map[string]any{"stock_quantity": 0}, Lte: map[string]any{"stock_quantity": 5}}
		assert.Equal(t, []string{"1", "4"}, idsOf(f.Apply(recs)))
	})

	t.Run("range on missing column never matches", func(t *testing.T) {
		f := Filters{Gte: map[string]any{"name": "A"}}
		assert.Equal(t, []string{"1", "2", "3"}, idsOf(f.Apply(recs)))
	})

	t.Run("order ascending puts missing first", func(t *testing.T) {
		f := Filters{OrderBy: &Order{Column: "name", Ascending: true}}
		assert.Equal(t, []string{"4", "2", "3", "1"}, idsOf(f.Apply(recs)))
	})

	t.Run("order descending then limit", func(t *testing.T) {
		f := Filters{OrderBy: &Order{Column: "stock_quantity"}, Limit: 2}
		assert.Equal(t, []string{"3", "1"}, idsOf(f.Apply(recs)))
	})

	t.Run("stable on ties", func(t *testing.T) {
		tied := []Record{{"id": "b", "k": 1}, {"id": "a", "k": 1}, {"id": "c", "k": 0}}
		f := Filters{OrderBy: &Order{Column: "k", Ascending: true}}
		assert.Equal(t, []string{"c", "b", "a"}, idsOf(f.Apply(tied)))
	})
}

func TestWhereAndClone(t *testing.T) {
	f := Where("user_id", "u1", "name", "Zinc")
	assert.Equal(t, map[string]any{"user_id": "u1", "name": "Zinc"}, f.Eq)

	f.OrderBy = &Order{Column: "name"}
	c := f.Clone()
	c.Eq["user_id"] = "u2"
	c.OrderBy.Ascending = true
	assert.Equal(t, "u1", f.Eq["user_id"])
	assert.False(t, f.OrderBy.Ascending)
}

func TestIndexKey(t *testing.T) {
	k, ok := IndexKey("u1")
	assert.True(t, ok)
	assert.Equal(t, "s:u1", k)

	n1, _ := IndexKey(5)
	n2, _ := IndexKey(json.Number("5.0"))
	assert.Equal(t, n1, n2)

	_, ok = IndexKey(nil)
	assert.False(t, ok)
	_, ok = IndexKey(true)
	assert.False(t, ok)
}

func TestEncodeDecodeRecord(t *testing.T) {
	rec := Record{"id": "p1", "price": decimal.RequireFromString("12.50"), "active": true, "note": nil}
	data, err := EncodeRecord(rec)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","price":12.5,"active":true,"note":null}`, string(data))

	back, err := DecodeRecord(data)
	assert.NoError(t, err)
	assert.Equal(t, json.Number("12.5"), back["price"])
	assert.True(t, Equal(back["price"], rec["price"]))
}

func idsOf(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID()
	}
	return out
}

func TestEqualIsStrictAcrossKinds(t *testing.T) {
	assert.False(t, Equal("10", 10))
	c, ok := Compare("10", 10)
	assert.True(t, ok)
	assert.Zero(t, c)
}
