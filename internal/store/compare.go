package store

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// toDecimal converts any numeric representation a record may carry.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case json.Number:
		d, err := decimal.NewFromString(string(x))
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint:
		return decimal.NewFromUint64(uint64(x)), true
	case uint8:
		return decimal.NewFromUint64(uint64(x)), true
	case uint16:
		return decimal.NewFromUint64(uint64(x)), true
	case uint32:
		return decimal.NewFromUint64(uint64(x)), true
	case uint64:
		return decimal.NewFromUint64(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	}
	return decimal.Zero, false
}

// Compare orders two record values. Numbers compare numerically whatever
// their Go representation, strings lexically, and a numeric string against a
// number numerically. ok is false when the values are of different kinds or
// not ordered (nil, bools), in which case no range predicate holds.
func Compare(a, b any) (cmp int, ok bool) {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	switch {
	case aStr && bStr:
		return strings.Compare(as, bs), true
	case aStr:
		a = json.Number(as)
	case bStr:
		b = json.Number(bs)
	}
	ad, aok := toDecimal(a)
	bd, bok := toDecimal(b)
	if !aok || !bok {
		return 0, false
	}
	return ad.Cmp(bd), true
}

// Equal is strict equality: a string never equals a number, nil only
// equals nil, numbers are equal when numerically equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, isBool := a.(bool); isBool {
		bb, isBool := b.(bool)
		return isBool && ab == bb
	}
	_, aStr := a.(string)
	_, bStr := b.(string)
	if aStr != bStr {
		return false
	}
	cmp, ok := Compare(a, b)
	return ok && cmp == 0
}
