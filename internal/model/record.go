package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"pharmapos/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks the struct tags of a model. The store itself never
// validates; services call this before writing.
func Validate(v any) error {
	return validate.Struct(v)
}

// ToRecord converts a model to a schemaless record using its json tags.
// Decimal fields become JSON numbers so range filters compare them
// numerically.
func ToRecord(v any) (store.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("model: encode %T: %w", v, err)
	}
	rec, err := store.DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	for _, name := range decimalFields(reflect.TypeOf(v)) {
		if s, ok := rec[name].(string); ok {
			rec[name] = json.Number(s)
		}
	}
	return rec, nil
}

var (
	decimalType       = reflect.TypeOf(decimal.Decimal{})
	decimalFieldCache sync.Map // reflect.Type -> []string
)

// decimalFields lists the json names of t's decimal and *decimal fields.
func decimalFields(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := decimalFieldCache.Load(t); ok {
		return cached.([]string)
	}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if !f.IsExported() || ft != decimalType {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names = append(names, name)
	}
	decimalFieldCache.Store(t, names)
	return names
}

// FromRecord decodes a record into a model.
func FromRecord[T any](rec store.Record) (*T, error) {
	data, err := store.EncodeRecord(rec)
	if err != nil {
		return nil, err
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("model: decode %T: %w", out, err)
	}
	return &out, nil
}

// FromRecords decodes a result set, preserving order.
func FromRecords[T any](recs []store.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		v, err := FromRecord[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
