package vattr

import (
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
)

// Attr is a typed handle on a virtual attribute.
type Attr[V any] struct {
	acc *Accessor
}

// NewAttr returns a typed handle on the declared attribute name.
func NewAttr[V any](c *Class, name string) (*Attr[V], error) {
	acc, ok := c.Attribute(name)
	if !ok {
		return nil, c.unknownAttribute(name)
	}
	return &Attr[V]{acc: acc}, nil
}

// MustAttr is like NewAttr but panics if the attribute is not declared.
func MustAttr[V any](c *Class, name string) *Attr[V] {
	a, err := NewAttr[V](c, name)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the attribute name.
func (a *Attr[V]) Name() string { return a.acc.Name() }

// Get returns the attribute value as V. Numeric values are converted when the
// conversion is lossless, so an int stored by one codec and read back as
// float64 by another still reads as int. ok is false when the attribute is
// unset or its value cannot be represented as V; an explicit nil reads as the
// zero value with ok true.
func (a *Attr[V]) Get(rec Record) (V, bool) {
	var zero V
	v, ok := a.acc.Get(rec)
	if !ok {
		return zero, false
	}
	if v == nil {
		return zero, true
	}
	return convert[V](v)
}

// Value is like Get but tells an unreadable value from an unset one: a value
// that cannot be represented as V fails with errors.ErrAttributeTypeMismatch.
// Unset and nil attributes read as the zero value.
func (a *Attr[V]) Value(rec Record) (V, error) {
	var zero V
	v, ok := a.acc.Get(rec)
	if !ok || v == nil {
		return zero, nil
	}
	out, ok := convert[V](v)
	if !ok {
		return zero, errorc.With(
			errors.ErrAttributeTypeMismatch,
			errorc.String(errors.ErrorFieldClassName, a.acc.class.name),
			errorc.String(errors.ErrorFieldAttributeName, a.acc.name),
			errorc.String(errors.ErrorFieldAttributeType, reflect.TypeFor[V]().String()),
			errorc.String(errors.ErrorFieldValueType, typeName(v)),
		)
	}
	return out, nil
}

// Set writes v into the store of rec.
func (a *Attr[V]) Set(rec Record, v V) { a.acc.Set(rec, v) }

func convert[V any](v any) (V, bool) {
	var zero V
	if out, ok := v.(V); ok {
		return out, true
	}

	target := reflect.TypeFor[V]()
	rv := reflect.ValueOf(v)
	switch {
	case isNumeric(rv.Kind()) && isNumeric(target.Kind()):
		cv := rv.Convert(target)
		// Same width signed and unsigned integers convert back and forth
		// without loss of bits, so the sign is compared as well.
		if isNegative(cv) != isNegative(rv) || !cv.Convert(rv.Type()).Equal(rv) {
			return zero, false
		}
		return cv.Interface().(V), true
	case rv.Kind() == reflect.String && target.Kind() == reflect.String:
		return rv.Convert(target).Interface().(V), true
	}
	return zero, false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isNegative(rv reflect.Value) bool {
	switch {
	case rv.CanInt():
		return rv.Int() < 0
	case rv.CanFloat():
		return rv.Float() < 0
	}
	return false
}
