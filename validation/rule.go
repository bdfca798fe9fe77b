package validation

import (
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
)

// Rule checks the value of a virtual attribute. Rules sharing a name are
// overloads told apart by ValueType.
type Rule interface {
	Name() string
	ValueType() reflect.Type
	// Check validates v, the current value of attribute, with the
	// parameters given in the rule list.
	Check(attribute string, v reflect.Value, params ...string) error
}

type typedRule[V any] struct {
	name string
	fn   func(value V, params ...string) error
}

// NewRule builds a rule for attribute values of type V. V may be an
// interface, in which case every value implementing it is accepted.
func NewRule[V any](name string, fn func(value V, params ...string) error) (Rule, error) {
	if name == "" || fn == nil {
		return nil, errorc.With(errors.ErrInvalidRule, errorc.String(errors.ErrorFieldRuleName, name))
	}
	return &typedRule[V]{name: name, fn: fn}, nil
}

// MustRule is like NewRule but panics on invalid input.
func MustRule[V any](name string, fn func(value V, params ...string) error) Rule {
	r, err := NewRule[V](name, fn)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *typedRule[V]) Name() string { return r.name }

func (r *typedRule[V]) ValueType() reflect.Type { return reflect.TypeFor[V]() }

func (r *typedRule[V]) Check(attribute string, v reflect.Value, params ...string) error {
	want := r.ValueType()
	if !v.IsValid() || !v.Type().AssignableTo(want) {
		got := "nil"
		if v.IsValid() {
			got = v.Type().String()
		}
		return errorc.With(
			errors.ErrRuleTypeMismatch,
			errorc.String(errors.ErrorFieldAttributeName, attribute),
			errorc.String(errors.ErrorFieldRuleName, r.name),
			errorc.String(errors.ErrorFieldValueType, got),
			errorc.String(errors.ErrorFieldFieldType, want.String()),
		)
	}
	// Convert turns an unnamed value into the named V it is assignable to.
	return r.fn(v.Convert(want).Interface().(V), params...)
}

// accepts reports whether values of type t can be checked by r.
func accepts(r Rule, t reflect.Type) bool {
	return t.AssignableTo(r.ValueType())
}
