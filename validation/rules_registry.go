package validation

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
)

// RulesRegistry holds the custom rules of a class. Built-in rules are
// always available and need no registration.
type RulesRegistry interface {
	Add(r Rule) error
	Get(name string, v reflect.Value) (Rule, error)
	// Known reports whether name is a registered or built-in rule.
	Known(name string) bool
}

// registry is a registry of validation rules.
type registry struct {
	mu    sync.RWMutex
	rules map[string][]Rule // rule name -> overloads by type
}

func NewRulesRegistry() RulesRegistry {
	return &registry{
		rules: make(map[string][]Rule),
	}
}

func (r *registry) Add(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule == nil {
		return nil
	}

	name := rule.Name()
	for _, er := range r.rules[name] {
		if er.ValueType() == rule.ValueType() {
			return errorc.With(
				errors.ErrDuplicateOverloadRule,
				errorc.String(errors.ErrorFieldRuleName, name),
				errorc.String(errors.ErrorFieldFieldType, rule.ValueType().String()),
			)
		}
	}

	r.rules[name] = append(r.rules[name], rule)
	return nil
}

// Get returns the best-matching overload of rule name for the given value.
// Selection strategy:
//  1. Prefer exact type match.
//  2. Otherwise accept AssignableTo matches (interfaces, named types), preferring the first declared.
//  3. Otherwise fall back to a built-in rule of that name for the value type.
//  4. If nothing matches, return an error listing the available overload types.
func (r *registry) Get(name string, v reflect.Value) (Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !v.IsValid() {
		return nil,
			errorc.With(errors.ErrInvalidValue, errorc.String(errors.ErrorFieldRuleName, name))
	}

	valueType := v.Type()
	rules := r.rules[name]

	var (
		exacts  []Rule
		assigns []Rule
	)
	for _, rule := range rules {
		if rule.ValueType() == valueType {
			exacts = append(exacts, rule)
			continue
		}
		if accepts(rule, valueType) {
			assigns = append(assigns, rule)
		}
	}

	switch {
	case len(exacts) == 1:
		return exacts[0], nil
	case len(exacts) > 1:
		return nil, errorc.With(
			errors.ErrAmbiguousRule,
			errorc.String(errors.ErrorFieldRuleName, name),
			errorc.String(errors.ErrorFieldValueType, valueType.String()),
		)
	case len(assigns) >= 1:
		return assigns[0], nil
	}

	if builtin, ok := lookupBuiltin(name, valueType); ok {
		return builtin, nil
	}

	if len(rules) == 0 {
		return nil,
			errorc.With(errors.ErrRuleNotFound, errorc.String(errors.ErrorFieldRuleName, name))
	}

	return nil, errorc.With(
		errors.ErrRuleOverloadNotFound,
		errorc.String(errors.ErrorFieldRuleName, name),
		errorc.String(errors.ErrorFieldValueType, valueType.String()),
		errorc.String(errors.ErrorFieldAvailableTypes, strings.Join(getFieldTypesNames(rules), ", ")),
	)
}

func (r *registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.rules[name]) > 0 {
		return true
	}
	return isBuiltin(name)
}

func getFieldTypesNames(rules []Rule) []string {
	names := []string{}
	for _, rule := range rules {
		names = append(names, rule.ValueType().String())
	}
	slices.Sort(names)

	return names
}
