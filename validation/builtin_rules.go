package validation

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/constants"
	"github.com/ygrebnov/vattr/errors"
)

// Built-ins are always implicitly available.

// key consists of a name and a value type.
type key struct {
	name      string
	fieldType reflect.Type
}

// Lazy built-in rule storage.
var (
	builtInsOnce sync.Once
	builtInMap   map[key]Rule
	builtInNames map[string]struct{}
)

func violated(rule, constraint string) error {
	return errorc.With(
		errors.ErrRuleConstraintViolated,
		errorc.String(errors.ErrorFieldRuleName, rule),
		errorc.String(errors.ErrorFieldConstraint, constraint),
	)
}

func missingParam(rule string) error {
	return errorc.With(errors.ErrRuleMissingParameter, errorc.String(errors.ErrorFieldRuleName, rule))
}

func invalidParam(rule, param string) error {
	return errorc.With(
		errors.ErrRuleInvalidParameter,
		errorc.String(errors.ErrorFieldRuleName, rule),
		errorc.String(errors.ErrorFieldRuleParam, param),
	)
}

type number interface {
	~int | ~int64 | ~float64
}

func parseNumber[N number](s string) (N, bool) {
	var zero N
	switch any(zero).(type) {
	case float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return zero, false
		}
		return N(f), true
	default:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return zero, false
		}
		return N(i), true
	}
}

func numericRules[N number]() []Rule {
	positive := MustRule[N](constants.RulePositive, func(n N, _ ...string) error {
		if !(n > 0) {
			return violated(constants.RulePositive, "must be > 0")
		}
		return nil
	})
	nonzero := MustRule[N](constants.RuleNonZero, func(n N, _ ...string) error {
		if n == 0 {
			return violated(constants.RuleNonZero, "must not be zero")
		}
		return nil
	})
	oneof := MustRule[N](constants.RuleOneOf, func(n N, params ...string) error {
		if len(params) == 0 {
			return missingParam(constants.RuleOneOf)
		}
		for _, p := range params {
			v, ok := parseNumber[N](p)
			if !ok {
				return invalidParam(constants.RuleOneOf, p)
			}
			if v == n {
				return nil
			}
		}
		return violated(constants.RuleOneOf, "must be one of: "+strings.Join(params, ", "))
	})
	return []Rule{positive, nonzero, oneof}
}

// ensureBuiltIns initializes built-in rules exactly once.
func ensureBuiltIns() {
	builtInsOnce.Do(func() {
		builtInMap = make(map[key]Rule)
		builtInNames = make(map[string]struct{})

		// min(length): requires one integer parameter; values below 1 are a no-op.
		minStr := MustRule[string](constants.RuleMin, func(s string, params ...string) error {
			if len(params) == 0 {
				return missingParam(constants.RuleMin)
			}
			v, err := strconv.ParseInt(strings.TrimSpace(params[0]), 10, 0)
			if err != nil {
				return invalidParam(constants.RuleMin, params[0])
			}
			if v < 1 {
				return nil
			}
			if int(v) > len(s) {
				return violated(constants.RuleMin, "length must be >= "+strconv.FormatInt(v, 10))
			}
			return nil
		})
		// email is deliberately simple; not RFC 5322 exhaustive.
		emailStr := MustRule[string](constants.RuleEmail, func(s string, _ ...string) error {
			if s == "" {
				return violated(constants.RuleEmail, "must be a valid email address")
			}
			if strings.Count(s, "@") != 1 {
				return violated(constants.RuleEmail, "must contain exactly one @")
			}
			local, domain, _ := strings.Cut(s, "@")
			if local == "" || domain == "" {
				return violated(constants.RuleEmail, "local and domain parts must be non-empty")
			}
			if strings.ContainsAny(s, " \t\n\r") {
				return violated(constants.RuleEmail, "must not contain whitespace")
			}
			if !strings.Contains(domain, ".") {
				return violated(constants.RuleEmail, "domain must contain a dot")
			}
			return nil
		})
		oneofStr := MustRule[string](constants.RuleOneOf, func(s string, params ...string) error {
			if len(params) == 0 {
				return missingParam(constants.RuleOneOf)
			}
			for _, p := range params {
				if s == p {
					return nil
				}
			}
			return violated(constants.RuleOneOf, "must be one of: "+strings.Join(params, ", "))
		})

		register := func(rs []Rule) {
			for _, r := range rs {
				builtInMap[key{r.Name(), r.ValueType()}] = r
				builtInNames[r.Name()] = struct{}{}
			}
		}
		register([]Rule{emailStr, minStr, oneofStr})
		register(numericRules[int]())
		register(numericRules[int64]())
		register(numericRules[float64]())
	})
}

// lookupBuiltin returns a built-in rule by (name, type) if present.
func lookupBuiltin(name string, t reflect.Type) (Rule, bool) {
	ensureBuiltIns()
	r, ok := builtInMap[key{name, t}]
	return r, ok
}

func isBuiltin(name string) bool {
	ensureBuiltIns()
	_, ok := builtInNames[name]
	return ok
}
