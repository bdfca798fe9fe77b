package validation

import (
	"strings"
	"unicode"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
)

// RuleCall is one entry of a rule list: a rule name and its parameters.
type RuleCall struct {
	Name   string
	Params []string
}

// ParseRules parses a rule list such as "min(3),oneof(s,m,l)". Entries are
// separated by commas outside parentheses and blank entries are skipped; an
// empty list or "-" yields no rules. Parameters are plain comma separated
// words: nesting, quoting and text after the closing parenthesis are
// rejected with errors.ErrMalformedRules.
func ParseRules(list string) ([]RuleCall, error) {
	list = strings.TrimSpace(list)
	if list == "" || list == "-" {
		return nil, nil
	}

	var (
		calls []RuleCall
		open  bool
		start int
	)
	flush := func(entry string) error {
		call, ok, err := parseCall(list, entry)
		if ok {
			calls = append(calls, call)
		}
		return err
	}
	for i, r := range list {
		switch r {
		case '(':
			if open {
				return nil, malformed(list, "nested parentheses")
			}
			open = true
		case ')':
			if !open {
				return nil, malformed(list, "unbalanced parentheses")
			}
			open = false
		case ',':
			if open {
				continue
			}
			if err := flush(list[start:i]); err != nil {
				return nil, err
			}
			start = i + 1
		}
	}
	if open {
		return nil, malformed(list, "unbalanced parentheses")
	}
	if err := flush(list[start:]); err != nil {
		return nil, err
	}
	return calls, nil
}

func parseCall(list, entry string) (RuleCall, bool, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return RuleCall{}, false, nil
	}
	name, args, hasArgs := strings.Cut(entry, "(")
	name = strings.TrimSpace(name)
	if !isRuleName(name) {
		return RuleCall{}, false, malformed(list, "invalid rule name "+quote(name))
	}
	call := RuleCall{Name: name}
	if !hasArgs {
		return call, true, nil
	}
	args, closed := strings.CutSuffix(args, ")")
	if !closed || strings.ContainsAny(args, "()") {
		return RuleCall{}, false, malformed(list, "unexpected text after "+name+"(...)")
	}
	for _, p := range strings.Split(args, ",") {
		if p = strings.TrimSpace(p); p != "" {
			call.Params = append(call.Params, p)
		}
	}
	return call, true, nil
}

func isRuleName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func quote(s string) string { return `"` + s + `"` }

func malformed(list, reason string) error {
	return errorc.With(
		errors.ErrMalformedRules,
		errorc.String(errors.ErrorFieldRuleList, list),
		errorc.String(errors.ErrorFieldCause, reason),
	)
}
