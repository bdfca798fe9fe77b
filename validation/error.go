package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// FieldError is a single validation failure of one virtual attribute.
// It unwraps to the underlying cause so callers can use errors.Is/As.
type FieldError struct {
	Attribute string   // virtual attribute name
	Rule      string   // rule name that failed
	Params    []string // rule parameters
	Err       error    // underlying error from the rule
}

func (e FieldError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: %v (rule %s)", e.Attribute, e.Err, e.Rule)
	}
	return fmt.Sprintf("%s: %v", e.Attribute, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }

// MarshalJSON exports FieldError as an object with attribute, rule, and message fields.
func (e FieldError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Attribute string   `json:"attribute"`
		Rule      string   `json:"rule"`
		Params    []string `json:"params,omitempty"`
		Message   string   `json:"message"`
	}{
		Attribute: e.Attribute,
		Rule:      e.Rule,
		Params:    e.Params,
		Message:   msg,
	})
}

// Error accumulates FieldError entries.
// It unwraps to errors.Join of the underlying causes.
type Error struct {
	mu     sync.Mutex
	issues []FieldError
}

// Add appends a FieldError.
func (ve *Error) Add(fe FieldError) {
	if ve == nil {
		return
	}
	ve.mu.Lock()
	ve.issues = append(ve.issues, fe)
	ve.mu.Unlock()
}

// Addf is a convenience to add from parts.
func (ve *Error) Addf(attribute, rule string, err error) {
	ve.Add(FieldError{Attribute: attribute, Rule: rule, Err: err})
}

// Len returns the number of accumulated issues.
func (ve *Error) Len() int {
	if ve == nil {
		return 0
	}
	ve.mu.Lock()
	n := len(ve.issues)
	ve.mu.Unlock()
	return n
}

// Empty reports whether there are no issues.
func (ve *Error) Empty() bool { return ve.Len() == 0 }

// Error returns a human-readable, multi-line description of all issues.
func (ve *Error) Error() string {
	if ve == nil {
		return ""
	}
	ve.mu.Lock()
	defer ve.mu.Unlock()
	switch len(ve.issues) {
	case 0:
		return ""
	case 1:
		return ve.issues[0].Error()
	default:
		var b strings.Builder
		b.WriteString("validation failed (\n")
		for i, fe := range ve.issues {
			b.WriteString("  ")
			b.WriteString(fe.Error())
			if i < len(ve.issues)-1 {
				b.WriteString("\n")
			}
		}
		b.WriteString("\n)")
		return b.String()
	}
}

// Unwrap joins underlying causes so errors.Is/As keep working on the combined error.
func (ve *Error) Unwrap() error {
	if ve == nil {
		return nil
	}
	ve.mu.Lock()
	defer ve.mu.Unlock()
	errs := make([]error, 0, len(ve.issues))
	for _, fe := range ve.issues {
		if fe.Err != nil {
			errs = append(errs, fe.Err)
		}
	}
	return errors.Join(errs...)
}

// ForAttribute returns all issues of one attribute.
func (ve *Error) ForAttribute(name string) []FieldError {
	if ve == nil {
		return nil
	}
	ve.mu.Lock()
	defer ve.mu.Unlock()
	var out []FieldError
	for _, fe := range ve.issues {
		if fe.Attribute == name {
			out = append(out, fe)
		}
	}
	return out
}

// ByAttribute groups issues by attribute name.
func (ve *Error) ByAttribute() map[string][]FieldError {
	m := make(map[string][]FieldError)
	if ve == nil {
		return m
	}
	ve.mu.Lock()
	defer ve.mu.Unlock()
	for _, fe := range ve.issues {
		m[fe.Attribute] = append(m[fe.Attribute], fe)
	}
	return m
}

// Attributes returns the attributes that have issues, in order of first occurrence.
func (ve *Error) Attributes() []string {
	if ve == nil {
		return nil
	}
	ve.mu.Lock()
	defer ve.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, fe := range ve.issues {
		if _, ok := seen[fe.Attribute]; !ok {
			seen[fe.Attribute] = struct{}{}
			out = append(out, fe.Attribute)
		}
	}
	return out
}

// MarshalJSON exports Error as a map of attribute -> list of error messages.
func (ve *Error) MarshalJSON() ([]byte, error) {
	if ve == nil {
		return []byte("null"), nil
	}
	ve.mu.Lock()
	defer ve.mu.Unlock()
	by := make(map[string][]string, len(ve.issues))
	for _, fe := range ve.issues {
		msg := ""
		if fe.Err != nil {
			msg = fe.Err.Error()
		}
		by[fe.Attribute] = append(by[fe.Attribute], msg)
	}
	return json.Marshal(by)
}
