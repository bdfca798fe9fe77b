package vattr

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/ygrebnov/vattr/validation"
)

// Validate applies the rules declared with each binding to the virtual
// attributes of rec. Unset and nil attributes are skipped. Failures are
// accumulated into a *validation.Error; rec is not modified.
func (c *Class) Validate(ctx context.Context, rec Record) error {
	type check struct {
		acc   *Accessor
		rules []validation.RuleCall
	}

	c.mu.RLock()
	checks := make([]check, 0, len(c.rules))
	for _, name := range c.attributes {
		if rules, ok := c.rules[name]; ok {
			checks = append(checks, check{acc: c.accessors[name], rules: rules})
		}
	}
	c.mu.RUnlock()

	ve := &validation.Error{}
	for _, ch := range checks {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, ok := ch.acc.peek(rec)
		if !ok || v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		for _, rp := range ch.rules {
			r, err := c.rulesRegistry.Get(rp.Name, rv)
			if err == nil {
				err = r.Check(ch.acc.name, rv, rp.Params...)
			}
			if err != nil {
				ve.Add(validation.FieldError{Attribute: ch.acc.name, Rule: rp.Name, Params: rp.Params, Err: err})
			}
		}
	}

	if ve.Empty() {
		return nil
	}
	c.logger.Debug("virtual attributes failed validation",
		slog.String("class", c.name),
		slog.Int("issues", ve.Len()),
	)
	return ve
}
