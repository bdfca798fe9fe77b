package vattr

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
	"github.com/ygrebnov/vattr/schema"
	"github.com/ygrebnov/vattr/validation"
)

// Config declares one set of virtual attributes.
type Config struct {
	// StoreColumn is the text column the attributes are serialized into.
	StoreColumn string
	// In is an alias of StoreColumn; StoreColumn wins when both are set.
	In string
	// Attributes are the virtual attribute names, in declaration order.
	Attributes []string
	// Rules optionally maps an attribute to a rule list, e.g. "min(1),oneof(s,m,l)".
	Rules map[string]string
}

func (cfg Config) storeColumn() string {
	if cfg.StoreColumn != "" {
		return cfg.StoreColumn
	}
	return cfg.In
}

// Bind is shorthand for PersistVirtualAttributes(Config{StoreColumn: store, Attributes: attributes}).
func (c *Class) Bind(store string, attributes ...string) error {
	return c.PersistVirtualAttributes(Config{StoreColumn: store, Attributes: attributes})
}

// PersistVirtualAttributes binds cfg.Attributes to the store column and
// installs their accessors. Either every effect is applied or none is: a
// failing call leaves the class exactly as it was.
//
// Checks run in order: configuration (ErrNoStoreColumn, ErrNoAttributes,
// ErrEmptyAttributeName), schema (ErrNoSuchColumn, ErrNotTextColumn) and
// collisions (ErrColumnCollision, ErrAttributeCollision), then the rule lists
// (ErrRuleForUnknownAttribute, ErrMalformedRules, ErrUnknownRule).
func (c *Class) PersistVirtualAttributes(cfg Config) error {
	store := cfg.storeColumn()
	if store == "" {
		return errorc.With(errors.ErrNoStoreColumn, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	if len(cfg.Attributes) == 0 {
		return errorc.With(
			errors.ErrNoAttributes,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldColumnName, store),
		)
	}
	for _, name := range cfg.Attributes {
		if name == "" {
			return errorc.With(
				errors.ErrEmptyAttributeName,
				errorc.String(errors.ErrorFieldClassName, c.name),
				errorc.String(errors.ErrorFieldColumnName, store),
			)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	columns := c.schema.Columns()
	col, ok := schema.Lookup(columns, store)
	if !ok {
		return errorc.With(
			errors.ErrNoSuchColumn,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldColumnName, store),
		)
	}
	if !col.IsText() {
		return errorc.With(
			errors.ErrNotTextColumn,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldColumnName, store),
			errorc.String(errors.ErrorFieldColumnType, string(col.Type)),
		)
	}

	if clashes := columnClashes(cfg.Attributes, columns); len(clashes) > 0 {
		return errorc.With(
			errors.ErrColumnCollision,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldAttributeNames, strings.Join(clashes, ", ")),
		)
	}
	if clashes := c.declaredClashes(cfg.Attributes); len(clashes) > 0 {
		return errorc.With(
			errors.ErrAttributeCollision,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldAttributeNames, strings.Join(clashes, ", ")),
		)
	}

	rules, err := c.parseRules(cfg)
	if err != nil {
		return err
	}

	attributes := slices.Clone(cfg.Attributes)
	c.serialize(store)
	c.bindings = append(c.bindings, Binding{StoreColumn: store, Attributes: attributes})
	c.stores = append(c.stores, store)
	c.byStore[store] = append(c.byStore[store], attributes...)
	c.attributes = append(c.attributes, attributes...)
	for _, name := range attributes {
		c.accessors[name] = &Accessor{class: c, store: store, name: name}
	}
	for name, rs := range rules {
		c.rules[name] = rs
	}

	c.logger.Debug("virtual attributes bound",
		slog.String("class", c.name),
		slog.String("store", store),
		slog.Any("attributes", attributes),
	)
	return nil
}

// columnClashes returns the names that are also physical columns, in order.
func columnClashes(names []string, columns []schema.Column) []string {
	physical := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		physical[col.Name] = struct{}{}
	}
	var out []string
	for _, name := range names {
		if _, ok := physical[name]; ok && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// declaredClashes returns the names already registered on the class or
// repeated within names, in order. Must be called with c.mu held.
func (c *Class) declaredClashes(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, name := range names {
		_, declared := c.accessors[name]
		_, repeated := seen[name]
		if (declared || repeated) && !slices.Contains(out, name) {
			out = append(out, name)
		}
		seen[name] = struct{}{}
	}
	return out
}

// parseRules checks that every rule list belongs to an attribute of cfg,
// parses and names only known rules. Must be called with c.mu held.
func (c *Class) parseRules(cfg Config) (map[string][]validation.RuleCall, error) {
	if len(cfg.Rules) == 0 {
		return nil, nil
	}
	keys := slices.Sorted(maps.Keys(cfg.Rules))
	for _, name := range keys {
		if !slices.Contains(cfg.Attributes, name) {
			return nil, errorc.With(
				errors.ErrRuleForUnknownAttribute,
				errorc.String(errors.ErrorFieldClassName, c.name),
				errorc.String(errors.ErrorFieldAttributeName, name),
			)
		}
	}

	out := make(map[string][]validation.RuleCall, len(cfg.Rules))
	for _, name := range cfg.Attributes {
		list, ok := cfg.Rules[name]
		if !ok {
			continue
		}
		calls, err := validation.ParseRules(list)
		if err != nil {
			return nil, errorc.With(err,
				errorc.String(errors.ErrorFieldClassName, c.name),
				errorc.String(errors.ErrorFieldAttributeName, name),
			)
		}
		for _, call := range calls {
			if !c.rulesRegistry.Known(call.Name) {
				return nil, errorc.With(
					errors.ErrUnknownRule,
					errorc.String(errors.ErrorFieldClassName, c.name),
					errorc.String(errors.ErrorFieldAttributeName, name),
					errorc.String(errors.ErrorFieldRuleName, call.Name),
				)
			}
		}
		if len(calls) > 0 {
			out[name] = calls
		}
	}
	return out, nil
}
