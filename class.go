package vattr

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/codec"
	"github.com/ygrebnov/vattr/errors"
	"github.com/ygrebnov/vattr/schema"
	"github.com/ygrebnov/vattr/validation"
)

// Class is the per-model configuration object: it owns the model's schema,
// the codec used for store columns and every virtual attribute binding
// declared so far. The registry only grows.
type Class struct {
	mu            sync.RWMutex
	name          string
	schema        schema.Schema
	codec         codec.Codec
	logger        *slog.Logger
	rulesRegistry validation.RulesRegistry

	bindings   []Binding
	stores     []string
	attributes []string
	byStore    map[string][]string
	serialized map[string]struct{}
	accessors  map[string]*Accessor
	rules      map[string][]validation.RuleCall
}

// Binding is the association of a store column with the virtual attributes
// multiplexed into it, as declared by one PersistVirtualAttributes call.
type Binding struct {
	StoreColumn string
	Attributes  []string
}

// NewClass creates a class for a model whose columns are described by s.
func NewClass(name string, s schema.Schema, opts ...Option) (*Class, error) {
	if s == nil {
		return nil, errorc.With(errors.ErrNilSchema, errorc.String(errors.ErrorFieldClassName, name))
	}

	c := &Class{
		name:          name,
		schema:        s,
		codec:         codec.YAML,
		logger:        slog.Default(),
		rulesRegistry: validation.NewRulesRegistry(),
		byStore:       make(map[string][]string),
		serialized:    make(map[string]struct{}),
		accessors:     make(map[string]*Accessor),
		rules:         make(map[string][]validation.RuleCall),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Codec returns the codec used for store columns.
func (c *Class) Codec() codec.Codec { return c.codec }

// Columns returns the physical columns of the class.
func (c *Class) Columns() []schema.Column { return c.schema.Columns() }

// CustomAttributes returns every virtual attribute declared on the class, in
// declaration order.
func (c *Class) CustomAttributes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.attributes)
}

// CustomAttributeStores returns the store column of every binding, in
// declaration order. A column bound twice appears twice.
func (c *Class) CustomAttributeStores() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.stores)
}

// CustomAttributesByStore maps each store column to the attributes bound to it.
func (c *Class) CustomAttributesByStore() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.byStore))
	for store, names := range c.byStore {
		out[store] = slices.Clone(names)
	}
	return out
}

// Bindings returns the bindings declared on the class.
func (c *Class) Bindings() []Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Binding, len(c.bindings))
	for i, b := range c.bindings {
		out[i] = Binding{StoreColumn: b.StoreColumn, Attributes: slices.Clone(b.Attributes)}
	}
	return out
}

// IsSerialized reports whether column holds a serialized store.
func (c *Class) IsSerialized(column string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.serialized[column]
	return ok
}

// serialize marks column as holding a codec-serialized mapping. It is
// idempotent. Must be called with c.mu held.
func (c *Class) serialize(column string) {
	if _, ok := c.serialized[column]; ok {
		return
	}
	c.serialized[column] = struct{}{}
}

// Attribute returns the accessor of a declared virtual attribute.
func (c *Class) Attribute(name string) (*Accessor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accessors[name]
	return a, ok
}

// Get reads a virtual attribute of rec. ok is false when the attribute is
// not declared or was never set on rec.
func (c *Class) Get(rec Record, name string) (any, bool) {
	a, ok := c.Attribute(name)
	if !ok {
		return nil, false
	}
	return a.Get(rec)
}

// Set writes a virtual attribute of rec. It fails only for undeclared names.
func (c *Class) Set(rec Record, name string, value any) error {
	a, ok := c.Attribute(name)
	if !ok {
		return c.unknownAttribute(name)
	}
	a.Set(rec, value)
	return nil
}

func (c *Class) unknownAttribute(name string) error {
	return errorc.With(
		errors.ErrUnknownAttribute,
		errorc.String(errors.ErrorFieldClassName, c.name),
		errorc.String(errors.ErrorFieldAttributeName, name),
	)
}
