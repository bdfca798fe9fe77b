package vattr

import (
	"fmt"
	"strings"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
)

// Dump returns the physical columns of rec ready to be written: every
// serialized store column is encoded to a string with the class codec.
// Unset or nil store columns stay nil, and text already in serialized form
// is passed through.
func (c *Class) Dump(rec Record) (Row, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(Row)
	for _, col := range c.schema.Columns() {
		v, ok := rec.Value(col.Name)
		if !ok {
			continue
		}
		if _, serialized := c.serialized[col.Name]; !serialized || v == nil {
			out[col.Name] = v
			continue
		}
		text, err := c.encode(col.Name, v)
		if err != nil {
			return nil, err
		}
		out[col.Name] = text
	}
	return out, nil
}

// Load returns a copy of row, as read from the database, with every
// serialized store column decoded into a Store. nil, empty or blank store
// columns are left out so that accessors start from a fresh Store.
func (c *Class) Load(row Row) (Row, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(Row, len(row))
	for name, v := range row {
		if _, serialized := c.serialized[name]; !serialized {
			out[name] = v
			continue
		}
		s, err := c.decode(name, v)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out[name] = s
		}
	}
	return out, nil
}

func (c *Class) encode(column string, v any) (any, error) {
	var m map[string]any
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case Store:
		m = t
	case map[string]any:
		m = t
	default:
		return nil, errorc.With(
			errors.ErrStoreEncode,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldColumnName, column),
			errorc.String(errors.ErrorFieldCause, "unexpected value of type "+typeName(v)),
		)
	}
	data, err := c.codec.Marshal(m)
	if err != nil {
		return nil, errorc.With(
			errors.ErrStoreEncode,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldColumnName, column),
			errorc.String(errors.ErrorFieldCause, err.Error()),
		)
	}
	return string(data), nil
}

func (c *Class) decode(column string, v any) (Store, error) {
	var data []byte
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Store:
		return t, nil
	case map[string]any:
		return Store(t), nil
	case string:
		data = []byte(t)
	case []byte:
		data = t
	default:
		return nil, errorc.With(
			errors.ErrStoreDecode,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldColumnName, column),
			errorc.String(errors.ErrorFieldCause, "unexpected value of type "+typeName(v)),
		)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	m, err := c.codec.Unmarshal(data)
	if err != nil {
		return nil, errorc.With(
			errors.ErrStoreDecode,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldColumnName, column),
			errorc.String(errors.ErrorFieldCause, err.Error()),
		)
	}
	return Store(m), nil
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
