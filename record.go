package vattr

// Record is one model instance as seen by a class: its column values keyed
// by column name. Implementations are not expected to be safe for
// concurrent use.
type Record interface {
	Value(column string) (any, bool)
	SetValue(column string, value any)
}

// Row is a map-backed Record. The zero value is not usable; use Row{} or
// make(Row).
type Row map[string]any

func (r Row) Value(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

func (r Row) SetValue(column string, value any) {
	r[column] = value
}

// Store is the mapping kept in a store column: virtual attribute name to value.
type Store map[string]any
