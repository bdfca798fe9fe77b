package vattr

import (
	"log/slog"
	"strings"
)

// Accessor reads and writes one virtual attribute. It is bound to the
// attribute name and its store column when the attribute is declared.
type Accessor struct {
	class *Class
	store string
	name  string
}

// Name returns the virtual attribute name.
func (a *Accessor) Name() string { return a.name }

// StoreColumn returns the column the attribute is stored in.
func (a *Accessor) StoreColumn() string { return a.store }

// Get returns the attribute value held by rec. An unset or blank store
// column is first replaced with an empty Store. ok is false when the
// attribute was never set; a value explicitly set to nil yields (nil, true).
func (a *Accessor) Get(rec Record) (any, bool) {
	s, ok := a.storeOf(rec)
	if !ok {
		return nil, false
	}
	v, ok := s[a.name]
	return v, ok
}

// Set writes the attribute into the Store held by rec, creating the Store if
// needed. Nothing is persisted until the record is saved.
func (a *Accessor) Set(rec Record, value any) {
	s, ok := a.storeOf(rec)
	if !ok {
		raw, _ := rec.Value(a.store)
		a.class.logger.Warn("replacing unreadable store column",
			slog.String("class", a.class.name),
			slog.String("store", a.store),
			slog.String("attribute", a.name),
			slog.String("type", typeName(raw)),
		)
		s = Store{}
		rec.SetValue(a.store, s)
	}
	s[a.name] = value
}

// storeOf returns the Store held in the store column of rec, installing an
// empty one when the column is unset or blank and decoding serialized text
// in place. ok is false when the column holds something that cannot be read
// as a mapping; rec is left untouched in that case.
func (a *Accessor) storeOf(rec Record) (Store, bool) {
	raw, _ := rec.Value(a.store)
	s, blank, ok := a.read(raw)
	if !ok {
		return nil, false
	}
	if blank {
		s = Store{}
	}
	if blank || !isStore(raw) {
		rec.SetValue(a.store, s)
	}
	return s, true
}

// peek reads the attribute without modifying rec.
func (a *Accessor) peek(rec Record) (any, bool) {
	raw, _ := rec.Value(a.store)
	s, _, ok := a.read(raw)
	if !ok || s == nil {
		return nil, false
	}
	v, ok := s[a.name]
	return v, ok
}

// read interprets a raw store column value. blank reports an unset column.
func (a *Accessor) read(raw any) (s Store, blank, ok bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true, true
	case Store:
		return v, v == nil, true
	case map[string]any:
		return Store(v), v == nil, true
	case string:
		return a.decode([]byte(v))
	case []byte:
		return a.decode(v)
	}
	return nil, false, false
}

func (a *Accessor) decode(data []byte) (Store, bool, bool) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, true, true
	}
	m, err := a.class.codec.Unmarshal(data)
	if err != nil {
		return nil, false, false
	}
	return Store(m), false, true
}

func isStore(v any) bool {
	s, ok := v.(Store)
	return ok && s != nil
}
