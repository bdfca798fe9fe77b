package vattr

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func boundClass(t *testing.T, opts ...Option) *Class {
	t.Helper()
	c := newTestClass(t, opts...)
	if err := c.Bind("properties", "color", "size"); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	return c
}

func TestAccessor_Get(t *testing.T) {
	t.Parallel()

	t.Run("fresh record reports no value", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		rec := Row{}
		v, ok := c.Get(rec, "color")
		if ok || v != nil {
			t.Fatalf("Get = (%v, %v), want (nil, false)", v, ok)
		}
		if got, want := rec["properties"], (Store{}); !reflect.DeepEqual(got, want) {
			t.Fatalf("store column = %#v, want an empty Store", got)
		}
	})

	t.Run("blank store column is materialized", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		for _, raw := range []any{nil, "", "  \n", []byte{}} {
			rec := Row{"properties": raw}
			if _, ok := c.Get(rec, "color"); ok {
				t.Fatalf("Get on %#v reported a value", raw)
			}
			if _, ok := rec["properties"].(Store); !ok {
				t.Fatalf("store column %#v was not materialized: %#v", raw, rec["properties"])
			}
		}
	})

	t.Run("explicit nil is distinguishable from unset", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		rec := Row{}
		_ = c.Set(rec, "color", nil)
		if v, ok := c.Get(rec, "color"); !ok || v != nil {
			t.Fatalf("Get = (%v, %v), want (nil, true)", v, ok)
		}
		if _, ok := c.Get(rec, "size"); ok {
			t.Fatalf("size was never set")
		}
	})

	t.Run("decodes serialized text", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		rec := Row{"properties": "color: red\nsize: 42\n"}
		if v, ok := c.Get(rec, "color"); !ok || v != "red" {
			t.Fatalf("Get(color) = (%v, %v)", v, ok)
		}
		if v, ok := c.Get(rec, "size"); !ok || v != 42 {
			t.Fatalf("Get(size) = (%v, %v)", v, ok)
		}
		if _, ok := rec["properties"].(Store); !ok {
			t.Fatalf("decoded store was not kept on the record: %#v", rec["properties"])
		}
	})

	t.Run("decodes bytes with the class codec", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t, WithCodecName("json"))
		rec := Row{"properties": []byte(`{"color":"blue"}`)}
		if v, ok := c.Get(rec, "color"); !ok || v != "blue" {
			t.Fatalf("Get(color) = (%v, %v)", v, ok)
		}
	})

	t.Run("plain map is adopted", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		rec := Row{"properties": map[string]any{"color": "green"}}
		if v, ok := c.Get(rec, "color"); !ok || v != "green" {
			t.Fatalf("Get(color) = (%v, %v)", v, ok)
		}
	})

	t.Run("unreadable store column is left alone", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		rec := Row{"properties": "- not\n- a mapping\n"}
		if v, ok := c.Get(rec, "color"); ok || v != nil {
			t.Fatalf("Get = (%v, %v), want (nil, false)", v, ok)
		}
		if rec["properties"] != "- not\n- a mapping\n" {
			t.Fatalf("Get modified an unreadable store column: %#v", rec["properties"])
		}

		rec = Row{"properties": 17}
		if _, ok := c.Get(rec, "color"); ok {
			t.Fatalf("Get on a non-text value reported a value")
		}
		if rec["properties"] != 17 {
			t.Fatalf("Get modified a non-text store column")
		}
	})
}

func TestAccessor_Set(t *testing.T) {
	t.Parallel()

	t.Run("round trip in memory", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		values := []any{"red", 7, 2.5, true, []any{"a", "b"}, map[string]any{"k": "v"}}
		for _, want := range values {
			rec := Row{}
			_ = c.Set(rec, "color", want)
			got, ok := c.Get(rec, "color")
			if !ok || !reflect.DeepEqual(got, want) {
				t.Fatalf("Get = (%v, %v), want %v", got, ok, want)
			}
		}
	})

	t.Run("attributes sharing a store are independent", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		rec := Row{}
		_ = c.Set(rec, "color", "red")
		_ = c.Set(rec, "size", "xl")
		if v, _ := c.Get(rec, "color"); v != "red" {
			t.Fatalf("color = %v after setting size", v)
		}
		_ = c.Set(rec, "size", "s")
		if v, _ := c.Get(rec, "color"); v != "red" {
			t.Fatalf("color = %v after overwriting size", v)
		}
		if got, want := rec["properties"], (Store{"color": "red", "size": "s"}); !reflect.DeepEqual(got, want) {
			t.Fatalf("store = %v, want %v", got, want)
		}
	})

	t.Run("records do not share stores", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		a, b := Row{}, Row{}
		_ = c.Set(a, "color", "red")
		if _, ok := c.Get(b, "color"); ok {
			t.Fatalf("value leaked between records")
		}
	})

	t.Run("updates decoded text in place", func(t *testing.T) {
		t.Parallel()

		c := boundClass(t)
		rec := Row{"properties": "color: red\n"}
		_ = c.Set(rec, "size", "m")
		if got, want := rec["properties"], (Store{"color": "red", "size": "m"}); !reflect.DeepEqual(got, want) {
			t.Fatalf("store = %v, want %v", got, want)
		}
	})

	t.Run("replaces an unreadable store and warns", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		c := boundClass(t, WithLogger(logger))
		rec := Row{"properties": "{not yaml"}
		_ = c.Set(rec, "color", "red")
		if got, want := rec["properties"], (Store{"color": "red"}); !reflect.DeepEqual(got, want) {
			t.Fatalf("store = %v, want %v", got, want)
		}
		if !strings.Contains(buf.String(), "replacing unreadable store column") {
			t.Fatalf("expected a warning, got %q", buf.String())
		}
	})
}
