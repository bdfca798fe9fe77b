package vattr

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	vattrerrors "github.com/ygrebnov/vattr/errors"
)

func TestClass_PersistVirtualAttributes_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		want     error
		category error
		context  map[string]string
	}{
		{
			name:     "missing store column",
			cfg:      Config{Attributes: []string{"color"}},
			want:     vattrerrors.ErrNoStoreColumn,
			category: vattrerrors.ErrConfiguration,
		},
		{
			name:     "no attributes",
			cfg:      Config{StoreColumn: "properties"},
			want:     vattrerrors.ErrNoAttributes,
			category: vattrerrors.ErrConfiguration,
		},
		{
			name:     "empty attribute name",
			cfg:      Config{StoreColumn: "properties", Attributes: []string{"color", ""}},
			want:     vattrerrors.ErrEmptyAttributeName,
			category: vattrerrors.ErrConfiguration,
		},
		{
			name:     "store column does not exist",
			cfg:      Config{StoreColumn: "extras", Attributes: []string{"color"}},
			want:     vattrerrors.ErrNoSuchColumn,
			category: vattrerrors.ErrSchema,
			context:  map[string]string{string(vattrerrors.ErrorFieldColumnName): "extras"},
		},
		{
			name:     "store column is not text",
			cfg:      Config{StoreColumn: "name", Attributes: []string{"color"}},
			want:     vattrerrors.ErrNotTextColumn,
			category: vattrerrors.ErrSchema,
			context: map[string]string{
				string(vattrerrors.ErrorFieldColumnName): "name",
				string(vattrerrors.ErrorFieldColumnType): "string",
			},
		},
		{
			name:     "attribute collides with a column",
			cfg:      Config{StoreColumn: "properties", Attributes: []string{"color", "price", "name"}},
			want:     vattrerrors.ErrColumnCollision,
			category: vattrerrors.ErrCollision,
			context:  map[string]string{string(vattrerrors.ErrorFieldAttributeNames): "price, name"},
		},
		{
			name:     "attribute repeated within the call",
			cfg:      Config{StoreColumn: "properties", Attributes: []string{"color", "size", "color"}},
			want:     vattrerrors.ErrAttributeCollision,
			category: vattrerrors.ErrCollision,
			context:  map[string]string{string(vattrerrors.ErrorFieldAttributeNames): "color"},
		},
		{
			name: "rules for an attribute outside the binding",
			cfg: Config{
				StoreColumn: "properties",
				Attributes:  []string{"color"},
				Rules:       map[string]string{"size": "oneof(s,m,l)"},
			},
			want:     vattrerrors.ErrRuleForUnknownAttribute,
			category: vattrerrors.ErrConfiguration,
			context:  map[string]string{string(vattrerrors.ErrorFieldAttributeName): "size"},
		},
		{
			name: "malformed rule list",
			cfg: Config{
				StoreColumn: "properties",
				Attributes:  []string{"color", "size"},
				Rules:       map[string]string{"color": "oneof(red,blue)", "size": "min(3"},
			},
			want:     vattrerrors.ErrMalformedRules,
			category: vattrerrors.ErrConfiguration,
			context: map[string]string{
				string(vattrerrors.ErrorFieldAttributeName): "size",
				string(vattrerrors.ErrorFieldRuleList):      "min(3",
			},
		},
		{
			name: "misspelled rule name",
			cfg: Config{
				StoreColumn: "properties",
				Attributes:  []string{"color", "size"},
				Rules:       map[string]string{"size": "mni(3)"},
			},
			want:     vattrerrors.ErrUnknownRule,
			category: vattrerrors.ErrConfiguration,
			context: map[string]string{
				string(vattrerrors.ErrorFieldAttributeName): "size",
				string(vattrerrors.ErrorFieldRuleName):      "mni",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClass(t)
			err := c.PersistVirtualAttributes(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, tt.category) {
				t.Fatalf("expected category %v, got %v", tt.category, err)
			}
			for k, v := range tt.context {
				if !strings.Contains(err.Error(), k+": "+v) {
					t.Fatalf("expected %q in error, got %v", k+": "+v, err)
				}
			}

			if len(c.CustomAttributes()) != 0 || len(c.CustomAttributeStores()) != 0 {
				t.Fatalf("failed bind must not register anything")
			}
			for _, name := range tt.cfg.Attributes {
				if _, ok := c.Attribute(name); ok {
					t.Fatalf("failed bind installed accessor %q", name)
				}
			}
			if c.IsSerialized("properties") {
				t.Fatalf("failed bind must not mark the store column serialized")
			}
		})
	}
}

func TestClass_PersistVirtualAttributes(t *testing.T) {
	t.Parallel()

	t.Run("In is an alias of StoreColumn", func(t *testing.T) {
		t.Parallel()

		c := newTestClass(t)
		if err := c.PersistVirtualAttributes(Config{In: "settings", Attributes: []string{"theme"}}); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		a, ok := c.Attribute("theme")
		if !ok || a.StoreColumn() != "settings" || a.Name() != "theme" {
			t.Fatalf("unexpected accessor %+v", a)
		}
	})

	t.Run("StoreColumn wins over In", func(t *testing.T) {
		t.Parallel()

		c := newTestClass(t)
		cfg := Config{StoreColumn: "properties", In: "settings", Attributes: []string{"color"}}
		if err := c.PersistVirtualAttributes(cfg); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		if got := c.CustomAttributeStores(); !reflect.DeepEqual(got, []string{"properties"}) {
			t.Fatalf("CustomAttributeStores() = %v", got)
		}
	})

	t.Run("by-store extends in declaration order", func(t *testing.T) {
		t.Parallel()

		c := newTestClass(t)
		if err := c.Bind("properties", "color", "size"); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		prev := c.CustomAttributesByStore()["properties"]
		attrs := []string{"weight", "material"}
		if err := c.Bind("properties", attrs...); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		want := append(prev, attrs...)
		if got := c.CustomAttributesByStore()["properties"]; !reflect.DeepEqual(got, want) {
			t.Fatalf("by-store = %v, want %v", got, want)
		}
		for _, name := range want {
			rec := Row{}
			if err := c.Set(rec, name, name+"-value"); err != nil {
				t.Fatalf("Set(%s) error: %v", name, err)
			}
			if v, ok := c.Get(rec, name); !ok || v != name+"-value" {
				t.Fatalf("Get(%s) = (%v, %v)", name, v, ok)
			}
		}
	})

	t.Run("config attributes are copied", func(t *testing.T) {
		t.Parallel()

		c := newTestClass(t)
		attrs := []string{"color"}
		if err := c.Bind("properties", attrs...); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		attrs[0] = "mutated"
		if got := c.CustomAttributes(); !reflect.DeepEqual(got, []string{"color"}) {
			t.Fatalf("CustomAttributes() = %v", got)
		}
	})

	t.Run("second overlapping bind fails and keeps the first", func(t *testing.T) {
		t.Parallel()

		c := newTestClass(t)
		if err := c.Bind("properties", "color", "size"); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		err := c.Bind("settings", "theme", "size")
		if !errors.Is(err, vattrerrors.ErrAttributeCollision) || !errors.Is(err, vattrerrors.ErrCollision) {
			t.Fatalf("expected ErrAttributeCollision, got %v", err)
		}
		if !strings.Contains(err.Error(), string(vattrerrors.ErrorFieldAttributeNames)+": size") {
			t.Fatalf("expected offending name in error, got %v", err)
		}
		if _, ok := c.Attribute("theme"); ok {
			t.Fatalf("failed bind installed theme")
		}
		if c.IsSerialized("settings") {
			t.Fatalf("failed bind marked settings serialized")
		}
		if got := c.CustomAttributeStores(); !reflect.DeepEqual(got, []string{"properties"}) {
			t.Fatalf("CustomAttributeStores() = %v", got)
		}

		rec := Row{}
		if err := c.Set(rec, "size", "m"); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		if v, ok := c.Get(rec, "size"); !ok || v != "m" {
			t.Fatalf("first binding broken: Get = (%v, %v)", v, ok)
		}
		if a, _ := c.Attribute("size"); a.StoreColumn() != "properties" {
			t.Fatalf("size moved to %s", a.StoreColumn())
		}
	})

	t.Run("two stores stay independent", func(t *testing.T) {
		t.Parallel()

		c := newTestClass(t)
		if err := c.Bind("properties", "color"); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		if err := c.Bind("settings", "theme"); err != nil {
			t.Fatalf("bind error: %v", err)
		}
		stores := c.CustomAttributeStores()
		if !reflect.DeepEqual(stores, []string{"properties", "settings"}) {
			t.Fatalf("CustomAttributeStores() = %v", stores)
		}

		rec := Row{}
		_ = c.Set(rec, "color", "red")
		_ = c.Set(rec, "theme", "dark")

		if got, want := rec["properties"], (Store{"color": "red"}); !reflect.DeepEqual(got, want) {
			t.Fatalf("properties = %v, want %v", got, want)
		}
		if got, want := rec["settings"], (Store{"theme": "dark"}); !reflect.DeepEqual(got, want) {
			t.Fatalf("settings = %v, want %v", got, want)
		}
		if v, _ := c.Get(rec, "color"); v != "red" {
			t.Fatalf("color = %v", v)
		}
		if v, _ := c.Get(rec, "theme"); v != "dark" {
			t.Fatalf("theme = %v", v)
		}
	})

	t.Run("rules are recorded", func(t *testing.T) {
		t.Parallel()

		c := newTestClass(t)
		err := c.PersistVirtualAttributes(Config{
			StoreColumn: "properties",
			Attributes:  []string{"color", "size"},
			Rules:       map[string]string{"size": "oneof(s,m,l)", "color": ""},
		})
		if err != nil {
			t.Fatalf("bind error: %v", err)
		}
		if _, ok := c.rules["color"]; ok {
			t.Fatalf("empty rule tag must not be recorded")
		}
		want := []struct {
			Name   string
			Params []string
		}{{"oneof", []string{"s", "m", "l"}}}
		got := c.rules["size"]
		if len(got) != 1 || got[0].Name != want[0].Name || !reflect.DeepEqual(got[0].Params, want[0].Params) {
			t.Fatalf("rules[size] = %+v", got)
		}
	})
}
