// Package codec serializes the mapping held by a store column.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/vattr/errors"
)

// Codec converts a store mapping to and from the text kept in the database.
type Codec interface {
	Name() string
	Marshal(m map[string]any) ([]byte, error)
	Unmarshal(data []byte) (map[string]any, error)
}

const (
	NameYAML = "yaml"
	NameJSON = "json"
)

// YAML is the default store codec.
var YAML Codec = yamlCodec{}

// JSON stores the mapping as a JSON object.
var JSON Codec = jsonCodec{}

// ByName returns a built-in codec.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameYAML, "yml":
		return YAML, nil
	case NameJSON:
		return JSON, nil
	}
	return nil, errorc.With(errors.ErrUnknownCodec, errorc.String(errors.ErrorFieldCodecName, name))
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return NameYAML }

func (yamlCodec) Marshal(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return yaml.Marshal(m)
}

func (yamlCodec) Unmarshal(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse yaml store: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	normalize(m)
	return m, nil
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return NameJSON }

func (jsonCodec) Marshal(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func (jsonCodec) Unmarshal(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse json store: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// normalize replaces the map[interface{}]interface{} values some YAML
// documents decode into with map[string]any, recursively.
func normalize(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		normalize(t)
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, iv := range t {
			out[fmt.Sprint(k)] = normalizeValue(iv)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	}
	return v
}
