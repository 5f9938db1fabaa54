// Package yamlsource loads YAML menu descriptors (*.tcmdesc.yaml) into the
// normalized string-keyed tree the compiler consumes.
package yamlsource

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Load decodes a single-document YAML descriptor. The root must be a mapping.
func Load(data []byte) (map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, err
	}
	m := anyToStringMap(node)
	if m == nil {
		return nil, errors.New("yamlsource: descriptor root must be a mapping")
	}
	return m, nil
}

// anyToStringMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-map roots return nil.
func anyToStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return anyToStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
