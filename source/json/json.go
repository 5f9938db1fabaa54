// Package jsonsource loads JSON menu descriptors into the normalized
// string-keyed tree the compiler consumes.
package jsonsource

import (
	"errors"

	j "github.com/goccy/go-json"
)

// Load decodes a JSON descriptor. The root must be an object.
func Load(data []byte) (map[string]any, error) {
	var node any
	if err := j.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	m, ok := node.(map[string]any)
	if !ok {
		return nil, errors.New("jsonsource: descriptor root must be an object")
	}
	return m, nil
}
