// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONDecoder turns a JSON response into Content. An array yields one Content
// per element in order, anything else yields exactly one.
type JSONDecoder struct{}

// NewJSONDecoder creates a new JSONDecoder.
func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

func (d *JSONDecoder) Name() string {
	return "json"
}

// CanHandle returns true when the whole raw response is a single valid JSON
// document.
func (d *JSONDecoder) CanHandle(source Source) bool {
	return json.Valid([]byte(source.Raw))
}

func (d *JSONDecoder) Decode(_ context.Context, source Source) ([]Content, error) {
	value, err := decodeJSON(source.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	elements, ok := value.(jsonArray)
	if !ok {
		content, err := elementContent(value)
		if err != nil {
			return nil, err
		}
		return []Content{content}, nil
	}

	contents := make([]Content, 0, len(elements))
	for i, element := range elements {
		tagged, err := classify(element)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		content, err := elementContent(tagged)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		contents = append(contents, content)
	}
	return contents, nil
}
