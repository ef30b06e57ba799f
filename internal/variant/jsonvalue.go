// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// jsonValue is the tagged form of a decoded JSON document.
type jsonValue interface {
	jsonValue()
}

type (
	jsonNull   struct{}
	jsonString string
	jsonNumber json.Number
	jsonBool   bool
	jsonObject map[string]any
	jsonArray  []any
)

func (jsonNull) jsonValue()   {}
func (jsonString) jsonValue() {}
func (jsonNumber) jsonValue() {}
func (jsonBool) jsonValue()   {}
func (jsonObject) jsonValue() {}
func (jsonArray) jsonValue()  {}

// decodeJSON parses raw as a single JSON document. Trailing data after the
// document is rejected.
func decodeJSON(raw string) (jsonValue, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return classify(v)
}

func classify(v any) (jsonValue, error) {
	switch t := v.(type) {
	case nil:
		return jsonNull{}, nil
	case string:
		return jsonString(t), nil
	case json.Number:
		return jsonNumber(t), nil
	case bool:
		return jsonBool(t), nil
	case map[string]any:
		return jsonObject(t), nil
	case []any:
		return jsonArray(t), nil
	default:
		return nil, fmt.Errorf("unexpected JSON value of type %T", v)
	}
}

// elementContent maps a single JSON value to Content. Objects stay structured,
// strings are cleaned and every other value becomes its textual form.
func elementContent(v jsonValue) (Content, error) {
	switch t := v.(type) {
	case jsonObject:
		return Object(t), nil
	case jsonString:
		return Text(CleanText(string(t))), nil
	case jsonNull:
		return Text("null"), nil
	case jsonNumber:
		return Text(string(t)), nil
	case jsonBool:
		return Text(strconv.FormatBool(bool(t))), nil
	case jsonArray:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode([]any(t)); err != nil {
			return nil, fmt.Errorf("failed to encode nested array: %w", err)
		}
		return Text(bytes.TrimSpace(buf.Bytes())), nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %T", v)
	}
}
