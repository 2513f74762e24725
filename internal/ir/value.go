package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface for the JSON value model used by canonical
// encoding. Only StringValue, IntValue, BoolValue, ArrayValue and
// ObjectValue implement it. There is no float and no null.
type Value interface {
	value()
}

// StringValue is a JSON string.
type StringValue string

// IntValue is a JSON integer. Always int64.
type IntValue int64

// BoolValue is a JSON boolean.
type BoolValue bool

// ArrayValue is a JSON array.
type ArrayValue []Value

// ObjectValue is a JSON object. Use SortedKeys for deterministic iteration.
type ObjectValue map[string]Value

func (StringValue) value() {}
func (IntValue) value()    {}
func (BoolValue) value()   {}
func (ArrayValue) value()  {}
func (ObjectValue) value() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which orders differently.
func (obj ObjectValue) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// UnmarshalValue decodes JSON into the value model. Null and non-integer
// numbers are rejected so anything it returns can be re-encoded with
// MarshalCanonical.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return fromJSON(raw)
}

func fromJSON(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in the value model")
	case bool:
		return BoolValue(val), nil
	case string:
		return StringValue(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are forbidden in the value model: %s", s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return IntValue(n), nil
	case []any:
		arr := make(ArrayValue, len(val))
		for i, elem := range val {
			e, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(ObjectValue, len(val))
		for k, elem := range val {
			e, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unexpected JSON type %T", v)
	}
}
