package schemabind

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Kind classifies a Document Value node.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "invalid"
}

// KindOf reports the Document Value kind of v. Values outside the document
// model report KindInvalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	}
	return KindInvalid
}

// CloneDocument deep-copies the container structure of a Document Value.
// Scalars are immutable and shared.
func CloneDocument(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, c := range n {
			out[k] = CloneDocument(c)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, c := range n {
			out[i] = CloneDocument(c)
		}
		return out
	}
	return v
}

// NormalizeDocument converts values produced by other decoders (YAML, Go
// literals) into the canonical document model: map[any]any and typed maps
// become map[string]any, typed slices become []any and Go integers and floats
// become json.Number.
func NormalizeDocument(v any) (any, error) {
	switch n := v.(type) {
	case nil, bool, string, json.Number:
		return n, nil
	case int:
		return json.Number(strconv.Itoa(n)), nil
	case int64:
		return json.Number(strconv.FormatInt(n, 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(n), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(n, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(n), 10)), nil
	case float32:
		return floatNumber(float64(n))
	case float64:
		return floatNumber(n)
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, c := range n {
			nc, err := NormalizeDocument(c)
			if err != nil {
				return nil, err
			}
			out[k] = nc
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, c := range n {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string object key %v", k)
			}
			nc, err := NormalizeDocument(c)
			if err != nil {
				return nil, err
			}
			out[ks] = nc
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, c := range n {
			nc, err := NormalizeDocument(c)
			if err != nil {
				return nil, err
			}
			out[i] = nc
		}
		return out, nil
	case []string:
		out := make([]any, len(n))
		for i, s := range n {
			out[i] = s
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(n))
		for i, m := range n {
			nc, err := NormalizeDocument(m)
			if err != nil {
				return nil, err
			}
			out[i] = nc
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported document value of type %T", v)
}

func floatNumber(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("number %v has no JSON representation", f)
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// MarshalDocument serializes a Document Value to JSON. Object keys are
// emitted in sorted order.
func MarshalDocument(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

// MarshalDocumentIndent is MarshalDocument with indentation.
func MarshalDocumentIndent(v any, prefix, indent string) ([]byte, error) {
	b, err := MarshalDocument(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gojson.Indent(&buf, b, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeYAML reads one YAML document and normalizes it into a Document Value.
func DecodeYAML(r io.Reader) (any, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, Issues{{Code: CodeParseError, Message: err.Error(), Cause: err, Offset: -1}}
	}
	v, err := NormalizeDocument(raw)
	if err != nil {
		return nil, Issues{{Code: CodeParseError, Message: err.Error(), Cause: err, Offset: -1}}
	}
	return v, nil
}

// SortedKeys returns the keys of an object node in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
