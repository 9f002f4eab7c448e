package bind

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/codec"
	"github.com/reoring/schemabind/schema"
)

// Scalar is the set of Go types scalar accessors can produce.
type Scalar interface {
	string | bool | int64 | float64 | json.Number | time.Time
}

var errMistyped = errors.New("mistyped")

// Required reads a required scalar. Absent or null values yield a required
// issue; values of the wrong kind yield invalid_type (invalid_format for
// unparsable temporal strings).
func Required[T Scalar](v View, name string) (T, error) {
	var zero T
	s, err := v.lookup(name)
	if err != nil {
		return zero, err
	}
	raw, ok := v.raw(s)
	if !ok {
		return zero, v.missing(s)
	}
	out, err := convert[T](raw, s.scalar())
	if err != nil {
		return zero, v.convertIssue(s, raw, err, zero)
	}
	return out, nil
}

// Optional reads an optional scalar. ok is false when the value is absent,
// null, or not convertible to T.
func Optional[T Scalar](v View, name string) (T, bool) {
	var zero T
	s, err := v.lookup(name)
	if err != nil {
		return zero, false
	}
	raw, ok := v.raw(s)
	if !ok {
		return zero, false
	}
	out, err := convert[T](raw, s.scalar())
	if err != nil {
		return zero, false
	}
	return out, true
}

// Repeated reads a repeated scalar in array order. Elements that are not
// convertible to T are skipped; a non-array value reads as empty.
func Repeated[T Scalar](v View, name string) []T {
	s, err := v.lookup(name)
	if err != nil {
		return nil
	}
	raw, ok := v.raw(s)
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]T, 0, len(arr))
	for _, el := range arr {
		if t, err := convert[T](el, s.scalar()); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// String is Optional[string].
func (v View) String(name string) (string, bool) { return Optional[string](v, name) }

// Bool is Optional[bool].
func (v View) Bool(name string) (bool, bool) { return Optional[bool](v, name) }

// Integer is Optional[int64].
func (v View) Integer(name string) (int64, bool) { return Optional[int64](v, name) }

// Decimal is Optional[json.Number]; the decimal text is kept as written.
func (v View) Decimal(name string) (json.Number, bool) { return Optional[json.Number](v, name) }

// Time is Optional[time.Time], parsed according to the declared temporal type.
func (v View) Time(name string) (time.Time, bool) { return Optional[time.Time](v, name) }

func (v View) convertIssue(s slot, raw any, err error, want any) error {
	if iss, ok := schemabind.AsIssues(err); ok {
		out := make(schemabind.Issues, len(iss))
		for i, it := range iss {
			it.Path = v.fieldPath(s).Pointer()
			it.Field = s.field.Name
			out[i] = it
		}
		return out
	}
	return v.mistyped(s, goTypeName(want), raw)
}

func goTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64:
		return "integer"
	case float64, json.Number:
		return "number"
	case time.Time:
		return "temporal string"
	}
	return "scalar"
}

// convert turns a stored scalar into T. Temporal strings are parsed with the
// codec of the declared scalar type; other declared types parse as dateTime.
func convert[T Scalar](raw any, st schema.ScalarType) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		s, ok := raw.(string)
		if !ok {
			return out, errMistyped
		}
		*p = s
	case *bool:
		b, ok := raw.(bool)
		if !ok {
			return out, errMistyped
		}
		*p = b
	case *int64:
		n, err := toInt64(raw)
		if err != nil {
			return out, err
		}
		*p = n
	case *float64:
		f, err := toFloat64(raw)
		if err != nil {
			return out, err
		}
		*p = f
	case *json.Number:
		n, err := toNumber(raw)
		if err != nil {
			return out, err
		}
		*p = n
	case *time.Time:
		s, ok := raw.(string)
		if !ok {
			return out, errMistyped
		}
		t, err := temporalCodec(st).Decode(s)
		if err != nil {
			return out, err
		}
		*p = t
	}
	return out, nil
}

func temporalCodec(st schema.ScalarType) schemabind.Codec[string, time.Time] {
	switch st {
	case schema.Date:
		return codec.Date()
	case schema.Instant:
		return codec.Instant()
	}
	return codec.DateTime()
}

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errMistyped
		}
		return i, nil
	case float64:
		if n != math.Trunc(n) || n >= 1<<63 || n < -(1<<63) {
			return 0, errMistyped
		}
		return int64(n), nil
	}
	return 0, errMistyped
}

func toFloat64(raw any) (float64, error) {
	switch n := raw.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errMistyped
		}
		return f, nil
	case float64:
		return n, nil
	}
	return 0, errMistyped
}

func toNumber(raw any) (json.Number, error) {
	switch n := raw.(type) {
	case json.Number:
		return n, nil
	case float64:
		return json.Number(strconv.FormatFloat(n, 'f', -1, 64)), nil
	}
	return "", errMistyped
}

// scalarMatches reports whether a stored value has the JSON kind (and, for
// integers, the integral form) of the declared scalar type.
func scalarMatches(raw any, st schema.ScalarType) bool {
	if schemabind.KindOf(raw) != st.JSONKind() {
		return false
	}
	if st == schema.Integer {
		_, err := toInt64(raw)
		return err == nil
	}
	return true
}
