package bind

import (
	"encoding/json"
	"time"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

// Variant is the resolved value of a choice field: which alternative is
// present and its value.
type Variant struct {
	Field       string // logical field name, e.g. "value"
	Key         string // JSON key in use, e.g. "valueQuantity"
	Alternative schema.Alternative

	parent View
	s      slot
	raw    any
}

// Suffix names the alternative, e.g. "Quantity".
func (x Variant) Suffix() string { return x.Alternative.Suffix }

// Nested reports whether the alternative is a record.
func (x Variant) Nested() bool { return x.Alternative.Nested() }

// View returns the record View of a nested alternative.
func (x Variant) View() (View, bool) {
	if !x.Nested() {
		return View{}, false
	}
	c, err := newView(x.parent.cat, x.Alternative.Record, x.raw, x.parent.fieldPath(x.s))
	if err != nil {
		return View{}, false
	}
	return c, true
}

// Raw returns a deep copy of the stored value.
func (x Variant) Raw() any { return schemabind.CloneDocument(x.raw) }

// String reads a string alternative.
func (x Variant) String() (string, bool) { return variantScalar[string](x) }

// Bool reads a boolean alternative.
func (x Variant) Bool() (bool, bool) { return variantScalar[bool](x) }

// Integer reads an integer alternative.
func (x Variant) Integer() (int64, bool) { return variantScalar[int64](x) }

// Decimal reads a numeric alternative as written.
func (x Variant) Decimal() (json.Number, bool) { return variantScalar[json.Number](x) }

// Time reads a temporal alternative.
func (x Variant) Time() (time.Time, bool) { return variantScalar[time.Time](x) }

func variantScalar[T Scalar](x Variant) (T, bool) {
	var zero T
	if x.Nested() {
		return zero, false
	}
	out, err := convert[T](x.raw, x.Alternative.Scalar)
	if err != nil {
		return zero, false
	}
	return out, true
}

// Choice resolves a choice field to its present alternative. ok is false when
// no alternative holds a non-null value. More than one present alternative is
// reported as union_ambiguous; the per-alternative accessors (for example
// String("valueString")) still read each key on its own.
func (v View) Choice(name string) (Variant, bool, error) {
	if !v.Valid() {
		return Variant{}, false, schemabind.Issues{{Code: schemabind.CodeInvalidType, Message: "invalid view", Offset: -1}}
	}
	f, ok := v.rec.Field(name)
	if !ok || f.Kind != schema.KindChoice {
		it := v.path.Issue(schemabind.CodeUnknownField, "record", v.rec.Name, "field", name)
		it.Field = name
		return Variant{}, false, schemabind.Issues{it}
	}
	s, err := v.lookup(name)
	if err != nil {
		return Variant{}, false, err
	}
	raw, ok := v.raw(s)
	if !ok {
		return Variant{}, false, nil
	}
	return Variant{Field: f.Name, Key: s.key, Alternative: *s.alt, parent: v, s: s, raw: raw}, true, nil
}
