package bind

import (
	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/codec"
	"github.com/reoring/schemabind/schema"
)

// Child returns the View of an optional nested field. ok is false when the
// value is absent, not an object, or (for any-resource fields) names no
// known resource type.
func (v View) Child(name string) (View, bool) {
	s, err := v.lookup(name)
	if err != nil || s.kind() != schema.KindNested {
		return View{}, false
	}
	raw, ok := v.raw(s)
	if !ok {
		return View{}, false
	}
	c, err := newView(v.cat, s.record(), raw, v.fieldPath(s))
	if err != nil {
		return View{}, false
	}
	return c, true
}

// RequiredChild returns the View of a required nested field.
func (v View) RequiredChild(name string) (View, error) {
	s, err := v.lookup(name)
	if err != nil {
		return View{}, err
	}
	if s.kind() != schema.KindNested {
		return View{}, v.wrongKind(s, schema.KindNested)
	}
	raw, ok := v.raw(s)
	if !ok {
		return View{}, v.missing(s)
	}
	c, err := newView(v.cat, s.record(), raw, v.fieldPath(s))
	if err != nil {
		return View{}, withField(err, s.field.Name)
	}
	return c, nil
}

// Children returns the Views of a repeated nested field in array order.
// Elements that cannot be projected are skipped; their positions are kept in
// the child paths.
func (v View) Children(name string) []View {
	s, err := v.lookup(name)
	if err != nil || s.kind() != schema.KindNested {
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
	base := v.fieldPath(s)
	out := make([]View, 0, len(arr))
	for i, el := range arr {
		if c, err := newView(v.cat, s.record(), el, base.Index(i)); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Enum decodes an optional enumerated field. An absent value (or one that is
// not a string) returns the zero Symbol and no error; a code outside the
// enumeration returns an invalid_enum issue.
func (v View) Enum(name string) (schema.Symbol, error) {
	s, e, err := v.enumSlot(name)
	if err != nil {
		return schema.Symbol{}, err
	}
	raw, ok := v.raw(s)
	if !ok {
		return schema.Symbol{}, nil
	}
	code, ok := raw.(string)
	if !ok {
		return schema.Symbol{}, nil
	}
	return v.decodeEnum(s, e, code, v.fieldPath(s))
}

// RequiredEnum decodes a required enumerated field.
func (v View) RequiredEnum(name string) (schema.Symbol, error) {
	s, e, err := v.enumSlot(name)
	if err != nil {
		return schema.Symbol{}, err
	}
	raw, ok := v.raw(s)
	if !ok {
		return schema.Symbol{}, v.missing(s)
	}
	code, ok := raw.(string)
	if !ok {
		return schema.Symbol{}, v.mistyped(s, "string", raw)
	}
	return v.decodeEnum(s, e, code, v.fieldPath(s))
}

// Enums decodes a repeated enumerated field in array order. The first
// unknown code fails the call; non-string elements are skipped.
func (v View) Enums(name string) ([]schema.Symbol, error) {
	s, e, err := v.enumSlot(name)
	if err != nil {
		return nil, err
	}
	raw, ok := v.raw(s)
	if !ok {
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]schema.Symbol, 0, len(arr))
	for i, el := range arr {
		code, ok := el.(string)
		if !ok {
			continue
		}
		sym, err := v.decodeEnum(s, e, code, v.fieldPath(s).Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}

// DecodeEnum reads an optional enumerated field straight into a Go
// enumeration type through a typed codec.
func DecodeEnum[S comparable](v View, name string, c *codec.EnumCodec[S]) (S, bool, error) {
	var zero S
	sym, err := v.Enum(name)
	if err != nil || !sym.Valid() {
		return zero, false, err
	}
	out, err := c.Decode(sym.Code())
	if err != nil {
		s, _ := v.lookup(name)
		return zero, false, withPath(err, v.fieldPath(s).Pointer(), s.field.Name)
	}
	return out, true, nil
}

func (v View) enumSlot(name string) (slot, *schema.Enum, error) {
	s, err := v.lookup(name)
	if err != nil {
		return slot{}, nil, err
	}
	if s.kind() != schema.KindEnum {
		return slot{}, nil, v.wrongKind(s, schema.KindEnum)
	}
	e, ok := v.cat.Enum(s.field.Enum)
	if !ok {
		return slot{}, nil, schemabind.Issues{v.fieldPath(s).Issue(schemabind.CodeUnknownRecord, "record", s.field.Enum)}
	}
	return s, e, nil
}

func (v View) decodeEnum(s slot, e *schema.Enum, code string, at schemabind.PathRef) (schema.Symbol, error) {
	sym, err := e.Decode(code)
	if err != nil {
		return schema.Symbol{}, schemabind.UnknownEnumCode(at.Pointer(), s.field.Name, code)
	}
	return sym, nil
}

func withField(err error, field string) error {
	iss, ok := schemabind.AsIssues(err)
	if !ok {
		return err
	}
	out := make(schemabind.Issues, len(iss))
	for i, it := range iss {
		if it.Field == "" {
			it.Field = field
		}
		out[i] = it
	}
	return out
}

func withPath(err error, path, field string) error {
	iss, ok := schemabind.AsIssues(err)
	if !ok {
		return err
	}
	out := make(schemabind.Issues, len(iss))
	for i, it := range iss {
		it.Path = path
		it.Field = field
		out[i] = it
	}
	return out
}
