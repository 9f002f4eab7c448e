package bind

import (
	"context"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

// DefaultMaxDepth bounds record nesting during validation.
const DefaultMaxDepth = 64

// ValidateOpt tunes Validate.
type ValidateOpt struct {
	// Collect gathers every issue instead of stopping at the first one. The
	// verdict is the same either way.
	Collect bool
	// Strict additionally reports values that optional accessors would read
	// as absent (wrong JSON kind, unparsable temporal strings), choice fields
	// with more than one alternative present, undeclared keys and resource
	// discriminators that do not name the record type.
	Strict bool
	// MaxDepth bounds record nesting; 0 selects DefaultMaxDepth.
	MaxDepth int
}

// Validate walks every declared field of v. Required fields must be present
// with the declared JSON kind, enumerated codes must decode, and nested
// records (every element of repeated ones, the present alternative of
// choices) must validate in turn. A failing child fails its parent. The
// result is nil or schemabind.Issues.
func Validate(ctx context.Context, v View, opts ...ValidateOpt) error {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	if !v.Valid() {
		return schemabind.Issues{{Code: schemabind.CodeInvalidType, Message: "invalid view", Offset: -1}}
	}
	w := &walker{ctx: ctx, opt: opt}
	w.record(v, 1)
	if w.ctxErr != nil {
		return w.ctxErr
	}
	if len(w.issues) > 0 {
		return w.issues
	}
	return nil
}

// IsValid reports whether Validate returns nil.
func IsValid(ctx context.Context, v View, opts ...ValidateOpt) bool {
	return Validate(ctx, v, opts...) == nil
}

type walker struct {
	ctx    context.Context
	opt    ValidateOpt
	issues schemabind.Issues
	ctxErr error
}

// report records issues and tells the caller whether to stop walking.
func (w *walker) report(err error) bool {
	if iss, ok := schemabind.AsIssues(err); ok {
		w.issues = append(w.issues, iss...)
	}
	return !w.opt.Collect
}

func (w *walker) record(v View, depth int) bool {
	if err := w.ctx.Err(); err != nil {
		w.ctxErr = err
		return true
	}
	if depth > w.opt.MaxDepth {
		return w.report(schemabind.Issues{{Path: v.Path(), Code: schemabind.CodeParseError, Message: "max depth exceeded", Offset: -1}})
	}
	if w.opt.Strict && w.strictKeys(v) {
		return true
	}
	for _, f := range v.rec.Fields() {
		if w.field(v, f, depth) {
			return true
		}
	}
	return false
}

func (w *walker) strictKeys(v View) bool {
	disc := v.cat.Discriminator
	if v.rec.Resource {
		if name, _ := v.node[disc].(string); name != v.rec.Name {
			if w.report(schemabind.Issues{v.path.Field(disc).Issue(schemabind.CodeDiscriminatorUnknown, "key", disc, "value", v.node[disc])}) {
				return true
			}
		}
	}
	for _, k := range schemabind.SortedKeys(v.node) {
		if k == disc && v.rec.Resource {
			continue
		}
		if _, ok := v.rec.FieldByKey(k); ok {
			continue
		}
		if w.report(schemabind.Issues{v.path.Field(k).Issue(schemabind.CodeUnknownKey, "key", k)}) {
			return true
		}
	}
	return false
}

func (w *walker) field(v View, f *schema.Field, depth int) bool {
	required := f.Cardinality.Required()
	if f.Kind == schema.KindChoice {
		present := v.presentAlternatives(f)
		if len(present) == 0 {
			return required && w.report(v.missing(slot{field: f}))
		}
		if len(present) > 1 && w.opt.Strict {
			if w.report(schemabind.AmbiguousChoice(v.path.Pointer(), f.Name, present)) {
				return true
			}
		}
		for _, key := range present {
			alt, _ := f.Alternative(key)
			s := slot{field: f, key: key, alt: &alt}
			if w.element(v, s, v.node[key], v.fieldPath(s), depth, required) {
				return true
			}
		}
		return false
	}

	s := slot{field: f, key: f.Key}
	raw, ok := v.raw(s)
	if !ok {
		return required && w.report(v.missing(s))
	}
	if !f.Cardinality.Repeated() {
		return w.element(v, s, raw, v.fieldPath(s), depth, required)
	}
	arr, isArr := raw.([]any)
	if !isArr {
		if required || w.opt.Strict {
			return w.report(v.mistyped(s, "array", raw))
		}
		return false
	}
	if len(arr) == 0 && required {
		return w.report(v.missing(s))
	}
	for i, el := range arr {
		if w.element(v, s, el, v.fieldPath(s).Index(i), depth, required) {
			return true
		}
	}
	return false
}

// element checks one value. required controls whether a value of the wrong
// JSON kind fails outside strict mode.
func (w *walker) element(v View, s slot, raw any, at schemabind.PathRef, depth int, required bool) bool {
	strictOrRequired := required || w.opt.Strict
	mistyped := func(want string) bool {
		return w.report(schemabind.InvalidType(at.Pointer(), s.field.Name, want, schemabind.KindOf(raw).String()))
	}
	switch s.kind() {
	case schema.KindScalar:
		st := s.scalar()
		if !scalarMatches(raw, st) {
			if strictOrRequired {
				return mistyped(st.String())
			}
			return false
		}
		if w.opt.Strict && st.Temporal() {
			if _, err := temporalCodec(st).Decode(raw.(string)); err != nil {
				return w.report(withPath(err, at.Pointer(), s.field.Name))
			}
		}
	case schema.KindEnum:
		code, ok := raw.(string)
		if !ok {
			if strictOrRequired {
				return mistyped("string")
			}
			return false
		}
		e, ok := v.cat.Enum(s.field.Enum)
		if !ok || !e.Contains(code) {
			return w.report(schemabind.UnknownEnumCode(at.Pointer(), s.field.Name, code))
		}
	case schema.KindNested:
		if _, isObj := raw.(map[string]any); !isObj {
			if strictOrRequired {
				return mistyped("object")
			}
			return false
		}
		child, err := newView(v.cat, s.record(), raw, at)
		if err != nil {
			return w.report(withField(err, s.field.Name))
		}
		return w.record(child, depth+1)
	}
	return false
}
