package bind

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

// Builder stages a new document of one record type. It owns its node; values
// passed in are copied. Setters are fluent and record problems instead of
// failing fast; Err and Build report them. A Builder is not safe for
// concurrent use.
type Builder struct {
	cat  *schema.Catalog
	rec  *schema.Record
	node map[string]any
	errs schemabind.Issues
}

// ChoiceValue selects the alternative of a choice field by suffix.
type ChoiceValue struct {
	Suffix string
	Value  any
}

// AltValue is shorthand for ChoiceValue{Suffix: suffix, Value: v}.
func AltValue(suffix string, v any) ChoiceValue { return ChoiceValue{Suffix: suffix, Value: v} }

// New starts a document with exactly the required fields of the record type,
// given positionally in catalogue order. Choice fields take a ChoiceValue or
// a Variant. Resource records get the discriminator stamped.
func New(cat *schema.Catalog, record string, required ...any) (*Builder, error) {
	rec, ok := cat.Record(record)
	if !ok {
		return nil, schemabind.Issues{schemabind.Root().Issue(schemabind.CodeUnknownRecord, "record", record)}
	}
	req := rec.Required()
	if len(required) != len(req) {
		names := make([]string, len(req))
		for i, f := range req {
			names[i] = f.Name
		}
		it := schemabind.Root().Issue(schemabind.CodeArity, "expected", len(req), "actual", len(required))
		it.Hint = fmt.Sprintf("%s requires (%s)", rec.Name, strings.Join(names, ", "))
		return nil, schemabind.Issues{it}
	}
	b := &Builder{cat: cat, rec: rec, node: map[string]any{}}
	if rec.Resource {
		b.node[cat.Discriminator] = rec.Name
	}
	for i, f := range req {
		if required[i] == nil {
			b.errs = append(b.errs, schemabind.MissingRequiredField(schemabind.Root().Field(f.Key).Pointer(), f.Name)...)
			continue
		}
		b.set(f, "", required[i])
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return b, nil
}

// With starts a Builder from a deep copy of an existing View.
func With(v View) *Builder {
	if !v.Valid() {
		return &Builder{errs: schemabind.Issues{{Code: schemabind.CodeInvalidType, Message: "invalid view", Offset: -1}}}
	}
	b := &Builder{cat: v.cat, rec: v.rec, node: v.ToJSON()}
	if v.rec.Resource {
		b.node[v.cat.Discriminator] = v.rec.Name
	}
	return b
}

// Type returns the record type being built.
func (b *Builder) Type() *schema.Record { return b.rec }

// Set assigns a field; the last write wins. name is a field name or a choice
// alternative key. Setting an alternative removes the other alternatives of
// its choice. A nil value unsets the field.
//
// Accepted values: Go strings, booleans, integers, floats, json.Number and
// time.Time for scalars; schema.Symbol or code strings for enumerations;
// View, *Builder or map[string]any for nested records; slices of those for
// repeated fields.
func (b *Builder) Set(name string, value any) *Builder {
	if b.rec == nil {
		return b
	}
	f, key, ok := b.resolve(name)
	if !ok {
		return b
	}
	if value == nil {
		return b.unset(f, key)
	}
	b.set(f, key, value)
	return b
}

// Append adds values to a repeated field.
func (b *Builder) Append(name string, values ...any) *Builder {
	if b.rec == nil {
		return b
	}
	f, _, ok := b.resolve(name)
	if !ok {
		return b
	}
	if !f.Cardinality.Repeated() {
		b.fail(f, f.Key, schemabind.CodeInvalidType, fmt.Sprintf("field %s is not repeated", f.Name))
		return b
	}
	cur, _ := b.node[f.Key].([]any)
	next := append([]any(nil), cur...)
	for _, val := range values {
		enc, ok := b.encodeOne(f, nil, schemabind.Root().Field(f.Key).Index(len(next)), val)
		if !ok {
			return b
		}
		next = append(next, enc)
	}
	if len(next) > 0 {
		b.node[f.Key] = next
	}
	return b
}

// Unset removes an optional field. Required fields cannot be unset.
func (b *Builder) Unset(name string) *Builder {
	if b.rec == nil {
		return b
	}
	f, key, ok := b.resolve(name)
	if !ok {
		return b
	}
	return b.unset(f, key)
}

// EnsureID assigns a random UUID to the "id" field when it is empty.
func (b *Builder) EnsureID() *Builder {
	if b.rec == nil {
		return b
	}
	f, ok := b.rec.Field("id")
	if !ok || f.Kind != schema.KindScalar || f.Scalar != schema.String {
		it := schemabind.Root().Issue(schemabind.CodeUnknownField, "record", b.rec.Name, "field", "id")
		it.Field = "id"
		b.errs = append(b.errs, it)
		return b
	}
	if s, ok := b.node[f.Key].(string); ok && s != "" {
		return b
	}
	b.node[f.Key] = uuid.NewString()
	return b
}

// Err returns the problems recorded so far, or nil.
func (b *Builder) Err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return append(schemabind.Issues(nil), b.errs...)
}

// Build returns a View over a fresh clone of the staged document. The
// Builder stays usable and later changes do not affect built Views, so Build
// may be called repeatedly.
func (b *Builder) Build() (View, error) {
	if err := b.Err(); err != nil {
		return View{}, err
	}
	var missing schemabind.Issues
	for _, f := range b.rec.Required() {
		if !b.present(f) {
			missing = append(missing, schemabind.MissingRequiredField(schemabind.Root().Field(f.Key).Pointer(), f.Name)...)
		}
	}
	if len(missing) > 0 {
		return View{}, missing
	}
	node := schemabind.CloneDocument(b.node).(map[string]any)
	return View{cat: b.cat, rec: b.rec, node: node, path: schemabind.Root()}, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() View {
	v, err := b.Build()
	if err != nil {
		panic(err)
	}
	return v
}

func (b *Builder) present(f *schema.Field) bool {
	for _, k := range f.Keys() {
		val, ok := b.node[k]
		if !ok || val == nil {
			continue
		}
		if arr, isArr := val.([]any); isArr && len(arr) == 0 {
			continue
		}
		return true
	}
	return false
}

func (b *Builder) resolve(name string) (*schema.Field, string, bool) {
	if f, ok := b.rec.Field(name); ok {
		return f, "", true
	}
	if f, ok := b.rec.FieldByKey(name); ok && f.Kind == schema.KindChoice {
		return f, name, true
	}
	it := schemabind.Root().Issue(schemabind.CodeUnknownField, "record", b.rec.Name, "field", name)
	it.Field = name
	b.errs = append(b.errs, it)
	return nil, "", false
}

func (b *Builder) unset(f *schema.Field, key string) *Builder {
	if f.Cardinality.Required() {
		b.fail(f, f.Key, schemabind.CodeRequired, fmt.Sprintf("required field %s cannot be unset", f.Name))
		return b
	}
	if key != "" {
		delete(b.node, key)
		return b
	}
	for _, k := range f.Keys() {
		delete(b.node, k)
	}
	return b
}

func (b *Builder) set(f *schema.Field, key string, value any) {
	if f.Kind == schema.KindChoice {
		b.setChoice(f, key, value)
		return
	}
	at := schemabind.Root().Field(f.Key)
	if !f.Cardinality.Repeated() {
		if enc, ok := b.encodeOne(f, nil, at, value); ok {
			b.node[f.Key] = enc
		}
		return
	}
	elems, ok := asSlice(value)
	if !ok {
		b.fail(f, f.Key, schemabind.CodeInvalidType, fmt.Sprintf("field %s is repeated; got %T", f.Name, value))
		return
	}
	if len(elems) == 0 {
		b.unset(f, "")
		return
	}
	out := make([]any, 0, len(elems))
	for i, el := range elems {
		enc, ok := b.encodeOne(f, nil, at.Index(i), el)
		if !ok {
			return
		}
		out = append(out, enc)
	}
	b.node[f.Key] = out
}

func (b *Builder) setChoice(f *schema.Field, key string, value any) {
	switch cv := value.(type) {
	case ChoiceValue:
		if key != "" && key != f.Key+cv.Suffix {
			b.fail(f, key, schemabind.CodeInvalidType, fmt.Sprintf("alternative %s does not match key %s", cv.Suffix, key))
			return
		}
		key, value = f.Key+cv.Suffix, cv.Value
	case Variant:
		if key != "" && key != f.Key+cv.Suffix() {
			b.fail(f, key, schemabind.CodeInvalidType, fmt.Sprintf("alternative %s does not match key %s", cv.Suffix(), key))
			return
		}
		key, value = f.Key+cv.Suffix(), cv.raw
	}
	if key == "" {
		b.fail(f, f.Key, schemabind.CodeInvalidType, fmt.Sprintf("choice field %s needs an alternative (use AltValue or an alternative key)", f.Name))
		return
	}
	alt, ok := f.Alternative(key)
	if !ok {
		b.fail(f, key, schemabind.CodeUnknownField, fmt.Sprintf("choice field %s has no alternative %s", f.Name, key))
		return
	}
	if value == nil {
		b.unset(f, "")
		return
	}
	enc, ok := b.encodeOne(f, &alt, schemabind.Root().Field(key), value)
	if !ok {
		return
	}
	for _, k := range f.Keys() {
		delete(b.node, k)
	}
	b.node[key] = enc
}

func (b *Builder) fail(f *schema.Field, key, code, msg string) {
	b.errs = append(b.errs, schemabind.Issue{
		Path:    schemabind.Root().Field(key).Pointer(),
		Code:    code,
		Message: msg,
		Field:   f.Name,
		Offset:  -1,
	})
}

func (b *Builder) failAt(f *schema.Field, at schemabind.PathRef, err error) {
	if iss, ok := schemabind.AsIssues(err); ok {
		for _, it := range iss {
			it.Path = at.Pointer()
			it.Field = f.Name
			b.errs = append(b.errs, it)
		}
		return
	}
	b.errs = append(b.errs, schemabind.Issue{Path: at.Pointer(), Code: schemabind.CodeInvalidType, Message: err.Error(), Field: f.Name, Cause: err, Offset: -1})
}

// encodeOne converts one Go value into its stored form for a field or a
// choice alternative.
func (b *Builder) encodeOne(f *schema.Field, alt *schema.Alternative, at schemabind.PathRef, value any) (any, bool) {
	var (
		enc any
		err error
	)
	switch {
	case alt != nil && alt.Nested():
		enc, err = b.encodeRecord(alt.Record, value)
	case alt != nil:
		enc, err = encodeScalar(alt.Scalar, value)
	case f.Kind == schema.KindNested:
		enc, err = b.encodeRecord(f.Record, value)
	case f.Kind == schema.KindEnum:
		enc, err = b.encodeEnum(f.Enum, value)
	default:
		enc, err = encodeScalar(f.Scalar, value)
	}
	if err != nil {
		b.failAt(f, at, err)
		return nil, false
	}
	return enc, true
}

func (b *Builder) encodeEnum(enum string, value any) (any, error) {
	e, ok := b.cat.Enum(enum)
	if !ok {
		return nil, fmt.Errorf("unknown enum %s", enum)
	}
	switch s := value.(type) {
	case schema.Symbol:
		if s.Enum() != e {
			return nil, schemabind.UnknownEnumCode("", enum, s.String())
		}
		return s.Code(), nil
	case string:
		if _, err := e.Decode(s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, schemabind.InvalidType("", "", "enumeration code", fmt.Sprintf("%T", value))
}

func (b *Builder) encodeRecord(record string, value any) (any, error) {
	var node any
	switch n := value.(type) {
	case View:
		if !n.Valid() {
			return nil, fmt.Errorf("invalid view")
		}
		if record == schema.AnyResource && !n.rec.Resource || record != schema.AnyResource && n.rec.Name != record {
			return nil, schemabind.InvalidType("", "", recordLabel(record), n.rec.Name)
		}
		node = n.ToJSON()
	case *Builder:
		if n == nil {
			return nil, schemabind.InvalidType("", "", recordLabel(record), "nil builder")
		}
		built, err := n.Build()
		if err != nil {
			return nil, err
		}
		if record == schema.AnyResource && !built.rec.Resource || record != schema.AnyResource && built.rec.Name != record {
			return nil, schemabind.InvalidType("", "", recordLabel(record), built.rec.Name)
		}
		node = built.node
	case map[string]any:
		norm, err := schemabind.NormalizeDocument(n)
		if err != nil {
			return nil, err
		}
		if _, err := newView(b.cat, record, norm, schemabind.Root()); err != nil {
			return nil, err
		}
		node = norm
	default:
		return nil, schemabind.InvalidType("", "", recordLabel(record), fmt.Sprintf("%T", value))
	}
	return node, nil
}

func recordLabel(record string) string {
	if record == schema.AnyResource {
		return "resource"
	}
	return record
}

func encodeScalar(st schema.ScalarType, value any) (any, error) {
	mismatch := func() error {
		return schemabind.InvalidType("", "", st.String(), fmt.Sprintf("%T", value))
	}
	switch x := value.(type) {
	case string:
		if st.JSONKind() != schemabind.KindString {
			return nil, mismatch()
		}
		if st.Temporal() {
			if _, err := temporalCodec(st).Decode(x); err != nil {
				return nil, err
			}
		}
		return x, nil
	case bool:
		if st != schema.Boolean {
			return nil, mismatch()
		}
		return x, nil
	case time.Time:
		if !st.Temporal() {
			return nil, mismatch()
		}
		return temporalCodec(st).Encode(x)
	case json.Number:
		switch st {
		case schema.Integer:
			if _, err := x.Int64(); err != nil {
				return nil, mismatch()
			}
		case schema.Decimal:
			if _, err := x.Float64(); err != nil {
				return nil, mismatch()
			}
		default:
			return nil, mismatch()
		}
		return x, nil
	case float32, float64:
		f := reflect.ValueOf(x).Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, mismatch()
		}
		switch st {
		case schema.Decimal:
			return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
		case schema.Integer:
			if f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
				return nil, mismatch()
			}
			return json.Number(strconv.FormatFloat(f, 'f', 0, 64)), nil
		}
		return nil, mismatch()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if st != schema.Integer && st != schema.Decimal {
			return nil, mismatch()
		}
		return json.Number(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if st != schema.Integer && st != schema.Decimal {
			return nil, mismatch()
		}
		if st == schema.Integer && rv.Uint() > math.MaxInt64 {
			return nil, mismatch()
		}
		return json.Number(strconv.FormatUint(rv.Uint(), 10)), nil
	}
	return nil, mismatch()
}

// asSlice spreads any Go slice into []any; strings are not slices here.
func asSlice(value any) ([]any, bool) {
	if arr, ok := value.([]any); ok {
		return arr, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
