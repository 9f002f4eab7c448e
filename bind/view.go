package bind

import (
	"context"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

// View is a typed read-only projection over one object node. The zero View
// is invalid.
type View struct {
	cat  *schema.Catalog
	rec  *schema.Record
	node map[string]any
	path schemabind.PathRef
}

// NewView projects node as the named record type. The node is not copied.
func NewView(cat *schema.Catalog, record string, node any) (View, error) {
	return newView(cat, record, node, schemabind.Root())
}

// Open projects a resource document, selecting its record type from the
// catalogue discriminator.
func Open(cat *schema.Catalog, doc any) (View, error) {
	return newView(cat, schema.AnyResource, doc, schemabind.Root())
}

// Parse decodes JSON with the current driver and opens the resulting
// resource document.
func Parse(ctx context.Context, cat *schema.Catalog, data []byte, opts ...schemabind.ParseOpt) (View, error) {
	doc, err := schemabind.ParseBytes(ctx, data, opts...)
	if err != nil {
		return View{}, err
	}
	return Open(cat, doc)
}

func newView(cat *schema.Catalog, record string, node any, path schemabind.PathRef) (View, error) {
	m, ok := node.(map[string]any)
	if !ok {
		return View{}, schemabind.InvalidType(path.Pointer(), "", "object", schemabind.KindOf(node).String())
	}
	if record == schema.AnyResource {
		rec, err := resolveResource(cat, m, path)
		if err != nil {
			return View{}, err
		}
		return View{cat: cat, rec: rec, node: m, path: path}, nil
	}
	rec, ok := cat.Record(record)
	if !ok {
		return View{}, schemabind.Issues{path.Issue(schemabind.CodeUnknownRecord, "record", record)}
	}
	return View{cat: cat, rec: rec, node: m, path: path}, nil
}

func resolveResource(cat *schema.Catalog, m map[string]any, path schemabind.PathRef) (*schema.Record, error) {
	raw, ok := m[cat.Discriminator]
	name, isStr := raw.(string)
	if !ok || !isStr || name == "" {
		return nil, schemabind.Issues{path.Issue(schemabind.CodeDiscriminatorMissing, "key", cat.Discriminator)}
	}
	rec, ok := cat.Resource(name)
	if !ok {
		return nil, schemabind.Issues{path.Field(cat.Discriminator).Issue(schemabind.CodeDiscriminatorUnknown, "key", cat.Discriminator, "value", name)}
	}
	return rec, nil
}

// Valid reports whether v projects a node.
func (v View) Valid() bool { return v.rec != nil && v.node != nil }

// Type returns the record type.
func (v View) Type() *schema.Record { return v.rec }

// TypeName returns the record type name, "" for the zero View.
func (v View) TypeName() string {
	if v.rec == nil {
		return ""
	}
	return v.rec.Name
}

// Catalog returns the catalogue the View was opened with.
func (v View) Catalog() *schema.Catalog { return v.cat }

// Path returns the JSON Pointer of the node within its root document.
func (v View) Path() string { return v.path.Pointer() }

// Has reports whether a field (or choice alternative key) holds a non-null
// value. Unknown names report false.
func (v View) Has(name string) bool {
	s, err := v.lookup(name)
	if err != nil {
		return v.Valid() && schemabind.HasCode(err, schemabind.CodeUnionAmbiguous)
	}
	_, ok := v.raw(s)
	return ok
}

// Keys returns the keys present in the node, sorted.
func (v View) Keys() []string { return schemabind.SortedKeys(v.node) }

// ToJSON exports the node as a deep copy that the caller may modify.
func (v View) ToJSON() map[string]any {
	if v.node == nil {
		return nil
	}
	return schemabind.CloneDocument(v.node).(map[string]any)
}

// MarshalJSON serializes the node.
func (v View) MarshalJSON() ([]byte, error) {
	if v.node == nil {
		return []byte("null"), nil
	}
	return schemabind.MarshalDocument(v.node)
}

// slot is the resolution of an accessor name: the field, the JSON key to read
// and, for choice fields, the alternative in use.
type slot struct {
	field *schema.Field
	key   string
	alt   *schema.Alternative
}

func (s slot) kind() schema.Kind {
	if s.alt == nil {
		return s.field.Kind
	}
	if s.alt.Nested() {
		return schema.KindNested
	}
	return schema.KindScalar
}

func (s slot) scalar() schema.ScalarType {
	if s.alt != nil {
		return s.alt.Scalar
	}
	return s.field.Scalar
}

func (s slot) record() string {
	if s.alt != nil {
		return s.alt.Record
	}
	return s.field.Record
}

// lookup resolves a field name or a choice alternative key. A choice field
// name resolves to its single present alternative; none present yields a
// slot with an empty key.
func (v View) lookup(name string) (slot, error) {
	if !v.Valid() {
		return slot{}, schemabind.Issues{{Code: schemabind.CodeInvalidType, Message: "invalid view", Offset: -1}}
	}
	if f, ok := v.rec.Field(name); ok {
		if f.Kind != schema.KindChoice {
			return slot{field: f, key: f.Key}, nil
		}
		present := v.presentAlternatives(f)
		switch len(present) {
		case 0:
			return slot{field: f}, nil
		case 1:
			alt, _ := f.Alternative(present[0])
			return slot{field: f, key: present[0], alt: &alt}, nil
		}
		return slot{}, schemabind.AmbiguousChoice(v.path.Pointer(), f.Name, present)
	}
	if f, ok := v.rec.FieldByKey(name); ok && f.Kind == schema.KindChoice {
		alt, _ := f.Alternative(name)
		return slot{field: f, key: name, alt: &alt}, nil
	}
	it := v.path.Issue(schemabind.CodeUnknownField, "record", v.rec.Name, "field", name)
	it.Field = name
	return slot{}, schemabind.Issues{it}
}

func (v View) presentAlternatives(f *schema.Field) []string {
	var present []string
	for _, k := range f.Keys() {
		if val, ok := v.node[k]; ok && val != nil {
			present = append(present, k)
		}
	}
	return present
}

// raw returns the stored value; null counts as absent.
func (v View) raw(s slot) (any, bool) {
	if s.key == "" {
		return nil, false
	}
	val, ok := v.node[s.key]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

func (v View) fieldPath(s slot) schemabind.PathRef {
	if s.key == "" {
		return v.path.Field(s.field.Key)
	}
	return v.path.Field(s.key)
}

func (v View) missing(s slot) error {
	return schemabind.MissingRequiredField(v.fieldPath(s).Pointer(), s.field.Name)
}

func (v View) mistyped(s slot, want string, got any) error {
	return schemabind.InvalidType(v.fieldPath(s).Pointer(), s.field.Name, want, schemabind.KindOf(got).String())
}

// wrongKind reports an accessor used on a field of another kind.
func (v View) wrongKind(s slot, want schema.Kind) error {
	return schemabind.InvalidType(v.fieldPath(s).Pointer(), s.field.Name, want.String()+" field", s.kind().String()+" field")
}
