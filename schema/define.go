package schema

// Type describes the value of a field for the definition DSL. Build one with
// Scalar, RecordOf, EnumOf or ChoiceOf.
type Type struct {
	kind    Kind
	scalar  ScalarType
	record  string
	enum    string
	choices []Alternative
}

// Scalar is a primitive value type.
func Scalar(t ScalarType) Type { return Type{kind: KindScalar, scalar: t} }

// RecordOf is a nested record value. Use AnyResource for contained resources.
func RecordOf(name string) Type { return Type{kind: KindNested, record: name} }

// EnumOf is a code from the named enumeration.
func EnumOf(name string) Type { return Type{kind: KindEnum, enum: name} }

// ChoiceOf is a choice field realised by type-suffixed keys.
func ChoiceOf(alts ...Alternative) Type { return Type{kind: KindChoice, choices: alts} }

// Alt is a scalar choice alternative.
func Alt(suffix string, t ScalarType) Alternative { return Alternative{Suffix: suffix, Scalar: t} }

// AltRecord is a nested choice alternative.
func AltRecord(suffix, record string) Alternative {
	return Alternative{Suffix: suffix, Record: record}
}

type recordBuilder struct {
	name     string
	resource bool
	desc     string
	fields   []Field
}

type fieldStep struct {
	b   *recordBuilder
	idx int
}

// Define starts a record definition. Fields are optional unless marked
// otherwise and keep their declaration order.
//
//	sr, err := schema.Define("ServiceRequest").Resource().
//		Field("status", schema.EnumOf("request-status")).Required().
//		Field("subject", schema.RecordOf("Reference")).Required().
//		Field("basedOn", schema.RecordOf("Reference")).Many().
//		Build()
func Define(name string) *recordBuilder {
	return &recordBuilder{name: name}
}

// Resource marks the record as a resource carrying the discriminator.
func (b *recordBuilder) Resource() *recordBuilder {
	b.resource = true
	return b
}

// Describe sets the record description.
func (b *recordBuilder) Describe(text string) *recordBuilder {
	b.desc = text
	return b
}

// Field appends an optional field.
func (b *recordBuilder) Field(name string, t Type) *fieldStep {
	b.fields = append(b.fields, Field{
		Name:    name,
		Key:     name,
		Kind:    t.kind,
		Scalar:  t.scalar,
		Record:  t.record,
		Enum:    t.enum,
		Choices: append([]Alternative(nil), t.choices...),
	})
	return &fieldStep{b: b, idx: len(b.fields) - 1}
}

// Build validates the definition and returns the record.
func (b *recordBuilder) Build() (*Record, error) {
	r, err := NewRecord(b.name, b.resource, b.fields...)
	if err != nil {
		return nil, err
	}
	r.Description = b.desc
	return r, nil
}

// MustBuild is Build that panics on error.
func (b *recordBuilder) MustBuild() *Record {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

func (f *fieldStep) field() *Field { return &f.b.fields[f.idx] }

// Required marks the field 1..1.
func (f *fieldStep) Required() *recordBuilder {
	f.field().Cardinality = One
	return f.b
}

// Optional marks the field 0..1 (default).
func (f *fieldStep) Optional() *recordBuilder {
	f.field().Cardinality = Optional
	return f.b
}

// Many marks the field 0..*.
func (f *fieldStep) Many() *recordBuilder {
	f.field().Cardinality = Many
	return f.b
}

// OneOrMore marks the field 1..*.
func (f *fieldStep) OneOrMore() *recordBuilder {
	f.field().Cardinality = OneOrMore
	return f.b
}

// Key overrides the JSON key (the base key for choice fields).
func (f *fieldStep) Key(key string) *fieldStep {
	f.field().Key = key
	return f
}

// Describe sets the field description.
func (f *fieldStep) Describe(text string) *fieldStep {
	f.field().Description = text
	return f
}

func (f *fieldStep) Field(name string, t Type) *fieldStep { return f.b.Field(name, t) }
func (f *fieldStep) Build() (*Record, error)              { return f.b.Build() }
func (f *fieldStep) MustBuild() *Record                   { return f.b.MustBuild() }
