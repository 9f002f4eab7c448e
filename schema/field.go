package schema

import (
	"fmt"
	"strings"

	schemabind "github.com/reoring/schemabind"
)

// Cardinality is the multiplicity of a field.
type Cardinality int

const (
	Optional  Cardinality = iota // 0..1
	One                          // 1..1
	Many                         // 0..*
	OneOrMore                    // 1..*
)

// Required reports whether at least one value must be present.
func (c Cardinality) Required() bool { return c == One || c == OneOrMore }

// Repeated reports whether the field holds an array.
func (c Cardinality) Repeated() bool { return c == Many || c == OneOrMore }

func (c Cardinality) String() string {
	switch c {
	case One:
		return "1..1"
	case Many:
		return "0..*"
	case OneOrMore:
		return "1..*"
	}
	return "0..1"
}

// ParseCardinality accepts the range notation ("0..1", "1..1", "0..*",
// "1..*") and the words optional, required, many and oneOrMore.
func ParseCardinality(s string) (Cardinality, error) {
	switch s {
	case "", "0..1", "optional":
		return Optional, nil
	case "1..1", "1", "required", "one":
		return One, nil
	case "0..*", "*", "many":
		return Many, nil
	case "1..*", "oneOrMore":
		return OneOrMore, nil
	}
	return Optional, fmt.Errorf("unknown cardinality %q", s)
}

// Kind is the shape of a field's value.
type Kind int

const (
	KindScalar Kind = iota
	KindNested
	KindChoice
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindNested:
		return "nested"
	case KindChoice:
		return "choice"
	case KindEnum:
		return "enum"
	}
	return "scalar"
}

// ScalarType is the primitive type of a scalar field or choice alternative.
type ScalarType int

const (
	String ScalarType = iota
	Boolean
	Integer
	Decimal
	Date
	DateTime
	Instant
)

var scalarNames = map[string]ScalarType{
	"string":      String,
	"code":        String,
	"id":          String,
	"uri":         String,
	"url":         String,
	"canonical":   String,
	"markdown":    String,
	"oid":         String,
	"uuid":        String,
	"base64":      String,
	"boolean":     Boolean,
	"integer":     Integer,
	"positiveInt": Integer,
	"unsignedInt": Integer,
	"decimal":     Decimal,
	"date":        Date,
	"dateTime":    DateTime,
	"instant":     Instant,
}

// ParseScalarType resolves a scalar type name, including aliases such as
// code, uri or positiveInt.
func ParseScalarType(name string) (ScalarType, bool) {
	t, ok := scalarNames[name]
	return t, ok
}

func (t ScalarType) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	case DateTime:
		return "dateTime"
	case Instant:
		return "instant"
	}
	return "string"
}

// JSONKind is the Document Value kind that carries values of this type.
func (t ScalarType) JSONKind() schemabind.Kind {
	switch t {
	case Boolean:
		return schemabind.KindBool
	case Integer, Decimal:
		return schemabind.KindNumber
	}
	return schemabind.KindString
}

// Temporal reports whether values are date or time strings.
func (t ScalarType) Temporal() bool { return t == Date || t == DateTime || t == Instant }

// AnyResource as a record reference accepts any resource record; the concrete
// type is read from the catalogue discriminator.
const AnyResource = "*"

// Alternative is one realisation of a choice field. Exactly one of Scalar
// (when Record is empty) or Record describes the value.
type Alternative struct {
	Suffix string
	Scalar ScalarType
	Record string
}

// Key returns the JSON key of the alternative for a choice base key:
// "value" + "Quantity" = "valueQuantity".
func (a Alternative) Key(base string) string { return base + a.Suffix }

// Nested reports whether the alternative holds an object.
func (a Alternative) Nested() bool { return a.Record != "" }

func (a Alternative) typeName() string {
	if a.Nested() {
		return a.Record
	}
	return a.Scalar.String()
}

// Field is a field descriptor: one logical field of a record type.
type Field struct {
	Name        string
	Key         string // JSON key; the base key for choice fields.
	Cardinality Cardinality
	Kind        Kind
	Scalar      ScalarType    // KindScalar
	Record      string        // KindNested
	Enum        string        // KindEnum
	Choices     []Alternative // KindChoice
	Description string
}

// Keys returns every JSON key the field can occupy.
func (f *Field) Keys() []string {
	if f.Kind != KindChoice {
		return []string{f.Key}
	}
	keys := make([]string, len(f.Choices))
	for i, a := range f.Choices {
		keys[i] = a.Key(f.Key)
	}
	return keys
}

// Alternative returns the choice alternative stored under key.
func (f *Field) Alternative(key string) (Alternative, bool) {
	if f.Kind != KindChoice || !strings.HasPrefix(key, f.Key) {
		return Alternative{}, false
	}
	suffix := key[len(f.Key):]
	for _, a := range f.Choices {
		if a.Suffix == suffix {
			return a, true
		}
	}
	return Alternative{}, false
}

// TypeName renders the value type for listings: "string", "Reference",
// "enum(request-status)" or "choice(String|Quantity)".
func (f *Field) TypeName() string {
	switch f.Kind {
	case KindNested:
		return f.Record
	case KindEnum:
		return "enum(" + f.Enum + ")"
	case KindChoice:
		parts := make([]string, len(f.Choices))
		for i, a := range f.Choices {
			parts[i] = a.Suffix
		}
		return "choice(" + strings.Join(parts, "|") + ")"
	}
	return f.Scalar.String()
}

func (f *Field) String() string {
	return fmt.Sprintf("%s %s %s", f.Name, f.Cardinality, f.TypeName())
}
