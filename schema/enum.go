package schema

import (
	"fmt"
	"strings"
	"unicode"

	schemabind "github.com/reoring/schemabind"
)

// EnumValue is one member of an enumeration: a symbol and its wire code.
type EnumValue struct {
	Symbol  string
	Code    string
	Display string
}

// Enum is a closed enumeration with a bijective symbol-code table.
type Enum struct {
	Name        string
	Description string

	values []EnumValue
	byCode map[string]int
	bySym  map[string]int
}

// Symbol is a member of one Enum. The zero Symbol is not a member of any
// enumeration and reports Valid() == false. Symbols are comparable.
type Symbol struct {
	enum *Enum
	idx  int
}

// Valid reports whether s belongs to an enumeration.
func (s Symbol) Valid() bool { return s.enum != nil }

// Enum returns the owning enumeration, nil for the zero Symbol.
func (s Symbol) Enum() *Enum { return s.enum }

// Name returns the symbol name, e.g. "Active".
func (s Symbol) Name() string {
	if s.enum == nil {
		return ""
	}
	return s.enum.values[s.idx].Symbol
}

// Code returns the wire code, e.g. "active".
func (s Symbol) Code() string {
	if s.enum == nil {
		return ""
	}
	return s.enum.values[s.idx].Code
}

// Display returns the human label, falling back to the symbol name.
func (s Symbol) Display() string {
	if s.enum == nil {
		return ""
	}
	if d := s.enum.values[s.idx].Display; d != "" {
		return d
	}
	return s.Name()
}

func (s Symbol) String() string {
	if s.enum == nil {
		return "<invalid>"
	}
	return s.enum.Name + "." + s.Name()
}

// NewEnum builds an enumeration. Codes and symbols must be unique and
// non-empty; an empty symbol is derived from the code ("entered-in-error"
// becomes "EnteredInError").
func NewEnum(name string, values ...EnumValue) (*Enum, error) {
	if name == "" {
		return nil, fmt.Errorf("enum name is required")
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("enum %s: no values", name)
	}
	e := &Enum{
		Name:   name,
		values: make([]EnumValue, 0, len(values)),
		byCode: make(map[string]int, len(values)),
		bySym:  make(map[string]int, len(values)),
	}
	for _, v := range values {
		if v.Code == "" {
			return nil, fmt.Errorf("enum %s: empty code", name)
		}
		if v.Symbol == "" {
			v.Symbol = SymbolName(v.Code)
		}
		if _, dup := e.byCode[v.Code]; dup {
			return nil, fmt.Errorf("enum %s: duplicate code %q", name, v.Code)
		}
		if _, dup := e.bySym[v.Symbol]; dup {
			return nil, fmt.Errorf("enum %s: duplicate symbol %q", name, v.Symbol)
		}
		e.byCode[v.Code] = len(e.values)
		e.bySym[v.Symbol] = len(e.values)
		e.values = append(e.values, v)
	}
	return e, nil
}

// MustEnum is NewEnum that panics on error, for package-level tables.
func MustEnum(name string, values ...EnumValue) *Enum {
	e, err := NewEnum(name, values...)
	if err != nil {
		panic(err)
	}
	return e
}

// Codes builds EnumValues from bare codes.
func Codes(codes ...string) []EnumValue {
	out := make([]EnumValue, len(codes))
	for i, c := range codes {
		out[i] = EnumValue{Code: c}
	}
	return out
}

// Decode maps a wire code to its symbol. Matching is exact and
// case-sensitive; unknown codes yield an invalid_enum issue.
func (e *Enum) Decode(code string) (Symbol, error) {
	i, ok := e.byCode[code]
	if !ok {
		return Symbol{}, schemabind.UnknownEnumCode("", e.Name, code)
	}
	return Symbol{enum: e, idx: i}, nil
}

// Encode maps a symbol of this enumeration to its wire code. Symbols of
// another enumeration and the zero Symbol encode as "".
func (e *Enum) Encode(s Symbol) string {
	if s.enum != e {
		return ""
	}
	return e.values[s.idx].Code
}

// Contains reports whether code is a member.
func (e *Enum) Contains(code string) bool {
	_, ok := e.byCode[code]
	return ok
}

// Lookup finds a symbol by name.
func (e *Enum) Lookup(symbol string) (Symbol, bool) {
	i, ok := e.bySym[symbol]
	if !ok {
		return Symbol{}, false
	}
	return Symbol{enum: e, idx: i}, true
}

// MustDecode is Decode that panics on unknown codes.
func (e *Enum) MustDecode(code string) Symbol {
	s, err := e.Decode(code)
	if err != nil {
		panic(err)
	}
	return s
}

// Symbols returns every member in declaration order.
func (e *Enum) Symbols() []Symbol {
	out := make([]Symbol, len(e.values))
	for i := range e.values {
		out[i] = Symbol{enum: e, idx: i}
	}
	return out
}

// Codes returns every wire code in declaration order.
func (e *Enum) Codes() []string {
	out := make([]string, len(e.values))
	for i, v := range e.values {
		out[i] = v.Code
	}
	return out
}

// Values returns a copy of the table.
func (e *Enum) Values() []EnumValue { return append([]EnumValue(nil), e.values...) }

// SymbolName derives a Go-style symbol from a code: separators are dropped
// and the following letter is upper-cased.
func SymbolName(code string) string {
	var b strings.Builder
	up := true
	for _, r := range code {
		if r == '-' || r == '_' || r == '.' || r == ' ' || r == '/' {
			up = true
			continue
		}
		if up {
			r = unicode.ToUpper(r)
			up = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return code
	}
	return b.String()
}
