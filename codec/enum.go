package codec

import (
	"fmt"
	"slices"
	"sort"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

// EnumCodec maps a Go enumeration type S to wire codes and back. Both
// directions are exact; the table is closed.
type EnumCodec[S comparable] struct {
	name   string
	order  []S
	toCode map[S]string
	toSym  map[string]S
}

// EnumPair binds one symbol to its wire code.
type EnumPair[S comparable] struct {
	Symbol S
	Code   string
}

// Pair is shorthand for EnumPair.
func Pair[S comparable](s S, code string) EnumPair[S] { return EnumPair[S]{Symbol: s, Code: code} }

// Enum builds a typed enumeration codec. Symbols and codes must both be
// unique.
func Enum[S comparable](name string, pairs ...EnumPair[S]) (*EnumCodec[S], error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("enum %s: no values", name)
	}
	c := &EnumCodec[S]{
		name:   name,
		toCode: make(map[S]string, len(pairs)),
		toSym:  make(map[string]S, len(pairs)),
	}
	for _, p := range pairs {
		if _, dup := c.toCode[p.Symbol]; dup {
			return nil, fmt.Errorf("enum %s: duplicate symbol %v", name, p.Symbol)
		}
		if _, dup := c.toSym[p.Code]; dup {
			return nil, fmt.Errorf("enum %s: duplicate code %q", name, p.Code)
		}
		c.toCode[p.Symbol] = p.Code
		c.toSym[p.Code] = p.Symbol
		c.order = append(c.order, p.Symbol)
	}
	return c, nil
}

// MustEnum is Enum that panics on error, for package-level tables.
func MustEnum[S comparable](name string, pairs ...EnumPair[S]) *EnumCodec[S] {
	c, err := Enum(name, pairs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the enumeration name.
func (c *EnumCodec[S]) Name() string { return c.name }

// Decode maps a code to its symbol; unknown codes yield invalid_enum.
func (c *EnumCodec[S]) Decode(code string) (S, error) {
	s, ok := c.toSym[code]
	if !ok {
		var zero S
		return zero, schemabind.UnknownEnumCode("", c.name, code)
	}
	return s, nil
}

// Encode maps a symbol to its code. Values outside the table are rejected
// with invalid_enum.
func (c *EnumCodec[S]) Encode(s S) (string, error) {
	code, ok := c.toCode[s]
	if !ok {
		return "", schemabind.UnknownEnumCode("", c.name, fmt.Sprint(s))
	}
	return code, nil
}

// Code is Encode for symbols known to be valid; it returns "" otherwise.
func (c *EnumCodec[S]) Code(s S) string { return c.toCode[s] }

// Symbols returns the symbols in declaration order.
func (c *EnumCodec[S]) Symbols() []S { return slices.Clone(c.order) }

// Check verifies that the codec covers exactly the codes of a catalogue
// enumeration.
func (c *EnumCodec[S]) Check(e *schema.Enum) error {
	want := e.Codes()
	got := make([]string, 0, len(c.order))
	for _, s := range c.order {
		got = append(got, c.toCode[s])
	}
	sort.Strings(want)
	sort.Strings(got)
	if !slices.Equal(want, got) {
		return fmt.Errorf("enum %s: codec codes %v do not match catalogue codes %v", c.name, got, want)
	}
	return nil
}

var _ schemabind.Codec[string, int] = (*EnumCodec[int])(nil)
