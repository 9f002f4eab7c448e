package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

func priorityEnum(t *testing.T) *schema.Enum {
	t.Helper()
	e, err := schema.NewEnum("request-priority",
		schema.EnumValue{Code: "routine"},
		schema.EnumValue{Code: "urgent"},
		schema.EnumValue{Code: "asap", Symbol: "ASAP"},
		schema.EnumValue{Code: "stat"},
	)
	require.NoError(t, err)
	return e
}

func TestEnum_RoundTrip(t *testing.T) {
	e := priorityEnum(t)
	for _, s := range e.Symbols() {
		code := e.Encode(s)
		back, err := e.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
	for _, code := range e.Codes() {
		s, err := e.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, code, e.Encode(s))
	}
}

func TestEnum_DecodeIsExact(t *testing.T) {
	e := priorityEnum(t)
	for _, bad := range []string{"Routine", "ROUTINE", " routine", "", "bogus"} {
		s, err := e.Decode(bad)
		assert.False(t, s.Valid(), bad)
		assert.True(t, schemabind.HasCode(err, schemabind.CodeInvalidEnum), "%q: %v", bad, err)
	}
}

func TestEnum_Symbols(t *testing.T) {
	e := priorityEnum(t)
	s := e.MustDecode("asap")
	assert.Equal(t, "ASAP", s.Name())
	assert.Equal(t, "asap", s.Code())
	assert.Equal(t, "request-priority.ASAP", s.String())
	assert.Same(t, e, s.Enum())

	r, ok := e.Lookup("Routine")
	require.True(t, ok)
	assert.Equal(t, "routine", r.Code())
	assert.Equal(t, "Routine", r.Display())

	var zero schema.Symbol
	assert.False(t, zero.Valid())
	assert.Equal(t, "", e.Encode(zero))
	assert.Equal(t, "", zero.Code())

	other := schema.MustEnum("other", schema.Codes("routine")...)
	assert.Equal(t, "", e.Encode(other.MustDecode("routine")), "symbols of another enum do not encode")
	assert.NotEqual(t, other.MustDecode("routine"), e.MustDecode("routine"))
}

func TestNewEnum_Errors(t *testing.T) {
	_, err := schema.NewEnum("e")
	assert.Error(t, err)
	_, err = schema.NewEnum("e", schema.Codes("a", "a")...)
	assert.ErrorContains(t, err, "duplicate code")
	_, err = schema.NewEnum("e", schema.EnumValue{Code: "a-b"}, schema.EnumValue{Code: "a_b"})
	assert.ErrorContains(t, err, "duplicate symbol")
}

func TestSymbolName(t *testing.T) {
	assert.Equal(t, "EnteredInError", schema.SymbolName("entered-in-error"))
	assert.Equal(t, "OnHold", schema.SymbolName("on-hold"))
	assert.Equal(t, "<", schema.SymbolName("<"))
}
