package bind_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/internal/fixtures"
)

func reference(ref string) map[string]any { return map[string]any{"reference": ref} }

func concept(text string) map[string]any { return map[string]any{"text": text} }

func newServiceRequest(t *testing.T) *bind.Builder {
	t.Helper()
	b, err := bind.New(fixtures.Catalog(), "ServiceRequest", "order", concept("CBC"), reference("Patient/1"))
	require.NoError(t, err)
	return b
}

func TestNew_Arity(t *testing.T) {
	_, err := bind.New(fixtures.Catalog(), "ServiceRequest", "order")
	iss, ok := schemabind.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, schemabind.CodeArity, iss[0].Code)
	assert.Equal(t, "ServiceRequest requires (intent, code, subject)", iss[0].Hint)

	_, err = bind.New(fixtures.Catalog(), "ServiceRequest", "order", nil, reference("Patient/1"))
	iss, ok = schemabind.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, schemabind.CodeRequired, iss[0].Code)
	assert.Equal(t, "/code", iss[0].Path)

	_, err = bind.New(fixtures.Catalog(), "Nope")
	assert.True(t, schemabind.HasCode(err, schemabind.CodeUnknownRecord))

	_, err = bind.New(fixtures.Catalog(), "ServiceRequest", "not-an-intent", concept("x"), reference("y"))
	assert.True(t, schemabind.HasCode(err, schemabind.CodeInvalidEnum))
}

func TestNew_NoRequiredFields(t *testing.T) {
	v, err := bind.New(fixtures.Catalog(), "Coding")
	require.NoError(t, err)
	out, err := v.Build()
	require.NoError(t, err)
	assert.Empty(t, out.Keys())
}

func TestBuilder_OutputShape(t *testing.T) {
	v, err := newServiceRequest(t).
		Set("priority", "routine").
		Set("doNotPerform", false).
		Set("authoredOn", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)).
		Build()
	require.NoError(t, err)

	want := map[string]any{
		"resourceType": "ServiceRequest",
		"intent":       "order",
		"code":         map[string]any{"text": "CBC"},
		"subject":      map[string]any{"reference": "Patient/1"},
		"priority":     "routine",
		"doNotPerform": false,
		"authoredOn":   "2024-03-01T12:00:00Z",
	}
	if diff := cmp.Diff(want, v.ToJSON()); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_SetSymbolAndNested(t *testing.T) {
	cat := fixtures.Catalog()
	pr, _ := cat.Enum("request-priority")
	asap, ok := pr.Lookup("ASAP")
	require.True(t, ok)

	subject, err := bind.New(cat, "Reference")
	require.NoError(t, err)
	subject.Set("reference", "Patient/9").Set("display", "Nine")

	v, err := newServiceRequest(t).
		Set("priority", asap).
		Set("subject", subject).
		Build()
	require.NoError(t, err)

	got, err := v.Enum("priority")
	require.NoError(t, err)
	assert.Equal(t, asap, got)
	s, _ := v.Child("subject")
	d, _ := s.String("display")
	assert.Equal(t, "Nine", d)

	// A symbol of another enumeration is rejected.
	gender, _ := cat.Enum("administrative-gender")
	b := newServiceRequest(t).Set("priority", gender.MustDecode("male"))
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeInvalidEnum))
}

func TestBuilder_ChoiceExclusivity(t *testing.T) {
	b := newServiceRequest(t).
		Set("occurrenceDateTime", "2024-05-01").
		Set("occurrence", bind.AltValue("Period", map[string]any{"start": "2024-05-01"}))
	v, err := b.Build()
	require.NoError(t, err)
	assert.False(t, v.Has("occurrenceDateTime"))
	x, ok, err := v.Choice("occurrence")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Period", x.Suffix())

	v, err = b.Set("occurrenceDateTime", time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)).Build()
	require.NoError(t, err)
	assert.False(t, v.Has("occurrencePeriod"))
	x, _, _ = v.Choice("occurrence")
	assert.Equal(t, "occurrenceDateTime", x.Key)

	// Copying a Variant from another document keeps its alternative.
	src := openFixture(t, "servicerequest")
	qty, _, _ := src.Choice("quantity")
	v, err = b.Set("quantity", qty).Build()
	require.NoError(t, err)
	assert.True(t, v.Has("quantityQuantity"))
}

func TestBuilder_ChoiceErrors(t *testing.T) {
	b := newServiceRequest(t).Set("occurrence", "2024-01-01")
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeInvalidType), "a bare value does not name an alternative")

	b = newServiceRequest(t).Set("occurrence", bind.AltValue("Timing", "x"))
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeUnknownField))

	b = newServiceRequest(t).Set("occurrenceDateTime", "not a date")
	iss, ok := schemabind.AsIssues(b.Err())
	require.True(t, ok)
	assert.Equal(t, schemabind.CodeInvalidFormat, iss[0].Code)
	assert.Equal(t, "/occurrenceDateTime", iss[0].Path)
	assert.Equal(t, "occurrence", iss[0].Field)

	_, err := b.Build()
	assert.Error(t, err)
}

func TestBuilder_SetErrors(t *testing.T) {
	b := newServiceRequest(t).
		Set("nope", 1).
		Set("doNotPerform", "yes")
	err := b.Err()
	require.Error(t, err)
	assert.True(t, schemabind.HasCode(err, schemabind.CodeUnknownField))
	assert.True(t, schemabind.HasCode(err, schemabind.CodeInvalidType))

	b = newServiceRequest(t).Set("subject", openFixture(t, "patient"))
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeInvalidType), "a Patient is not a Reference")
}

func TestBuilder_UnsetAndNil(t *testing.T) {
	b := newServiceRequest(t).Set("priority", "stat")
	v, err := b.Set("priority", nil).Build()
	require.NoError(t, err)
	assert.False(t, v.Has("priority"))

	b.Unset("code")
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeRequired))
}

func TestBuilder_RepeatedFields(t *testing.T) {
	b := newServiceRequest(t).
		Set("basedOn", []map[string]any{reference("ServiceRequest/1")}).
		Append("basedOn", reference("ServiceRequest/2"))
	v, err := b.Build()
	require.NoError(t, err)
	kids := v.Children("basedOn")
	require.Len(t, kids, 2)
	assert.Equal(t, "/basedOn/1", kids[1].Path())

	b.Append("intent", "plan")
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeInvalidType))

	b = newServiceRequest(t).Set("basedOn", reference("ServiceRequest/1"))
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeInvalidType), "repeated fields take slices")
}

func TestBuilder_Numbers(t *testing.T) {
	q, err := bind.New(fixtures.Catalog(), "Quantity")
	require.NoError(t, err)
	v, err := q.Set("value", 2.5).Set("unit", "mg").Set("comparator", "<=").Build()
	require.NoError(t, err)
	assert.Equal(t, json.Number("2.5"), v.ToJSON()["value"])

	v, err = q.Set("value", 3).Build()
	require.NoError(t, err)
	assert.Equal(t, json.Number("3"), v.ToJSON()["value"])

	c, err := bind.New(fixtures.Catalog(), "ObservationComponent", concept("x"))
	require.NoError(t, err)
	c.Set("valueInteger", 1.5)
	assert.True(t, schemabind.HasCode(c.Err(), schemabind.CodeInvalidType))
}

func TestBuilder_IntegerRange(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"uint64 in range", uint64(7), 7, true},
		{"max int64", int64(math.MaxInt64), math.MaxInt64, true},
		{"integral float", 1e15, 1_000_000_000_000_000, true},
		{"uint64 above int64", uint64(1 << 63), 0, false},
		{"float above int64", 1e20, 0, false},
		{"float at 2^63", float64(1 << 63), 0, false},
		{"float below int64", -1e19, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := bind.New(fixtures.Catalog(), "Patient")
			require.NoError(t, err)
			v, err := b.Set("multipleBirthInteger", tt.value).Build()
			if !tt.ok {
				assert.True(t, schemabind.HasCode(err, schemabind.CodeInvalidType), "err = %v", err)
				return
			}
			require.NoError(t, err)
			got, err := bind.Required[int64](v, "multipleBirthInteger")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_NilBuilderValue(t *testing.T) {
	b, err := bind.New(fixtures.Catalog(), "Patient")
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		b.Set("name", []any{(*bind.Builder)(nil)})
	})
	assert.True(t, schemabind.HasCode(b.Err(), schemabind.CodeInvalidType))
}

func TestBuilder_BuildIsRepeatable(t *testing.T) {
	b := newServiceRequest(t)
	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Set("priority", "asap").Build()
	require.NoError(t, err)
	assert.False(t, first.Has("priority"), "earlier Views are unaffected")
	assert.True(t, second.Has("priority"))
}

func TestBuilder_WithCopies(t *testing.T) {
	src := openFixture(t, "servicerequest")
	v, err := bind.With(src).Set("status", "completed").Build()
	require.NoError(t, err)
	s, _ := v.Enum("status")
	assert.Equal(t, "completed", s.Code())
	s, _ = src.Enum("status")
	assert.Equal(t, "active", s.Code())

	assert.Error(t, bind.With(bind.View{}).Err())
}

func TestBuilder_EnsureID(t *testing.T) {
	v, err := newServiceRequest(t).EnsureID().Build()
	require.NoError(t, err)
	id, ok := v.String("id")
	require.True(t, ok)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	v, err = newServiceRequest(t).Set("id", "fixed").EnsureID().Build()
	require.NoError(t, err)
	id, _ = v.String("id")
	assert.Equal(t, "fixed", id)

	c, err := bind.New(fixtures.Catalog(), "Coding")
	require.NoError(t, err)
	assert.Error(t, c.EnsureID().Err())
}

func TestMustBuild_Panics(t *testing.T) {
	b := newServiceRequest(t).Set("nope", 1)
	assert.Panics(t, func() { b.MustBuild() })
}
