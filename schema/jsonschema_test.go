package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/internal/fixtures"
	js "github.com/reoring/schemabind/jsonschema"
)

func TestJSONSchema_ServiceRequest(t *testing.T) {
	cat := fixtures.Catalog()
	s, err := cat.JSONSchema("ServiceRequest")
	require.NoError(t, err)

	assert.Equal(t, js.Draft, s.Schema)
	assert.Equal(t, "#/$defs/ServiceRequest", s.Ref)
	sr := s.Defs["ServiceRequest"]
	require.NotNil(t, sr)
	assert.Equal(t, "object", sr.Type)
	assert.Equal(t, []string{"resourceType", "intent", "code", "subject"}, sr.Required)
	assert.Equal(t, "ServiceRequest", sr.Properties["resourceType"].Const)

	priority := sr.Properties["priority"]
	assert.Equal(t, []any{"routine", "urgent", "asap", "stat"}, priority.Enum)

	basedOn := sr.Properties["basedOn"]
	assert.Equal(t, "array", basedOn.Type)
	assert.Equal(t, "#/$defs/Reference", basedOn.Items.Ref)

	assert.Equal(t, "date-time", sr.Properties["occurrenceDateTime"].Format)
	assert.Equal(t, "#/$defs/Period", sr.Properties["occurrencePeriod"].Ref)
	require.NotEmpty(t, sr.AllOf)
	assert.NotNil(t, sr.AllOf[0].Not)

	contained := sr.Properties["contained"].Items
	assert.Len(t, contained.OneOf, 3, "every resource record")

	for _, name := range []string{"Reference", "Identifier", "Period", "CodeableConcept", "Coding", "Annotation", "Patient", "Observation"} {
		assert.Contains(t, s.Defs, name)
	}

	b, err := schemabind.MarshalDocument(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"$defs"`)
}

func TestJSONSchema_RequiredChoice(t *testing.T) {
	cat := fixtures.Catalog()
	s, err := cat.JSONSchema("Annotation")
	require.NoError(t, err)
	ann := s.Defs["Annotation"]
	assert.Equal(t, []string{"text"}, ann.Required)
	assert.Len(t, ann.AllOf, 1, "optional choice only forbids two alternatives")

	_, err = cat.JSONSchema("Nope")
	assert.Error(t, err)
}
