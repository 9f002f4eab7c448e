package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	msg := T("required", map[string]any{"field": "subject"})
	assert.Equal(t, "required field subject is missing", msg)

	SetLanguage("ja")
	defer SetLanguage("en")
	msg = T("required", map[string]any{"field": "subject"})
	assert.Contains(t, msg, "subject")
	assert.NotEqual(t, "required field subject is missing", msg)
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
}

func TestTranslator_PlaceholdersLeftWhenDataMissing(t *testing.T) {
	msg := T("invalid_enum", map[string]any{"field": "status"})
	assert.Equal(t, "field status: unknown code {code}", msg)
}

type upper struct{}

func (upper) Message(code string, _ map[string]any) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	assert.Equal(t, "X:required", T("required", nil))
}
