package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/internal/fixtures"
	"github.com/reoring/schemabind/middleware"
)

func serve(t *testing.T, opt middleware.Options, contentType, body string) (*httptest.ResponseRecorder, bind.View) {
	t.Helper()
	var got bind.View
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := middleware.ViewFromContext(r.Context())
		require.True(t, ok)
		got = v
		w.WriteHeader(http.StatusNoContent)
	})
	h := middleware.Documents(fixtures.Catalog(), opt)(next)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got
}

func TestDocuments_Valid(t *testing.T) {
	rec, v := serve(t, middleware.Options{Parse: middleware.DefaultParseOpt()}, "application/json; charset=utf-8", string(fixtures.Bytes("servicerequest")))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ServiceRequest", v.TypeName())

	rec, v = serve(t, middleware.Options{Record: "Reference"}, "application/fhir+json", `{"reference":"Patient/1"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Reference", v.TypeName())
}

func TestDocuments_Rejects(t *testing.T) {
	var seen []string
	opt := middleware.Options{
		Parse:    middleware.DefaultParseOpt(),
		Validate: bind.ValidateOpt{Collect: true},
		OnIssues: func(_ *http.Request, iss schemabind.Issues) { seen = append(seen, iss.Codes()...) },
	}

	rec, _ := serve(t, opt, "text/plain", `{}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec, _ = serve(t, opt, "application/json", `{"a":1,"a":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, opt, "application/json", `{"resourceType":"ServiceRequest","status":"paused"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var payload struct {
		Issues []middleware.IssueJSON `json:"issues"`
	}
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Issues)
	assert.Equal(t, "/status", payload.Issues[0].Path)
	assert.Equal(t, schemabind.CodeInvalidEnum, payload.Issues[0].Code)
	assert.NotEmpty(t, payload.Issues[0].Message)

	assert.Equal(t, schemabind.CodeInvalidType, seen[0])
	assert.Equal(t, schemabind.CodeDuplicateKey, seen[1])
	assert.Contains(t, seen, schemabind.CodeRequired)
}

func TestDefaultParseOpt(t *testing.T) {
	opt := middleware.DefaultParseOpt()
	assert.Equal(t, schemabind.Error, opt.Strictness.OnDuplicateKey)
	assert.Equal(t, bind.DefaultMaxDepth, opt.MaxDepth)
}

func TestErrorPayload_Empty(t *testing.T) {
	b, err := gojson.Marshal(middleware.ErrorPayload(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"issues":[]}`, string(b))
}
