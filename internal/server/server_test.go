package server_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/internal/fixtures"
	"github.com/reoring/schemabind/internal/server"
	"github.com/reoring/schemabind/middleware"
)

func newServer(t *testing.T, opt server.Options) (*server.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	opt.Registry = reg
	opt.Parse = middleware.DefaultParseOpt()
	return server.New(fixtures.Catalog(), zerolog.Nop(), opt), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func issueCodes(t *testing.T, payload map[string]any) []string {
	t.Helper()
	raw, ok := payload["issues"].([]any)
	require.True(t, ok, "payload has no issues: %v", payload)
	var codes []string
	for _, it := range raw {
		codes = append(codes, it.(map[string]any)["code"].(string))
	}
	return codes
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t, server.Options{})
	rec, body := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestRecords(t *testing.T) {
	s, _ := newServer(t, server.Options{})
	rec, body := do(t, s.Handler(), http.MethodGet, "/records", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["records"], "ServiceRequest")
	assert.Contains(t, body["enums"], "request-intent")

	rec, body = do(t, s.Handler(), http.MethodGet, "/records/Patient", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#/$defs/Patient", body["$ref"])

	rec, body = do(t, s.Handler(), http.MethodGet, "/records/Nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []string{"unknown_record"}, issueCodes(t, body))
}

func TestValidate(t *testing.T) {
	s, _ := newServer(t, server.Options{})
	h := s.Handler()

	rec, body := do(t, h, http.MethodPost, "/validate", string(fixtures.Bytes("servicerequest")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "ServiceRequest", body["record"])

	rec, body = do(t, h, http.MethodPost, "/validate/Reference", `{"reference":"Patient/1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Reference", body["record"])
}

func TestValidateRejects(t *testing.T) {
	s, _ := newServer(t, server.Options{Validate: bind.ValidateOpt{Collect: true}})
	h := s.Handler()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		codes  []string
	}{
		{"malformed", "/validate", `{"resourceType":`, http.StatusBadRequest, nil},
		{"duplicate key", "/validate", `{"resourceType":"Patient","resourceType":"Patient"}`, http.StatusBadRequest, []string{"duplicate_key"}},
		{"no discriminator", "/validate", `{"status":"active"}`, http.StatusUnprocessableEntity, []string{"discriminator_missing"}},
		{"missing required", "/validate", `{"resourceType":"ServiceRequest","intent":"order"}`, http.StatusUnprocessableEntity, []string{"required", "required"}},
		{"bad enum", "/validate/Quantity", `{"comparator":"~"}`, http.StatusUnprocessableEntity, []string{"invalid_enum"}},
		{"unknown record", "/validate/Nope", `{}`, http.StatusNotFound, []string{"unknown_record"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			codes := issueCodes(t, body)
			if tt.codes != nil {
				assert.Equal(t, tt.codes, codes)
			} else {
				assert.NotEmpty(t, codes)
			}
		})
	}
}

func TestValidateContentType(t *testing.T) {
	s, _ := newServer(t, server.Options{})
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newServer(t, server.Options{})
	h := s.Handler()
	do(t, h, http.MethodPost, "/validate", string(fixtures.Bytes("patient")))
	do(t, h, http.MethodPost, "/validate/Quantity", `{"comparator":"~"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `schemabind_documents_total{outcome="valid",record="Patient"} 1`)
	assert.Contains(t, out, `schemabind_documents_total{outcome="invalid",record="Quantity"} 1`)
	assert.Contains(t, out, `schemabind_issues_total{code="invalid_enum"} 1`)
	assert.Contains(t, out, `route="/validate/{record}"`)
}

func TestServeShutsDown(t *testing.T) {
	s, _ := newServer(t, server.Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/validate", "application/json", bytes.NewReader(fixtures.Bytes("observation")))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
