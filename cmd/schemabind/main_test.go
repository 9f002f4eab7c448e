package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemabind/internal/fixtures"
)

// run executes the CLI in a scratch directory and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func scratch(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

func TestValidateCmd(t *testing.T) {
	dir := scratch(t)
	good := writeFile(t, dir, "sr.json", fixtures.Bytes("servicerequest"))
	bad := writeFile(t, dir, "bad.json", []byte(`{"resourceType":"ServiceRequest","intent":"order","code":{}}`))

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "sr.json: ok")

	out, err = run(t, "validate", "--driver", "gojson", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "required at /subject")
	assert.Contains(t, err.Error(), "1 of 2 documents invalid")
}

func TestValidateCmd_StrictAndYAML(t *testing.T) {
	dir := scratch(t)
	doc := writeFile(t, dir, "p.yaml", []byte("resourceType: Patient\ngender: male\nnickname: Pete\n"))

	_, err := run(t, "validate", doc)
	require.NoError(t, err)

	out, err := run(t, "validate", "--strict", doc)
	require.Error(t, err)
	assert.Contains(t, out, "unknown_key")
}

func TestValidateCmd_DuplicateKeys(t *testing.T) {
	dir := scratch(t)
	doc := writeFile(t, dir, "dup.json", []byte(`{"resourceType":"Patient","gender":"male","gender":"female"}`))
	out, err := run(t, "validate", doc)
	require.Error(t, err)
	assert.Contains(t, out, "duplicate_key")

	writeFile(t, dir, "schemabind.yaml", []byte("parse:\n  duplicate_keys: ignore\n"))
	_, err = run(t, "validate", doc)
	assert.NoError(t, err)
}

func TestGetCmd(t *testing.T) {
	dir := scratch(t)
	sr := writeFile(t, dir, "sr.json", fixtures.Bytes("servicerequest"))

	out, err := run(t, "get", sr, "code.coding.0.display")
	require.NoError(t, err)
	assert.JSONEq(t, `"Chest CT"`, out)

	out, err = run(t, "get", sr, "priority")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"urgent","symbol":"Urgent","display":"Urgent"}`, out)

	out, err = run(t, "get", sr, "occurrence")
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"occurrenceDateTime","value":"2024-03-05T09:30:00+01:00"}`, out)

	out, err = run(t, "get", sr, "contained.0")
	require.NoError(t, err)
	assert.Contains(t, out, `"resourceType": "Patient"`)

	_, err = run(t, "get", sr, "requester")
	assert.ErrorContains(t, err, "absent")
	_, err = run(t, "get", sr, "nope")
	assert.ErrorContains(t, err, "no field")
}

func TestBuildCmd(t *testing.T) {
	scratch(t)
	out, err := run(t, "build", "ServiceRequest", "order", `{"text":"CBC"}`, `{"reference":"Patient/1"}`,
		"--set", "priority=routine",
		"--set", "occurrence=DateTime=2024-05-01",
		"--set", "doNotPerform=false",
		"--id")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "ServiceRequest", doc["resourceType"])
	assert.Equal(t, "routine", doc["priority"])
	assert.Equal(t, "2024-05-01", doc["occurrenceDateTime"])
	assert.Equal(t, false, doc["doNotPerform"])
	assert.NotEmpty(t, doc["id"])

	_, err = run(t, "build", "ServiceRequest", "order")
	assert.ErrorContains(t, err, "requires 3 values (intent, code, subject)")

	_, err = run(t, "build", "ServiceRequest", "order", `{"text":"CBC"}`, `{"reference":"Patient/1"}`, "--set", "priority=whenever")
	assert.ErrorContains(t, err, "invalid_enum")
}

func TestJSONSchemaCmd(t *testing.T) {
	scratch(t)
	out, err := run(t, "jsonschema", "Patient")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "#/$defs/Patient", doc["$ref"])

	_, err = run(t, "jsonschema", "Nope")
	assert.Error(t, err)
}

func TestCatalogCmd(t *testing.T) {
	scratch(t)
	out, err := run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "ServiceRequest")
	assert.Contains(t, out, "intent, code, subject")

	out, err = run(t, "catalog", "Observation")
	require.NoError(t, err)
	assert.Contains(t, out, "valueQuantity,valueCodeableConcept")

	out, err = run(t, "catalog", "request-priority")
	require.NoError(t, err)
	assert.Contains(t, out, "ASAP")

	_, err = run(t, "catalog", "Nope")
	assert.Error(t, err)
}

func TestCatalogFlag(t *testing.T) {
	dir := scratch(t)
	cat := writeFile(t, dir, "cat.yaml", []byte(`
records:
  - name: Note
    resource: true
    fields:
      - {name: text, card: "1..1", type: string}
`))
	doc := writeFile(t, dir, "n.json", []byte(`{"resourceType":"Note"}`))
	out, err := run(t, "--catalog", cat, "validate", doc)
	require.Error(t, err)
	assert.Contains(t, out, "/text")

	_, err = run(t, "--catalog", filepath.Join(dir, "missing"), "catalog")
	assert.ErrorContains(t, err, "catalog")
}

func TestGenCmd(t *testing.T) {
	dir := scratch(t)
	out, err := run(t, "gen", "--package", "clinical", "--record", "Patient")
	require.NoError(t, err)
	assert.Contains(t, out, "func NewPatient(cat *schema.Catalog) (*bind.Builder, error)")

	target := filepath.Join(dir, "patient_gen.go")
	_, err = run(t, "gen", "-p", "clinical", "-r", "Patient", "-o", target)
	require.NoError(t, err)
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, out, string(b))
}

func TestServeCmd_BadAddr(t *testing.T) {
	scratch(t)
	_, err := run(t, "serve", "--addr", "not-an-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing port")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
