// Package schemabind is the shared plumbing of a catalogue-driven,
// schema-binding runtime for tree-shaped documents:
//
// - A stable error model via Issues (JSON Pointer, code, message)
// - Document Values parsed from a pluggable token Source with duplicate-key,
//   depth and size enforcement
// - Document helpers (clone, kind, marshal, YAML decoding, pointer lookup)
// - The Codec interface used by enumeration and temporal codecs
//
// The catalogue lives in schema/, the typed View, Builder and Validator in
// bind/, codecs in codec/ and the CLI under cmd/schemabind.
//
// Typical usage:
//
//	cat, _ := schema.LoadFile(logger, "catalog.yaml")
//	doc, err := schemabind.ParseBytes(ctx, data)
//	v, err := bind.Open(cat, doc)
//	status, err := v.RequiredEnum("status")
//	err = bind.Validate(ctx, v)
package schemabind
