package bind

import (
	"bytes"

	gojson "github.com/goccy/go-json"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/schema"
)

// As projects a View into a Go value through its JSON tags, for callers that
// prefer plain structs for a read-mostly path. The View is not affected.
func As[T any](v View) (T, error) {
	var out T
	b, err := v.MarshalJSON()
	if err != nil {
		return out, err
	}
	if err := gojson.Unmarshal(b, &out); err != nil {
		return out, schemabind.Issues{{Path: v.Path(), Code: schemabind.CodeInvalidType, Message: err.Error(), Cause: err, Offset: -1}}
	}
	return out, nil
}

// FromValue builds a View from a Go value through its JSON tags. The value is
// serialized and parsed, so the View owns its node.
func FromValue(cat *schema.Catalog, record string, value any) (View, error) {
	b, err := gojson.Marshal(value)
	if err != nil {
		return View{}, err
	}
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return View{}, err
	}
	doc, err := schemabind.NormalizeDocument(raw)
	if err != nil {
		return View{}, err
	}
	return NewView(cat, record, doc)
}
