package schema

import (
	"fmt"

	js "github.com/reoring/schemabind/jsonschema"
)

// JSONSchema exports a record type, and every record and enumeration it
// reaches, as a JSON Schema document. Referenced records live under $defs.
// Choice fields become one property per alternative key with an at-most-one
// constraint (at-least-one as well when the field is required).
func (c *Catalog) JSONSchema(record string) (*js.Schema, error) {
	r, ok := c.records[record]
	if !ok {
		return nil, fmt.Errorf("unknown record %q", record)
	}
	x := &exporter{cat: c, defs: map[string]*js.Schema{}}
	x.define(r)
	root := &js.Schema{
		Schema: js.Draft,
		Title:  r.Name,
		Ref:    js.DefRef(r.Name),
		Defs:   x.defs,
	}
	return root, nil
}

type exporter struct {
	cat  *Catalog
	defs map[string]*js.Schema
}

func (x *exporter) define(r *Record) {
	if _, done := x.defs[r.Name]; done {
		return
	}
	s := &js.Schema{
		Type:                 "object",
		Description:          r.Description,
		Properties:           map[string]*js.Schema{},
		AdditionalProperties: false,
	}
	// registered before recursing so cycles terminate
	x.defs[r.Name] = s
	if r.Resource {
		s.Properties[x.cat.Discriminator] = &js.Schema{Type: "string", Const: r.Name}
		s.Required = append(s.Required, x.cat.Discriminator)
	}
	for _, f := range r.fields {
		if f.Kind == KindChoice {
			x.choice(s, f)
			continue
		}
		s.Properties[f.Key] = x.cardinality(f, x.value(f))
		if f.Cardinality.Required() {
			s.Required = append(s.Required, f.Key)
		}
	}
}

func (x *exporter) cardinality(f *Field, item *js.Schema) *js.Schema {
	item.Description = f.Description
	if !f.Cardinality.Repeated() {
		return item
	}
	arr := &js.Schema{Type: "array", Items: item}
	if f.Cardinality == OneOrMore {
		arr.MinItems = js.Int(1)
	}
	return arr
}

func (x *exporter) value(f *Field) *js.Schema {
	switch f.Kind {
	case KindNested:
		return x.recordRef(f.Record)
	case KindEnum:
		s := &js.Schema{Type: "string"}
		if e, ok := x.cat.enums[f.Enum]; ok {
			for _, code := range e.Codes() {
				s.Enum = append(s.Enum, code)
			}
		}
		return s
	}
	return scalarSchema(f.Scalar)
}

func (x *exporter) recordRef(name string) *js.Schema {
	if name == AnyResource {
		s := &js.Schema{}
		for _, rn := range x.cat.RecordNames() {
			if r := x.cat.records[rn]; r.Resource {
				x.define(r)
				s.OneOf = append(s.OneOf, &js.Schema{Ref: js.DefRef(rn)})
			}
		}
		return s
	}
	if r, ok := x.cat.records[name]; ok {
		x.define(r)
	}
	return &js.Schema{Ref: js.DefRef(name)}
}

func (x *exporter) choice(s *js.Schema, f *Field) {
	keys := f.Keys()
	for i, a := range f.Choices {
		var v *js.Schema
		if a.Nested() {
			v = x.recordRef(a.Record)
		} else {
			v = scalarSchema(a.Scalar)
		}
		v.Description = f.Description
		s.Properties[keys[i]] = v
	}
	if len(keys) > 1 {
		var pairs []*js.Schema
		for i := range keys {
			for j := i + 1; j < len(keys); j++ {
				pairs = append(pairs, &js.Schema{Required: []string{keys[i], keys[j]}})
			}
		}
		s.AllOf = append(s.AllOf, &js.Schema{Not: &js.Schema{AnyOf: pairs}})
	}
	if f.Cardinality.Required() {
		one := &js.Schema{}
		for _, k := range keys {
			one.AnyOf = append(one.AnyOf, &js.Schema{Required: []string{k}})
		}
		s.AllOf = append(s.AllOf, one)
	}
}

func scalarSchema(t ScalarType) *js.Schema {
	switch t {
	case Boolean:
		return &js.Schema{Type: "boolean"}
	case Integer:
		return &js.Schema{Type: "integer"}
	case Decimal:
		return &js.Schema{Type: "number"}
	case Date:
		return &js.Schema{Type: "string", Format: "date"}
	case DateTime, Instant:
		return &js.Schema{Type: "string", Format: "date-time"}
	}
	return &js.Schema{Type: "string"}
}
