package schema

import "fmt"

// Record is a record type: an ordered list of field descriptors. A resource
// record carries the catalogue discriminator key in its documents.
type Record struct {
	Name        string
	Resource    bool
	Description string

	fields []*Field
	byName map[string]*Field
	byKey  map[string]*Field
}

// NewRecord builds a record from field descriptors in declaration order.
// Field keys default to the field name. Names and JSON keys, including every
// choice alternative key, must be unique within the record.
func NewRecord(name string, resource bool, fields ...Field) (*Record, error) {
	if name == "" {
		return nil, fmt.Errorf("record name is required")
	}
	r := &Record{
		Name:     name,
		Resource: resource,
		byName:   make(map[string]*Field, len(fields)),
		byKey:    make(map[string]*Field, len(fields)),
	}
	for i := range fields {
		f := fields[i]
		if f.Name == "" {
			return nil, fmt.Errorf("record %s: field %d has no name", name, i)
		}
		if f.Key == "" {
			f.Key = f.Name
		}
		if _, dup := r.byName[f.Name]; dup {
			return nil, fmt.Errorf("record %s: duplicate field %q", name, f.Name)
		}
		if f.Kind == KindChoice {
			if len(f.Choices) == 0 {
				return nil, fmt.Errorf("record %s: choice field %q has no alternatives", name, f.Name)
			}
			if f.Cardinality.Repeated() {
				return nil, fmt.Errorf("record %s: choice field %q cannot repeat", name, f.Name)
			}
		}
		fp := &f
		for _, k := range fp.Keys() {
			if other, dup := r.byKey[k]; dup {
				return nil, fmt.Errorf("record %s: key %q used by %q and %q", name, k, other.Name, f.Name)
			}
			r.byKey[k] = fp
		}
		r.byName[f.Name] = fp
		r.fields = append(r.fields, fp)
	}
	return r, nil
}

// Fields returns the descriptors in declaration order.
func (r *Record) Fields() []*Field { return r.fields }

// Field looks up a descriptor by logical name.
func (r *Record) Field(name string) (*Field, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// FieldByKey looks up the descriptor that owns a JSON key. Choice
// alternative keys resolve to their choice field.
func (r *Record) FieldByKey(key string) (*Field, bool) {
	f, ok := r.byKey[key]
	return f, ok
}

// Required returns the required descriptors in declaration order.
func (r *Record) Required() []*Field {
	var out []*Field
	for _, f := range r.fields {
		if f.Cardinality.Required() {
			out = append(out, f)
		}
	}
	return out
}
