// Package gen renders typed Go wrappers over bind.View for catalogue
// records: one struct per record with an accessor per field and a
// constructor taking exactly the required fields.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/reoring/schemabind/schema"
)

// File describes one generated file.
type File struct {
	Package string
	// Records lists the record types to wrap; empty wraps every record.
	Records []string
}

type recordData struct {
	Type    string // Go type name
	Record  string // catalogue name
	Doc     string
	Params  []param
	Methods []method
}

type param struct {
	Name, Type string
}

type method struct {
	Doc, Name, Result, Body string
}

type fileData struct {
	Package string
	Imports []string
	Records []recordData
}

var fileTmpl = template.Must(template.New("file").Parse(`// Code generated by schemabind gen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)
{{range .Records}}
// {{.Type}} is a typed view of {{.Record}} records.{{if .Doc}}
// {{.Doc}}{{end}}
type {{.Type}} struct{ v bind.View }

// Wrap{{.Type}} checks that v is a {{.Record}}.
func Wrap{{.Type}}(v bind.View) ({{.Type}}, error) {
	if v.TypeName() != "{{.Record}}" {
		return {{.Type}}{}, fmt.Errorf("want {{.Record}}, got %q", v.TypeName())
	}
	return {{.Type}}{v: v}, nil
}

// New{{.Type}} starts a {{.Record}} from its required fields.
func New{{.Type}}(cat *schema.Catalog{{range .Params}}, {{.Name}} {{.Type}}{{end}}) (*bind.Builder, error) {
	return bind.New(cat, "{{.Record}}"{{range .Params}}, {{.Name}}{{end}})
}

// View returns the underlying View.
func (r {{.Type}}) View() bind.View { return r.v }
{{- $t := .Type}}
{{range .Methods}}
// {{.Name}} {{.Doc}}
func (r {{$t}}) {{.Name}}() {{.Result}} {
	{{.Body}}
}
{{end}}{{end}}`))

// Render generates the wrappers for f against cat.
func Render(cat *schema.Catalog, f File) ([]byte, error) {
	if f.Package == "" {
		return nil, fmt.Errorf("package name is required")
	}
	names := f.Records
	if len(names) == 0 {
		names = cat.RecordNames()
	}
	g := &generator{cat: cat, types: map[string]string{}, imports: map[string]bool{
		"fmt":                                  true,
		"github.com/reoring/schemabind/bind":   true,
		"github.com/reoring/schemabind/schema": true,
	}}
	for _, n := range names {
		if _, ok := cat.Record(n); !ok {
			return nil, fmt.Errorf("unknown record %q", n)
		}
		g.types[n] = GoName(n)
	}
	data := fileData{Package: f.Package}
	for _, n := range names {
		data.Records = append(data.Records, g.record(cat.MustRecord(n)))
	}
	for imp := range g.imports {
		data.Imports = append(data.Imports, imp)
	}
	sort.Slice(data.Imports, func(i, j int) bool {
		// Standard library first.
		si, sj := !strings.Contains(data.Imports[i], "."), !strings.Contains(data.Imports[j], ".")
		if si != sj {
			return si
		}
		return data.Imports[i] < data.Imports[j]
	})

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

type generator struct {
	cat     *schema.Catalog
	types   map[string]string // record name -> generated type
	imports map[string]bool
}

func (g *generator) record(r *schema.Record) recordData {
	rd := recordData{Type: g.types[r.Name], Record: r.Name, Doc: r.Description}
	used := map[string]bool{"View": true}
	for _, f := range r.Fields() {
		if f.Cardinality.Required() {
			rd.Params = append(rd.Params, param{Name: paramName(f.Name), Type: g.paramType(f)})
		}
		m := g.accessor(f)
		for used[m.Name] {
			m.Name += "Field"
		}
		used[m.Name] = true
		rd.Methods = append(rd.Methods, m)
	}
	return rd
}

func (g *generator) scalarType(t schema.ScalarType) string {
	switch t {
	case schema.Boolean:
		return "bool"
	case schema.Integer:
		return "int64"
	case schema.Decimal:
		g.imports["encoding/json"] = true
		return "json.Number"
	case schema.Date, schema.DateTime, schema.Instant:
		g.imports["time"] = true
		return "time.Time"
	}
	return "string"
}

// nestedType returns the wrapper type for a record reference, or bind.View
// when the record is not generated.
func (g *generator) nestedType(record string) (string, bool) {
	if t, ok := g.types[record]; ok {
		return t, true
	}
	return "bind.View", false
}

func (g *generator) paramType(f *schema.Field) string {
	var t string
	switch f.Kind {
	case schema.KindScalar:
		t = g.scalarType(f.Scalar)
	case schema.KindEnum:
		t = "schema.Symbol"
	case schema.KindNested:
		t = "bind.View"
	case schema.KindChoice:
		return "bind.ChoiceValue"
	}
	if f.Cardinality.Repeated() {
		return "[]" + t
	}
	return t
}

func (g *generator) accessor(f *schema.Field) method {
	name := GoName(f.Name)
	q := fmt.Sprintf("%q", f.Name)
	card := f.Cardinality
	switch f.Kind {
	case schema.KindScalar:
		t := g.scalarType(f.Scalar)
		switch {
		case card.Repeated():
			return method{Name: name, Doc: "returns the " + f.Name + " values.", Result: "[]" + t,
				Body: fmt.Sprintf("return bind.Repeated[%s](r.v, %s)", t, q)}
		case card.Required():
			return method{Name: name, Doc: "returns the required " + f.Name + ".", Result: "(" + t + ", error)",
				Body: fmt.Sprintf("return bind.Required[%s](r.v, %s)", t, q)}
		}
		return method{Name: name, Doc: "returns " + f.Name + " when present.", Result: "(" + t + ", bool)",
			Body: fmt.Sprintf("return bind.Optional[%s](r.v, %s)", t, q)}

	case schema.KindEnum:
		switch {
		case card.Repeated():
			return method{Name: name, Doc: "decodes the " + f.Name + " codes.", Result: "([]schema.Symbol, error)",
				Body: fmt.Sprintf("return r.v.Enums(%s)", q)}
		case card.Required():
			return method{Name: name, Doc: "decodes the required " + f.Name + ".", Result: "(schema.Symbol, error)",
				Body: fmt.Sprintf("return r.v.RequiredEnum(%s)", q)}
		}
		return method{Name: name, Doc: "decodes " + f.Name + "; the zero Symbol means absent.", Result: "(schema.Symbol, error)",
			Body: fmt.Sprintf("return r.v.Enum(%s)", q)}

	case schema.KindChoice:
		return method{Name: name, Doc: "resolves the " + f.Name + " choice.", Result: "(bind.Variant, bool, error)",
			Body: fmt.Sprintf("return r.v.Choice(%s)", q)}
	}

	t, wrapped := g.nestedType(f.Record)
	switch {
	case card.Repeated():
		body := fmt.Sprintf("return r.v.Children(%s)", q)
		if wrapped {
			body = fmt.Sprintf("views := r.v.Children(%s)\n\tout := make([]%s, len(views))\n\tfor i, c := range views {\n\t\tout[i] = %s{v: c}\n\t}\n\treturn out", q, t, t)
		}
		return method{Name: name, Doc: "returns the " + f.Name + " elements.", Result: "[]" + t, Body: body}
	case card.Required():
		body := fmt.Sprintf("return r.v.RequiredChild(%s)", q)
		if wrapped {
			body = fmt.Sprintf("c, err := r.v.RequiredChild(%s)\n\treturn %s{v: c}, err", q, t)
		}
		return method{Name: name, Doc: "returns the required " + f.Name + ".", Result: "(" + t + ", error)", Body: body}
	}
	body := fmt.Sprintf("return r.v.Child(%s)", q)
	if wrapped {
		body = fmt.Sprintf("c, ok := r.v.Child(%s)\n\treturn %s{v: c}, ok", q, t)
	}
	return method{Name: name, Doc: "returns " + f.Name + " when present.", Result: "(" + t + ", bool)", Body: body}
}

// GoName turns a catalogue name into an exported Go identifier.
func GoName(name string) string {
	s := schema.SymbolName(name)
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('X')
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}

func paramName(field string) string {
	r := []rune(GoName(field))
	r[0] = unicode.ToLower(r[0])
	p := string(r)
	if token.IsKeyword(p) || p == "cat" {
		p += "Value"
	}
	return p
}
