package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// File is the YAML form of a catalogue document.
//
//	discriminator: resourceType
//	enums:
//	  - name: request-status
//	    values:
//	      - code: active
//	      - {code: entered-in-error, symbol: EnteredInError}
//	records:
//	  - name: ServiceRequest
//	    resource: true
//	    fields:
//	      - {name: status, card: "1..1", enum: request-status}
//	      - {name: subject, card: "1..1", record: Reference}
//	      - name: occurrence
//	        choice:
//	          - {suffix: DateTime, type: dateTime}
//	          - {suffix: Period, record: Period}
type File struct {
	Discriminator string       `yaml:"discriminator"`
	Enums         []EnumSpec   `yaml:"enums"`
	Records       []RecordSpec `yaml:"records"`
}

// EnumSpec is the YAML form of an enumeration.
type EnumSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Values      []EnumValue `yaml:"values"`
}

// RecordSpec is the YAML form of a record type.
type RecordSpec struct {
	Name        string      `yaml:"name"`
	Resource    bool        `yaml:"resource"`
	Description string      `yaml:"description"`
	Fields      []FieldSpec `yaml:"fields"`
}

// FieldSpec is the YAML form of a field descriptor. Exactly one of Type,
// Record, Enum or Choice must be set.
type FieldSpec struct {
	Name        string            `yaml:"name"`
	Key         string            `yaml:"key"`
	Card        string            `yaml:"card"`
	Type        string            `yaml:"type"`
	Record      string            `yaml:"record"`
	Enum        string            `yaml:"enum"`
	Choice      []AlternativeSpec `yaml:"choice"`
	Description string            `yaml:"description"`
}

// AlternativeSpec is the YAML form of a choice alternative.
type AlternativeSpec struct {
	Suffix string `yaml:"suffix"`
	Type   string `yaml:"type"`
	Record string `yaml:"record"`
}

// Loader reads catalogue documents from YAML.
type Loader struct {
	log zerolog.Logger
}

// NewLoader returns a Loader that reports progress to log.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log.With().Str("component", "catalog").Logger()}
}

var nopLoader = NewLoader(zerolog.Nop())

// Parse reads one catalogue document from YAML bytes and checks it.
func Parse(data []byte) (*Catalog, error) { return nopLoader.Parse(data) }

// LoadFile reads and checks one catalogue file.
func LoadFile(p string) (*Catalog, error) { return nopLoader.LoadFile(p) }

// LoadDir reads and checks every catalogue file under a directory.
func LoadDir(dir string) (*Catalog, error) { return nopLoader.LoadDir(dir) }

// Parse reads one catalogue document from YAML bytes and checks it.
func (l *Loader) Parse(data []byte) (*Catalog, error) {
	cat, err := l.decode(data)
	if err != nil {
		return nil, err
	}
	if err := cat.Check(); err != nil {
		return nil, fmt.Errorf("check catalog: %w", err)
	}
	return cat, nil
}

// LoadFile reads and checks one catalogue file.
func (l *Loader) LoadFile(p string) (*Catalog, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", p, err)
	}
	cat, err := l.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if err := cat.Check(); err != nil {
		return nil, fmt.Errorf("check catalog %s: %w", p, err)
	}
	l.log.Info().Str("file", p).Int("records", len(cat.records)).Int("enums", len(cat.enums)).Msg("catalog loaded")
	return cat, nil
}

// LoadDir reads every .yaml/.yml file under dir, including subdirectories,
// merges them into one catalogue and checks the result. References may
// cross files.
func (l *Loader) LoadDir(dir string) (*Catalog, error) {
	return l.LoadFS(os.DirFS(dir), ".")
}

// LoadFS is LoadDir over an fs.FS rooted at root.
func (l *Loader) LoadFS(fsys fs.FS, root string) (*Catalog, error) {
	var merged *Catalog
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			l.log.Debug().Str("file", p).Msg("skipping non-yaml file")
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read file %s: %w", p, err)
		}
		cat, err := l.decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.ToSlash(p), err)
		}
		if merged == nil {
			merged = cat
			return nil
		}
		if err := merged.Merge(cat); err != nil {
			return fmt.Errorf("%s: %w", filepath.ToSlash(p), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if merged == nil {
		return nil, fmt.Errorf("no catalog files under %s", root)
	}
	if err := merged.Check(); err != nil {
		return nil, fmt.Errorf("check catalog: %w", err)
	}
	l.log.Info().Int("records", len(merged.records)).Int("enums", len(merged.enums)).Msg("catalog loaded")
	return merged, nil
}

func (l *Loader) decode(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return l.build(f)
}

func (l *Loader) build(f File) (*Catalog, error) {
	cat := NewCatalog(f.Discriminator)
	var errs []string
	for _, es := range f.Enums {
		e, err := NewEnum(es.Name, es.Values...)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		e.Description = es.Description
		if err := cat.AddEnum(e); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		l.log.Debug().Str("enum", e.Name).Int("values", len(es.Values)).Msg("enum defined")
	}
	for _, rs := range f.Records {
		r, err := rs.toRecord()
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := cat.AddRecord(r); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		l.log.Debug().Str("record", r.Name).Bool("resource", r.Resource).Int("fields", len(r.fields)).Msg("record defined")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cat, nil
}

func (rs RecordSpec) toRecord() (*Record, error) {
	fields := make([]Field, 0, len(rs.Fields))
	for _, spec := range rs.Fields {
		f, err := spec.toField()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rs.Name, err)
		}
		fields = append(fields, f)
	}
	r, err := NewRecord(rs.Name, rs.Resource, fields...)
	if err != nil {
		return nil, err
	}
	r.Description = rs.Description
	return r, nil
}

var errKindCount = errors.New("exactly one of type, record, enum or choice is required")

func (spec FieldSpec) toField() (Field, error) {
	card, err := ParseCardinality(spec.Card)
	if err != nil {
		return Field{}, fmt.Errorf("field %s: %w", spec.Name, err)
	}
	f := Field{Name: spec.Name, Key: spec.Key, Cardinality: card, Description: spec.Description}
	set := 0
	if spec.Type != "" {
		set++
		t, ok := ParseScalarType(spec.Type)
		if !ok {
			return Field{}, fmt.Errorf("field %s: unknown scalar type %q", spec.Name, spec.Type)
		}
		f.Kind, f.Scalar = KindScalar, t
	}
	if spec.Record != "" {
		set++
		f.Kind, f.Record = KindNested, spec.Record
	}
	if spec.Enum != "" {
		set++
		f.Kind, f.Enum = KindEnum, spec.Enum
	}
	if len(spec.Choice) > 0 {
		set++
		f.Kind = KindChoice
		for _, as := range spec.Choice {
			a, err := as.toAlternative()
			if err != nil {
				return Field{}, fmt.Errorf("field %s: %w", spec.Name, err)
			}
			f.Choices = append(f.Choices, a)
		}
	}
	if set != 1 {
		return Field{}, fmt.Errorf("field %s: %w", spec.Name, errKindCount)
	}
	return f, nil
}

func (as AlternativeSpec) toAlternative() (Alternative, error) {
	switch {
	case as.Record != "" && as.Type == "":
		return Alternative{Suffix: as.Suffix, Record: as.Record}, nil
	case as.Type != "" && as.Record == "":
		t, ok := ParseScalarType(as.Type)
		if !ok {
			return Alternative{}, fmt.Errorf("alternative %s: unknown scalar type %q", as.Suffix, as.Type)
		}
		return Alternative{Suffix: as.Suffix, Scalar: t}, nil
	}
	return Alternative{}, fmt.Errorf("alternative %s: exactly one of type or record is required", as.Suffix)
}
