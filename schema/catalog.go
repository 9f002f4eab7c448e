package schema

import (
	"fmt"
	"sort"
)

// DefaultDiscriminator is the key that names the record type of a resource
// document.
const DefaultDiscriminator = "resourceType"

// Catalog is a closed set of record types and enumerations. A Catalog is
// built once and then shared read-only; it is safe for concurrent readers.
type Catalog struct {
	Discriminator string

	records map[string]*Record
	enums   map[string]*Enum
}

// NewCatalog creates an empty catalogue. An empty discriminator selects
// DefaultDiscriminator.
func NewCatalog(discriminator string) *Catalog {
	if discriminator == "" {
		discriminator = DefaultDiscriminator
	}
	return &Catalog{
		Discriminator: discriminator,
		records:       map[string]*Record{},
		enums:         map[string]*Enum{},
	}
}

// AddRecord registers record types. Names must be unique.
func (c *Catalog) AddRecord(rs ...*Record) error {
	for _, r := range rs {
		if r == nil {
			return fmt.Errorf("nil record")
		}
		if r.Name == AnyResource {
			return fmt.Errorf("record name %q is reserved", AnyResource)
		}
		if _, dup := c.records[r.Name]; dup {
			return fmt.Errorf("duplicate record %q", r.Name)
		}
		c.records[r.Name] = r
	}
	return nil
}

// AddEnum registers enumerations. Names must be unique.
func (c *Catalog) AddEnum(es ...*Enum) error {
	for _, e := range es {
		if e == nil {
			return fmt.Errorf("nil enum")
		}
		if _, dup := c.enums[e.Name]; dup {
			return fmt.Errorf("duplicate enum %q", e.Name)
		}
		c.enums[e.Name] = e
	}
	return nil
}

// Merge adds every record and enumeration of other.
func (c *Catalog) Merge(other *Catalog) error {
	if other.Discriminator != c.Discriminator {
		return fmt.Errorf("discriminator mismatch: %q vs %q", c.Discriminator, other.Discriminator)
	}
	for _, name := range other.EnumNames() {
		if err := c.AddEnum(other.enums[name]); err != nil {
			return err
		}
	}
	for _, name := range other.RecordNames() {
		if err := c.AddRecord(other.records[name]); err != nil {
			return err
		}
	}
	return nil
}

// Record looks up a record type.
func (c *Catalog) Record(name string) (*Record, bool) {
	r, ok := c.records[name]
	return r, ok
}

// Enum looks up an enumeration.
func (c *Catalog) Enum(name string) (*Enum, bool) {
	e, ok := c.enums[name]
	return e, ok
}

// RecordNames returns every record type name, sorted.
func (c *Catalog) RecordNames() []string { return sortedNames(c.records) }

// EnumNames returns every enumeration name, sorted.
func (c *Catalog) EnumNames() []string { return sortedNames(c.enums) }

// Resource looks up a resource record by discriminator value.
func (c *Catalog) Resource(name string) (*Record, bool) {
	r, ok := c.records[name]
	if !ok || !r.Resource {
		return nil, false
	}
	return r, true
}

// MustRecord is Record that panics when the type is missing.
func (c *Catalog) MustRecord(name string) *Record {
	r, ok := c.records[name]
	if !ok {
		panic(fmt.Sprintf("schema: unknown record %q", name))
	}
	return r
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
