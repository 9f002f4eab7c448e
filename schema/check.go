package schema

import (
	"errors"
	"fmt"
)

// Check verifies that the catalogue is closed: every nested record and
// enumeration reference resolves, the discriminator key is not used by any
// field of a resource record, and any-resource references are only made when
// resource records exist. All problems are joined into one error.
func (c *Catalog) Check() error {
	var errs []error
	hasResource := false
	for _, name := range c.RecordNames() {
		if c.records[name].Resource {
			hasResource = true
			break
		}
	}
	for _, name := range c.RecordNames() {
		r := c.records[name]
		for _, f := range r.fields {
			where := fmt.Sprintf("%s.%s", r.Name, f.Name)
			if r.Resource {
				for _, k := range f.Keys() {
					if k == c.Discriminator {
						errs = append(errs, fmt.Errorf("%s: key %q collides with the discriminator", where, k))
					}
				}
			}
			switch f.Kind {
			case KindNested:
				errs = append(errs, c.checkRecordRef(where, f.Record, hasResource)...)
			case KindEnum:
				if _, ok := c.enums[f.Enum]; !ok {
					errs = append(errs, fmt.Errorf("%s: unknown enum %q", where, f.Enum))
				}
			case KindChoice:
				for _, a := range f.Choices {
					if a.Suffix == "" {
						errs = append(errs, fmt.Errorf("%s: choice alternative without suffix", where))
					}
					if a.Nested() {
						errs = append(errs, c.checkRecordRef(where+"["+a.Suffix+"]", a.Record, hasResource)...)
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Catalog) checkRecordRef(where, ref string, hasResource bool) []error {
	if ref == AnyResource {
		if !hasResource {
			return []error{fmt.Errorf("%s: any-resource reference but the catalogue has no resource records", where)}
		}
		return nil
	}
	if _, ok := c.records[ref]; !ok {
		return []error{fmt.Errorf("%s: unknown record %q", where, ref)}
	}
	return nil
}
