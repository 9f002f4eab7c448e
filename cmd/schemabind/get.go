package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/schema"
)

func newGetCmd(a *app) *cobra.Command {
	var record string
	cmd := &cobra.Command{
		Use:   "get <file> <field>[.<field>|.<index>]...",
		Short: "Read a field through the catalogue",
		Long: `Read a field by its catalogue name. Nested fields are separated by dots and
elements of repeated nested fields are selected by index. Choice fields
resolve to their present alternative.

Examples:
  schemabind get request.json priority
  schemabind get request.json code.coding.0.display
  schemabind get observation.json component.1.value`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openView(cmd.Context(), cmd, args[0], record)
			if err != nil {
				return err
			}
			out, err := getPath(v, strings.Split(args[1], "."))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&record, "record", "", "record type (default: from the discriminator)")
	return cmd
}

// getPath walks segs from v and renders the final field.
func getPath(v bind.View, segs []string) (any, error) {
	for i := 0; i < len(segs); i++ {
		name := segs[i]
		f, ok := v.Type().Field(name)
		if !ok {
			f, ok = v.Type().FieldByKey(name)
		}
		if !ok {
			return nil, fmt.Errorf("%s has no field %q", v.TypeName(), name)
		}
		if i == len(segs)-1 {
			return render(v, f, name)
		}
		if !nested(f, name) {
			return nil, fmt.Errorf("%s.%s is not a nested record", v.TypeName(), name)
		}
		if !f.Cardinality.Repeated() {
			child, ok := v.Child(name)
			if !ok {
				return nil, fmt.Errorf("%s is absent at %s", name, v.Path())
			}
			v = child
			continue
		}
		idx, err := strconv.Atoi(segs[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s is repeated; want an index after it, got %q", name, segs[i+1])
		}
		child, ok := childAt(v, name, idx)
		if !ok {
			return nil, fmt.Errorf("%s has no element %d", name, idx)
		}
		v = child
		i++
		if i == len(segs)-1 {
			return child.ToJSON(), nil
		}
	}
	return nil, fmt.Errorf("empty field path")
}

func nested(f *schema.Field, name string) bool {
	if f.Kind != schema.KindChoice {
		return f.Kind == schema.KindNested
	}
	alt, ok := f.Alternative(name)
	return ok && alt.Nested()
}

func childAt(v bind.View, name string, idx int) (bind.View, bool) {
	suffix := "/" + strconv.Itoa(idx)
	for _, c := range v.Children(name) {
		if strings.HasSuffix(c.Path(), suffix) {
			return c, true
		}
	}
	return bind.View{}, false
}

func render(v bind.View, f *schema.Field, name string) (any, error) {
	if !v.Has(name) {
		return nil, fmt.Errorf("%s is absent at %s", name, v.Path())
	}
	switch f.Kind {
	case schema.KindEnum:
		if f.Cardinality.Repeated() {
			syms, err := v.Enums(name)
			if err != nil {
				return nil, err
			}
			out := make([]any, len(syms))
			for i, s := range syms {
				out[i] = symbolJSON(s)
			}
			return out, nil
		}
		s, err := v.Enum(name)
		if err != nil {
			return nil, err
		}
		return symbolJSON(s), nil
	case schema.KindChoice:
		if _, isAlt := f.Alternative(name); !isAlt {
			x, _, err := v.Choice(name)
			if err != nil {
				return nil, err
			}
			return map[string]any{"key": x.Key, "value": x.Raw()}, nil
		}
		return v.ToJSON()[name], nil
	}
	return v.ToJSON()[f.Key], nil
}

func symbolJSON(s schema.Symbol) map[string]any {
	return map[string]any{"code": s.Code(), "symbol": s.Name(), "display": s.Display()}
}
