package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/schema"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		sets     []string
		ensureID bool
	)
	cmd := &cobra.Command{
		Use:   "build <record> [required-value]...",
		Short: "Build a document from its required fields",
		Long: `Build a new document. Required fields are given positionally in catalogue
order; "schemabind catalog <record>" lists them. Optional fields are set with
--set name=value. Values are JSON; text that is not valid JSON is taken as a
string. Choice fields take Suffix=value, e.g. --set occurrence=DateTime=2024-05-01.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rec, ok := a.cat.Record(args[0])
			if !ok {
				return fmt.Errorf("unknown record %q", args[0])
			}
			req := rec.Required()
			if len(args)-1 != len(req) {
				names := make([]string, len(req))
				for i, f := range req {
					names[i] = f.Name
				}
				return fmt.Errorf("%s requires %d values (%s), got %d", rec.Name, len(req), strings.Join(names, ", "), len(args)-1)
			}
			values := make([]any, len(req))
			for i, f := range req {
				val, err := argValue(ctx, f, f.Name, args[i+1])
				if err != nil {
					return err
				}
				values[i] = val
			}
			b, err := bind.New(a.cat, rec.Name, values...)
			if err != nil {
				return err
			}
			for _, kv := range sets {
				name, text, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set %q: want name=value", kv)
				}
				f, ok := rec.Field(name)
				if !ok {
					f, ok = rec.FieldByKey(name)
				}
				if !ok {
					return fmt.Errorf("%s has no field %q", rec.Name, name)
				}
				val, err := argValue(ctx, f, name, text)
				if err != nil {
					return err
				}
				b.Set(name, val)
			}
			if ensureID {
				b.EnsureID()
			}
			v, err := b.Build()
			if err != nil {
				return err
			}
			a.log.Debug().Str("record", rec.Name).Strs("keys", v.Keys()).Msg("document built")
			return writeJSON(cmd.OutOrStdout(), v.ToJSON())
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "set an optional field (name=value, repeatable)")
	cmd.Flags().BoolVar(&ensureID, "id", false, "assign a random id")
	return cmd
}

// argValue converts command-line text for a field. String-typed targets take
// the text as is; others parse it as JSON.
func argValue(ctx context.Context, f *schema.Field, name, text string) (any, error) {
	if f.Kind == schema.KindChoice {
		if alt, ok := f.Alternative(name); ok {
			return altValue(ctx, alt, text)
		}
		suffix, rest, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("%s is a choice; want Suffix=value", f.Name)
		}
		alt, ok := f.Alternative(f.Key + suffix)
		if !ok {
			return nil, fmt.Errorf("%s has no alternative %q", f.Name, suffix)
		}
		val, err := altValue(ctx, alt, rest)
		if err != nil {
			return nil, err
		}
		return bind.AltValue(suffix, val), nil
	}
	stringy := f.Kind == schema.KindEnum || f.Kind == schema.KindScalar && f.Scalar.JSONKind() == schemabind.KindString
	if f.Cardinality.Repeated() {
		stringy = false
	}
	return parseArg(ctx, text, stringy)
}

func altValue(ctx context.Context, alt schema.Alternative, text string) (any, error) {
	return parseArg(ctx, text, !alt.Nested() && alt.Scalar.JSONKind() == schemabind.KindString)
}

func parseArg(ctx context.Context, text string, stringy bool) (any, error) {
	if stringy && !strings.HasPrefix(text, `"`) {
		return text, nil
	}
	doc, err := schemabind.ParseBytes(ctx, []byte(text))
	if err != nil {
		if stringy {
			return nil, err
		}
		return text, nil
	}
	return doc, nil
}
