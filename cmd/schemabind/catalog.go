package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reoring/schemabind/schema"
)

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [record|enum]",
		Short: "List catalogue contents or describe one type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return listCatalog(out, a.cat)
			}
			if r, ok := a.cat.Record(args[0]); ok {
				return describeRecord(out, r)
			}
			if e, ok := a.cat.Enum(args[0]); ok {
				return describeEnum(out, e)
			}
			return fmt.Errorf("no record or enum named %q", args[0])
		},
	}
}

func listCatalog(out io.Writer, cat *schema.Catalog) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RECORD\tRESOURCE\tFIELDS\tREQUIRED\n")
	for _, name := range cat.RecordNames() {
		r := cat.MustRecord(name)
		fmt.Fprintf(w, "%s\t%t\t%d\t%s\n", r.Name, r.Resource, len(r.Fields()), fieldNames(r.Required()))
	}
	fmt.Fprintf(w, "\nENUM\tCODES\t\t\n")
	for _, name := range cat.EnumNames() {
		e, _ := cat.Enum(name)
		fmt.Fprintf(w, "%s\t%d\t\t\n", e.Name, len(e.Codes()))
	}
	return w.Flush()
}

func describeRecord(out io.Writer, r *schema.Record) error {
	if r.Description != "" {
		fmt.Fprintf(out, "%s: %s\n\n", r.Name, r.Description)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tKEYS\tCARD\tTYPE\n")
	for _, f := range r.Fields() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, strings.Join(f.Keys(), ","), f.Cardinality, f.TypeName())
	}
	return w.Flush()
}

func describeEnum(out io.Writer, e *schema.Enum) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "CODE\tSYMBOL\tDISPLAY\n")
	for _, s := range e.Symbols() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Code(), s.Name(), s.Display())
	}
	return w.Flush()
}

func fieldNames(fs []*schema.Field) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
