package main

import (
	"github.com/spf13/cobra"
)

func newJSONSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema <record>",
		Short: "Export a record type as JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.cat.JSONSchema(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), s)
		},
	}
}
