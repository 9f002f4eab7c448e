package main

import (
	"fmt"

	"github.com/spf13/cobra"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/bind"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		strict  bool
		collect bool
		record  string
	)
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate documents against the catalogue",
		Long: `Validate one or more JSON or YAML documents. The record type is taken from
the discriminator unless --record is given. "-" reads JSON from stdin.

Exit status is non-zero when any document is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := a.validateOpt()
			if cmd.Flags().Changed("strict") {
				opt.Strict = strict
			}
			if cmd.Flags().Changed("collect") {
				opt.Collect = collect
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				err := a.validateFile(cmd, path, record, opt)
				if err == nil {
					fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}
				failed++
				iss, ok := schemabind.AsIssues(err)
				if !ok {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}
				for _, it := range iss {
					fmt.Fprintf(out, "%s: %s\n", path, it.Error())
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "also report mistyped optional values, ambiguous choices and unknown keys")
	cmd.Flags().BoolVar(&collect, "collect", false, "report every issue instead of the first")
	cmd.Flags().StringVar(&record, "record", "", "record type (default: from the discriminator)")
	return cmd
}

func (a *app) validateFile(cmd *cobra.Command, path, record string, opt bind.ValidateOpt) error {
	ctx := cmd.Context()
	v, err := a.openView(ctx, cmd, path, record)
	if err != nil {
		return err
	}
	err = bind.Validate(ctx, v, opt)
	if err != nil {
		a.log.Debug().Str("file", path).Str("record", v.TypeName()).Err(err).Msg("document invalid")
	}
	return err
}
