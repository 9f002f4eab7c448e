package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reoring/schemabind/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve document validation over HTTP",
		Long: `Start an HTTP server that validates posted documents.

  POST /validate            resource typed by its discriminator
  POST /validate/{record}   document as the named record type
  GET  /records[/{record}]  catalogue listing and JSON Schema
  GET  /metrics             Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := server.New(a.cat, a.log, server.Options{
				Parse:          a.cfg.ParseOpt(),
				Validate:       a.validateOpt(),
				RequestTimeout: a.cfg.Server.RequestTimeout,
			})
			return s.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
