package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	schemabind "github.com/reoring/schemabind"
	"github.com/reoring/schemabind/bind"
	"github.com/reoring/schemabind/i18n"
	"github.com/reoring/schemabind/internal/config"
	"github.com/reoring/schemabind/internal/fixtures"
	"github.com/reoring/schemabind/schema"
	"github.com/reoring/schemabind/source/gojson"
)

// app carries state shared by subcommands.
type app struct {
	cfgFile  string
	catalog  string
	driver   string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
	cat *schema.Catalog
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "schemabind",
		Short: "Typed access to catalogue-described JSON documents",
		Long: `schemabind reads, builds and validates JSON documents against a
catalogue of record types.

Without --catalog (or the catalog config key) the built-in sample catalogue
is used.

Examples:
  schemabind validate --strict request.json
  schemabind get request.json code.coding.0.display
  schemabind build ServiceRequest order '{"text":"CBC"}' '{"reference":"Patient/1"}' --set priority=routine
  schemabind jsonschema ServiceRequest
  schemabind catalog ServiceRequest
  schemabind serve --addr :8080`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file path (default: ./"+config.DefaultFile+" when present)")
	flags.StringVar(&a.catalog, "catalog", "", "catalogue file or directory")
	flags.StringVar(&a.driver, "driver", "", "JSON driver: json or gojson")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newValidateCmd(a),
		newGetCmd(a),
		newBuildCmd(a),
		newJSONSchemaCmd(a),
		newCatalogCmd(a),
		newGenCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and loads the catalogue.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithFallback(a.cfgFile)
	if err != nil {
		return err
	}
	if a.catalog != "" {
		cfg.Catalog = a.catalog
	}
	if a.driver != "" {
		cfg.Driver = a.driver
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = newLogger(cmd.ErrOrStderr(), cfg.Logging)

	i18n.SetLanguage(cfg.Language)
	switch cfg.Driver {
	case "gojson":
		schemabind.SetJSONDriver(gojson.Driver())
	case "json":
		schemabind.UseDefaultJSONDriver()
	default:
		return fmt.Errorf("unknown driver %q", cfg.Driver)
	}

	a.cat, err = a.loadCatalog()
	return err
}

func newLogger(w io.Writer, cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func (a *app) loadCatalog() (*schema.Catalog, error) {
	if a.cfg.Catalog == "" {
		a.log.Debug().Msg("using built-in sample catalog")
		return fixtures.Catalog(), nil
	}
	loader := schema.NewLoader(a.log)
	st, err := os.Stat(a.cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if st.IsDir() {
		return loader.LoadDir(a.cfg.Catalog)
	}
	return loader.LoadFile(a.cfg.Catalog)
}

func (a *app) validateOpt() bind.ValidateOpt {
	return bind.ValidateOpt{
		Strict:   a.cfg.Validate.Strict,
		Collect:  a.cfg.Validate.Collect,
		MaxDepth: a.cfg.Validate.MaxDepth,
	}
}

// readDocument parses a JSON or YAML document; "-" reads standard input as
// JSON.
func (a *app) readDocument(ctx context.Context, cmd *cobra.Command, path string) (any, error) {
	opt := a.cfg.ParseOpt()
	opt.Warnings = func(it schemabind.Issue) {
		a.log.Warn().Str("file", path).Str("path", it.Path).Str("code", it.Code).Msg(it.Error())
	}
	if path == "-" {
		return schemabind.ParseDocumentReader(ctx, cmd.InOrStdin(), opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schemabind.DecodeYAML(f)
	}
	return schemabind.ParseDocumentReader(ctx, f, opt)
}

// openView reads a document and projects it as record, or through the
// discriminator when record is empty.
func (a *app) openView(ctx context.Context, cmd *cobra.Command, path, record string) (bind.View, error) {
	doc, err := a.readDocument(ctx, cmd, path)
	if err != nil {
		return bind.View{}, err
	}
	if record != "" {
		return bind.NewView(a.cat, record, doc)
	}
	return bind.Open(a.cat, doc)
}

func writeJSON(w io.Writer, v any) error {
	b, err := schemabind.MarshalDocumentIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
