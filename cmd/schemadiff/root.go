package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wudi/schemadiff/config"
	"github.com/wudi/schemadiff/internal/analyzer"
	iconfig "github.com/wudi/schemadiff/internal/config"
	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/logging"
	"github.com/wudi/schemadiff/internal/metrics"
	"github.com/wudi/schemadiff/internal/output"
	"github.com/wudi/schemadiff/internal/registry"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/rules"
	"github.com/wudi/schemadiff/internal/schema"
	"go.uber.org/zap"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath   string
	schemaFormat string
	outputFormat string
	template     string
	query        string
	verbose      bool

	cfg       *config.Config
	printer   *output.Printer
	rules     *rules.Engine
	registry  *registry.Registry
	collector *metrics.Collector
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "schemadiff",
		Short: "Compare schema versions and score their compatibility",
		Long: `schemadiff compares two versions of a JSON Schema, OpenAPI, Protobuf or
SQL DDL document. It lists the structural changes, scores backward
compatibility from 0 to 100 (compatible at 80 and above) and plans the
migration between the versions.

The schema format is inferred from the file extension unless --format is
given: .json (JSON Schema), .yaml/.yml (OpenAPI), .proto/.textproto/.pbtxt
(Protobuf), .sql (SQL DDL).

Examples:
  schemadiff compare v1/user.json v2/user.json
  schemadiff migrate --output json old.sql new.sql
  schemadiff validate api-v1.yaml api-v2.yaml
  schemadiff batch --old-dir schemas@v1 --new-dir schemas@v2 --pattern '**/*.proto'
  schemadiff check users-api api.yaml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to configuration file")
	pf.StringVar(&a.schemaFormat, "format", "", "Schema format (json_schema|openapi|protobuf|sql_ddl); inferred from the file extension when empty")
	pf.StringVarP(&a.outputFormat, "output", "o", "", "Output format (yaml|json); overrides output.format")
	pf.StringVar(&a.template, "template", "", "Go template for output; implies --output template")
	pf.StringVarP(&a.query, "query", "q", "", "JMESPath expression selecting part of the output")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newCompareCmd(a),
		newMigrateCmd(a),
		newValidateCmd(a),
		newBatchCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if a.configPath != "" {
		loaded, err := iconfig.NewLoader().Load(a.configPath)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Format = a.outputFormat
	}
	if a.template != "" {
		cfg.Output.Format, cfg.Output.Template = string(output.FormatTemplate), a.template
	}
	if a.query != "" {
		cfg.Output.Query = a.query
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	a.printer, err = output.NewPrinter(output.Options{
		Format:   format,
		Template: cfg.Output.Template,
		Query:    cfg.Output.Query,
	})
	if err != nil {
		return err
	}
	a.rules, err = rules.NewEngine(cfg.Rules)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	logger, closer, err := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSize:    cfg.Logging.Rotation.MaxSize,
		MaxBackups: cfg.Logging.Rotation.MaxBackups,
		MaxAge:     cfg.Logging.Rotation.MaxAge,
		Compress:   cfg.Logging.Rotation.Compress,
		LocalTime:  cfg.Logging.Rotation.LocalTime,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logging.SetGlobal(logger)
	a.logCloser = closer

	opts := []analyzer.Option{analyzer.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		a.collector = metrics.NewCollector()
		opts = append(opts, analyzer.WithMetrics(a.collector))
	}
	if cfg.Cache.Enabled {
		opts = append(opts, analyzer.WithCache(cfg.Cache.Size, cfg.Cache.TTL))
	}
	a.registry = registry.New(opts...)

	logging.Debug("schemadiff starting",
		zap.String("version", version),
		zap.String("command", cmd.Name()),
		zap.String("config", a.configPath),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return nil
}

func (a *app) teardown() error {
	var err error
	if a.collector != nil && a.cfg.Metrics.Textfile != "" {
		err = a.collector.WriteTextfile(a.cfg.Metrics.Textfile)
	}
	logging.Sync()
	if a.logCloser != nil {
		if cerr := a.logCloser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// readSchema loads a schema file. The version label is the file name.
func (a *app) readSchema(path string) (*schema.Schema, error) {
	format, err := a.formatFor(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "read schema file")
	}
	return schema.New(format, string(raw), filepath.Base(path)), nil
}

func (a *app) formatFor(path string) (schema.Format, error) {
	if a.schemaFormat != "" {
		return schema.ParseFormat(a.schemaFormat)
	}
	return schema.FormatFromPath(path)
}

func (a *app) readPair(oldPath, newPath string) (*schema.Schema, *schema.Schema, error) {
	old, err := a.readSchema(oldPath)
	if err != nil {
		return nil, nil, err
	}
	new, err := a.readSchema(newPath)
	if err != nil {
		return nil, nil, err
	}
	return old, new, nil
}

func (a *app) print(cmd *cobra.Command, v any) error {
	return a.printer.Print(cmd.OutOrStdout(), v)
}

// gate evaluates the configured rules against r and reports whether a
// failing rule matched. Matches are listed on stderr.
func (a *app) gate(cmd *cobra.Command, format schema.Format, r *report.CompatibilityReport) (bool, error) {
	if a.rules.Len() == 0 {
		return false, nil
	}
	v, err := a.registry.Validate(format, r.Changes)
	if err != nil {
		return false, err
	}
	results := a.rules.Evaluate(rules.NewEnv(format, r, v))
	for _, res := range results {
		msg := res.Message
		if msg == "" {
			msg = res.Expression
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "rule %s (%s): %s\n", res.RuleID, res.Action, msg)
	}
	return rules.Failed(results), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "schemadiff %s (built %s)\n", version, buildTime)
		},
	}
}
