package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xs3fo/ddeponpm/pkg/buildinfo"
	"github.com/0xs3fo/ddeponpm/pkg/config"
	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/observability"
	"github.com/0xs3fo/ddeponpm/pkg/pipeline"
	"github.com/0xs3fo/ddeponpm/pkg/report"
)

// auditFlags holds the root command's flags.
type auditFlags struct {
	file          string
	org           string
	token         string
	comprehensive bool
	complete      bool
	format        string
	output        string
	configPath    string
	concurrency   int
	noCache       bool
	verbose       bool
}

// auditCommand creates the root command, which runs one audit.
func (c *CLI) auditCommand() *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:   appName + " [source]",
		Short: "Find npm dependency names that nobody has claimed",
		Long: `deponpm reads package.json files and checks every dependency name against
the npm registry. Names the registry does not know are reported as unclaimed:
anyone could publish a package under them.

The source is a package.json URL (GitHub blob URLs are rewritten to raw
content) or a local path. Use --file for a batch of locations, one per line,
or --org to audit every repository of a GitHub organization.`,
		Example: `  deponpm ./package.json
  deponpm https://github.com/acme/web/blob/main/package.json
  deponpm --file targets.txt --format json
  deponpm --org acme --token $GITHUB_TOKEN
  deponpm --org acme --complete --output acme.yaml --format yaml`,
		Args:          cobra.MaximumNArgs(1),
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(args)
			if err != nil {
				return err
			}
			return c.runAudit(cmd, opts, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "batch file with one location per line")
	f.StringVarP(&flags.org, "org", "o", "", "GitHub organization to audit")
	f.StringVarP(&flags.token, "token", "t", "", "GitHub token (default $GITHUB_TOKEN)")
	f.BoolVarP(&flags.comprehensive, "comprehensive", "c", false, "with --org: report dependency history and deleted commits, no registry checks")
	f.BoolVar(&flags.complete, "complete", false, "with --org: check names from current manifests, commit history, and deleted commits")
	f.StringVar(&flags.format, "format", string(report.FormatText), "report format: "+report.FormatList())
	f.StringVar(&flags.output, "output", "", "write the report to this file instead of stdout")
	f.StringVar(&flags.configPath, "config", "", "config file (default ./"+config.FileName+")")
	f.IntVar(&flags.concurrency, "concurrency", 0, "parallel registry lookups and repositories (default from config)")
	f.BoolVar(&flags.noCache, "no-cache", false, "do not read or write the commit cache")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose logging")

	cmd.MarkFlagsMutuallyExclusive("file", "org")
	cmd.MarkFlagsMutuallyExclusive("comprehensive", "complete")

	return cmd
}

// options turns the positional source and flags into pipeline options.
// Exactly one of source, --file and --org must be given.
func (f auditFlags) options(args []string) (pipeline.Options, error) {
	given := 0
	for _, set := range []bool{len(args) > 0, f.file != "", f.org != ""} {
		if set {
			given++
		}
	}
	if given != 1 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput,
			"provide exactly one of a source, --file, or --org")
	}
	if (f.comprehensive || f.complete) && f.org == "" {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput,
			"--comprehensive and --complete require --org")
	}

	switch {
	case f.file != "":
		return pipeline.Options{Mode: report.ModeBatch, Input: f.file}, nil
	case f.org != "" && f.comprehensive:
		return pipeline.Options{Mode: report.ModeComprehensive, Input: f.org}, nil
	case f.org != "" && f.complete:
		return pipeline.Options{Mode: report.ModeComplete, Input: f.org}, nil
	case f.org != "":
		return pipeline.Options{Mode: report.ModeOrg, Input: f.org}, nil
	default:
		return pipeline.Options{Mode: report.ModeSingle, Input: args[0]}, nil
	}
}

// apply layers flag values over the loaded configuration.
func (f auditFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if f.token != "" {
		cfg.GitHub.Token = f.token
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Crawl.Concurrency = f.concurrency
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg.Validate()
}

func (c *CLI) runAudit(cmd *cobra.Command, opts pipeline.Options, flags auditFlags) error {
	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, &cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if flags.verbose {
		hooks := newLogHooks(logger)
		observability.SetPipelineHooks(hooks)
		observability.SetHTTPHooks(hooks)
		observability.SetCacheHooks(hooks)
		defer observability.Reset()
	}

	prog := newProgress(logger)

	runner := pipeline.NewRunner(cfg, c.openCache(cfg), logger)
	out, err := runner.Run(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Audit of %s finished", opts.Input))

	if err := c.writeReport(out, format, flags.output); err != nil {
		return err
	}
	if out.ExitCode() != 0 {
		printWarning("%d unclaimed dependencies found", len(out.Result.Unclaimed))
		return ErrUnclaimed
	}
	return nil
}

// writeReport renders out to the --output file, or to c.Out when unset.
func (c *CLI) writeReport(out *pipeline.Output, format report.Format, path string) error {
	var w io.Writer = c.Out
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "create output file")
		}
		defer f.Close()
		w = f
	}
	if err := out.Write(w, format); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write report")
	}
	if path != "" {
		printSuccess("Report written")
		printFile(path)
	}
	return nil
}
