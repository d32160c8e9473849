package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/0xs3fo/ddeponpm/pkg/audit"
	"github.com/0xs3fo/ddeponpm/pkg/config"
	"github.com/0xs3fo/ddeponpm/pkg/history"
	"github.com/0xs3fo/ddeponpm/pkg/httputil"
	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
	"github.com/0xs3fo/ddeponpm/pkg/integrations/npm"
	"github.com/0xs3fo/ddeponpm/pkg/observability"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
	"github.com/0xs3fo/ddeponpm/pkg/report"
	"github.com/0xs3fo/ddeponpm/pkg/source"
)

// Runner executes audits. It holds no per-run state, so one Runner can
// serve several runs.
type Runner struct {
	Config   config.Config
	Resolver *source.Resolver
	Checker  *audit.Checker
	Crawler  *history.Crawler
	Logger   *log.Logger
}

// NewRunner builds the clients described by cfg. cache holds GitHub commit
// details and may be nil. A nil logger uses log.Default().
func NewRunner(cfg config.Config, cache *httputil.Cache, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}

	gh := github.NewClient(github.Options{
		BaseURL: cfg.GitHub.APIURL,
		Token:   cfg.GitHub.Token,
		Timeout: cfg.GitHub.Timeout.Duration,
		Cache:   cache,
	})
	registry := npm.NewClient(cfg.Registry.URL, cfg.Registry.Timeout.Duration)

	return &Runner{
		Config: cfg,
		Resolver: source.NewResolver(source.Options{
			Hosts:   source.Hosts{Web: cfg.GitHub.WebHost, Raw: cfg.GitHub.RawHost},
			Timeout: cfg.GitHub.Timeout.Duration,
			Token:   cfg.GitHub.Token,
		}),
		Checker: audit.NewChecker(registry, cfg.Crawl.Concurrency, logger),
		Crawler: history.New(gh, history.Limits{
			MaxCommits:     cfg.Crawl.MaxCommits,
			HistoryDays:    cfg.Crawl.HistoryDays,
			ChangeCommits:  cfg.Crawl.ComprehensiveCommits,
			PatchCommits:   cfg.Crawl.CompleteCommits,
			DeletedCommits: cfg.Crawl.DeletedCommits,
		}, logger),
		Logger: logger,
	}
}

// Run validates opts and dispatches to the mode's method.
func (r *Runner) Run(ctx context.Context, opts Options) (*Output, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		res *report.Result
		err error
	)
	switch opts.Mode {
	case report.ModeSingle:
		res, err = r.Single(ctx, opts.Input)
	case report.ModeBatch:
		res, err = r.Batch(ctx, opts.Input)
	case report.ModeOrg:
		res, err = r.Org(ctx, opts.Input)
	case report.ModeComplete:
		res, err = r.Complete(ctx, opts.Input)
	case report.ModeComprehensive:
		h, err := r.Comprehensive(ctx, opts.Input)
		if err != nil {
			return nil, err
		}
		return &Output{History: h}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Output{Result: res}, nil
}

// stage runs fn between the start and completion hooks of the named stage.
func (r *Runner) stage(ctx context.Context, name string, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	hooks.OnStageComplete(ctx, name, time.Since(start), err)
	return err
}

// check looks up every name of idx exactly once.
func (r *Runner) check(ctx context.Context, stage string, idx *provenance.Index) (map[string]audit.Verdict, error) {
	var verdicts map[string]audit.Verdict
	err := r.stage(ctx, stage, func() error {
		r.Logger.Infof("Checking %d dependencies...", idx.Len())
		var err error
		verdicts, err = r.Checker.CheckAll(ctx, idx.Discovered())
		return err
	})
	return verdicts, err
}
