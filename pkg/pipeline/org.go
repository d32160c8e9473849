package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/history"
	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
	"github.com/0xs3fo/ddeponpm/pkg/report"
)

// Org audits the current package.json of every repository in org.
// Repositories without a manifest, or whose manifest cannot be read, are
// skipped. When nothing is left to check the result carries
// [report.NoticeNoRepositories] and exits 0.
func (r *Runner) Org(ctx context.Context, org string) (*report.Result, error) {
	repos, err := r.collectRepos(ctx, org)
	if err != nil {
		return nil, err
	}

	idx := provenance.New()
	manifests := 0
	err = r.stage(ctx, StageScanManifests, func() error {
		scan := func(ctx context.Context, i int, repo github.Repo) *provenance.Index {
			r.Logger.Infof("[%d/%d] Processing repository: %s", i+1, len(repos), repo.Name)
			names, ok, err := r.Crawler.CurrentDependencies(ctx, repo)
			switch {
			case err != nil:
				r.Logger.Warn("Error reading package.json", "repo", repo.Name, "err", err)
				return nil
			case !ok:
				r.Logger.Debug("No package.json found", "repo", repo.Name)
				return nil
			}
			part := provenance.New()
			part.RecordAll(names, provenance.Current(repo.Name))
			return part
		}
		return forEachRepo(ctx, r.Config.Crawl.Concurrency, repos, scan, func(_ int, part *provenance.Index) {
			if part != nil {
				manifests++
				idx.Merge(part)
			}
		})
	})
	if err != nil {
		return nil, err
	}

	if manifests == 0 {
		r.Logger.Warn("No repositories with package.json found", "org", org)
		res := report.New(report.ModeOrg, org)
		res.Notice = report.NoticeNoRepositories
		res.Stats.Repositories = len(repos)
		return res, nil
	}

	verdicts, err := r.check(ctx, StageCheck, idx)
	if err != nil {
		return nil, err
	}
	res := report.Build(report.ModeOrg, org, verdicts, idx)
	res.Stats.Repositories = len(repos)
	return res, nil
}

// Comprehensive crawls the commit history of every repository in org and
// reports dependency-file changes and deleted commits. No names are checked
// against the registry.
func (r *Runner) Comprehensive(ctx context.Context, org string) (*report.HistoryReport, error) {
	repos, err := r.collectRepos(ctx, org)
	if err != nil {
		return nil, err
	}

	analyses := make([]history.RepoAnalysis, 0, len(repos))
	err = r.stage(ctx, StageAnalyzeHistory, func() error {
		analyze := func(ctx context.Context, i int, repo github.Repo) *history.RepoAnalysis {
			r.Logger.Infof("[%d/%d] Comprehensive analysis: %s", i+1, len(repos), repo.Name)
			return r.Crawler.Analyze(ctx, repo)
		}
		return forEachRepo(ctx, r.Config.Crawl.Concurrency, repos, analyze, func(_ int, a *history.RepoAnalysis) {
			analyses = append(analyses, *a)
		})
	})
	if err != nil {
		return nil, err
	}
	return report.NewHistoryReport(org, analyses), nil
}

// Complete runs the staged crawl of org: repositories, their full commit
// history, deleted commits, and the dependency names mined from all three,
// followed by one registry check of every unique name. Each stage finishes
// for all repositories before the next starts.
func (r *Runner) Complete(ctx context.Context, org string) (*report.Result, error) {
	r.Logger.Info("Starting complete organization analysis", "org", org)

	repos, err := r.collectRepos(ctx, org)
	if err != nil {
		return nil, err
	}
	limit := r.Config.Crawl.Concurrency

	commits := make([][]github.Commit, len(repos))
	err = r.stage(ctx, StageCollectCommits, func() error {
		collect := func(ctx context.Context, i int, repo github.Repo) []github.Commit {
			r.Logger.Infof("[%d/%d] Collecting commits from: %s", i+1, len(repos), repo.Name)
			return r.Crawler.Commits(ctx, repo, time.Time{})
		}
		return forEachRepo(ctx, limit, repos, collect, func(i int, c []github.Commit) { commits[i] = c })
	})
	if err != nil {
		return nil, err
	}

	deleted := make([][]github.Commit, len(repos))
	err = r.stage(ctx, StageRestoreDeleted, func() error {
		restore := func(ctx context.Context, i int, repo github.Repo) []github.Commit {
			r.Logger.Infof("[%d/%d] Restoring deleted commits from: %s", i+1, len(repos), repo.Name)
			return r.Crawler.DeletedCommits(ctx, repo, commits[i])
		}
		return forEachRepo(ctx, limit, repos, restore, func(i int, c []github.Commit) { deleted[i] = c })
	})
	if err != nil {
		return nil, err
	}

	idx := provenance.New()
	err = r.stage(ctx, StageAnalyzeDependencies, func() error {
		analyze := func(ctx context.Context, i int, repo github.Repo) *provenance.Index {
			r.Logger.Infof("[%d/%d] Analyzing files from: %s", i+1, len(repos), repo.Name)
			return r.Crawler.Dependencies(ctx, repo, commits[i], deleted[i])
		}
		return forEachRepo(ctx, limit, repos, analyze, func(_ int, part *provenance.Index) { idx.Merge(part) })
	})
	if err != nil {
		return nil, err
	}

	verdicts, err := r.check(ctx, StageCheckClaims, idx)
	if err != nil {
		return nil, err
	}

	var res *report.Result
	_ = r.stage(ctx, StageSummarize, func() error {
		res = report.Build(report.ModeComplete, org, verdicts, idx)
		res.Stats.Repositories = len(repos)
		for i := range repos {
			res.Stats.Commits += len(commits[i])
			res.Stats.DeletedCommits += len(deleted[i])
		}
		return nil
	})
	return res, nil
}

// collectRepos lists the repositories of org. It requires a token and any
// failure is fatal for the run.
func (r *Runner) collectRepos(ctx context.Context, org string) ([]github.Repo, error) {
	if !r.Config.HasToken() {
		return nil, errors.New(errors.ErrCodeUnauthorized,
			"GitHub token is required for organization access (use --token or %s)", "GITHUB_TOKEN")
	}
	if err := github.ValidateOwner(org); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid organization %q", org)
	}

	var repos []github.Repo
	err := r.stage(ctx, StageCollectRepos, func() error {
		r.Logger.Infof("Fetching repositories from organization: %s", org)
		var err error
		repos, err = r.Crawler.Client.ListOrgRepos(ctx, org)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(errors.ErrCodeNetwork, err, "failed to list repositories of %s", org)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Infof("Found %d repositories", len(repos))
	return repos, nil
}

// forEachRepo calls fn for every repository with at most limit calls in
// flight. Results are handed to emit in repository order as soon as all
// earlier repositories have finished, so only out-of-order results are held.
// emit calls never overlap. Once ctx is cancelled no further calls start and
// ctx.Err() is returned.
func forEachRepo[T any](ctx context.Context, limit int, repos []github.Repo, fn func(ctx context.Context, i int, repo github.Repo) T, emit func(i int, v T)) error {
	var (
		mu      sync.Mutex
		next    int
		pending = make(map[int]T)
	)
	deliver := func(i int, v T) {
		mu.Lock()
		defer mu.Unlock()
		pending[i] = v
		for {
			v, ok := pending[next]
			if !ok {
				return
			}
			delete(pending, next)
			emit(next, v)
			next++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i, repo := range repos {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			deliver(i, fn(gctx, i, repo))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
