package history

import (
	"context"

	"github.com/0xs3fo/ddeponpm/pkg/deps/javascript"
	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
)

// Change is a commit that touched a dependency file.
type Change struct {
	github.Commit `yaml:",inline"`
	Files []github.CommitFile `json:"files"`
}

// RepoAnalysis is the comprehensive-mode result for one repository.
type RepoAnalysis struct {
	Repo                string          `json:"repository" yaml:"repository"`
	HasManifest         bool            `json:"has_manifest" yaml:"has_manifest"`
	CurrentDependencies []string        `json:"current_dependencies" yaml:"current_dependencies"`
	CommitsAnalyzed     int             `json:"commits_analyzed" yaml:"commits_analyzed"`
	Changes             []Change        `json:"dependency_changes" yaml:"dependency_changes"`
	Deleted             []github.Commit `json:"deleted_commits" yaml:"deleted_commits"`
}

// CommitDependencies returns the dependency names added or touched by the
// package.json patches of a commit, in file then line order.
func (c *Crawler) CommitDependencies(ctx context.Context, repo github.Repo, sha string) ([]string, error) {
	detail, err := c.Client.GetCommit(ctx, repo, sha)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range detail.Files {
		if !javascript.IsManifestPath(f.Filename) || f.Patch == "" {
			continue
		}
		names = append(names, javascript.ExtractFromPatch(f.Patch)...)
	}
	return names, nil
}

// DependencyChange returns the commit with its dependency-file changes, or
// nil when the commit touched none.
func (c *Crawler) DependencyChange(ctx context.Context, repo github.Repo, sha string) (*Change, error) {
	detail, err := c.Client.GetCommit(ctx, repo, sha)
	if err != nil {
		return nil, err
	}
	var files []github.CommitFile
	for _, f := range detail.Files {
		if javascript.IsDependencyFile(f.Filename) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, nil
	}
	return &Change{Commit: detail.Commit, Files: files}, nil
}

// Analyze performs the comprehensive crawl of one repository: current
// dependencies, commits in the look-back window, dependency changes among
// the most recent of them, and deleted commits.
func (c *Crawler) Analyze(ctx context.Context, repo github.Repo) *RepoAnalysis {
	a := &RepoAnalysis{Repo: repo.Name}

	names, found, err := c.CurrentDependencies(ctx, repo)
	if err != nil {
		c.Logger.Warn("error reading package.json", "repo", repo.Name, "err", err)
	}
	a.HasManifest = found
	a.CurrentDependencies = names

	commits := c.RecentCommits(ctx, repo)
	a.CommitsAnalyzed = len(commits)

	inspect := head(commits, c.Limits.ChangeCommits)
	for i, commit := range inspect {
		if ctx.Err() != nil {
			break
		}
		if i%10 == 0 {
			c.Logger.Debug("analyzing commits", "repo", repo.Name, "progress", i+1, "total", len(inspect))
		}
		change, err := c.DependencyChange(ctx, repo, commit.SHA)
		if err != nil {
			c.Logger.Warn("error analyzing commit", "repo", repo.Name, "sha", commit.ShortSHA(), "err", err)
			continue
		}
		if change != nil {
			a.Changes = append(a.Changes, *change)
		}
	}

	a.Deleted = c.DeletedCommits(ctx, repo, commits)
	return a
}

// Dependencies builds the complete-mode index for one repository: current
// names as "(current)", names mined from the first Limits.PatchCommits
// collected commits as "(commit: sha)", and from the first
// Limits.DeletedCommits deleted commits as "(deleted: sha)". Commits whose
// details fail to load are skipped.
func (c *Crawler) Dependencies(ctx context.Context, repo github.Repo, commits, deleted []github.Commit) *provenance.Index {
	idx := provenance.New()

	names, _, err := c.CurrentDependencies(ctx, repo)
	if err != nil {
		c.Logger.Warn("error analyzing files", "repo", repo.Name, "err", err)
	}
	idx.RecordAll(names, provenance.Current(repo.Name))

	for _, commit := range head(commits, c.Limits.PatchCommits) {
		if ctx.Err() != nil {
			return idx
		}
		names, err := c.CommitDependencies(ctx, repo, commit.SHA)
		if err != nil {
			c.Logger.Debug("skipping commit", "repo", repo.Name, "sha", commit.ShortSHA(), "err", err)
			continue
		}
		idx.RecordAll(names, provenance.InCommit(repo.Name, commit.SHA))
	}

	for _, commit := range head(deleted, c.Limits.DeletedCommits) {
		if ctx.Err() != nil {
			return idx
		}
		names, err := c.CommitDependencies(ctx, repo, commit.SHA)
		if err != nil {
			c.Logger.Debug("skipping deleted commit", "repo", repo.Name, "sha", commit.ShortSHA(), "err", err)
			continue
		}
		idx.RecordAll(names, provenance.Deleted(repo.Name, commit.SHA))
	}
	return idx
}

func head(commits []github.Commit, n int) []github.Commit {
	if n >= 0 && len(commits) > n {
		return commits[:n]
	}
	return commits
}
