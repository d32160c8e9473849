package history

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/0xs3fo/ddeponpm/pkg/deps/javascript"
	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
)

// Limits bounds how much history is read per repository.
type Limits struct {
	MaxCommits     int // cap on collected commits
	HistoryDays    int // look-back window for comprehensive crawls
	ChangeCommits  int // commits inspected for dependency-file changes
	PatchCommits   int // collected commits mined for dependency names
	DeletedCommits int // deleted commits mined for dependency names
}

// DefaultLimits mirrors the built-in configuration.
var DefaultLimits = Limits{
	MaxCommits:     1000,
	HistoryDays:    365,
	ChangeCommits:  50,
	PatchCommits:   100,
	DeletedCommits: 50,
}

// Crawler reads repository history through a GitHub client.
type Crawler struct {
	Client *github.Client
	Limits Limits
	Logger *log.Logger

	// Now returns the reference time for look-back windows. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Crawler. A nil logger uses log.Default().
func New(client *github.Client, limits Limits, logger *log.Logger) *Crawler {
	if logger == nil {
		logger = log.Default()
	}
	return &Crawler{Client: client, Limits: limits, Logger: logger, Now: time.Now}
}

// CurrentDependencies returns the dependency names of the repository's
// current package.json. found is false when the repository has none.
func (c *Crawler) CurrentDependencies(ctx context.Context, repo github.Repo) (names []string, found bool, err error) {
	data, err := c.Client.FetchPackageJSON(ctx, repo)
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}
	m, err := javascript.Parse(data)
	if err != nil {
		return nil, false, err
	}
	c.Logger.Debug("found package.json", "repo", repo.Name, "name", m.Name, "version", m.Version)
	return javascript.Extract(m), true, nil
}

// Commits collects default-branch commits newer than since (all history when
// since is zero), up to Limits.MaxCommits. A failed page ends collection;
// the error is logged and the commits gathered so far are returned.
func (c *Crawler) Commits(ctx context.Context, repo github.Repo, since time.Time) []github.Commit {
	commits, err := c.Client.ListCommits(ctx, repo, github.CommitListOptions{
		Since: since,
		Max:   c.Limits.MaxCommits,
	})
	if err != nil {
		c.Logger.Warn("error fetching commits", "repo", repo.Name, "err", err, "kept", len(commits))
	}
	c.Logger.Debug("collected commits", "repo", repo.Name, "count", len(commits))
	return commits
}

// RecentCommits collects commits within the Limits.HistoryDays window.
func (c *Crawler) RecentCommits(ctx context.Context, repo github.Repo) []github.Commit {
	since := c.now().AddDate(0, 0, -c.Limits.HistoryDays)
	return c.Commits(ctx, repo, since)
}

func (c *Crawler) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
