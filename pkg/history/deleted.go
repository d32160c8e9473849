package history

import (
	"context"

	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
)

// BranchCommits is the listed page of commits for one branch.
type BranchCommits struct {
	Branch  string
	Commits []github.Commit
}

// FindDeleted returns the commits seen on non-default branches that are in
// neither the default branch's listing nor history. Each SHA is reported
// once, tagged with the first branch it was seen on, in branch then commit
// order.
func FindDeleted(defaultBranch string, branches []BranchCommits, history []github.Commit) []github.Commit {
	current := make(map[string]struct{})
	for _, b := range branches {
		if b.Branch != defaultBranch {
			continue
		}
		for _, commit := range b.Commits {
			current[commit.SHA] = struct{}{}
		}
	}
	for _, commit := range history {
		current[commit.SHA] = struct{}{}
	}

	seen := make(map[string]struct{})
	var deleted []github.Commit
	for _, b := range branches {
		if b.Branch == defaultBranch {
			continue
		}
		for _, commit := range b.Commits {
			if _, ok := current[commit.SHA]; ok {
				continue
			}
			if _, ok := seen[commit.SHA]; ok {
				continue
			}
			seen[commit.SHA] = struct{}{}
			commit.Branch = b.Branch
			deleted = append(deleted, commit)
		}
	}
	return deleted
}

// DeletedCommits lists every branch of repo and applies [FindDeleted] to the
// first page of commits on each. A branch listing failure is logged and
// yields no deleted commits; a branch whose commits cannot be listed is
// skipped.
func (c *Crawler) DeletedCommits(ctx context.Context, repo github.Repo, history []github.Commit) []github.Commit {
	branches, err := c.Client.ListBranches(ctx, repo)
	if err != nil {
		c.Logger.Warn("error fetching deleted commits", "repo", repo.Name, "err", err)
		return nil
	}

	listed := make([]BranchCommits, 0, len(branches))
	for _, b := range branches {
		commits, err := c.Client.ListCommits(ctx, repo, github.CommitListOptions{SHA: b.Name, MaxPages: 1})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.Logger.Debug("skipping branch", "repo", repo.Name, "branch", b.Name, "err", err)
			continue
		}
		listed = append(listed, BranchCommits{Branch: b.Name, Commits: commits})
	}

	deleted := FindDeleted(repo.DefaultBranch, listed, history)
	c.Logger.Debug("restored deleted commits", "repo", repo.Name, "branches", len(branches), "count", len(deleted))
	return deleted
}
