package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/0xs3fo/ddeponpm/pkg/buildinfo"
	"github.com/0xs3fo/ddeponpm/pkg/httputil"
	"github.com/0xs3fo/ddeponpm/pkg/integrations"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout bounds listing and content requests.
	DefaultTimeout = 30 * time.Second

	perPage = 100
)

// Options configures a [Client].
type Options struct {
	BaseURL string          // API root; DefaultBaseURL when empty
	Token   string          // bearer token; empty sends unauthenticated requests
	Timeout time.Duration   // per-request timeout; DefaultTimeout when zero
	Cache   *httputil.Cache // commit detail cache; nil disables caching
}

// Client provides access to the GitHub API for organization crawls.
// Listing calls retry on network errors and 5xx responses.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	headers := map[string]string{
		"Accept":     "application/vnd.github.v3+json",
		"User-Agent": buildinfo.UserAgent(),
	}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}

	var cache *httputil.Cache
	if opts.Cache != nil {
		cache = opts.Cache.Namespace("github:")
	}

	return &Client{
		Client:  integrations.NewClient(cache, opts.Timeout, headers),
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
	}
}

// ListOrgRepos returns every repository of org, following pagination until
// an empty page.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]Repo, error) {
	var all []Repo
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/orgs/%s/repos?type=all&per_page=%d&page=%d", c.baseURL, url.PathEscape(org), perPage, page)

		var repos []Repo
		if err := c.get(ctx, u, &repos); err != nil {
			return nil, fmt.Errorf("list repositories of %s: %w", org, err)
		}
		if len(repos) == 0 {
			return all, nil
		}
		all = append(all, repos...)
	}
}

// CommitListOptions narrows a commit listing.
type CommitListOptions struct {
	Since    time.Time // only commits after this instant; zero means all history
	SHA      string    // branch or SHA to list from; empty means the default branch
	Max      int       // stop once this many commits are collected; 0 means no cap
	MaxPages int       // stop after this many pages; 0 means no limit
}

// ListCommits pages through a repository's commits. On a failed page it
// returns the commits gathered so far together with the error, so callers
// can keep partial history.
func (c *Client) ListCommits(ctx context.Context, repo Repo, opts CommitListOptions) ([]Commit, error) {
	var all []Commit
	for page := 1; opts.MaxPages == 0 || page <= opts.MaxPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		if !opts.Since.IsZero() {
			q.Set("since", opts.Since.UTC().Format(time.RFC3339))
		}
		if opts.SHA != "" {
			q.Set("sha", opts.SHA)
		}
		u := fmt.Sprintf("%s/repos/%s/commits?%s", c.baseURL, repo.FullName, q.Encode())

		var batch []apiCommit
		if err := c.get(ctx, u, &batch); err != nil {
			return all, fmt.Errorf("list commits of %s: %w", repo.FullName, err)
		}
		if len(batch) == 0 {
			break
		}
		for _, a := range batch {
			all = append(all, a.toCommit())
		}
		if opts.Max > 0 && len(all) >= opts.Max {
			return all[:opts.Max], nil
		}
	}
	return all, nil
}

// GetCommit fetches a single commit with its file patches. Commits are
// immutable, so results are cached by API root, repository and SHA.
func (c *Client) GetCommit(ctx context.Context, repo Repo, sha string) (*CommitDetail, error) {
	key := "commit:" + c.baseURL + "/" + repo.FullName + "@" + sha
	u := fmt.Sprintf("%s/repos/%s/commits/%s", c.baseURL, repo.FullName, sha)

	var detail CommitDetail
	err := c.Cached(ctx, key, &detail, func() error {
		var a apiCommit
		if err := c.Get(ctx, u, &a); err != nil {
			return err
		}
		detail = CommitDetail{Commit: a.toCommit(), Files: a.Files}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get commit %s@%s: %w", repo.FullName, sha, err)
	}
	return &detail, nil
}

// ListBranches returns every branch of repo, following pagination until an
// empty page.
func (c *Client) ListBranches(ctx context.Context, repo Repo) ([]Branch, error) {
	var all []Branch
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/repos/%s/branches?per_page=%d&page=%d", c.baseURL, repo.FullName, perPage, page)

		var batch []apiBranch
		if err := c.get(ctx, u, &batch); err != nil {
			return nil, fmt.Errorf("list branches of %s: %w", repo.FullName, err)
		}
		if len(batch) == 0 {
			return all, nil
		}
		for _, b := range batch {
			all = append(all, Branch{Name: b.Name, SHA: b.Commit.SHA})
		}
	}
}

// get is Get with retry on transient failures.
func (c *Client) get(ctx context.Context, u string, v any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		return c.Get(ctx, u, v)
	})
}
