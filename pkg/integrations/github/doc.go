// Package github provides an HTTP client for the parts of the GitHub REST
// API an organization audit needs.
//
// # Usage
//
//	client := github.NewClient(github.Options{Token: token, Cache: cache})
//
//	repos, err := client.ListOrgRepos(ctx, "acme")
//	for _, repo := range repos {
//	    manifest, err := client.FetchPackageJSON(ctx, repo)
//	    // manifest == nil: no root package.json
//	}
//
// # Endpoints
//
//   - [Client.ListOrgRepos]: /orgs/{org}/repos, every page
//   - [Client.FetchPackageJSON]: /repos/{full}/contents/package.json, with
//     a root-listing download_url fallback
//   - [Client.ListCommits]: /repos/{full}/commits with since, sha, and caps
//   - [Client.GetCommit]: /repos/{full}/commits/{sha}, including patches
//   - [Client.ListBranches]: /repos/{full}/branches, every page
//
// # Authentication
//
// A token is required for organization crawls: private repositories and
// the 5000 requests/hour limit both depend on it. Without a token the
// client still works against public data at 60 requests/hour.
//
// # Caching
//
// Only commit details are cached. They are addressed by SHA and never
// change, so the cache TTL merely bounds disk usage.
package github
