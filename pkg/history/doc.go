// Package history crawls the commit history of organization repositories.
//
// A [Crawler] wraps the GitHub client with the crawl limits from the run
// configuration. It answers four questions about a repository:
//
//   - which dependencies the current package.json declares ([Crawler.CurrentDependencies])
//   - which commits exist on the default branch ([Crawler.Commits])
//   - which commits are only reachable from other branches ([Crawler.DeletedCommits])
//   - which dependency names a commit's package.json patches mention
//     ([Crawler.CommitDependencies], [Crawler.DependencyChange])
//
// # Deleted Commits
//
// "Deleted" is an approximation, not a reachability analysis: the first page
// of commits on every branch is listed, and any SHA that appears on a
// non-default branch but neither on the default branch's page nor in the
// collected history is reported. [FindDeleted] implements the set logic and
// is pure, so it can be tested without a server.
//
// Failures below the repository level (a branch that cannot be listed, a
// commit whose details fail to load) are logged and skipped; the crawl keeps
// whatever it gathered.
package history
