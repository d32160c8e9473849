// Package httputil provides HTTP plumbing shared by the registry and GitHub
// clients.
//
// # Caching
//
// [Cache] stores JSON values on disk (~/.cache/deponpm/ by default) with a
// TTL. deponpm only caches data that cannot change: GitHub commit details
// are keyed by repository and SHA. Registry verdicts are never cached, since
// a stale "exists" answer would hide exactly the names this tool hunts for.
//
//	cache, err := httputil.NewCache("", 7*24*time.Hour)
//	commits := cache.Namespace("github:commit:")
//	var detail github.CommitDetail
//	if ok, _ := commits.Get("acme/web@3f2a9c1", &detail); !ok {
//	    detail = fetch()
//	    _ = commits.Set("acme/web@3f2a9c1", detail)
//	}
//
// # Retry
//
// [Retry] re-runs an operation whose error is wrapped in [RetryableError],
// doubling the delay between attempts. GitHub API calls wrap network errors,
// 5xx and 429 responses; a Retry-After header of up to [MaxRetryAfter]
// replaces the backoff delay. Registry lookups are single-shot.
//
// The cache can be cleared via `deponpm cache clear` or by deleting the
// cache directory.
package httputil
