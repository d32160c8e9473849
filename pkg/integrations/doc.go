// Package integrations provides the HTTP plumbing shared by deponpm's remote
// clients.
//
// Each remote service has its own subpackage:
//
//   - [npm]: registry lookups, one GET per dependency name
//   - [github]: organization repositories, manifests, commits, and branches
//
// # Shared Infrastructure
//
// The [Client] type applies default headers (User-Agent, Authorization),
// maps HTTP statuses onto [ErrNotFound] and [ErrNetwork], reports requests to
// the observability hooks, and caches immutable responses through
// [httputil.Cache]. Network errors and 5xx responses are wrapped in
// [httputil.RetryableError] so callers can opt into retries; the npm client
// deliberately uses [Client.Status], which never retries.
//
// [npm]: github.com/0xs3fo/ddeponpm/pkg/integrations/npm
// [github]: github.com/0xs3fo/ddeponpm/pkg/integrations/github
// [httputil.Cache]: github.com/0xs3fo/ddeponpm/pkg/httputil.Cache
// [httputil.RetryableError]: github.com/0xs3fo/ddeponpm/pkg/httputil.RetryableError
package integrations
