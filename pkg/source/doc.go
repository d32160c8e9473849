// Package source turns a user-supplied location into a parsed manifest.
//
// A location is either a URL (http or https) or a local file path.
// GitHub web URLs of the form
//
//	https://github.com/<owner>/<repo>/blob/<branch>/<path>
//
// are rewritten to their raw.githubusercontent.com form before fetching.
// Batch files list one location per line; blank lines and lines starting
// with "#" are skipped.
//
// Organization crawls are not a location kind: they are selected
// explicitly and handled by the history and pipeline packages.
package source
