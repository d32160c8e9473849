// Package buildinfo holds the deponpm version stamped in at link time:
//
//	go build -ldflags "-X github.com/0xs3fo/ddeponpm/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/0xs3fo/ddeponpm/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/0xs3fo/ddeponpm/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// The version also identifies deponpm to GitHub and the npm registry through
// [UserAgent].
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template printed by --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, shortCommit(), Date)
}

// UserAgent is sent with every outbound HTTP request.
func UserAgent() string {
	return "deponpm/" + Version
}

func shortCommit() string {
	if len(Commit) > 12 {
		return Commit[:12]
	}
	return Commit
}
