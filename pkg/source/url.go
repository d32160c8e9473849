package source

import (
	"net/url"
	"strings"

	"github.com/0xs3fo/ddeponpm/pkg/errors"
)

// Kind classifies a location.
type Kind int

const (
	KindLocal Kind = iota
	KindRemote
)

func (k Kind) String() string {
	if k == KindRemote {
		return "remote"
	}
	return "local"
}

// Classify reports whether location is fetched over HTTP or read from disk.
// Anything without an http or https scheme is a local path.
func Classify(location string) Kind {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return KindRemote
	}
	return KindLocal
}

// Hosts names the GitHub web host and its raw-content counterpart.
type Hosts struct {
	Web string
	Raw string
}

// DefaultHosts are the public GitHub hosts.
var DefaultHosts = Hosts{Web: "github.com", Raw: "raw.githubusercontent.com"}

// BlobRef identifies one file on one branch of a GitHub repository.
type BlobRef struct {
	Owner  string
	Repo   string
	Branch string
	Path   string
}

// RawURL renders the raw-content URL for the blob.
func (h Hosts) RawURL(ref BlobRef) string {
	return "https://" + h.Raw + "/" + ref.Owner + "/" + ref.Repo + "/" + ref.Branch + "/" + ref.Path
}

// Rewrite converts a web blob URL into its raw form. URLs on any other host
// are returned unchanged. A web-host URL that is not a blob URL is a format
// error.
func (h Hosts) Rewrite(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid URL: %s", rawURL)
	}
	if !strings.EqualFold(u.Host, h.Web) {
		return rawURL, nil
	}

	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 5)
	if len(parts) < 5 || parts[2] != "blob" || parts[0] == "" || parts[1] == "" || parts[3] == "" || parts[4] == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid GitHub URL format: %s", rawURL)
	}
	return h.RawURL(BlobRef{Owner: parts[0], Repo: parts[1], Branch: parts[3], Path: parts[4]}), nil
}

// ParseRaw parses a raw-content URL produced by [Hosts.Rewrite].
func (h Hosts) ParseRaw(rawURL string) (BlobRef, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return BlobRef{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid URL: %s", rawURL)
	}
	if !strings.EqualFold(u.Host, h.Raw) {
		return BlobRef{}, errors.New(errors.ErrCodeInvalidFormat, "not a raw content URL: %s", rawURL)
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 4)
	if len(parts) < 4 || parts[0] == "" || parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return BlobRef{}, errors.New(errors.ErrCodeInvalidFormat, "invalid raw content URL: %s", rawURL)
	}
	return BlobRef{Owner: parts[0], Repo: parts[1], Branch: parts[2], Path: parts[3]}, nil
}

// RewriteBlobURL rewrites u using [DefaultHosts].
func RewriteBlobURL(u string) (string, error) {
	return DefaultHosts.Rewrite(u)
}

// ParseRawURL parses u using [DefaultHosts].
func ParseRawURL(u string) (BlobRef, error) {
	return DefaultHosts.ParseRaw(u)
}
