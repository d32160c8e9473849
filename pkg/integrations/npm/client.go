package npm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/0xs3fo/ddeponpm/pkg/audit"
	"github.com/0xs3fo/ddeponpm/pkg/buildinfo"
	"github.com/0xs3fo/ddeponpm/pkg/integrations"
)

const (
	// DefaultRegistryURL is the public npm registry.
	DefaultRegistryURL = "https://registry.npmjs.com"

	// DefaultTimeout bounds a single registry lookup.
	DefaultTimeout = 10 * time.Second
)

// Client answers whether a dependency name is registered.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client. Empty baseURL and zero timeout fall
// back to [DefaultRegistryURL] and [DefaultTimeout].
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistryURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Client: integrations.NewClient(nil, timeout, map[string]string{
			"User-Agent": buildinfo.UserAgent(),
		}),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// URL returns the registry document URL for name. The name is escaped as a
// single path segment but otherwise passed through untouched, so scoped
// names and unusual casing reach the registry exactly as written.
func (c *Client) URL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

// Check looks name up once. It never returns an error: transport failures
// and unexpected statuses are reported as non-existent verdicts carrying
// the reason.
func (c *Client) Check(ctx context.Context, name string) audit.Verdict {
	code, err := c.Status(ctx, c.URL(name))
	if err != nil {
		return audit.Verdict{Status: fmt.Sprintf("Request failed: %v", err)}
	}
	switch code {
	case http.StatusOK:
		return audit.Exists()
	case http.StatusNotFound:
		return audit.NotFound()
	default:
		return audit.Verdict{Status: fmt.Sprintf("Unexpected status: %d", code)}
	}
}
