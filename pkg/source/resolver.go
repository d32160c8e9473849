package source

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/0xs3fo/ddeponpm/pkg/buildinfo"
	"github.com/0xs3fo/ddeponpm/pkg/deps/javascript"
	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/integrations"
)

// Source is a loaded manifest together with the label it is reported under.
type Source struct {
	Label    string
	Kind     Kind
	Manifest *javascript.PackageJSON
}

// Options configures a [Resolver].
type Options struct {
	Hosts   Hosts         // DefaultHosts when zero
	Timeout time.Duration // remote fetch timeout; 30s when zero
	Token   string        // GitHub token, sent only to the web and raw hosts
}

// Resolver loads manifests from URLs and local paths.
type Resolver struct {
	client *integrations.Client
	hosts  Hosts
	token  string
}

// NewResolver creates a Resolver.
func NewResolver(opts Options) *Resolver {
	if opts.Hosts == (Hosts{}) {
		opts.Hosts = DefaultHosts
	}
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	return &Resolver{
		client: integrations.NewClient(nil, opts.Timeout, headers),
		hosts:  opts.Hosts,
		token:  opts.Token,
	}
}

// Load resolves location and parses the manifest it points to. The returned
// Source is labelled with location exactly as given.
func (r *Resolver) Load(ctx context.Context, location string) (*Source, error) {
	if err := errors.ValidateLocation(location); err != nil {
		return nil, err
	}

	kind := Classify(location)
	var (
		data []byte
		err  error
	)
	if kind == KindRemote {
		data, err = r.fetch(ctx, location)
	} else {
		data, err = readLocal(location)
	}
	if err != nil {
		return nil, err
	}

	m, err := javascript.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", location)
	}
	return &Source{Label: location, Kind: kind, Manifest: m}, nil
}

func (r *Resolver) fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := r.hosts.Rewrite(location)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateURL(u); err != nil {
		return nil, err
	}
	data, err := r.client.GetBytesWithHeaders(ctx, u, r.authHeaders(u))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", u)
	}
	return data, nil
}

// authHeaders returns the Authorization header for requests to the GitHub
// hosts. Other hosts never see the token.
func (r *Resolver) authHeaders(rawURL string) map[string]string {
	if r.token == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	if !strings.EqualFold(u.Host, r.hosts.Raw) && !strings.EqualFold(u.Host, r.hosts.Web) {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + r.token}
}

func readLocal(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is a directory, not a package.json", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}
