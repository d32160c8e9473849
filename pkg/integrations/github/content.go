package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/0xs3fo/ddeponpm/pkg/integrations"
)

const manifestName = "package.json"

// FetchPackageJSON returns the raw root package.json of repo's default
// branch.
//
// The contents endpoint is tried first. When it answers 404 the root
// listing is searched for a package.json file entry and that entry's
// download_url is fetched instead. (nil, nil) means the repository has no
// root manifest; any other failure is returned as an error.
func (c *Client) FetchPackageJSON(ctx context.Context, repo Repo) ([]byte, error) {
	ref := url.QueryEscape(repo.DefaultBranch)
	u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", c.baseURL, repo.FullName, manifestName, ref)

	var file apiContentResponse
	err := c.get(ctx, u, &file)
	switch {
	case err == nil:
		if file.Type != "file" {
			return nil, nil
		}
		data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decode %s of %s: %w", manifestName, repo.FullName, err)
		}
		return data, nil
	case errors.Is(err, integrations.ErrNotFound):
		return c.fetchFromListing(ctx, repo)
	default:
		return nil, fmt.Errorf("fetch %s of %s: %w", manifestName, repo.FullName, err)
	}
}

func (c *Client) fetchFromListing(ctx context.Context, repo Repo) ([]byte, error) {
	items, err := c.ListContents(ctx, repo, "")
	if err != nil {
		return nil, nil
	}
	for _, item := range items {
		if item.Name != manifestName || item.Type != "file" || item.DownloadURL == "" {
			continue
		}
		data, err := c.GetBytes(ctx, item.DownloadURL)
		if err != nil {
			return nil, nil
		}
		return data, nil
	}
	return nil, nil
}

// ListContents lists files and directories at path on repo's default branch.
func (c *Client) ListContents(ctx context.Context, repo Repo, path string) ([]ContentItem, error) {
	u := fmt.Sprintf("%s/repos/%s/contents", c.baseURL, repo.FullName)
	if path != "" {
		u += "/" + strings.TrimPrefix(path, "/")
	}
	u += "?ref=" + url.QueryEscape(repo.DefaultBranch)

	var items []apiContentResponse
	if err := c.get(ctx, u, &items); err != nil {
		return nil, fmt.Errorf("list contents of %s: %w", repo.FullName, err)
	}

	result := make([]ContentItem, len(items))
	for i, item := range items {
		result[i] = ContentItem{
			Name:        item.Name,
			Path:        item.Path,
			Type:        item.Type,
			Size:        item.Size,
			DownloadURL: item.DownloadURL,
		}
	}
	return result, nil
}
