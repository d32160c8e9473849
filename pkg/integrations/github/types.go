package github

import "time"

// Repo represents a GitHub repository in an organization listing.
type Repo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	CloneURL      string `json:"clone_url"`
	HTMLURL       string `json:"html_url"`
}

// Commit is one entry of a commit listing. Branch is only set for commits
// found on a non-default branch.
type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
	Branch  string    `json:"branch,omitempty"`
}

// ShortSHA returns the first eight characters of the commit SHA.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 8 {
		return c.SHA[:8]
	}
	return c.SHA
}

// CommitFile is one changed file in a commit.
type CommitFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch,omitempty"`
}

// CommitDetail is a single commit with its file changes.
type CommitDetail struct {
	Commit
	Files []CommitFile `json:"files"`
}

// Branch is a repository branch.
type Branch struct {
	Name string `json:"name"`
	SHA  string `json:"sha"`
}

// ContentItem represents an item in a repository directory listing.
type ContentItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"` // "file" or "dir"
	Size        int    `json:"size"`
	DownloadURL string `json:"download_url"`
}

// apiCommit is the commit shape shared by the listing and detail endpoints.
type apiCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string       `json:"html_url"`
	Files   []CommitFile `json:"files"`
}

func (a apiCommit) toCommit() Commit {
	return Commit{
		SHA:     a.SHA,
		Message: a.Commit.Message,
		Author:  a.Commit.Author.Name,
		Date:    a.Commit.Author.Date,
		URL:     a.HTMLURL,
	}
}

type apiBranch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// apiContentResponse is the GitHub API response for file content.
type apiContentResponse struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Size        int    `json:"size"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
}
