// Package ghtest serves a fake GitHub REST API for tests.
//
// An [Org] describes repositories, their root manifests and per-branch
// commit listings; [NewServer] exposes it through the endpoints the
// github client calls. Requests are counted by path for assertions.
package ghtest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
)

const perPage = 100

// Commit is a commit in a branch listing. Files are served by the detail
// endpoint.
type Commit struct {
	SHA     string
	Message string
	Date    time.Time
	Files   []github.CommitFile
}

// Branch is an ordered, newest-first commit listing.
type Branch struct {
	Name    string
	Commits []Commit
}

// Repo is one repository of an [Org].
type Repo struct {
	Name          string
	DefaultBranch string
	Manifest      string // raw root package.json; empty means none
	Branches      []Branch
	FailBranches  bool // answer the branches endpoint with 404
}

// Org is the data a [Server] serves.
type Org struct {
	Name  string
	Repos []*Repo
}

// Server is a running fake API.
type Server struct {
	*httptest.Server
	org *Org

	mu       sync.Mutex
	requests map[string]int
}

// NewServer starts a server for org and closes it when the test ends.
func NewServer(t testing.TB, org *Org) *Server {
	t.Helper()
	s := &Server{org: org, requests: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /orgs/{org}/repos", s.repos)
	mux.HandleFunc("GET /repos/{owner}/{repo}/contents/package.json", s.manifest)
	mux.HandleFunc("GET /repos/{owner}/{repo}/contents", s.contents)
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits", s.commits)
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits/{sha}", s.commit)
	mux.HandleFunc("GET /repos/{owner}/{repo}/branches", s.branches)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns how many requests hit path.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// RepoRef returns the github.Repo the listing endpoint reports for r.
func (s *Server) RepoRef(r *Repo) github.Repo {
	full := s.org.Name + "/" + r.Name
	return github.Repo{
		Name:          r.Name,
		FullName:      full,
		DefaultBranch: r.DefaultBranch,
		CloneURL:      "https://github.com/" + full + ".git",
		HTMLURL:       "https://github.com/" + full,
	}
}

func (s *Server) repos(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("org") != s.org.Name {
		http.NotFound(w, r)
		return
	}
	refs := make([]github.Repo, len(s.org.Repos))
	for i, repo := range s.org.Repos {
		refs[i] = s.RepoRef(repo)
	}
	writeJSON(w, paginate(refs, page(r)))
}

func (s *Server) manifest(w http.ResponseWriter, r *http.Request) {
	repo := s.lookup(r)
	if repo == nil || repo.Manifest == "" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"name":     "package.json",
		"path":     "package.json",
		"type":     "file",
		"encoding": "base64",
		"content":  base64.StdEncoding.EncodeToString([]byte(repo.Manifest)),
	})
}

func (s *Server) contents(w http.ResponseWriter, r *http.Request) {
	if s.lookup(r) == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, []any{})
}

func (s *Server) commits(w http.ResponseWriter, r *http.Request) {
	repo := s.lookup(r)
	if repo == nil {
		http.NotFound(w, r)
		return
	}
	name := r.URL.Query().Get("sha")
	if name == "" {
		name = repo.DefaultBranch
	}
	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		since, _ = time.Parse(time.RFC3339, v)
	}

	var listed []map[string]any
	for _, b := range repo.Branches {
		if b.Name != name {
			continue
		}
		for _, c := range b.Commits {
			if !since.IsZero() && c.Date.Before(since) {
				continue
			}
			listed = append(listed, s.commitJSON(repo, c, false))
		}
	}
	writeJSON(w, paginate(listed, page(r)))
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	repo := s.lookup(r)
	if repo == nil {
		http.NotFound(w, r)
		return
	}
	sha := r.PathValue("sha")
	for _, b := range repo.Branches {
		for _, c := range b.Commits {
			if c.SHA == sha {
				writeJSON(w, s.commitJSON(repo, c, true))
				return
			}
		}
	}
	http.NotFound(w, r)
}

func (s *Server) branches(w http.ResponseWriter, r *http.Request) {
	repo := s.lookup(r)
	if repo == nil || repo.FailBranches {
		http.NotFound(w, r)
		return
	}
	listed := make([]map[string]any, 0, len(repo.Branches))
	for _, b := range repo.Branches {
		head := ""
		if len(b.Commits) > 0 {
			head = b.Commits[0].SHA
		}
		listed = append(listed, map[string]any{"name": b.Name, "commit": map[string]any{"sha": head}})
	}
	writeJSON(w, paginate(listed, page(r)))
}

func (s *Server) lookup(r *http.Request) *Repo {
	if r.PathValue("owner") != s.org.Name {
		return nil
	}
	for _, repo := range s.org.Repos {
		if repo.Name == r.PathValue("repo") {
			return repo
		}
	}
	return nil
}

func (s *Server) commitJSON(repo *Repo, c Commit, withFiles bool) map[string]any {
	out := map[string]any{
		"sha":      c.SHA,
		"html_url": "https://github.com/" + s.org.Name + "/" + repo.Name + "/commit/" + c.SHA,
		"commit": map[string]any{
			"message": c.Message,
			"author":  map[string]any{"name": "dev", "date": c.Date.UTC().Format(time.RFC3339)},
		},
	}
	if withFiles {
		files := c.Files
		if files == nil {
			files = []github.CommitFile{}
		}
		out["files"] = files
	}
	return out
}

func page(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func paginate[T any](items []T, page int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+perPage, len(items))]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
