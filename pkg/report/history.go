package report

import (
	"github.com/google/uuid"

	"github.com/0xs3fo/ddeponpm/pkg/history"
)

const (
	recentChanges     = 5
	messagePreviewLen = 60
)

// Overview totals a comprehensive crawl.
type Overview struct {
	Repositories       int `json:"repositories" yaml:"repositories"`
	WithDependencies   int `json:"repositories_with_dependencies" yaml:"repositories_with_dependencies"`
	CommitsAnalyzed    int `json:"commits_analyzed" yaml:"commits_analyzed"`
	UniqueDependencies int `json:"unique_dependencies" yaml:"unique_dependencies"`
	DependencyChanges  int `json:"dependency_changes" yaml:"dependency_changes"`
	DeletedCommits     int `json:"deleted_commits" yaml:"deleted_commits"`
}

// HistoryReport is the result of a comprehensive crawl. No registry checks
// are made, so it carries no verdicts.
type HistoryReport struct {
	RunID    string                 `json:"run_id" yaml:"run_id"`
	Mode     Mode                   `json:"mode" yaml:"mode"`
	Input    string                 `json:"input" yaml:"input"`
	Overview Overview               `json:"overview" yaml:"overview"`
	Repos    []history.RepoAnalysis `json:"repositories" yaml:"repositories"`
}

// NewHistoryReport totals per-repository analyses, kept in the given order.
func NewHistoryReport(org string, analyses []history.RepoAnalysis) *HistoryReport {
	h := &HistoryReport{
		RunID: uuid.NewString(),
		Mode:  ModeComprehensive,
		Input: org,
		Repos: analyses,
	}
	if h.Repos == nil {
		h.Repos = []history.RepoAnalysis{}
	}

	unique := make(map[string]struct{})
	for _, a := range analyses {
		h.Overview.Repositories++
		if len(a.CurrentDependencies) > 0 {
			h.Overview.WithDependencies++
		}
		h.Overview.CommitsAnalyzed += a.CommitsAnalyzed
		h.Overview.DependencyChanges += len(a.Changes)
		h.Overview.DeletedCommits += len(a.Deleted)
		for _, name := range a.CurrentDependencies {
			unique[name] = struct{}{}
		}
	}
	h.Overview.UniqueDependencies = len(unique)
	return h
}

// ExitCode is always 0; a comprehensive crawl makes no claim checks.
func (h *HistoryReport) ExitCode() int { return 0 }

// preview shortens a commit message to its first messagePreviewLen runes.
func preview(msg string) string {
	r := []rune(msg)
	if len(r) <= messagePreviewLen {
		return msg
	}
	return string(r[:messagePreviewLen]) + "..."
}
