package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/0xs3fo/ddeponpm/pkg/audit"
	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/history"
	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
)

func sampleResult() *Result {
	idx := provenance.New()
	idx.Record("react", provenance.Current("web"))
	idx.Record("react", provenance.Current("api"))
	idx.Record("ghost-pkg", provenance.Deleted("web", "0123456789abcdef"))
	r := Build(ModeOrg, "acme", map[string]audit.Verdict{
		"react":     audit.Exists(),
		"ghost-pkg": audit.NotFound(),
	}, idx)
	r.Stats.Repositories = 2
	return r
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"text": FormatText, "JSON": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "text, json, yaml")
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "text, json, yaml", FormatList())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "DEPENDENCY CHECK RESULTS: acme")
	assert.Contains(t, out, "CLAIMED DEPENDENCIES (1):")
	assert.Contains(t, out, "UNCLAIMED DEPENDENCIES (1):")
	assert.Contains(t, out, "ghost-pkg (Package not found)")
	assert.Contains(t, out, "→ web (deleted: 01234567)")
	assert.Contains(t, out, "→ api (current)")
	assert.Contains(t, out, "Repositories analyzed: 2")
}

func TestWriteTextSingleSourceHidesOrigins(t *testing.T) {
	idx := provenance.New()
	idx.Record("lodash", provenance.Label("./package.json"))
	r := Build(ModeSingle, "./package.json", map[string]audit.Verdict{"lodash": audit.Exists()}, idx)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, r))
	assert.Contains(t, buf.String(), "RESULTS FOR: ./package.json")
	assert.NotContains(t, buf.String(), "→")
	assert.Contains(t, buf.String(), "UNCLAIMED DEPENDENCIES (0):\n  None")
}

func TestWriteTextNotice(t *testing.T) {
	r := New(ModeOrg, "empty-org")
	r.Notice = NoticeNoRepositories

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, r))
	assert.Contains(t, buf.String(), NoticeNoRepositories)
	assert.NotContains(t, buf.String(), "SUMMARY")
}

func TestWriteJSON(t *testing.T) {
	r := sampleResult()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, r))

	var decoded Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.RunID, decoded.RunID)
	assert.Equal(t, ModeOrg, decoded.Mode)
	require.Len(t, decoded.Unclaimed, 1)
	assert.Equal(t, []provenance.Origin{"web (deleted: 01234567)"}, decoded.Unclaimed[0].Origins)
	assert.Equal(t, 2, decoded.Stats.Repositories)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleResult()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "org", decoded["mode"])
	assert.Contains(t, buf.String(), "name: ghost-pkg")
	assert.NotContains(t, buf.String(), "notice:")
}

func sampleHistory() *HistoryReport {
	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	change := func(sha, msg string) history.Change {
		return history.Change{Commit: github.Commit{SHA: sha, Message: msg, Date: date, URL: "https://github.com/acme/web/commit/" + sha}}
	}
	var changes []history.Change
	for _, sha := range []string{"c1", "c2", "c3", "c4", "c5", "c6"} {
		changes = append(changes, change(sha, "bump "+sha))
	}
	changes[0].Message = "a very long commit message that keeps going well past the sixty character preview"

	return NewHistoryReport("acme", []history.RepoAnalysis{
		{Repo: "web", HasManifest: true, CurrentDependencies: []string{"react", "zod"}, CommitsAnalyzed: 40, Changes: changes,
			Deleted: []github.Commit{{SHA: "d1", Branch: "old"}}},
		{Repo: "api", HasManifest: true, CurrentDependencies: []string{"react"}, CommitsAnalyzed: 2},
		{Repo: "docs"},
	})
}

func TestNewHistoryReport(t *testing.T) {
	h := sampleHistory()
	assert.Equal(t, Overview{
		Repositories:       3,
		WithDependencies:   2,
		CommitsAnalyzed:    42,
		UniqueDependencies: 2,
		DependencyChanges:  6,
		DeletedCommits:     1,
	}, h.Overview)
	assert.Equal(t, 0, h.ExitCode())
	assert.Equal(t, ModeComprehensive, h.Mode)
}

func TestWriteHistoryText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatText, sampleHistory()))
	out := buf.String()

	assert.Contains(t, out, "Total repositories analyzed: 3")
	assert.Contains(t, out, "web: 6 commits with dependency changes")
	assert.Contains(t, out, "web: 1 deleted commits")
	assert.NotContains(t, out, "api: 0")
	assert.Contains(t, out, "- 2024-03-01: a very long commit message that keeps going well past the si...")
	assert.Contains(t, out, "bump c5")
	assert.NotContains(t, out, "bump c6", "only the five most recent changes are listed")
}

func TestWriteHistoryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatJSON, sampleHistory()))

	var decoded HistoryReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Repos, 3)
	assert.Equal(t, "old", decoded.Repos[0].Deleted[0].Branch)
	assert.Equal(t, 6, decoded.Overview.DependencyChanges)
}

func TestWriteHistoryYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatYAML, sampleHistory()))
	assert.Contains(t, buf.String(), "repository: web")
	assert.Contains(t, buf.String(), "unique_dependencies: 2")
}
