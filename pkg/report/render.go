package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// FormatList renders [Formats] for help and error text.
func FormatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if f == "yml" {
		return FormatYAML, nil
	}
	if slices.Contains(Formats, f) {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %s)", s, FormatList())
}

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleClaimed   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleUnclaimed = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleNotice    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleNumber    = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleLink      = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

const rule = 60

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r *Result) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	default:
		return writeText(w, r)
	}
}

// WriteHistory renders h to w in the given format.
func WriteHistory(w io.Writer, format Format, h *HistoryReport) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, h)
	case FormatYAML:
		return writeYAML(w, h)
	default:
		return writeHistoryText(w, h)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// textWriter accumulates the first write error.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *textWriter) heading(title string) {
	t.line("")
	t.line("%s", strings.Repeat("=", rule))
	t.line("%s", styleTitle.Render(title))
	t.line("%s", strings.Repeat("=", rule))
}

func writeText(w io.Writer, r *Result) error {
	t := &textWriter{w: w}

	title := "DEPENDENCY CHECK RESULTS"
	switch r.Mode {
	case ModeSingle:
		title = "RESULTS FOR: " + r.Input
	case ModeBatch:
		title = "AGGREGATED DEPENDENCY CHECK RESULTS"
	case ModeComplete:
		title = "COMPLETE ANALYSIS SUMMARY: " + r.Input
	case ModeOrg:
		title += ": " + r.Input
	}
	t.heading(title)
	t.line("%s", styleDim.Render(fmt.Sprintf("run %s (%s)", r.RunID, r.Mode)))

	if r.Notice != "" {
		t.line("")
		t.line("%s", styleNotice.Render("! "+r.Notice))
		return t.err
	}

	all := r.multiSource()

	t.line("")
	t.line("%s", styleSection.Render(fmt.Sprintf("CLAIMED DEPENDENCIES (%d):", len(r.Claimed))))
	if len(r.Claimed) == 0 {
		t.line("  None")
	}
	for _, e := range r.Claimed {
		t.line("  %s %s", styleClaimed.Render("✓"), e.Name)
		writeOrigins(t, e.Origins, all)
	}

	t.line("")
	t.line("%s", styleSection.Render(fmt.Sprintf("UNCLAIMED DEPENDENCIES (%d):", len(r.Unclaimed))))
	if len(r.Unclaimed) == 0 {
		t.line("  None")
	}
	for _, e := range r.Unclaimed {
		t.line("  %s %s (%s)", styleUnclaimed.Render("✗"), styleUnclaimed.Render(e.Name), e.Status)
		writeOrigins(t, e.Origins, all)
	}

	t.line("")
	t.line("%s", styleSection.Render("SUMMARY:"))
	t.line("  Total dependencies: %s", styleNumber.Render(fmt.Sprint(r.Total())))
	t.line("  Claimed: %s", styleNumber.Render(fmt.Sprint(len(r.Claimed))))
	t.line("  Unclaimed: %s", styleNumber.Render(fmt.Sprint(len(r.Unclaimed))))
	stat := func(label string, n int) {
		if n > 0 {
			t.line("  %s: %s", label, styleNumber.Render(fmt.Sprint(n)))
		}
	}
	stat("Sources processed", r.Stats.Sources)
	stat("Repositories analyzed", r.Stats.Repositories)
	stat("Commits collected", r.Stats.Commits)
	stat("Deleted commits restored", r.Stats.DeletedCommits)
	return t.err
}

func writeOrigins(t *textWriter, origins []provenance.Origin, always bool) {
	if !always && len(origins) < 2 {
		return
	}
	for _, o := range origins {
		t.line("      %s", styleDim.Render("→ "+string(o)))
	}
}

func writeHistoryText(w io.Writer, h *HistoryReport) error {
	t := &textWriter{w: w}
	o := h.Overview

	t.heading("COMPREHENSIVE DEPENDENCY ANALYSIS: " + h.Input)
	t.line("%s", styleDim.Render(fmt.Sprintf("run %s (%s)", h.RunID, h.Mode)))

	t.line("")
	t.line("%s", styleSection.Render("OVERVIEW:"))
	t.line("  Total repositories analyzed: %s", styleNumber.Render(fmt.Sprint(o.Repositories)))
	t.line("  Repositories with dependencies: %s", styleNumber.Render(fmt.Sprint(o.WithDependencies)))
	t.line("  Total commits analyzed: %s", styleNumber.Render(fmt.Sprint(o.CommitsAnalyzed)))
	t.line("  Total unique dependencies found: %s", styleNumber.Render(fmt.Sprint(o.UniqueDependencies)))

	t.line("")
	t.line("%s", styleSection.Render("DEPENDENCY CHANGES OVER TIME:"))
	for _, a := range h.Repos {
		if len(a.Changes) > 0 {
			t.line("  %s: %d commits with dependency changes", a.Repo, len(a.Changes))
		}
	}
	t.line("  Total dependency-related commits: %s", styleNumber.Render(fmt.Sprint(o.DependencyChanges)))

	t.line("")
	t.line("%s", styleSection.Render("DELETED COMMITS ANALYSIS:"))
	for _, a := range h.Repos {
		if len(a.Deleted) > 0 {
			t.line("  %s: %d deleted commits", a.Repo, len(a.Deleted))
		}
	}
	t.line("  Total deleted commits found: %s", styleNumber.Render(fmt.Sprint(o.DeletedCommits)))

	t.line("")
	t.line("%s", styleSection.Render("DETAILED REPOSITORY ANALYSIS:"))
	for _, a := range h.Repos {
		t.line("")
		t.line("  Repository: %s", styleTitle.Render(a.Repo))
		t.line("    Current dependencies: %d", len(a.CurrentDependencies))
		t.line("    Commits analyzed: %d", a.CommitsAnalyzed)
		t.line("    Dependency changes: %d", len(a.Changes))
		t.line("    Deleted commits: %d", len(a.Deleted))
		if len(a.Changes) == 0 {
			continue
		}
		t.line("    Recent dependency changes:")
		for _, c := range a.Changes[:min(recentChanges, len(a.Changes))] {
			t.line("      - %s: %s", c.Date.Format("2006-01-02"), preview(c.Message))
			t.line("        Commit: %s", styleLink.Render(c.URL))
		}
	}
	return t.err
}
