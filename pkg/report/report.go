package report

import (
	"sort"

	"github.com/google/uuid"

	"github.com/0xs3fo/ddeponpm/pkg/audit"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
)

// Mode identifies how the input was gathered.
type Mode string

const (
	ModeSingle        Mode = "single"
	ModeBatch         Mode = "batch"
	ModeOrg           Mode = "org"
	ModeComprehensive Mode = "comprehensive"
	ModeComplete      Mode = "complete"
)

// NoticeNoRepositories is set when an organization crawl found nothing to check.
const NoticeNoRepositories = "no repositories with package.json found"

// Entry is one checked dependency name.
type Entry struct {
	Name    string              `json:"name" yaml:"name"`
	Status  string              `json:"status" yaml:"status"`
	Origins []provenance.Origin `json:"origins" yaml:"origins"`
}

// Stats counts what a run processed. Zero fields are omitted from output.
type Stats struct {
	Sources        int `json:"sources,omitempty" yaml:"sources,omitempty"`
	Repositories   int `json:"repositories,omitempty" yaml:"repositories,omitempty"`
	Commits        int `json:"commits,omitempty" yaml:"commits,omitempty"`
	DeletedCommits int `json:"deleted_commits,omitempty" yaml:"deleted_commits,omitempty"`
}

// Result is the outcome of a checking run.
type Result struct {
	RunID     string  `json:"run_id" yaml:"run_id"`
	Mode      Mode    `json:"mode" yaml:"mode"`
	Input     string  `json:"input" yaml:"input"`
	Claimed   []Entry `json:"claimed" yaml:"claimed"`
	Unclaimed []Entry `json:"unclaimed" yaml:"unclaimed"`
	Stats     Stats   `json:"stats" yaml:"stats"`
	Notice    string  `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// New returns an empty Result with a fresh run ID.
func New(mode Mode, input string) *Result {
	return &Result{
		RunID:     uuid.NewString(),
		Mode:      mode,
		Input:     input,
		Claimed:   []Entry{},
		Unclaimed: []Entry{},
	}
}

// Build partitions verdicts into claimed and unclaimed entries, each sorted
// by name, with origins taken from idx.
func Build(mode Mode, input string, verdicts map[string]audit.Verdict, idx *provenance.Index) *Result {
	r := New(mode, input)
	for name, v := range verdicts {
		var origins []provenance.Origin
		if idx != nil {
			origins = idx.Origins(name)
		}
		r.add(Entry{Name: name, Status: v.Status, Origins: origins}, v.Exists)
	}
	r.sort()
	return r
}

// SourceResult is the verdict view of one source in a multi-source run.
type SourceResult struct {
	Label    string
	Verdicts map[string]audit.Verdict
}

// Merge combines per-source results under the source-union policy. Origins
// are the labels of the sources that referenced a name, in source order.
func Merge(mode Mode, input string, sources []SourceResult) *Result {
	type merged struct {
		verdict audit.Verdict
		origins []provenance.Origin
	}
	byName := make(map[string]*merged)
	for _, src := range sources {
		for name, v := range src.Verdicts {
			m, ok := byName[name]
			if !ok {
				byName[name] = &merged{verdict: v, origins: []provenance.Origin{provenance.Label(src.Label)}}
				continue
			}
			m.origins = append(m.origins, provenance.Label(src.Label))
			if v.Exists && !m.verdict.Exists {
				m.verdict = v
			}
		}
	}

	r := New(mode, input)
	for name, m := range byName {
		r.add(Entry{Name: name, Status: m.verdict.Status, Origins: m.origins}, m.verdict.Exists)
	}
	r.sort()
	r.Stats.Sources = len(sources)
	return r
}

// Total is the number of distinct names checked.
func (r *Result) Total() int { return len(r.Claimed) + len(r.Unclaimed) }

// ExitCode is 1 when a checking run found unclaimed names and 0 otherwise.
// Comprehensive and complete crawls are informational and always return 0.
func (r *Result) ExitCode() int {
	if r.Mode == ModeComprehensive || r.Mode == ModeComplete {
		return 0
	}
	if len(r.Unclaimed) > 0 {
		return 1
	}
	return 0
}

// multiSource reports whether origins should be listed for every entry.
func (r *Result) multiSource() bool {
	return r.Stats.Sources > 1 || r.Stats.Repositories > 1
}

func (r *Result) add(e Entry, exists bool) {
	if exists {
		r.Claimed = append(r.Claimed, e)
	} else {
		r.Unclaimed = append(r.Unclaimed, e)
	}
}

func (r *Result) sort() {
	sort.Slice(r.Claimed, func(i, j int) bool { return r.Claimed[i].Name < r.Claimed[j].Name })
	sort.Slice(r.Unclaimed, func(i, j int) bool { return r.Unclaimed[i].Name < r.Unclaimed[j].Name })
}
