package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xs3fo/ddeponpm/internal/ghtest"
	"github.com/0xs3fo/ddeponpm/pkg/config"
	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/integrations/github"
	"github.com/0xs3fo/ddeponpm/pkg/observability"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
	"github.com/0xs3fo/ddeponpm/pkg/report"
)

// registry is a fake npm registry that knows a fixed set of names.
type registry struct {
	*httptest.Server
	claimed map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func newRegistry(t *testing.T, claimed ...string) *registry {
	t.Helper()
	reg := &registry{claimed: make(map[string]bool), calls: make(map[string]int)}
	for _, name := range claimed {
		reg.claimed[name] = true
	}
	reg.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		reg.mu.Lock()
		reg.calls[name]++
		reg.mu.Unlock()
		if !reg.claimed[name] {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"name":"` + name + `"}`))
	}))
	t.Cleanup(reg.Close)
	return reg
}

func (r *registry) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *registry) maxPerName() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := 0
	for _, c := range r.calls {
		m = max(m, c)
	}
	return m
}

func newRunner(t *testing.T, reg *registry, gh *ghtest.Server) *Runner {
	t.Helper()
	cfg := config.Default()
	cfg.Registry.URL = reg.URL
	cfg.GitHub.Token = "test-token"
	if gh != nil {
		cfg.GitHub.APIURL = gh.URL
	}
	return NewRunner(cfg, nil, log.New(io.Discard))
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func names(entries []report.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

const scenarioManifest = `{"dependencies": {"left-pad": "1.0.0", "totally-fake-nonexistent-pkg-xyz": "1.0.0"}}`

func TestSingleLocal(t *testing.T) {
	reg := newRegistry(t, "left-pad")
	path := writeManifest(t, t.TempDir(), "package.json", scenarioManifest)

	out, err := newRunner(t, reg, nil).Run(context.Background(), Options{Mode: report.ModeSingle, Input: path})
	require.NoError(t, err)

	res := out.Result
	assert.Equal(t, []string{"left-pad"}, names(res.Claimed))
	assert.Equal(t, []string{"totally-fake-nonexistent-pkg-xyz"}, names(res.Unclaimed))
	assert.Equal(t, "Package not found", res.Unclaimed[0].Status)
	assert.Equal(t, []provenance.Origin{provenance.Origin(path)}, res.Unclaimed[0].Origins)
	assert.Equal(t, 1, out.ExitCode())
}

func TestSingleRepeatable(t *testing.T) {
	reg := newRegistry(t, "left-pad")
	path := writeManifest(t, t.TempDir(), "package.json", scenarioManifest)
	runner := newRunner(t, reg, nil)
	opts := Options{Mode: report.ModeSingle, Input: path}

	first, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, names(first.Result.Claimed), names(second.Result.Claimed))
	assert.Equal(t, names(first.Result.Unclaimed), names(second.Result.Unclaimed))
	assert.Equal(t, first.Result.Claimed[0].Status, second.Result.Claimed[0].Status)
	assert.Equal(t, first.Result.Unclaimed[0].Status, second.Result.Unclaimed[0].Status)
	assert.Equal(t, first.ExitCode(), second.ExitCode())
	assert.NotEqual(t, first.Result.RunID, second.Result.RunID)
}

func TestSingleRemote(t *testing.T) {
	reg := newRegistry(t, "react", "@types/node")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dependencies":{"react":"18"},"devDependencies":{"@types/node":"20"}}`))
	}))
	defer srv.Close()

	res, err := newRunner(t, reg, nil).Single(context.Background(), srv.URL+"/package.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"@types/node", "react"}, names(res.Claimed))
	assert.Empty(t, res.Unclaimed)
	assert.Equal(t, 0, res.ExitCode())
}

func TestSingleEmptyManifest(t *testing.T) {
	reg := newRegistry(t)
	path := writeManifest(t, t.TempDir(), "package.json", `{"name":"empty"}`)

	res, err := newRunner(t, reg, nil).Single(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total())
	assert.Equal(t, 0, reg.total())
	assert.Equal(t, 0, res.ExitCode())
}

func TestSingleErrors(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()
	bad := writeManifest(t, dir, "bad.json", "{nope")

	tests := []struct {
		location string
		want     errors.Code
	}{
		{filepath.Join(dir, "missing.json"), errors.ErrCodeFileNotFound},
		{dir, errors.ErrCodeInvalidInput},
		{bad, errors.ErrCodeInvalidManifest},
		{"https://github.com/acme/web/tree/main", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			_, err := newRunner(t, reg, nil).Single(context.Background(), tt.location)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.GetCode(err))
		})
	}
	assert.Equal(t, 0, reg.total())
}

func TestBatch(t *testing.T) {
	reg := newRegistry(t, "left-pad", "react")
	dir := t.TempDir()
	first := writeManifest(t, dir, "a.json", scenarioManifest)
	second := writeManifest(t, dir, "b.json", `{"dependencies":{"left-pad":"1","react":"18"}}`)
	batch := writeManifest(t, dir, "urls.txt", strings.Join([]string{
		"# audit targets",
		first,
		"",
		filepath.Join(dir, "missing.json"),
		second,
	}, "\n"))

	out, err := newRunner(t, reg, nil).Run(context.Background(), Options{Mode: report.ModeBatch, Input: batch})
	require.NoError(t, err)

	res := out.Result
	assert.Equal(t, report.ModeBatch, res.Mode)
	assert.Equal(t, 2, res.Stats.Sources)
	assert.Equal(t, []string{"left-pad", "react"}, names(res.Claimed))
	assert.Equal(t, []string{"totally-fake-nonexistent-pkg-xyz"}, names(res.Unclaimed))
	assert.Equal(t, []provenance.Origin{provenance.Origin(first), provenance.Origin(second)}, res.Claimed[0].Origins)
	assert.Equal(t, 1, out.ExitCode())

	assert.Equal(t, 3, reg.total(), "each unique name is checked once")
	assert.Equal(t, 1, reg.maxPerName())
}

func TestBatchScenarioB(t *testing.T) {
	reg := newRegistry(t, "left-pad")
	dir := t.TempDir()
	manifest := writeManifest(t, dir, "package.json", scenarioManifest)
	batch := writeManifest(t, dir, "urls.txt", manifest+"\n#comment\n")

	res, err := newRunner(t, reg, nil).Batch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Sources)
	assert.Equal(t, 2, res.Total())

	onlyComments := writeManifest(t, dir, "comments.txt", "#one\n#two\n")
	_, err = newRunner(t, reg, nil).Batch(context.Background(), onlyComments)
	assert.Equal(t, errors.ErrCodeEmptyInput, errors.GetCode(err))
}

func TestBatchNoLoadableSources(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()
	batch := writeManifest(t, dir, "urls.txt", filepath.Join(dir, "gone.json")+"\n")

	res, err := newRunner(t, reg, nil).Batch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, NoticeNoSources, res.Notice)
	assert.Equal(t, 0, res.ExitCode())
	assert.Equal(t, 0, reg.total())
}

func TestBatchMissingFile(t *testing.T) {
	_, err := newRunner(t, newRegistry(t), nil).Batch(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{Mode: report.ModeSingle, Input: "package.json"}.Validate())
	assert.Error(t, Options{Mode: "weekly", Input: "x"}.Validate())
	assert.Error(t, Options{Mode: report.ModeOrg}.Validate())
}

// stageRecorder records pipeline stage events.
type stageRecorder struct {
	mu     sync.Mutex
	events []string
}

func (s *stageRecorder) OnStageStart(_ context.Context, stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "start:"+stage)
}

func (s *stageRecorder) OnStageComplete(_ context.Context, stage string, _ time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	suffix := ""
	if err != nil {
		suffix = " (error)"
	}
	s.events = append(s.events, "done:"+stage+suffix)
}

func TestSingleEmitsStages(t *testing.T) {
	rec := &stageRecorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	path := writeManifest(t, t.TempDir(), "package.json", scenarioManifest)
	_, err := newRunner(t, newRegistry(t), nil).Single(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"start:load", "done:load", "start:check", "done:check"}, rec.events)
}

func TestForEachRepoOrder(t *testing.T) {
	repos := make([]github.Repo, 20)
	for i := range repos {
		repos[i] = github.Repo{Name: string(rune('a' + i))}
	}

	var got []string
	err := forEachRepo(context.Background(), 4, repos, func(_ context.Context, i int, repo github.Repo) string {
		time.Sleep(time.Duration(20-i) * time.Millisecond)
		return repo.Name
	}, func(i int, name string) {
		assert.Equal(t, repos[i].Name, name)
		got = append(got, name)
	})
	require.NoError(t, err)
	require.Len(t, got, len(repos))
	for i, name := range got {
		assert.Equal(t, repos[i].Name, name)
	}
}

func TestForEachRepoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := forEachRepo(ctx, 1, []github.Repo{{Name: "a"}, {Name: "b"}}, func(context.Context, int, github.Repo) int {
		calls++
		return 0
	}, func(int, int) {})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}
