package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0xs3fo/ddeponpm/pkg/config"
	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/report"
)

// isolateEnv keeps config lookups away from the developer's files.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, key := range []string{config.EnvGitHubToken, config.EnvRegistryURL, config.EnvGitHubAPIURL, config.EnvConcurrency} {
		t.Setenv(key, "")
	}
	return dir
}

func TestAuditFlagsOptions(t *testing.T) {
	tests := []struct {
		name     string
		flags    auditFlags
		args     []string
		wantMode report.Mode
		wantIn   string
		wantErr  bool
	}{
		{name: "source", args: []string{"package.json"}, wantMode: report.ModeSingle, wantIn: "package.json"},
		{name: "batch", flags: auditFlags{file: "urls.txt"}, wantMode: report.ModeBatch, wantIn: "urls.txt"},
		{name: "org", flags: auditFlags{org: "acme"}, wantMode: report.ModeOrg, wantIn: "acme"},
		{name: "comprehensive", flags: auditFlags{org: "acme", comprehensive: true}, wantMode: report.ModeComprehensive, wantIn: "acme"},
		{name: "complete", flags: auditFlags{org: "acme", complete: true}, wantMode: report.ModeComplete, wantIn: "acme"},
		{name: "nothing", wantErr: true},
		{name: "source and org", flags: auditFlags{org: "acme"}, args: []string{"package.json"}, wantErr: true},
		{name: "complete without org", flags: auditFlags{complete: true}, args: []string{"package.json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.flags.options(tt.args)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Fatalf("options() error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("options() error: %v", err)
			}
			if opts.Mode != tt.wantMode || opts.Input != tt.wantIn {
				t.Errorf("options() = %+v, want mode %s input %s", opts, tt.wantMode, tt.wantIn)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"":                 "(not set)",
		"abc":              "***",
		"ghp_abcdefgh1234": "************1234",
	}
	for in, want := range tests {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func newFakeRegistry(t *testing.T, claimed ...string) *httptest.Server {
	t.Helper()
	known := make(map[string]bool)
	for _, name := range claimed {
		known[name] = true
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !known[strings.TrimPrefix(r.URL.Path, "/")] {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	statusOut = io.Discard
	t.Cleanup(func() { statusOut = os.Stderr })

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	if args == nil {
		args = []string{}
	}
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAuditUnclaimed(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv(config.EnvRegistryURL, newFakeRegistry(t, "left-pad").URL)
	manifest := filepath.Join(dir, "package.json")
	if err := os.WriteFile(manifest, []byte(`{"dependencies":{"left-pad":"1.0.0","totally-fake-nonexistent-pkg-xyz":"1.0.0"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runRoot(t, manifest, "--format", "json", "--no-cache")
	if err != ErrUnclaimed {
		t.Fatalf("Execute() error = %v, want ErrUnclaimed", err)
	}

	var res report.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if len(res.Claimed) != 1 || res.Claimed[0].Name != "left-pad" {
		t.Errorf("claimed = %+v", res.Claimed)
	}
	if len(res.Unclaimed) != 1 || res.Unclaimed[0].Name != "totally-fake-nonexistent-pkg-xyz" {
		t.Errorf("unclaimed = %+v", res.Unclaimed)
	}
}

func TestAuditAllClaimedToFile(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv(config.EnvRegistryURL, newFakeRegistry(t, "react").URL)
	manifest := filepath.Join(dir, "package.json")
	if err := os.WriteFile(manifest, []byte(`{"dependencies":{"react":"18"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	outFile := filepath.Join(dir, "report.yaml")

	stdout, err := runRoot(t, manifest, "--format", "yaml", "--output", outFile)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout should be empty when --output is set, got %q", stdout)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "name: react") {
		t.Errorf("report missing react:\n%s", data)
	}
}

func TestAuditRejectsBadInput(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"no source", nil, errors.ErrCodeInvalidInput},
		{"bad format", []string{"package.json", "--format", "xml"}, errors.ErrCodeInvalidInput},
		{"org without token", []string{"--org", "acme"}, errors.ErrCodeUnauthorized},
		{"bad concurrency", []string{"package.json", "--concurrency", "0"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("error = %v (code %q), want %q", err, got, tt.want)
			}
		})
	}
}

func TestAuditMutuallyExclusiveFlags(t *testing.T) {
	isolateEnv(t)
	if _, err := runRoot(t, "--file", "a.txt", "--org", "acme"); err == nil {
		t.Error("--file with --org should fail")
	}
	if _, err := runRoot(t, "--org", "acme", "--complete", "--comprehensive"); err == nil {
		t.Error("--complete with --comprehensive should fail")
	}
}

func TestConfigCommand(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvGitHubToken, "ghp_secretvalue9876")

	var buf bytes.Buffer
	listOut = &buf
	t.Cleanup(func() { listOut = os.Stdout })

	if _, err := runRoot(t, "config"); err != nil {
		t.Fatalf("config: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "secretvalue") {
		t.Error("config output leaks the token")
	}
	if !strings.Contains(out, "9876") || !strings.Contains(out, "https://registry.npmjs.com") {
		t.Errorf("unexpected config output:\n%s", out)
	}
}
