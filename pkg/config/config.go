// Package config loads deponpm settings.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file: the --config path, else ./.deponpm.toml, else
//     $XDG_CONFIG_HOME/deponpm/config.toml (~/.config when unset)
//  3. a .env file in the working directory (never overriding real env vars)
//  4. environment: GITHUB_TOKEN, DEPONPM_REGISTRY_URL,
//     DEPONPM_GITHUB_API_URL, DEPONPM_CONCURRENCY
//  5. command-line flags, applied by the CLI
//
// Example file:
//
//	[registry]
//	url = "https://registry.npmjs.com"
//	timeout = "10s"
//
//	[github]
//	token = "ghp_..."
//
//	[crawl]
//	history_days = 180
//	concurrency = 8
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/0xs3fo/ddeponpm/pkg/errors"
)

// FileName is the per-project config file looked up in the working directory.
const FileName = ".deponpm.toml"

// Environment variables read by [Load].
const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvRegistryURL  = "DEPONPM_REGISTRY_URL"
	EnvGitHubAPIURL = "DEPONPM_GITHUB_API_URL"
	EnvConcurrency  = "DEPONPM_CONCURRENCY"
)

// Config is the complete, immutable run configuration.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	GitHub   GitHubConfig   `toml:"github"`
	Crawl    CrawlConfig    `toml:"crawl"`
	Cache    CacheConfig    `toml:"cache"`
}

// RegistryConfig configures npm registry lookups.
type RegistryConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

// GitHubConfig configures the GitHub API client and blob URL rewriting.
type GitHubConfig struct {
	APIURL  string   `toml:"api_url"`
	WebHost string   `toml:"web_host"`
	RawHost string   `toml:"raw_host"`
	Token   string   `toml:"token"`
	Timeout Duration `toml:"timeout"`
}

// CrawlConfig bounds organization crawls.
type CrawlConfig struct {
	MaxCommits           int `toml:"max_commits"`           // per-repository history cap
	HistoryDays          int `toml:"history_days"`          // comprehensive look-back window
	ComprehensiveCommits int `toml:"comprehensive_commits"` // commits inspected per repo in comprehensive mode
	CompleteCommits      int `toml:"complete_commits"`      // commits inspected per repo in complete mode
	DeletedCommits       int `toml:"deleted_commits"`       // deleted commits inspected per repo in complete mode
	Concurrency          int `toml:"concurrency"`           // parallel repositories and registry lookups
}

// CacheConfig configures the on-disk commit cache.
type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// Duration is a time.Duration that reads from TOML strings like "10s".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Registry: RegistryConfig{
			URL:     "https://registry.npmjs.com",
			Timeout: Duration{10 * time.Second},
		},
		GitHub: GitHubConfig{
			APIURL:  "https://api.github.com",
			WebHost: "github.com",
			RawHost: "raw.githubusercontent.com",
			Timeout: Duration{30 * time.Second},
		},
		Crawl: CrawlConfig{
			MaxCommits:           1000,
			HistoryDays:          365,
			ComprehensiveCommits: 50,
			CompleteCommits:      100,
			DeletedCommits:       50,
			Concurrency:          4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration{7 * 24 * time.Hour},
		},
	}
}

// Load builds the configuration. An explicit path must exist; otherwise the
// default locations are tried and silently skipped when absent.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := locate(path)
	if err != nil {
		return Config{}, err
	}
	if file != "" {
		if err := decodeFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse .env")
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.Registry.URL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "registry.url")
	}
	if err := errors.ValidateURL(c.GitHub.APIURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "github.api_url")
	}
	if c.GitHub.WebHost == "" || c.GitHub.RawHost == "" {
		return errors.New(errors.ErrCodeInvalidInput, "github.web_host and github.raw_host must be set")
	}
	if c.Registry.Timeout.Duration <= 0 || c.GitHub.Timeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeouts must be positive")
	}
	if c.Crawl.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "crawl.concurrency must be at least 1, got %d", c.Crawl.Concurrency)
	}
	for name, v := range map[string]int{
		"crawl.max_commits":           c.Crawl.MaxCommits,
		"crawl.history_days":          c.Crawl.HistoryDays,
		"crawl.comprehensive_commits": c.Crawl.ComprehensiveCommits,
		"crawl.complete_commits":      c.Crawl.CompleteCommits,
		"crawl.deleted_commits":       c.Crawl.DeletedCommits,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s cannot be negative", name)
		}
	}
	return nil
}

// HasToken reports whether a GitHub token is configured.
func (c Config) HasToken() bool { return c.GitHub.Token != "" }

func locate(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return path, nil
	}
	for _, candidate := range defaultPaths() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

func defaultPaths() []string {
	paths := []string{FileName}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "deponpm", "config.toml"))
	}
	return paths
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvGitHubToken)); v != "" {
		cfg.GitHub.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRegistryURL)); v != "" {
		cfg.Registry.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGitHubAPIURL)); v != "" {
		cfg.GitHub.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be an integer", EnvConcurrency)
		}
		cfg.Crawl.Concurrency = n
	}
	return nil
}
