package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	crdb "github.com/cockroachdb/errors"

	"github.com/amishk599/shiftline/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimal = `
employers:
  - name: Mercy Health
    slug: mercy-health
    ats: greenhouse
    board_token: mercy
    enabled: true
`

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
employers:
  - name: Mercy Health
    slug: mercy-health
    ats: Greenhouse
    board_token: mercy
    enabled: true
  - slug: st-luke
    ats: browser
    enabled: false
    profile:
      search_url: https://careers.stluke.example/search
      card_selector: .job-card
      filter_label: Nursing
role_filter:
  locations: [OH, KY]
rate_limit:
  page_delay: 3s
  ats_overrides:
    workday: 10s
retry:
  max_retries: 5
  base_delay: 250ms
browser:
  headless: false
  step_timeout: 20s
  max_scrolls: 40
  ready_attempts: 4
  ready_interval: 2s
schedule:
  interval: 2h
  concurrency: 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Employers) != 2 || cfg.Employers[0].ATS != "greenhouse" {
		t.Errorf("Employers = %+v", cfg.Employers)
	}
	if cfg.Employers[1].Name != "st-luke" {
		t.Errorf("Name should default to slug, got %q", cfg.Employers[1].Name)
	}
	if got := cfg.RateLimit.PageDelayFor("workday"); got != 10*time.Second {
		t.Errorf("PageDelayFor(workday) = %v", got)
	}
	if got := cfg.RateLimit.PageDelayFor("lever"); got != 3*time.Second {
		t.Errorf("PageDelayFor(lever) = %v", got)
	}
	if cfg.RateLimit.DetailDelay != defaultDetailDelay {
		t.Errorf("DetailDelay = %v", cfg.RateLimit.DetailDelay)
	}
	if cfg.Retry.MaxRetries != 5 || cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Browser.Headless || cfg.Browser.StepTimeout != 20*time.Second || cfg.Browser.MaxScrolls != 40 {
		t.Errorf("Browser = %+v", cfg.Browser)
	}
	opts := cfg.Browser.DriverOptions()
	if opts.ReadyAttempts != 4 || opts.ReadyInterval != 2*time.Second || opts.MaxResults != 0 {
		t.Errorf("DriverOptions = %+v", opts)
	}
	if cfg.Schedule.Interval != 2*time.Hour || cfg.Schedule.Concurrency != 4 {
		t.Errorf("Schedule = %+v", cfg.Schedule)
	}
	if len(cfg.RoleFilter.Locations) != 2 {
		t.Errorf("RoleFilter = %+v", cfg.RoleFilter)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != defaultDBPath || cfg.Store.LockDir != defaultLockDir {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Notification.Type != "log" {
		t.Errorf("Notification.Type = %q", cfg.Notification.Type)
	}
	if cfg.Retry.MaxRetries != defaultMaxRetries {
		t.Errorf("MaxRetries = %d", cfg.Retry.MaxRetries)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
	if opts := cfg.Browser.DriverOptions(); opts.MaxResults != 0 || opts.ReadyInterval != 500*time.Millisecond {
		t.Errorf("DriverOptions = %+v", opts)
	}
	if cfg.Schedule.Interval != defaultInterval || cfg.Schedule.Concurrency != defaultConcurrency {
		t.Errorf("Schedule = %+v", cfg.Schedule)
	}
}

func TestLoad_ZeroRetriesAllowed(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal+"retry:\n  max_retries: 0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Retry.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.Retry.MaxRetries)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SHIFTLINE_TEST_HOOK", "https://hooks.slack.com/services/T/B/X")
	cfg, err := Load(writeConfig(t, minimal+"notification:\n  type: slack\n  webhook_url: ${SHIFTLINE_TEST_HOOK}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.WebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("WebhookURL = %q", cfg.Notification.WebhookURL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid yaml", "employers: [broken", "parse config"},
		{"no enabled", strings.Replace(minimal, "enabled: true", "enabled: false", 1), "no enabled employers"},
		{"missing slug", "employers:\n  - ats: lever\n    board_token: x\n    enabled: true\n", "slug is required"},
		{"duplicate slug", minimal + "  - slug: mercy-health\n    ats: lever\n    board_token: y\n", "duplicate slug"},
		{"unknown ats", "employers:\n  - slug: a\n    ats: taleo\n    enabled: true\n", "unknown ats"},
		{"missing token", "employers:\n  - slug: a\n    ats: lever\n    enabled: true\n", "board_token is required"},
		{"workday url", "employers:\n  - slug: a\n    ats: workday\n    enabled: true\n", "workday_url is required"},
		{"browser profile", "employers:\n  - slug: a\n    ats: browser\n    enabled: true\n", "profile is required"},
		{"bad profile", "employers:\n  - slug: a\n    ats: browser\n    enabled: true\n    profile:\n      search_url: https://x.example\n", "card_selector"},
		{"bad duration", minimal + "rate_limit:\n  page_delay: soon\n", "rate_limit.page_delay"},
		{"bad store", minimal + "store:\n  driver: mysql\n", "unknown store.driver"},
		{"supabase creds", minimal + "store:\n  driver: supabase\n  supabase_url: https://p.supabase.co\n", "credentials are missing"},
		{"slack url", minimal + "notification:\n  type: slack\n  webhook_url: https://example.com\n", "hooks.slack.com"},
		{"negative retries", minimal + "retry:\n  max_retries: -1\n", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load: expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
			if !model.IsConfigError(err) {
				t.Errorf("error %T is not a ConfigError", err)
			}
			if crdb.FlattenHints(err) == "" {
				t.Error("expected an operator hint")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if !model.IsConfigError(err) {
		t.Fatalf("Load: want ConfigError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "")
	if got := ResolvePath(""); got != "config.yaml" {
		t.Errorf("default = %q", got)
	}
	t.Setenv(EnvPath, "/etc/shiftline.yaml")
	if got := ResolvePath(""); got != "/etc/shiftline.yaml" {
		t.Errorf("env = %q", got)
	}
	if got := ResolvePath("mine.yaml"); got != "mine.yaml" {
		t.Errorf("flag = %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SHIFTLINE_DOTENV_TEST=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHIFTLINE_DOTENV_TEST", "")
	os.Unsetenv("SHIFTLINE_DOTENV_TEST")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("SHIFTLINE_DOTENV_TEST"); got != "loaded" {
		t.Errorf("env = %q", got)
	}
}

func TestEmployerLookup(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatal(err)
	}
	e, err := cfg.Employer("mercy-health")
	if err != nil || e.BoardToken != "mercy" {
		t.Fatalf("Employer = %+v, %v", e, err)
	}
	if m := e.Model(); m.ATSPlatform != "greenhouse" || m.Name != "Mercy Health" {
		t.Errorf("Model() = %+v", m)
	}
	if _, err := cfg.Employer("nope"); !model.IsConfigError(err) {
		t.Errorf("unknown employer: want ConfigError, got %v", err)
	}
	if n := len(cfg.Enabled()); n != 1 {
		t.Errorf("Enabled() = %d", n)
	}
}

func TestSupabaseKeyResolved(t *testing.T) {
	orig := keyringGet
	t.Cleanup(func() { keyringGet = orig })

	if k, err := (StoreConfig{SupabaseKey: " abc "}).SupabaseKeyResolved(); err != nil || k != "abc" {
		t.Errorf("inline key = %q, %v", k, err)
	}

	keyringGet = func(service, account string) (string, error) {
		if service != KeyringService || account != "prod" {
			t.Errorf("keyring lookup %s/%s", service, account)
		}
		return "from-keyring", nil
	}
	if k, err := (StoreConfig{KeyringAccount: "prod"}).SupabaseKeyResolved(); err != nil || k != "from-keyring" {
		t.Errorf("keyring key = %q, %v", k, err)
	}

	keyringGet = func(string, string) (string, error) { return "", errors.New("not found") }
	if _, err := (StoreConfig{KeyringAccount: "prod"}).SupabaseKeyResolved(); !model.IsConfigError(err) {
		t.Errorf("missing secret: want ConfigError, got %v", err)
	}
	if _, err := (StoreConfig{}).SupabaseKeyResolved(); !model.IsConfigError(err) {
		t.Errorf("no key: want ConfigError, got %v", err)
	}
}
