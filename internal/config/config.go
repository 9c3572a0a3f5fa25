package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/shiftline/internal/browser"
	"github.com/amishk599/shiftline/internal/model"
)

// EnvPath names the environment variable consulted when --config is unset.
const EnvPath = "SHIFTLINE_CONFIG"

// Config is the root configuration for shiftline.
type Config struct {
	Employers    []EmployerConfig
	RoleFilter   RoleFilterConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	Browser      BrowserConfig
	Store        StoreConfig
	Notification NotificationConfig
	Schedule     ScheduleConfig
}

// EmployerConfig describes one employer career site.
type EmployerConfig struct {
	Name          string `yaml:"name"`
	Slug          string `yaml:"slug"`
	ATS           string `yaml:"ats"` // greenhouse, lever, workday, ashby, gem, browser
	BoardToken    string `yaml:"board_token"`
	WorkdayURL    string `yaml:"workday_url"`
	SearchText    string `yaml:"search_text"` // workday only
	CareerPageURL string `yaml:"career_page_url"`
	Enabled       bool   `yaml:"enabled"`
	// Profile is required when ATS is "browser".
	Profile *ProfileConfig `yaml:"profile"`
}

// Model returns the store-facing employer record.
func (e EmployerConfig) Model() model.Employer {
	return model.Employer{
		Name:          e.Name,
		Slug:          e.Slug,
		CareerPageURL: e.CareerPageURL,
		ATSPlatform:   e.ATS,
	}
}

// ProfileConfig is the YAML form of a browser.Profile.
type ProfileConfig struct {
	SearchURL        string `yaml:"search_url"`
	FilterLabel      string `yaml:"filter_label"`
	FilterSelector   string `yaml:"filter_selector"`
	CardSelector     string `yaml:"card_selector"`
	CardLinkSelector string `yaml:"card_link_selector"`
	DetailSelector   string `yaml:"detail_selector"`
	DetailInline     bool   `yaml:"detail_inline"`
	DetailURL        string `yaml:"detail_url"`
	IDPattern        string `yaml:"id_pattern"`
	LocationPattern  string `yaml:"location_pattern"`
	ReadyPattern     string `yaml:"ready_pattern"`
}

// BrowserProfile converts p for the driver.
func (e EmployerConfig) BrowserProfile() browser.Profile {
	p := e.Profile
	if p == nil {
		return browser.Profile{Name: e.Slug}
	}
	return browser.Profile{
		Name:             e.Slug,
		SearchURL:        p.SearchURL,
		FilterLabel:      p.FilterLabel,
		FilterSelector:   p.FilterSelector,
		CardSelector:     p.CardSelector,
		CardLinkSelector: p.CardLinkSelector,
		DetailSelector:   p.DetailSelector,
		DetailInline:     p.DetailInline,
		DetailURL:        p.DetailURL,
		IDPattern:        p.IDPattern,
		LocationPattern:  p.LocationPattern,
		ReadyPattern:     p.ReadyPattern,
	}
}

// RoleFilterConfig overrides the built-in nursing role phrases.
type RoleFilterConfig struct {
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Locations []string `yaml:"locations"`
}

// RateLimitConfig controls pacing per ATS.
type RateLimitConfig struct {
	PageDelay    time.Duration            // gap between list pages on the same ATS
	DetailDelay  time.Duration            // gap between detail fetches on the same ATS
	ATSOverrides map[string]time.Duration // page delay per ATS name
}

// PageDelayFor returns the page delay for ats, falling back to PageDelay.
func (r RateLimitConfig) PageDelayFor(ats string) time.Duration {
	if d, ok := r.ATSOverrides[ats]; ok {
		return d
	}
	return r.PageDelay
}

// RetryConfig bounds retries of transient fetch failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// BrowserConfig holds the launch and collection settings shared by every
// browser-driven employer.
type BrowserConfig struct {
	Headless          bool
	ExecutablePath    string
	UserAgent         string
	StepTimeout       time.Duration
	MaxScrolls        int
	StallThreshold    int
	SettleDelay       time.Duration
	MaxReplayAttempts int
	ReadyAttempts     int
	ReadyInterval     time.Duration
	MaxCards          int // raw cards per portal before role filtering, 0 means all
}

// DriverOptions converts the config for browser.NewDriver. The per-run job
// cap is not a card cap: it counts listings that passed the role filter and
// is enforced by the run controller.
func (b BrowserConfig) DriverOptions() browser.Options {
	return browser.Options{
		MaxResults:        b.MaxCards,
		MaxScrolls:        b.MaxScrolls,
		StallThreshold:    b.StallThreshold,
		SettleDelay:       b.SettleDelay,
		MaxReplayAttempts: b.MaxReplayAttempts,
		ReadyAttempts:     b.ReadyAttempts,
		ReadyInterval:     b.ReadyInterval,
		StepTimeout:       b.StepTimeout,
	}
}

// LaunchOptions converts the config for browser.NewPlaywrightLauncher.
func (b BrowserConfig) LaunchOptions() browser.LaunchOptions {
	return browser.LaunchOptions{
		Headless:       b.Headless,
		ExecutablePath: b.ExecutablePath,
		UserAgent:      b.UserAgent,
		StepTimeout:    b.StepTimeout,
	}
}

// StoreConfig selects and configures the canonical store.
type StoreConfig struct {
	Driver         string `yaml:"driver"` // "sqlite" (default) or "supabase"
	Path           string `yaml:"path"`
	SupabaseURL    string `yaml:"supabase_url"`
	SupabaseKey    string `yaml:"supabase_key"`
	KeyringAccount string `yaml:"keyring_account"`
	LockDir        string `yaml:"lock_dir"`
}

// NotificationConfig controls which summary reporter is used.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// ScheduleConfig drives run-all.
type ScheduleConfig struct {
	Interval    time.Duration
	Concurrency int
}

const (
	defaultPageDelay   = 2 * time.Second
	defaultDetailDelay = time.Second
	defaultMaxRetries  = 3
	defaultBaseDelay   = time.Second
	defaultStepTimeout = 30 * time.Second
	defaultInterval    = 6 * time.Hour
	defaultConcurrency = 2
	defaultDBPath      = "shiftline.db"
	defaultLockDir     = ".shiftline"
	slackPrefix        = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Employers    []EmployerConfig   `yaml:"employers"`
	RoleFilter   RoleFilterConfig   `yaml:"role_filter"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Retry        rawRetryConfig     `yaml:"retry"`
	Browser      rawBrowserConfig   `yaml:"browser"`
	Store        StoreConfig        `yaml:"store"`
	Notification NotificationConfig `yaml:"notification"`
	Schedule     rawScheduleConfig  `yaml:"schedule"`
}

type rawRateLimitConfig struct {
	PageDelay    string            `yaml:"page_delay"`
	DetailDelay  string            `yaml:"detail_delay"`
	ATSOverrides map[string]string `yaml:"ats_overrides"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawBrowserConfig struct {
	Headless          *bool  `yaml:"headless"`
	ExecutablePath    string `yaml:"executable_path"`
	UserAgent         string `yaml:"user_agent"`
	StepTimeout       string `yaml:"step_timeout"`
	MaxScrolls        int    `yaml:"max_scrolls"`
	StallThreshold    int    `yaml:"stall_threshold"`
	SettleDelay       string `yaml:"settle_delay"`
	MaxReplayAttempts int    `yaml:"max_replay_attempts"`
	ReadyAttempts     int    `yaml:"ready_attempts"`
	ReadyInterval     string `yaml:"ready_interval"`
	MaxCards          int    `yaml:"max_cards"`
}

type rawScheduleConfig struct {
	Interval    string `yaml:"interval"`
	Concurrency int    `yaml:"concurrency"`
}

// ResolvePath picks the config file: explicit flag, then SHIFTLINE_CONFIG,
// then ./config.yaml.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return "config.yaml"
}

// LoadDotEnv loads .env into the process environment. A missing file is not
// an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return configError(errors.Wrap(err, "load .env"), "check the .env file syntax (KEY=value per line)")
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Every failure is a *model.ConfigError carrying a hint.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(errors.Wrap(err, "read config"),
			"pass --config or set "+EnvPath+" to point at your config.yaml")
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, configError(errors.Wrap(err, "parse config"), "the file must be valid YAML")
	}

	cfg, err := convert(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func convert(raw rawConfig) (*Config, error) {
	var err error
	d := func(field, s string, def time.Duration) time.Duration {
		if err != nil || s == "" {
			return def
		}
		v, perr := time.ParseDuration(s)
		if perr != nil {
			err = configError(errors.Wrapf(perr, "parse %s %q", field, s), `durations look like "500ms", "2s" or "6h"`)
			return def
		}
		return v
	}

	overrides := make(map[string]time.Duration, len(raw.RateLimit.ATSOverrides))
	for ats, s := range raw.RateLimit.ATSOverrides {
		overrides[ats] = d(fmt.Sprintf("rate_limit.ats_overrides[%q]", ats), s, 0)
	}

	maxRetries := defaultMaxRetries
	if raw.Retry.MaxRetries != nil {
		maxRetries = *raw.Retry.MaxRetries
	}
	headless := true
	if raw.Browser.Headless != nil {
		headless = *raw.Browser.Headless
	}
	concurrency := raw.Schedule.Concurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}

	st := raw.Store
	if st.Driver == "" {
		st.Driver = "sqlite"
	}
	if st.Driver == "sqlite" && st.Path == "" {
		st.Path = defaultDBPath
	}
	if st.LockDir == "" {
		st.LockDir = defaultLockDir
	}
	if raw.Notification.Type == "" {
		raw.Notification.Type = "log"
	}

	employers := make([]EmployerConfig, len(raw.Employers))
	for i, e := range raw.Employers {
		e.ATS = strings.ToLower(strings.TrimSpace(e.ATS))
		if e.Name == "" {
			e.Name = e.Slug
		}
		employers[i] = e
	}

	cfg := &Config{
		Employers:  employers,
		RoleFilter: raw.RoleFilter,
		RateLimit: RateLimitConfig{
			PageDelay:    d("rate_limit.page_delay", raw.RateLimit.PageDelay, defaultPageDelay),
			DetailDelay:  d("rate_limit.detail_delay", raw.RateLimit.DetailDelay, defaultDetailDelay),
			ATSOverrides: overrides,
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  d("retry.base_delay", raw.Retry.BaseDelay, defaultBaseDelay),
		},
		Browser: BrowserConfig{
			Headless:          headless,
			ExecutablePath:    raw.Browser.ExecutablePath,
			UserAgent:         raw.Browser.UserAgent,
			StepTimeout:       d("browser.step_timeout", raw.Browser.StepTimeout, defaultStepTimeout),
			MaxScrolls:        raw.Browser.MaxScrolls,
			StallThreshold:    raw.Browser.StallThreshold,
			SettleDelay:       d("browser.settle_delay", raw.Browser.SettleDelay, browser.DefaultOptions.SettleDelay),
			MaxReplayAttempts: raw.Browser.MaxReplayAttempts,
			ReadyAttempts:     raw.Browser.ReadyAttempts,
			ReadyInterval:     d("browser.ready_interval", raw.Browser.ReadyInterval, browser.DefaultOptions.ReadyInterval),
			MaxCards:          raw.Browser.MaxCards,
		},
		Store:        st,
		Notification: raw.Notification,
		Schedule: ScheduleConfig{
			Interval:    d("schedule.interval", raw.Schedule.Interval, defaultInterval),
			Concurrency: concurrency,
		},
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

var knownATS = map[string]bool{
	"greenhouse": true, "lever": true, "workday": true, "ashby": true, "gem": true, "browser": true,
}

func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Employers))
	enabled := 0
	for i, e := range cfg.Employers {
		if e.Slug == "" {
			return configErrorf("each employer needs a unique slug", "employers[%d]: slug is required", i)
		}
		if seen[e.Slug] {
			return configErrorf("each employer needs a unique slug", "employers[%d]: duplicate slug %q", i, e.Slug)
		}
		seen[e.Slug] = true
		if !knownATS[e.ATS] {
			return configErrorf("supported: greenhouse, lever, workday, ashby, gem, browser",
				"employer %s: unknown ats %q", e.Slug, e.ATS)
		}
		switch e.ATS {
		case "workday":
			if e.WorkdayURL == "" {
				return configErrorf("set workday_url to the site's /wday/cxs/... jobs endpoint",
					"employer %s: workday_url is required", e.Slug)
			}
		case "browser":
			if e.Profile == nil {
				return configErrorf("add a profile block with at least search_url and card_selector",
					"employer %s: profile is required for browser employers", e.Slug)
			}
			p := e.BrowserProfile()
			if err := p.Compile(); err != nil {
				return configError(errors.Wrapf(err, "employer %s", e.Slug), "check the profile's selectors and patterns")
			}
		default:
			if e.BoardToken == "" {
				return configErrorf("board_token is the company's identifier on the ATS job board",
					"employer %s: board_token is required", e.Slug)
			}
		}
		if e.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return configErrorf("set enabled: true on at least one employer", "no enabled employers")
	}

	if cfg.Retry.MaxRetries < 0 {
		return configErrorf("use 0 to disable retries", "retry.max_retries must not be negative")
	}
	if cfg.Schedule.Interval <= 0 {
		return configErrorf("schedule.interval must be positive", "invalid schedule.interval %v", cfg.Schedule.Interval)
	}
	if cfg.Schedule.Concurrency < 1 {
		return configErrorf("use 1 to run employers one at a time", "schedule.concurrency must be at least 1")
	}

	switch cfg.Store.Driver {
	case "sqlite":
	case "supabase":
		if cfg.Store.SupabaseURL == "" {
			return configErrorf("set store.supabase_url to your project URL", "store.supabase_url is required")
		}
		if cfg.Store.SupabaseKey == "" && cfg.Store.KeyringAccount == "" {
			return configErrorf("set store.supabase_key (e.g. ${SUPABASE_KEY}) or store.keyring_account",
				"supabase credentials are missing")
		}
	default:
		return configErrorf(`use "sqlite" or "supabase"`, "unknown store.driver %q", cfg.Store.Driver)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackPrefix) {
			return configErrorf("create an Incoming Webhook in Slack and paste its URL",
				"notification.webhook_url must start with %s", slackPrefix)
		}
	default:
		return configErrorf(`use "log" or "slack"`, "unknown notification.type %q", cfg.Notification.Type)
	}
	return nil
}

// Employer returns the configured employer with the given slug.
func (c *Config) Employer(slug string) (EmployerConfig, error) {
	for _, e := range c.Employers {
		if e.Slug == slug {
			return e, nil
		}
	}
	return EmployerConfig{}, configErrorf("run `shiftline employers` to list configured slugs",
		"unknown employer %q", slug)
}

// Enabled returns the enabled employers in config order.
func (c *Config) Enabled() []EmployerConfig {
	var out []EmployerConfig
	for _, e := range c.Employers {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

func configError(err error, hint string) error {
	return &model.ConfigError{Err: errors.WithHint(err, hint)}
}

func configErrorf(hint, format string, args ...any) error {
	return configError(errors.Newf(format, args...), hint)
}
