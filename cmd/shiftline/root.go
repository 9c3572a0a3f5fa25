package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/shiftline/internal/adapter"
	"github.com/amishk599/shiftline/internal/browser"
	"github.com/amishk599/shiftline/internal/config"
	"github.com/amishk599/shiftline/internal/controller"
	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/ratelimit"
	"github.com/amishk599/shiftline/internal/report"
	"github.com/amishk599/shiftline/internal/retry"
	"github.com/amishk599/shiftline/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "shiftline",
	Short:         "Nursing job ingestion",
	Long:          "Shiftline pulls nursing job postings from employer career sites into one canonical store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvPath+" env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig loads .env, then resolves the config path and parses it.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.Load(config.ResolvePath(cfgPath))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupReporter(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Reporter {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack reporter")
		return report.Multi{report.NewLogReporter(logger), report.NewSlackReporter(cfg.Notification.WebhookURL, httpClient, logger)}
	default:
		return report.NewLogReporter(logger)
	}
}

// openStore returns the configured canonical store and a func that closes it.
func openStore(cfg *config.Config) (model.JobStore, func() error, error) {
	switch cfg.Store.Driver {
	case "supabase":
		key, err := cfg.Store.SupabaseKeyResolved()
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSupabaseStore(cfg.Store.SupabaseURL, key)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return s, s.Close, nil
	}
}

// newPacer builds one pacer shared by every employer so employers on the
// same ATS never hammer it in parallel.
func newPacer(cfg *config.Config) *ratelimit.Pacer {
	p := ratelimit.NewPacer(cfg.RateLimit.PageDelay)
	for _, e := range cfg.Employers {
		p.SetDelay(e.ATS, ratelimit.KindPage, cfg.RateLimit.PageDelayFor(e.ATS))
		p.SetDelay(e.ATS, ratelimit.KindDetail, cfg.RateLimit.DetailDelay)
	}
	return p
}

func newRoleFilter(cfg *config.Config) *filter.RoleFilter {
	include, exclude := cfg.RoleFilter.Include, cfg.RoleFilter.Exclude
	if len(include) == 0 {
		include = filter.DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = filter.DefaultExclude
	}
	return filter.NewRoleFilter(include, exclude, cfg.RoleFilter.Locations)
}

// deps is everything a run needs beyond its employer.
type deps struct {
	cfg        *config.Config
	httpClient *http.Client
	filter     model.JobFilter
	pacer      *ratelimit.Pacer
	store      model.JobStore
	logger     *slog.Logger
}

func newDeps(cfg *config.Config, st model.JobStore, logger *slog.Logger) *deps {
	return &deps{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		filter:     newRoleFilter(cfg),
		pacer:      newPacer(cfg),
		store:      st,
		logger:     logger,
	}
}

// newConnector builds the source connector for e, paced and retried.
func (d *deps) newConnector(e config.EmployerConfig) (model.Connector, error) {
	var conn model.Connector
	switch e.ATS {
	case "greenhouse":
		conn = adapter.NewGreenhouseAdapter(e.BoardToken, d.filter, d.httpClient)
	case "lever":
		conn = adapter.NewLeverAdapter(e.BoardToken, d.filter, d.httpClient)
	case "ashby":
		conn = adapter.NewAshbyAdapter(e.BoardToken, d.filter, d.httpClient)
	case "gem":
		conn = adapter.NewGemAdapter(e.BoardToken, d.filter, d.httpClient)
	case "workday":
		conn = adapter.NewWorkdayAdapter(e.WorkdayURL, e.SearchText, d.filter, d.httpClient)
	case "browser":
		logger := d.logger.With("employer", e.Slug)
		driver, err := browser.NewDriver(e.BrowserProfile(), d.cfg.Browser.DriverOptions(), logger)
		if err != nil {
			return nil, err
		}
		launcher, err := browser.NewPlaywrightLauncher(d.cfg.Browser.LaunchOptions())
		if err != nil {
			return nil, err
		}
		conn = browser.NewConnector(launcher, driver, d.filter, logger)
	default:
		return nil, &model.ConfigError{Err: fmt.Errorf("employer %s: unsupported ats %q", e.Slug, e.ATS)}
	}
	paced := ratelimit.NewConnector(conn, d.pacer, e.ATS)
	return retry.NewConnector(paced, d.cfg.Retry.MaxRetries, d.cfg.Retry.BaseDelay, d.logger), nil
}

// runEmployer runs one employer end to end. Persisting runs hold the
// employer's run lock for their whole duration.
func (d *deps) runEmployer(ctx context.Context, slug string, opts controller.Options) (model.Summary, error) {
	e, err := d.cfg.Employer(slug)
	if err != nil {
		return model.Summary{}, err
	}
	if !opts.DryRun {
		lock, err := controller.AcquireRunLock(d.cfg.Store.LockDir, e.Slug)
		if err != nil {
			return model.Summary{}, err
		}
		defer lock.Release()
	}

	conn, err := d.newConnector(e)
	if err != nil {
		return model.Summary{}, err
	}
	if c, ok := conn.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				d.logger.Warn("closing connector", "employer", e.Slug, "error", err)
			}
		}()
	}

	st := d.store
	if opts.DryRun {
		st = store.NewNopStore()
	}
	return controller.NewEmployerRun(e.Model(), conn, st, opts, d.logger).Run(ctx)
}
