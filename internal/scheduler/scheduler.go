package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/shiftline/internal/model"
)

// RunFunc runs one employer end to end and returns its summary.
type RunFunc func(ctx context.Context, employer string) (model.Summary, error)

// Result is the outcome of one employer run within a cycle.
type Result struct {
	Employer string
	Summary  model.Summary
	Err      error
}

// Scheduler runs every enabled employer, either once or on an interval.
// Employer runs are independent and may overlap up to the concurrency limit.
type Scheduler struct {
	employers   []string
	run         RunFunc
	reporter    model.Reporter
	concurrency int
	interval    time.Duration
	logger      *slog.Logger
}

// NewScheduler creates a scheduler over the given employer slugs.
func NewScheduler(employers []string, run RunFunc, reporter model.Reporter, concurrency int, interval time.Duration, logger *slog.Logger) *Scheduler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Scheduler{
		employers:   employers,
		run:         run,
		reporter:    reporter,
		concurrency: concurrency,
		interval:    interval,
		logger:      logger,
	}
}

// Run starts the loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"employers", len(s.employers),
		"concurrency", s.concurrency,
	)

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every employer once and reports each summary in employer
// order. One employer failing never stops the others.
func (s *Scheduler) RunOnce(ctx context.Context) []Result {
	results := make([]Result, len(s.employers))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, slug := range s.employers {
		if ctx.Err() != nil {
			results[i] = Result{Employer: slug, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			sum, err := s.run(ctx, slug)
			results[i] = Result{Employer: slug, Summary: sum, Err: err}
			if err != nil {
				s.logger.Error("employer run failed", "employer", slug, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Summary.Employer == "" || s.reporter == nil {
			continue
		}
		if err := s.reporter.Report(r.Summary); err != nil {
			s.logger.Error("report failed", "employer", r.Employer, "error", err)
		}
	}
	return results
}
