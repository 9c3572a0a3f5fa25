// Package controller runs one employer end to end: list, detail,
// canonicalize, validate, persist, and tally the outcome.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/normalize"
)

// DefaultSampleSize is how many records a dry run keeps for display.
const DefaultSampleSize = 5

// Options bound and shape one run.
type Options struct {
	DryRun     bool
	MaxPages   int // 0 means unbounded
	MaxJobs    int // 0 means unbounded
	SampleSize int
}

// EmployerRun owns the ingestion pipeline for a single employer.
type EmployerRun struct {
	employer  model.Employer
	connector model.Connector
	store     model.JobStore
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewEmployerRun creates a run wired with all its dependencies.
func NewEmployerRun(
	employer model.Employer,
	connector model.Connector,
	store model.JobStore,
	opts Options,
	logger *slog.Logger,
) *EmployerRun {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	return &EmployerRun{
		employer:  employer,
		connector: connector,
		store:     store,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one ingestion run. A summary is always returned. The error is
// non-nil only when the run could not start (store or source unreachable) or
// was cancelled; per-record failures are tallied in the summary instead.
func (r *EmployerRun) Run(ctx context.Context) (model.Summary, error) {
	sum := model.Summary{
		RunID:     uuid.NewString(),
		Employer:  r.employer.Slug,
		DryRun:    r.opts.DryRun,
		StartedAt: r.now(),
	}
	if r.opts.DryRun {
		sum.ByLocation = make(map[string]int)
		sum.BySpecialty = make(map[string]int)
	}
	logger := r.logger.With("run_id", sum.RunID, "employer", r.employer.Slug)

	employer := r.employer
	if !r.opts.DryRun {
		e, err := r.store.EnsureEmployer(ctx, employer)
		if err != nil {
			sum.Duration = r.now().Sub(sum.StartedAt)
			return sum, fmt.Errorf("run %s: %w", employer.Slug, err)
		}
		employer = e
	}

	err := r.pages(ctx, employer, &sum, logger)
	sum.Duration = r.now().Sub(sum.StartedAt)

	logger.Info("run finished",
		"dry_run", sum.DryRun,
		"pages", sum.Pages,
		"fetched", sum.Fetched,
		"created", sum.Created,
		"updated", sum.Updated,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"degraded", sum.Degraded,
		"duration", sum.Duration.Round(time.Millisecond),
	)
	return sum, err
}

func (r *EmployerRun) pages(ctx context.Context, employer model.Employer, sum *model.Summary, logger *slog.Logger) error {
	seen := make(map[string]bool)
	cursor := ""

	for page := 0; r.opts.MaxPages == 0 || page < r.opts.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lp, err := r.connector.ListPage(ctx, cursor)
		if err != nil {
			if page == 0 && len(lp.Listings) == 0 {
				return fmt.Errorf("run %s: cannot reach source: %w", employer.Slug, err)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("listing page failed, stopping pagination", "page", page+1, "error", err)
			sum.Errors = append(sum.Errors, model.RecordError{
				SourceID: fmt.Sprintf("page %d", page+1),
				Stage:    "fetch",
				Reasons:  []string{err.Error()},
			})
		}
		sum.Pages++
		sum.Skipped += lp.Filtered

		for _, l := range lp.Listings {
			if seen[l.SourceID] {
				sum.Skipped++
				logger.Debug("duplicate listing in run", "source_id", l.SourceID)
				continue
			}
			seen[l.SourceID] = true

			if r.opts.MaxJobs > 0 && sum.Fetched >= r.opts.MaxJobs {
				logger.Debug("max jobs reached", "max_jobs", r.opts.MaxJobs)
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			sum.Fetched++

			if err := r.process(ctx, employer, l, sum, logger); err != nil {
				return err
			}
		}

		if err != nil || lp.Next == "" {
			return nil
		}
		cursor = lp.Next
	}
	return nil
}

// process runs one listing through detail, normalization, validation and
// persistence. Only cancellation is returned as an error.
func (r *EmployerRun) process(ctx context.Context, employer model.Employer, l model.RawListing, sum *model.Summary, logger *slog.Logger) error {
	if !l.DetailFetched {
		detailed, err := r.connector.FetchDetail(ctx, l)
		var extractErr *model.ExtractionError
		switch {
		case err == nil:
			l = detailed
		case errors.As(err, &extractErr):
			sum.Degraded++
			logger.Warn("using listing-level fields", "source_id", l.SourceID, "error", err)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			sum.Failed++
			sum.Errors = append(sum.Errors, model.RecordError{
				SourceID: l.SourceID,
				Stage:    "detail",
				Reasons:  []string{err.Error()},
			})
			logger.Warn("detail fetch failed", "source_id", l.SourceID, "error", err)
			return nil
		}
	}

	job := normalize.Canonicalize(employer, l, r.now())

	if v := normalize.ValidateJob(job); !v.Valid {
		sum.Skipped++
		sum.Errors = append(sum.Errors, model.RecordError{
			SourceID: l.SourceID,
			Stage:    "validate",
			Reasons:  v.Errors,
		})
		logger.Info("rejected invalid job", "source_id", l.SourceID, "error",
			&model.ValidationError{SourceID: l.SourceID, Errors: v.Errors})
		return nil
	}

	// Detail for an in-flight listing is discarded on cancellation.
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.opts.DryRun {
		sum.Valid++
		if len(sum.Sample) < r.opts.SampleSize {
			sum.Sample = append(sum.Sample, job)
		}
		sum.ByLocation[job.City+", "+job.State]++
		sum.BySpecialty[job.Specialty]++
		return nil
	}

	result, err := r.store.Upsert(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sum.Failed++
		sum.Errors = append(sum.Errors, model.RecordError{
			SourceID: l.SourceID,
			Stage:    "persist",
			Reasons:  []string{err.Error()},
		})
		logger.Error("persist failed", "source_id", l.SourceID, "error", err)
		return nil
	}

	switch result {
	case model.Created:
		sum.Created++
	case model.Updated:
		sum.Updated++
	}
	logger.Debug("job stored", "source_id", l.SourceID, "result", result, "slug", job.Slug)
	return nil
}
