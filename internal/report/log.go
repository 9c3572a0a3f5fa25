package report

import (
	"log/slog"
	"strings"

	"github.com/amishk599/shiftline/internal/model"
)

var _ model.Reporter = (*LogReporter)(nil)

// LogReporter writes run summaries to the given logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter returns a reporter that logs each summary via slog.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs the counts and then one line per record error. It never fails.
func (r *LogReporter) Report(s model.Summary) error {
	r.logger.Info("run summary",
		"run_id", s.RunID,
		"employer", s.Employer,
		"dry_run", s.DryRun,
		"pages", s.Pages,
		"fetched", s.Fetched,
		"created", s.Created,
		"updated", s.Updated,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"degraded", s.Degraded,
		"duration", s.Duration,
	)
	for _, e := range s.Errors {
		r.logger.Warn("record error",
			"employer", s.Employer,
			"source_id", e.SourceID,
			"stage", e.Stage,
			"reasons", strings.Join(e.Reasons, "; "),
		)
	}
	return nil
}

// Multi fans a summary out to several reporters. Every reporter is called;
// the first error is returned.
type Multi []model.Reporter

func (m Multi) Report(s model.Summary) error {
	var first error
	for _, r := range m {
		if err := r.Report(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
