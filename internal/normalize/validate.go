package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/amishk599/shiftline/internal/model"
)

// MinDescriptionLen is the exclusive lower bound on description length.
const MinDescriptionLen = 50

// ValidationResult lists every problem found on a record. It is never an
// error by itself; callers decide whether to reject or log.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateJob checks a canonical record before persistence.
func ValidateJob(job model.CanonicalJob) ValidationResult {
	var errs []string

	required := []struct {
		name  string
		value string
	}{
		{"title", job.Title},
		{"slug", job.Slug},
		{"sourceJobId", job.SourceJobID},
		{"employerSlug", job.EmployerSlug},
		{"city", job.City},
		{"state", job.State},
		{"specialty", job.Specialty},
		{"description", job.Description},
		{"sourceUrl", job.SourceURL},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, "missing required field: "+f.name)
		}
	}

	if job.State != "" && len(job.State) != 2 {
		errs = append(errs, fmt.Sprintf("state must be exactly 2 characters, got %q", job.State))
	}
	if job.Description != "" && len([]rune(job.Description)) <= MinDescriptionLen {
		errs = append(errs, fmt.Sprintf("description too short: %d characters, need more than %d",
			len([]rune(job.Description)), MinDescriptionLen))
	}
	if job.SourceURL != "" && !isHTTPURL(job.SourceURL) {
		errs = append(errs, fmt.Sprintf("sourceUrl is not an absolute http(s) URL: %q", job.SourceURL))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
