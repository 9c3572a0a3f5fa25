package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	supabase "github.com/nedpals/supabase-go"

	"github.com/amishk599/shiftline/internal/model"
)

// SupabaseStore keeps canonical jobs in a Supabase (PostgREST) project with
// the same tables as SQLiteStore. PostgREST has no multi-statement
// transactions, so the lookup and write are two requests; the unique
// (employer_id, source_job_id) constraint still rejects a racing duplicate.
type SupabaseStore struct {
	client *supabase.Client
}

// NewSupabaseStore creates a SupabaseStore for the project at url.
func NewSupabaseStore(url, key string) (*SupabaseStore, error) {
	if url == "" || key == "" {
		return nil, &model.ConfigError{Err: errors.New("supabase url and key must both be set")}
	}
	return &SupabaseStore{client: supabase.CreateClient(url, key)}, nil
}

type employerRow struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	CareerPageURL string `json:"career_page_url"`
	ATSPlatform   string `json:"ats_platform"`
}

// jobFields are the columns a re-scrape refreshes. is_active and slug are
// absent on purpose: an update built from this type cannot touch them.
type jobFields struct {
	Title           string     `json:"title"`
	City            string     `json:"city"`
	State           string     `json:"state"`
	Zip             string     `json:"zip"`
	JobType         string     `json:"job_type"`
	ShiftType       string     `json:"shift_type"`
	Specialty       string     `json:"specialty"`
	ExperienceLevel string     `json:"experience_level"`
	SalaryMin       *float64   `json:"salary_min"`
	SalaryMax       *float64   `json:"salary_max"`
	SalaryUnit      string     `json:"salary_unit"`
	Description     string     `json:"description"`
	RawDescription  string     `json:"raw_description"`
	SourceURL       string     `json:"source_url"`
	PostedAt        *time.Time `json:"posted_at"`
	ScrapedAt       time.Time  `json:"scraped_at"`
}

type jobInsert struct {
	EmployerID  int64  `json:"employer_id"`
	SourceJobID string `json:"source_job_id"`
	Slug        string `json:"slug"`
	IsActive    bool   `json:"is_active"`
	jobFields
}

type idRow struct {
	ID int64 `json:"id"`
}

func fieldsOf(job model.CanonicalJob) jobFields {
	f := jobFields{
		Title:           job.Title,
		City:            job.City,
		State:           job.State,
		Zip:             job.Zip,
		JobType:         string(job.JobType),
		ShiftType:       job.ShiftType,
		Specialty:       job.Specialty,
		ExperienceLevel: string(job.ExperienceLevel),
		SalaryMin:       job.SalaryMin,
		SalaryMax:       job.SalaryMax,
		SalaryUnit:      string(job.SalaryUnit),
		Description:     job.Description,
		RawDescription:  job.RawDescription,
		SourceURL:       job.SourceURL,
		ScrapedAt:       job.ScrapedAt,
	}
	if !job.PostedAt.IsZero() {
		t := job.PostedAt
		f.PostedAt = &t
	}
	return f
}

// EnsureEmployer implements model.JobStore.
func (s *SupabaseStore) EnsureEmployer(ctx context.Context, e model.Employer) (model.Employer, error) {
	if err := ctx.Err(); err != nil {
		return e, err
	}
	var rows []employerRow
	if err := s.client.DB.From("employers").Select("*").Eq("slug", e.Slug).Execute(&rows); err != nil {
		return e, fmt.Errorf("loading employer %s: %w", e.Slug, err)
	}
	if len(rows) == 0 {
		row := employerRow{Name: e.Name, Slug: e.Slug, CareerPageURL: e.CareerPageURL, ATSPlatform: e.ATSPlatform}
		if err := s.client.DB.From("employers").Insert(row).Execute(&rows); err != nil {
			return e, fmt.Errorf("creating employer %s: %w", e.Slug, err)
		}
		if len(rows) == 0 {
			return e, fmt.Errorf("creating employer %s: empty response", e.Slug)
		}
	}
	r := rows[0]
	return model.Employer{ID: r.ID, Name: r.Name, Slug: r.Slug, CareerPageURL: r.CareerPageURL, ATSPlatform: r.ATSPlatform}, nil
}

// Upsert implements model.JobStore with the same contract as SQLiteStore.
func (s *SupabaseStore) Upsert(ctx context.Context, job model.CanonicalJob) (model.UpsertResult, error) {
	result, err := s.upsert(ctx, job)
	if err != nil {
		return 0, &model.PersistenceError{SourceID: job.SourceJobID, Err: err}
	}
	return result, nil
}

func (s *SupabaseStore) upsert(ctx context.Context, job model.CanonicalJob) (model.UpsertResult, error) {
	if job.EmployerID == 0 {
		return 0, errors.New("missing employer id")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	employerID := strconv.FormatInt(job.EmployerID, 10)
	var existing []idRow
	err := s.client.DB.From("jobs").Select("id").
		Eq("employer_id", employerID).
		Eq("source_job_id", job.SourceJobID).
		Execute(&existing)
	if err != nil {
		return 0, fmt.Errorf("looking up job: %w", err)
	}

	if len(existing) > 0 {
		var out []idRow
		err := s.client.DB.From("jobs").Update(fieldsOf(job)).
			Eq("id", strconv.FormatInt(existing[0].ID, 10)).
			Execute(&out)
		if err != nil {
			return 0, fmt.Errorf("updating job: %w", err)
		}
		return model.Updated, nil
	}

	slug, err := s.freeSlug(job.Slug)
	if err != nil {
		return 0, err
	}
	row := jobInsert{
		EmployerID:  job.EmployerID,
		SourceJobID: job.SourceJobID,
		Slug:        slug,
		IsActive:    false,
		jobFields:   fieldsOf(job),
	}
	var out []idRow
	if err := s.client.DB.From("jobs").Insert(row).Execute(&out); err != nil {
		return 0, fmt.Errorf("inserting job: %w", err)
	}
	return model.Created, nil
}

func (s *SupabaseStore) freeSlug(base string) (string, error) {
	candidate := base
	for n := 2; n <= maxSlugSuffix; n++ {
		var rows []idRow
		if err := s.client.DB.From("jobs").Select("id").Eq("slug", candidate).Execute(&rows); err != nil {
			return "", fmt.Errorf("checking slug %s: %w", candidate, err)
		}
		if len(rows) == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("no free slug for %s", base)
}
