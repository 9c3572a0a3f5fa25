package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/shiftline/internal/model"
)

// maxSlugSuffix bounds the -2, -3, ... search for a free slug.
const maxSlugSuffix = 1000

const schema = `
CREATE TABLE IF NOT EXISTS employers (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	name            TEXT NOT NULL,
	slug            TEXT NOT NULL UNIQUE,
	career_page_url TEXT NOT NULL DEFAULT '',
	ats_platform    TEXT NOT NULL DEFAULT '',
	created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS jobs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	employer_id      INTEGER NOT NULL REFERENCES employers(id),
	source_job_id    TEXT NOT NULL,
	slug             TEXT NOT NULL UNIQUE,
	title            TEXT NOT NULL,
	city             TEXT NOT NULL,
	state            TEXT NOT NULL,
	zip              TEXT NOT NULL DEFAULT '',
	job_type         TEXT NOT NULL DEFAULT '',
	shift_type       TEXT NOT NULL DEFAULT '',
	specialty        TEXT NOT NULL,
	experience_level TEXT NOT NULL DEFAULT '',
	salary_min       REAL,
	salary_max       REAL,
	salary_unit      TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL,
	raw_description  TEXT NOT NULL DEFAULT '',
	source_url       TEXT NOT NULL,
	posted_at        DATETIME,
	scraped_at       DATETIME NOT NULL,
	is_active        INTEGER NOT NULL DEFAULT 0,
	UNIQUE (employer_id, source_job_id)
);`

// SQLiteStore is the canonical job store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the employers and jobs tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer at a time; concurrent runs queue on the connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newSQLiteStoreFromDB wraps an already-prepared handle.
func newSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// EnsureEmployer returns the stored employer with this slug, creating it on
// first sight. Existing rows are never modified.
func (s *SQLiteStore) EnsureEmployer(ctx context.Context, e model.Employer) (model.Employer, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO employers (name, slug, career_page_url, ats_platform) VALUES (?, ?, ?, ?)`,
		e.Name, e.Slug, e.CareerPageURL, e.ATSPlatform)
	if err != nil {
		return e, fmt.Errorf("ensuring employer %s: %w", e.Slug, err)
	}

	var out model.Employer
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, career_page_url, ats_platform FROM employers WHERE slug = ?`, e.Slug).
		Scan(&out.ID, &out.Name, &out.Slug, &out.CareerPageURL, &out.ATSPlatform)
	if err != nil {
		return e, fmt.Errorf("loading employer %s: %w", e.Slug, err)
	}
	return out, nil
}

// Upsert inserts a new job with is_active = 0, or refreshes every column of
// an existing one except is_active and slug. It runs in one transaction, so a
// cancelled run never leaves a half-written row.
func (s *SQLiteStore) Upsert(ctx context.Context, job model.CanonicalJob) (model.UpsertResult, error) {
	if job.EmployerID == 0 {
		return 0, &model.PersistenceError{SourceID: job.SourceJobID, Err: errors.New("missing employer id")}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &model.PersistenceError{SourceID: job.SourceJobID, Err: fmt.Errorf("begin: %w", err)}
	}
	defer tx.Rollback()

	result, err := upsertTx(ctx, tx, job)
	if err != nil {
		return 0, &model.PersistenceError{SourceID: job.SourceJobID, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return 0, &model.PersistenceError{SourceID: job.SourceJobID, Err: fmt.Errorf("commit: %w", err)}
	}
	return result, nil
}

func upsertTx(ctx context.Context, tx *sql.Tx, job model.CanonicalJob) (model.UpsertResult, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM jobs WHERE employer_id = ? AND source_job_id = ?`,
		job.EmployerID, job.SourceJobID).Scan(&id)

	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx, `UPDATE jobs SET
			title = ?, city = ?, state = ?, zip = ?, job_type = ?, shift_type = ?,
			specialty = ?, experience_level = ?, salary_min = ?, salary_max = ?, salary_unit = ?,
			description = ?, raw_description = ?, source_url = ?, posted_at = ?, scraped_at = ?
			WHERE id = ?`,
			job.Title, job.City, job.State, job.Zip, string(job.JobType), job.ShiftType,
			job.Specialty, string(job.ExperienceLevel), job.SalaryMin, job.SalaryMax, string(job.SalaryUnit),
			job.Description, job.RawDescription, job.SourceURL, nullTime(job.PostedAt), job.ScrapedAt,
			id)
		if err != nil {
			return 0, fmt.Errorf("updating job: %w", err)
		}
		return model.Updated, nil

	case errors.Is(err, sql.ErrNoRows):
		slug, err := freeSlug(ctx, tx, job.Slug)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO jobs (
			employer_id, source_job_id, slug, title, city, state, zip, job_type, shift_type,
			specialty, experience_level, salary_min, salary_max, salary_unit,
			description, raw_description, source_url, posted_at, scraped_at, is_active
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
			job.EmployerID, job.SourceJobID, slug, job.Title, job.City, job.State, job.Zip,
			string(job.JobType), job.ShiftType, job.Specialty, string(job.ExperienceLevel),
			job.SalaryMin, job.SalaryMax, string(job.SalaryUnit),
			job.Description, job.RawDescription, job.SourceURL, nullTime(job.PostedAt), job.ScrapedAt)
		if err != nil {
			return 0, fmt.Errorf("inserting job: %w", err)
		}
		return model.Created, nil

	default:
		return 0, fmt.Errorf("looking up job: %w", err)
	}
}

// freeSlug returns base, or base-2, base-3, ... when taken by another job.
func freeSlug(ctx context.Context, tx *sql.Tx, base string) (string, error) {
	candidate := base
	for n := 2; n <= maxSlugSuffix; n++ {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE slug = ?`, candidate).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking slug %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("no free slug for %s", base)
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Get returns one stored job by its identity key.
func (s *SQLiteStore) Get(ctx context.Context, employerID int64, sourceJobID string) (model.CanonicalJob, bool, error) {
	var (
		j                    model.CanonicalJob
		jobType, level, unit string
		salaryMin, salaryMax sql.NullFloat64
		postedAt             sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `SELECT j.id, j.employer_id, e.slug, j.source_job_id, j.slug,
		j.title, j.city, j.state, j.zip, j.job_type, j.shift_type, j.specialty, j.experience_level,
		j.salary_min, j.salary_max, j.salary_unit, j.description, j.raw_description, j.source_url,
		j.posted_at, j.scraped_at, j.is_active
		FROM jobs j JOIN employers e ON e.id = j.employer_id
		WHERE j.employer_id = ? AND j.source_job_id = ?`, employerID, sourceJobID).
		Scan(&j.ID, &j.EmployerID, &j.EmployerSlug, &j.SourceJobID, &j.Slug,
			&j.Title, &j.City, &j.State, &j.Zip, &jobType, &j.ShiftType, &j.Specialty, &level,
			&salaryMin, &salaryMax, &unit, &j.Description, &j.RawDescription, &j.SourceURL,
			&postedAt, &j.ScrapedAt, &j.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return j, false, nil
	}
	if err != nil {
		return j, false, fmt.Errorf("loading job %s: %w", sourceJobID, err)
	}

	j.JobType = model.JobType(jobType)
	j.ExperienceLevel = model.ExperienceLevel(level)
	j.SalaryUnit = model.SalaryUnit(unit)
	if salaryMin.Valid {
		j.SalaryMin = &salaryMin.Float64
	}
	if salaryMax.Valid {
		j.SalaryMax = &salaryMax.Float64
	}
	if postedAt.Valid {
		j.PostedAt = postedAt.Time
	}
	return j, true, nil
}

// SetActive flips a job's activation flag. It belongs to the classifier side
// and is deliberately not part of model.JobStore.
func (s *SQLiteStore) SetActive(ctx context.Context, employerID int64, sourceJobID string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET is_active = ? WHERE employer_id = ? AND source_job_id = ?`,
		active, employerID, sourceJobID)
	if err != nil {
		return fmt.Errorf("setting is_active for %s: %w", sourceJobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("setting is_active for %s: no such job", sourceJobID)
	}
	return nil
}

// JobCounts returns the number of stored jobs per employer slug.
func (s *SQLiteStore) JobCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.slug, COUNT(j.id) FROM employers e LEFT JOIN jobs j ON j.employer_id = e.id GROUP BY e.slug`)
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slug string
		var n int
		if err := rows.Scan(&slug, &n); err != nil {
			return nil, fmt.Errorf("counting jobs: %w", err)
		}
		counts[slug] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
