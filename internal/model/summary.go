package model

import "time"

// RecordError is an itemized per-record failure kept in a run summary.
type RecordError struct {
	SourceID string
	Stage    string // fetch, detail, validate, persist
	Reasons  []string
}

// Summary is produced by every run, even when many records failed.
type Summary struct {
	RunID    string
	Employer string
	DryRun   bool

	Pages    int
	Fetched  int
	Created  int
	Updated  int
	Skipped  int
	Failed   int
	Degraded int // detail fell back to listing-level fields

	Errors []RecordError

	// Dry-run only.
	Sample      []CanonicalJob
	Valid       int
	ByLocation  map[string]int
	BySpecialty map[string]int

	StartedAt time.Time
	Duration  time.Duration
}
