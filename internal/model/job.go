package model

import (
	"context"
	"time"
)

// Employer is an organisation whose career site we ingest. Operators own these
// rows; connectors only create one on first sight.
type Employer struct {
	ID            int64
	Name          string
	Slug          string // unique
	CareerPageURL string
	ATSPlatform   string // greenhouse, lever, workday, ashby, browser
}

// RawListing is a source-specific job record before canonicalization. It is
// transient and never persisted as-is.
type RawListing struct {
	SourceID       string
	Title          string
	LocationText   string
	RawDetailText  string // scraper-native text, section markers preserved
	DOMIndex       int    // position in the listing view (browser connectors only)
	SourceURL      string
	EmploymentText string // vendor employment-type label, e.g. "Full time", "PRN"
	SalaryText     string // vendor compensation text, if any
	Department     string
	PostedAt       *time.Time // nullable (not every source provides it)
	Sections       []Section  // classified detail blocks, when a detail page was read
	DetailFetched  bool       // false when only listing-level fields are known
}

// SectionKind tags a block of detail-page text by what it talks about.
type SectionKind string

const (
	SectionDuties         SectionKind = "duties"
	SectionQualifications SectionKind = "qualifications"
	SectionBenefits       SectionKind = "benefits"
	SectionSchedule       SectionKind = "schedule"
	SectionAbout          SectionKind = "about"
	SectionOther          SectionKind = "other"
)

// Section is one classified block of a detail page.
type Section struct {
	Kind    SectionKind
	Heading string
	Text    string
}

// JobType is the canonical employment type. The zero value means unknown.
type JobType string

const (
	JobTypeFullTime JobType = "full-time"
	JobTypePartTime JobType = "part-time"
	JobTypePerDiem  JobType = "per-diem"
	JobTypeContract JobType = "contract"
)

// ExperienceLevel is only set for unambiguous signals. The zero value means unclear.
type ExperienceLevel string

const (
	ExperienceNewGrad     ExperienceLevel = "new-grad"
	ExperienceExperienced ExperienceLevel = "experienced"
	ExperienceSenior      ExperienceLevel = "senior"
)

// SalaryUnit is the period a salary figure refers to.
type SalaryUnit string

const (
	SalaryHourly SalaryUnit = "hourly"
	SalaryWeekly SalaryUnit = "weekly"
	SalaryYearly SalaryUnit = "yearly"
)

// CanonicalJob is the normalized record shared by every downstream consumer.
// Identity is (EmployerID, SourceJobID).
type CanonicalJob struct {
	ID              int64
	EmployerID      int64
	EmployerSlug    string
	Title           string
	Slug            string // unique, stable once assigned
	SourceJobID     string
	City            string
	State           string // 2-letter code
	Zip             string // empty when unknown
	JobType         JobType
	ShiftType       string
	Specialty       string // always populated
	ExperienceLevel ExperienceLevel
	SalaryMin       *float64
	SalaryMax       *float64
	SalaryUnit      SalaryUnit
	Description     string
	RawDescription  string
	PostedAt        time.Time
	ScrapedAt       time.Time
	SourceURL       string
	// IsActive is owned by the downstream classifier. Ingestion reads it and
	// only ever writes false on first insert.
	IsActive bool
}

// ListingPage is one page of listings returned by a Connector.
type ListingPage struct {
	Listings []RawListing
	Next     string // empty when there are no more pages
	Filtered int    // listings dropped by the role policy on this page
}

// Connector produces RawListings for one employer, either by polling a REST
// API or by driving a browser.
type Connector interface {
	// ListPage returns the page at cursor. The empty cursor is the first page.
	ListPage(ctx context.Context, cursor string) (ListingPage, error)
	// FetchDetail enriches a listing with detail-level text. Connectors whose
	// list payload already carries the description return the listing as-is.
	FetchDetail(ctx context.Context, listing RawListing) (RawListing, error)
}

// UpsertResult reports what a single upsert did.
type UpsertResult int

const (
	Created UpsertResult = iota + 1
	Updated
)

func (r UpsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// JobStore is the ingestion side of the canonical store. It deliberately has
// no way to change IsActive on an existing record.
type JobStore interface {
	EnsureEmployer(ctx context.Context, e Employer) (Employer, error)
	Upsert(ctx context.Context, job CanonicalJob) (UpsertResult, error)
}

// JobFilter decides whether a listing is role-relevant.
type JobFilter interface {
	Match(listing RawListing) bool
}

// Reporter publishes the outcome of a run.
type Reporter interface {
	Report(s Summary) error
}
