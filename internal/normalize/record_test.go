package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/amishk599/shiftline/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSlug(t *testing.T) {
	slug := JobSlug("ICU RN [Night Shift]", "Cleveland", "OH", "123")
	assert.Equal(t, "icu-rn-cleveland-oh-123", slug)

	for i := 0; i < 5; i++ {
		assert.Equal(t, slug, JobSlug("ICU RN [Night Shift]", "Cleveland", "OH", "123"))
	}
	assert.NotContains(t, slug, "night")
	assert.NotContains(t, slug, "--")
	assert.False(t, strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-"))
}

func TestJobSlugBraces(t *testing.T) {
	slug := JobSlug("{{job.title}} Registered Nurse!!", "St. Louis", "MO", "R-77")
	assert.Equal(t, "registered-nurse-st-louis-mo-r-77", slug)
}

func TestJobSlugLengthCap(t *testing.T) {
	slug := JobSlug(strings.Repeat("Registered Nurse ", 20), strings.Repeat("Springfield ", 10), "OH", "REQ-98765")
	assert.LessOrEqual(t, len(slug), 100)
	assert.True(t, strings.HasSuffix(slug, "-req-98765"), slug)
	assert.NotContains(t, slug, "--")
}

func TestJobSlugWithoutID(t *testing.T) {
	orig := slugNow
	t.Cleanup(func() { slugNow = orig })
	slugNow = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	slug := JobSlug("RN", "Akron", "OH", "")
	assert.Equal(t, "rn-akron-oh-loyw3v28", slug)
}

func TestJobSlugSymbolOnlyID(t *testing.T) {
	orig := slugNow
	t.Cleanup(func() { slugNow = orig })
	tick := int64(1_700_000_000_000)
	slugNow = func() time.Time {
		tick++
		return time.UnixMilli(tick)
	}

	slug := JobSlug("RN", "Akron", "OH", "#")
	assert.Equal(t, slug, JobSlug("RN", "Akron", "OH", "#"))
	assert.Regexp(t, `^rn-akron-oh-[0-9a-f]{8}$`, slug)
	assert.NotEqual(t, slug, JobSlug("RN", "Akron", "OH", "##"))
}

func validJob() model.CanonicalJob {
	return model.CanonicalJob{
		Title:        "Registered Nurse - ICU",
		Slug:         "registered-nurse-icu-cleveland-oh-123",
		SourceJobID:  "123",
		EmployerSlug: "cleveland-clinic",
		City:         "Cleveland",
		State:        "OH",
		Specialty:    "ICU",
		Description:  strings.Repeat("Provides direct patient care. ", 4),
		SourceURL:    "https://jobs.example.org/123",
	}
}

func TestValidateJob(t *testing.T) {
	res := ValidateJob(validJob())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateJobMissingEmployerSlug(t *testing.T) {
	job := validJob()
	job.EmployerSlug = ""

	res := ValidateJob(job)
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "missing required field: employerSlug")
	assert.Len(t, res.Errors, 1)
}

func TestValidateJobState(t *testing.T) {
	job := validJob()
	job.State = "OH"
	assert.True(t, ValidateJob(job).Valid)

	job.State = "OHI"
	res := ValidateJob(job)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "state")
}

func TestValidateJobDescriptionAndURL(t *testing.T) {
	job := validJob()
	job.Description = "Too short."
	job.SourceURL = "/jobs/123"

	res := ValidateJob(job)
	require.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)

	job = validJob()
	job.SourceURL = "ftp://jobs.example.org/123"
	assert.False(t, ValidateJob(job).Valid)
}

func TestExtractSalary(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		min, max float64
		unit     model.SalaryUnit
	}{
		{"hourly range", "$45.50 - $60.25 per hour", 45.50, 60.25, model.SalaryHourly},
		{"yearly range inferred", "Pay: $85,000 - $110,000", 85000, 110000, model.SalaryYearly},
		{"k suffix", "$90k–$120k a year", 90000, 120000, model.SalaryYearly},
		{"slash hr", "Starting at $42/hr", 42, 42, model.SalaryHourly},
		{"single hourly inferred", "$38", 38, 38, model.SalaryHourly},
		{"weekly", "$2,400 per week", 2400, 2400, model.SalaryWeekly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, unit := ExtractSalary(tt.input)
			require.NotNil(t, lo)
			require.NotNil(t, hi)
			assert.InDelta(t, tt.min, *lo, 0.001)
			assert.InDelta(t, tt.max, *hi, 0.001)
			assert.Equal(t, tt.unit, unit)
		})
	}

	lo, hi, unit := ExtractSalary("Competitive pay")
	assert.Nil(t, lo)
	assert.Nil(t, hi)
	assert.Empty(t, unit)
}

func TestCleanAndFoldText(t *testing.T) {
	assert.Equal(t, "Nurse & Midwife\n\nDays", CleanText("  Nurse &amp; Midwife \r\n\r\n\r\n\r\n Days "))
	assert.Equal(t, "rehabilitacion nurse", FoldText("Rehabilitación  Nurse\n"))
}

func TestCanonicalize(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	employer := model.Employer{ID: 7, Slug: "cleveland-clinic", Name: "Cleveland Clinic"}
	raw := model.RawListing{
		SourceID:       "R-1001",
		Title:          "  Registered Nurse - ICU   Nights ",
		LocationText:   "Cleveland, OH 44195",
		EmploymentText: "Full time",
		SalaryText:     "$40 - $55 per hour",
		SourceURL:      "https://jobs.example.org/R-1001",
		Sections: []model.Section{
			{Kind: model.SectionDuties, Heading: "Responsibilities", Text: "Provides direct patient care to critically ill adults."},
			{Kind: model.SectionQualifications, Heading: "Qualifications", Text: "Current RN license required."},
		},
		RawDetailText: "Responsibilities\nProvides direct patient care to critically ill adults.\nQualifications\nCurrent RN license required.",
	}

	job := Canonicalize(employer, raw, now)

	assert.Equal(t, int64(7), job.EmployerID)
	assert.Equal(t, "cleveland-clinic", job.EmployerSlug)
	assert.Equal(t, "Registered Nurse - ICU Nights", job.Title)
	assert.Equal(t, "registered-nurse-icu-nights-cleveland-oh-r-1001", job.Slug)
	assert.Equal(t, "Cleveland", job.City)
	assert.Equal(t, "OH", job.State)
	assert.Equal(t, "44195", job.Zip)
	assert.Equal(t, model.JobTypeFullTime, job.JobType)
	assert.Equal(t, "nights", job.ShiftType)
	assert.Equal(t, "ICU", job.Specialty)
	assert.Equal(t, model.SalaryHourly, job.SalaryUnit)
	require.NotNil(t, job.SalaryMin)
	assert.InDelta(t, 40, *job.SalaryMin, 0.001)
	assert.Equal(t, raw.RawDetailText, job.RawDescription)
	assert.Contains(t, job.Description, "Responsibilities\nProvides direct patient care")
	assert.Equal(t, now, job.PostedAt)
	assert.Equal(t, now, job.ScrapedAt)
	assert.False(t, job.IsActive)

	assert.True(t, ValidateJob(job).Valid, ValidateJob(job).Errors)
}
