package normalize

import (
	"strings"
	"time"

	"github.com/amishk599/shiftline/internal/model"
)

// Canonicalize turns one RawListing into a CanonicalJob candidate. It does not
// validate; run ValidateJob on the result. IsActive is always false here.
func Canonicalize(employer model.Employer, raw model.RawListing, now time.Time) model.CanonicalJob {
	title := strings.Join(strings.Fields(CleanText(raw.Title)), " ")
	city, state, zip := ParseLocation(raw.LocationText)

	description := describe(raw)
	scheduleText := description
	if s := sectionText(raw.Sections, model.SectionSchedule); s != "" {
		scheduleText = s
	}

	jobType := JobType(raw.EmploymentText)
	if jobType == "" {
		jobType = JobType(title)
	}

	salaryMin, salaryMax, unit := ExtractSalary(raw.SalaryText)
	if salaryMin == nil {
		salaryMin, salaryMax, unit = ExtractSalary(description)
	}

	postedAt := now
	if raw.PostedAt != nil && !raw.PostedAt.IsZero() {
		postedAt = *raw.PostedAt
	}

	return model.CanonicalJob{
		EmployerID:      employer.ID,
		EmployerSlug:    employer.Slug,
		Title:           title,
		Slug:            JobSlug(title, city, state, raw.SourceID),
		SourceJobID:     raw.SourceID,
		City:            city,
		State:           state,
		Zip:             zip,
		JobType:         jobType,
		ShiftType:       ShiftType(title, scheduleText),
		Specialty:       Specialty(title, description),
		ExperienceLevel: ExperienceLevel(title, description),
		SalaryMin:       salaryMin,
		SalaryMax:       salaryMax,
		SalaryUnit:      unit,
		Description:     description,
		RawDescription:  raw.RawDetailText,
		PostedAt:        postedAt,
		ScrapedAt:       now,
		SourceURL:       strings.TrimSpace(raw.SourceURL),
	}
}

// describe renders classified sections as "Heading\ntext" blocks when the
// detail page was split, else the cleaned raw text.
func describe(raw model.RawListing) string {
	if len(raw.Sections) == 0 {
		return CleanText(raw.RawDetailText)
	}
	var b strings.Builder
	for _, s := range raw.Sections {
		text := CleanText(s.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if h := CleanText(s.Heading); h != "" {
			b.WriteString(h)
			b.WriteString("\n")
		}
		b.WriteString(text)
	}
	return b.String()
}

func sectionText(sections []model.Section, kind model.SectionKind) string {
	var parts []string
	for _, s := range sections {
		if s.Kind == kind {
			parts = append(parts, s.Heading, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
