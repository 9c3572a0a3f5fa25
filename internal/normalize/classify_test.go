package normalize

import (
	"testing"

	"github.com/amishk599/shiftline/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSpecialty(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		expected    string
	}{
		{"float override beats ICU in description", "Float RN - All Units", "works in ICU sometimes", FloatPoolSpecialty},
		{"resource pool in body", "Registered Nurse", "Join our resource pool covering ICU and ED", FloatPoolSpecialty},
		{"labor and delivery before maternity", "RN - Labor & Delivery", "maternity unit", "Labor & Delivery"},
		{"progressive care before ICU", "Registered Nurse", "Our progressive care unit partners with the ICU", "Progressive Care"},
		{"title wins over body", "RN ICU", "previous telemetry experience helpful", "ICU"},
		{"OR abbreviation in title", "RN - OR", "", "Operating Room"},
		{"lowercase or is not a unit", "RN or LPN", "", DefaultSpecialty},
		{"nicu before icu", "NICU Staff Nurse", "", "NICU"},
		{"med-surg", "Med/Surg RN", "", "Med-Surg"},
		{"default", "Staff Nurse", "nothing specific", DefaultSpecialty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Specialty(tt.title, tt.description))
		})
	}
}

func TestExperienceLevel(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		expected    model.ExperienceLevel
	}{
		{"preferred years ignored", "Staff RN", "5 years experience preferred", ""},
		{"required years bucketed senior", "Staff RN", "requires 5 years of nursing experience", model.ExperienceSenior},
		{"required 2 years experienced", "RN", "Minimum 2 years of acute care experience required.", model.ExperienceExperienced},
		{"required 1 year new grad", "RN", "At least 1 year of experience required.", model.ExperienceNewGrad},
		{"title seniority", "Nurse Manager - ICU", "", model.ExperienceSenior},
		{"charge nurse", "Charge Nurse", "new grads welcome", model.ExperienceSenior},
		{"new grad phrase", "New Grad RN Residency", "Join our program", model.ExperienceNewGrad},
		{"new grad next to years is ambiguous", "RN", "New grad nurses welcome; 2 years of experience required", ""},
		{"age is not experience", "RN", "Must be at least 18 years old", ""},
		{"years out of bucket range", "RN", "requires 25 years of experience", ""},
		{"nothing", "Registered Nurse", "Great team", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExperienceLevel(tt.title, tt.description))
		})
	}
}

func TestJobType(t *testing.T) {
	tests := []struct {
		input    string
		expected model.JobType
	}{
		{"Full time", model.JobTypeFullTime},
		{"FULL-TIME", model.JobTypeFullTime},
		{"F/T", model.JobTypeFullTime},
		{"Part Time", model.JobTypePartTime},
		{"PRN", model.JobTypePerDiem},
		{"Per Diem", model.JobTypePerDiem},
		{"Contract", model.JobTypeContract},
		{"Full-time / Part-time", ""},
		{"Regular", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, JobType(tt.input))
		})
	}
}

func TestShiftType(t *testing.T) {
	assert.Equal(t, "nights", ShiftType("RN ICU - Nights", ""))
	assert.Equal(t, "days", ShiftType("RN - Days", ""))
	assert.Equal(t, "rotating", ShiftType("RN Days/Nights", ""))
	assert.Equal(t, "evenings", ShiftType("Registered Nurse", "This is an evening shift position."))
	assert.Equal(t, "", ShiftType("Registered Nurse", "Apply within 30 days."))
}

func TestClassifySection(t *testing.T) {
	tests := []struct {
		name     string
		heading  string
		text     string
		expected model.SectionKind
	}{
		{"qualifications heading", "Qualifications", "anything", model.SectionQualifications},
		{"requirements heading", "Minimum Requirements:", "", model.SectionQualifications},
		{"benefits heading", "What We Offer", "", model.SectionBenefits},
		{"schedule heading", "Hours", "", model.SectionSchedule},
		{"about heading", "About Us", "", model.SectionAbout},
		{"duties by content", "", "Provides direct patient care and administers medications.", model.SectionDuties},
		{"benefits by content", "", "Medical, dental, vision, 401(k) match.", model.SectionBenefits},
		{"qualifications by content", "", "Current RN license required. BLS and ACLS.", model.SectionQualifications},
		{"unknown", "", "Lorem ipsum.", model.SectionOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySection(tt.heading, tt.text))
		})
	}
}
