package filter

import (
	"testing"

	"github.com/amishk599/shiftline/internal/model"
)

func listing(title, location string) model.RawListing {
	return model.RawListing{Title: title, LocationText: location}
}

func TestRoleFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		include   []string
		exclude   []string
		locations []string
		listing   model.RawListing
		wantMatch bool
	}{
		{
			name:      "registered nurse matches",
			include:   DefaultInclude,
			exclude:   DefaultExclude,
			listing:   listing("Registered Nurse - ICU", "Cleveland, OH"),
			wantMatch: true,
		},
		{
			name:      "RN abbreviation matches on word boundary",
			include:   DefaultInclude,
			exclude:   DefaultExclude,
			listing:   listing("RN, Med/Surg Nights", "Akron, OH"),
			wantMatch: true,
		},
		{
			name:      "rn inside a word does not match",
			include:   []string{"rn"},
			listing:   listing("Learning Specialist", "Akron, OH"),
			wantMatch: false,
		},
		{
			name:      "LPN excluded",
			include:   DefaultInclude,
			exclude:   DefaultExclude,
			listing:   listing("LPN / RN Float", "Akron, OH"),
			wantMatch: false,
		},
		{
			name:      "patient care technician excluded",
			include:   []string{"patient care"},
			exclude:   DefaultExclude,
			listing:   listing("Patient Care Technician", "Akron, OH"),
			wantMatch: false,
		},
		{
			name:      "case and accent insensitive",
			include:   []string{"ENFERMERA"},
			listing:   listing("Enferméra Registrada", "San Juan, PR"),
			wantMatch: true,
		},
		{
			name:      "location restriction",
			include:   DefaultInclude,
			locations: []string{"Ohio", "OH"},
			listing:   listing("Registered Nurse", "Pittsburgh, PA"),
			wantMatch: false,
		},
		{
			name:      "empty lists pass all",
			listing:   listing("Any Role", "Anywhere"),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewRoleFilter(tt.include, tt.exclude, tt.locations)
			got := f.Match(tt.listing)
			if got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestApply(t *testing.T) {
	f := NewRoleFilter(DefaultInclude, DefaultExclude, nil)
	in := []model.RawListing{
		listing("Registered Nurse", ""),
		listing("CNA - Days", ""),
		listing("Charge Nurse", ""),
		listing("Surgical Tech", ""),
	}

	kept, dropped := Apply(f, in)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", dropped)
	}
	if kept[0].Title != "Registered Nurse" || kept[1].Title != "Charge Nurse" {
		t.Errorf("unexpected kept titles: %q, %q", kept[0].Title, kept[1].Title)
	}

	all, n := Apply(nil, in)
	if len(all) != len(in) || n != 0 {
		t.Errorf("nil filter should keep everything, got %d kept %d dropped", len(all), n)
	}
}
