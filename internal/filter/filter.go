package filter

import (
	"regexp"
	"strings"

	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/normalize"
)

// DefaultInclude are the role phrases used when config names none.
var DefaultInclude = []string{
	"registered nurse", "rn", "nurse manager", "charge nurse", "nurse educator",
	"clinical nurse", "staff nurse", "nurse residency", "new grad nurse",
}

// DefaultExclude are titles that look nursing-adjacent but are not RN roles.
var DefaultExclude = []string{
	"lpn", "lvn", "licensed practical", "licensed vocational", "cna",
	"nursing assistant", "nurse aide", "tech", "technician", "patient care associate",
	"medical assistant", "unit secretary", "nurse practitioner", "crna",
}

// RoleFilter matches listings whose title contains any include phrase and no
// exclude phrase, and whose location contains any location keyword.
// Phrases match on word boundaries against the folded title, so "RN" does not
// match "Learning". Empty include or location lists pass all.
type RoleFilter struct {
	include   []*regexp.Regexp
	exclude   []*regexp.Regexp
	locations []string
}

// NewRoleFilter compiles the phrase lists.
func NewRoleFilter(include, exclude, locations []string) *RoleFilter {
	lower := make([]string, 0, len(locations))
	for _, l := range locations {
		if l = normalize.FoldText(l); l != "" {
			lower = append(lower, l)
		}
	}
	return &RoleFilter{
		include:   compile(include),
		exclude:   compile(exclude),
		locations: lower,
	}
}

func compile(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		p = normalize.FoldText(p)
		if p == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return out
}

// Match implements model.JobFilter.
func (f *RoleFilter) Match(listing model.RawListing) bool {
	title := normalize.FoldText(listing.Title)

	for _, re := range f.exclude {
		if re.MatchString(title) {
			return false
		}
	}

	if len(f.include) > 0 {
		matched := false
		for _, re := range f.include {
			if re.MatchString(title) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.locations) > 0 {
		location := normalize.FoldText(listing.LocationText)
		matched := false
		for _, loc := range f.locations {
			if strings.Contains(location, loc) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply splits listings into kept ones and a count of those dropped.
func Apply(f model.JobFilter, listings []model.RawListing) ([]model.RawListing, int) {
	if f == nil {
		return listings, 0
	}
	kept := make([]model.RawListing, 0, len(listings))
	for _, l := range listings {
		if f.Match(l) {
			kept = append(kept, l)
		}
	}
	return kept, len(listings) - len(kept)
}
