package normalize

import (
	"regexp"

	"github.com/amishk599/shiftline/internal/model"
)

type sectionRule struct {
	kind    model.SectionKind
	heading *regexp.Regexp
	body    *regexp.Regexp
}

// Heading patterns are tried first; body patterns only when the heading is
// empty or says nothing. Order matters: qualifications mention duties and
// benefits mention schedules far more often than the reverse.
var sectionRules = []sectionRule{
	{
		model.SectionQualifications,
		regexp.MustCompile(`\b(?:qualifications?|requirements?|education|licensure|certifications?|experience|skills|what you (?:bring|need|will need)|who you are)\b`),
		regexp.MustCompile(`\b(?:bachelor|bsn|adn|license required|current (?:rn )?licens|bls|acls|pals|years? of experience|certification required|degree)\b`),
	},
	{
		model.SectionBenefits,
		regexp.MustCompile(`\b(?:benefits?|perks|compensation|what we offer|why join|total rewards)\b`),
		regexp.MustCompile(`\b(?:401\s?\(?k\)?|pto|paid time off|tuition|dental|vision|health insurance|sign[\s-]on bonus|retirement)\b`),
	},
	{
		model.SectionSchedule,
		regexp.MustCompile(`\b(?:schedule|shift|hours|work hours|status)\b`),
		regexp.MustCompile(`\b(?:\d{1,2}[\s-]?hour shifts?|night shift|day shift|rotating|weekends?|every other|hours per week|fte)\b`),
	},
	{
		model.SectionDuties,
		regexp.MustCompile(`\b(?:responsibilit(?:y|ies)|duties|essential functions|job summary|position summary|what you(?:'ll| will) do|the role|job description|overview)\b`),
		regexp.MustCompile(`\b(?:responsible for|provides?|assesses|administers|coordinates|documents|collaborates|performs|delivers)\b`),
	},
	{
		model.SectionAbout,
		regexp.MustCompile(`\b(?:about (?:us|the|our)|who we are|our (?:mission|hospital|facility)|facility|company)\b`),
		regexp.MustCompile(`\b(?:founded|magnet|bed (?:hospital|facility)|beds|our mission|award[\s-]winning|ranked|health system)\b`),
	},
}

// ClassifySection tags a block of detail-page text by its content, never by
// its position on the page.
func ClassifySection(heading, text string) model.SectionKind {
	h := FoldText(heading)
	if h != "" {
		for _, r := range sectionRules {
			if r.heading.MatchString(h) {
				return r.kind
			}
		}
	}
	b := FoldText(text)
	best, bestHits := model.SectionOther, 0
	for _, r := range sectionRules {
		if hits := len(r.body.FindAllStringIndex(b, -1)); hits > bestHits {
			best, bestHits = r.kind, hits
		}
	}
	return best
}
