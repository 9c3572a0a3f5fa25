package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/amishk599/shiftline/internal/model"
)

var (
	seniorTitle = regexp.MustCompile(`\b(?:manager|director|supervisor|charge|lead|senior|sr|chief|administrator|head nurse)\b`)
	newGrad     = regexp.MustCompile(`\b(?:new grad(?:uate)?s?|entry[\s-]level|newly licensed|nurse residency|graduate nurse|residency program)\b`)
	yearsPhrase = regexp.MustCompile(`\b(\d{1,2})\s*\+?\s*(?:(?:-|to)\s*\d{1,2}\s*)?(?:years?|yrs?)\b`)

	requiredWords = regexp.MustCompile(`\b(?:require[sd]?|requirement|must have|must possess|minimum|at least)\b`)
	preferredWord = regexp.MustCompile(`\bprefer`)
	ageWords      = regexp.MustCompile(`\b(?:years? old|years? of age)\b`)
)

// Characters inspected on each side of a matched phrase.
const (
	newGradWindow = 150
	yearsWindow   = 80
)

// ExperienceLevel classifies a job only on unambiguous signals and returns ""
// otherwise. Year-count buckets: 1 new-grad, 2-4 experienced, 5-20 senior.
func ExperienceLevel(title, description string) model.ExperienceLevel {
	t := FoldText(title)
	if seniorTitle.MatchString(t) {
		return model.ExperienceSenior
	}

	text := t + " " + FoldText(description)

	if loc := newGrad.FindStringIndex(text); loc != nil {
		if yearsPhrase.MatchString(window(text, loc, newGradWindow)) {
			return ""
		}
		return model.ExperienceNewGrad
	}

	for _, m := range yearsPhrase.FindAllStringSubmatchIndex(text, -1) {
		w := window(text, m[:2], yearsWindow)
		if !strings.Contains(w, "experience") || ageWords.MatchString(w) {
			continue
		}
		if preferredWord.MatchString(w) || !requiredWords.MatchString(w) {
			continue
		}
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		switch {
		case n == 1:
			return model.ExperienceNewGrad
		case n >= 2 && n <= 4:
			return model.ExperienceExperienced
		case n >= 5 && n <= 20:
			return model.ExperienceSenior
		}
	}
	return ""
}

func window(text string, loc []int, n int) string {
	start := max(loc[0]-n, 0)
	end := min(loc[1]+n, len(text))
	return text[start:end]
}
