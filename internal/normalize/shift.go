package normalize

import "regexp"

type shiftRule struct {
	name  string
	title *regexp.Regexp // loose, titles are short
	body  *regexp.Regexp // phrase-only, bodies mention "days" for other reasons
}

var shiftRules = []shiftRule{
	{
		"rotating",
		regexp.MustCompile(`\b(?:rotating|rotate|days?\s*/\s*nights?|variable)\b`),
		regexp.MustCompile(`\b(?:rotating shifts?|rotate between|days?\s*/\s*nights?|variable shifts?)\b`),
	},
	{
		"nights",
		regexp.MustCompile(`\b(?:nights?|noc|overnight)\b`),
		regexp.MustCompile(`\b(?:night shifts?|nights only|noc shift|overnight shifts?|7p(?:m)?\s*-\s*7a(?:m)?)\b`),
	},
	{
		"evenings",
		regexp.MustCompile(`\b(?:evenings?|pm shift|second shift)\b`),
		regexp.MustCompile(`\b(?:evening shifts?|second shift|3p(?:m)?\s*-\s*11p(?:m)?)\b`),
	},
	{
		"weekends",
		regexp.MustCompile(`\b(?:weekends?|baylor)\b`),
		regexp.MustCompile(`\b(?:weekends only|weekend program|baylor shift)\b`),
	},
	{
		"days",
		regexp.MustCompile(`\b(?:days?|first shift)\b`),
		regexp.MustCompile(`\b(?:day shifts?|days only|first shift|7a(?:m)?\s*-\s*7p(?:m)?)\b`),
	},
}

// ShiftType returns the shift pattern stated in the title, falling back to
// explicit shift phrases in body. "" when neither names one. A combined
// day/night phrase counts as rotating.
func ShiftType(title, body string) string {
	t := FoldText(title)
	for _, r := range shiftRules {
		if r.title.MatchString(t) {
			return r.name
		}
	}
	b := FoldText(body)
	for _, r := range shiftRules {
		if r.body.MatchString(b) {
			return r.name
		}
	}
	return ""
}
