package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Abbreviated city prefixes expanded to their dotted form.
var cityTokenExceptions = map[string]string{
	"st":  "St.",
	"ste": "Ste.",
	"ft":  "Ft.",
	"mt":  "Mt.",
	"pt":  "Pt.",
}

// Suffix words always rendered in standard case, whatever the input casing.
var citySuffixWords = map[string]string{
	"heights": "Heights",
	"beach":   "Beach",
	"springs": "Springs",
	"falls":   "Falls",
	"park":    "Park",
	"hills":   "Hills",
	"city":    "City",
	"valley":  "Valley",
	"village": "Village",
	"grove":   "Grove",
	"lake":    "Lake",
	"harbor":  "Harbor",
}

// Lowercase connectors inside multi-word names ("Winston of the Hills" style).
var cityLowerWords = map[string]bool{"of": true, "the": true, "on": true, "upon": true}

// City title-cases a city name word by word, expanding "st", "ft" and "mt".
func City(input string) string {
	// A Caser is stateful; one per call keeps City safe across goroutines.
	caser := cases.Title(language.English)
	words := strings.Fields(CleanText(input))
	for i, w := range words {
		key := strings.ToLower(strings.TrimSuffix(w, "."))
		if exp, ok := cityTokenExceptions[key]; ok {
			words[i] = exp
			continue
		}
		if suffix, ok := citySuffixWords[key]; ok {
			words[i] = suffix
			continue
		}
		if i > 0 && cityLowerWords[key] {
			words[i] = key
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

var nonDigit = regexp.MustCompile(`\D`)

// Zip returns the first five digits of input, or "" when fewer are present.
func Zip(input string) string {
	digits := nonDigit.ReplaceAllString(input, "")
	if len(digits) < 5 {
		return ""
	}
	return digits[:5]
}

var (
	zipPattern       = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	locationNoise    = regexp.MustCompile(`(?i)^(?:location|locations|job location)\s*:\s*`)
	countrySuffix    = regexp.MustCompile(`(?i)(?:^|,\s*|\s+)(?:united states(?: of america)?|usa|us)\s*$`)
	multiLocationTag = regexp.MustCompile(`(?i)^\d+\s+locations?$`)
)

// ParseLocation splits free-form location text such as
// "Cleveland, OH 44195" or "US-OH-Cleveland" into city, state and zip.
// Missing parts come back empty.
func ParseLocation(text string) (city, state, zip string) {
	text = CleanText(text)
	text = locationNoise.ReplaceAllString(text, "")
	if text == "" || multiLocationTag.MatchString(text) {
		return "", "", ""
	}
	// Multi-location strings: keep the first one.
	if i := strings.IndexAny(text, ";|"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}

	if m := zipPattern.FindString(text); m != "" {
		zip = Zip(m)
		text = strings.TrimSpace(strings.Replace(text, m, "", 1))
	}
	text = countrySuffix.ReplaceAllString(text, "")

	// Workday style: "US-OH-Cleveland" or "OH-Cleveland".
	if !strings.Contains(text, ",") && strings.Count(text, "-") >= 1 {
		parts := strings.Split(text, "-")
		if len(parts) >= 2 {
			if len(parts) >= 3 && strings.EqualFold(strings.TrimSpace(parts[0]), "US") {
				parts = parts[1:]
			}
			if st := strings.TrimSpace(parts[0]); IsStateCode(strings.ToUpper(st)) {
				return City(strings.Join(parts[1:], "-")), strings.ToUpper(st), zip
			}
		}
	}

	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case len(parts) >= 2:
		city = City(parts[0])
		state = State(parts[len(parts)-1])
	case len(parts) == 1:
		// A lone state name or code, or a lone city.
		if code := stateLookup(parts[0]); code != "" {
			state = code
		} else {
			city = City(parts[0])
		}
	}
	return city, state, zip
}

// stateLookup returns the code only for input that is a recognised state,
// without State's first-two-characters fallback.
func stateLookup(s string) string {
	key := stateKey(s)
	if up := strings.ToUpper(key); len(up) == 2 && validCodes[up] {
		return up
	}
	if code, ok := stateCodes[key]; ok {
		return code
	}
	if code, ok := stateAbbreviations[key]; ok {
		return code
	}
	return ""
}
