package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`[ \t\f\v\x{00a0}\x{2007}\x{202f}]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

// CleanText unescapes HTML entities, turns non-breaking spaces into plain
// spaces, collapses runs of horizontal whitespace and trims. Newlines survive
// so block boundaries stay visible; three or more collapse to two.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = whitespaceRun.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// FoldText lowercases s, strips diacritics and flattens it to a single line,
// for keyword matching. "Rehabilitación  Nurse\n" -> "rehabilitacion nurse".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
