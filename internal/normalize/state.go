// Package normalize holds the pure field normalizers and classifiers that turn
// source-specific listings into canonical jobs. Nothing here does I/O.
package normalize

import "strings"

var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
	"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
	"nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI",
	"south carolina": "SC", "south dakota": "SD", "tennessee": "TN", "texas": "TX",
	"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
	"puerto rico": "PR", "guam": "GU", "virgin islands": "VI",
}

// Common non-postal abbreviations seen on career sites.
var stateAbbreviations = map[string]string{
	"ala": "AL", "ariz": "AZ", "ark": "AR", "calif": "CA", "cal": "CA",
	"colo": "CO", "conn": "CT", "del": "DE", "fla": "FL", "ga": "GA",
	"ill": "IL", "ind": "IN", "kan": "KS", "kans": "KS", "ky": "KY",
	"la": "LA", "md": "MD", "mass": "MA", "mich": "MI", "minn": "MN",
	"miss": "MS", "mo": "MO", "mont": "MT", "neb": "NE", "nebr": "NE",
	"nev": "NV", "n mex": "NM", "n dak": "ND", "okla": "OK", "ore": "OR",
	"oreg": "OR", "pa": "PA", "penn": "PA", "penna": "PA", "s dak": "SD",
	"tenn": "TN", "tex": "TX", "vt": "VT", "va": "VA", "wash": "WA",
	"w va": "WV", "wis": "WI", "wisc": "WI", "wyo": "WY", "d c": "DC",
	"wash dc": "DC", "washington dc": "DC", "washington d c": "DC",
}

var validCodes = func() map[string]bool {
	m := make(map[string]bool, len(stateCodes))
	for _, code := range stateCodes {
		m[code] = true
	}
	return m
}()

// State maps a full state name, a common abbreviation or a postal code to an
// uppercase two-letter code. Unknown input falls back to its first two
// characters uppercased. Empty input returns "". State(State(x)) == State(x).
func State(input string) string {
	key := stateKey(input)
	if key == "" {
		return ""
	}

	upper := strings.ToUpper(key)
	if len(upper) == 2 && validCodes[upper] {
		return upper
	}
	if code, ok := stateCodes[key]; ok {
		return code
	}
	if code, ok := stateAbbreviations[key]; ok {
		return code
	}

	compact := strings.ReplaceAll(upper, " ", "")
	r := []rune(compact)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// IsStateCode reports whether code is a known two-letter postal code.
func IsStateCode(code string) bool {
	return validCodes[code]
}

func stateKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", " ")
	return strings.Join(strings.Fields(s), " ")
}
