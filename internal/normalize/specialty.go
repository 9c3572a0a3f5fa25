package normalize

import "regexp"

// DefaultSpecialty is the catch-all tag for jobs no phrase matched.
const DefaultSpecialty = "General Nursing"

// FloatPoolSpecialty is returned whenever an override phrase is present.
const FloatPoolSpecialty = "Float Pool"

type specialtyRule struct {
	name string
	re   *regexp.Regexp
	// exact rules run against the unfolded title only.
	exact bool
}

func rule(name, pattern string) specialtyRule {
	return specialtyRule{name: name, re: regexp.MustCompile(pattern)}
}

// Override tier: a job that floats across units is a float job whatever
// other unit names appear next to it. Titles accept a bare "float"; body
// text needs an unambiguous phrase.
var (
	overrideTitle = regexp.MustCompile(`\b(?:float(?:ing)?|all units|multi[\s-]?specialty|resource (?:pool|team|nurse)|staffing pool)\b`)
	overrideBody  = regexp.MustCompile(`\b(?:float pool|all units|multi[\s-]?specialty|multiple units|resource (?:pool|team)|staffing pool)\b`)
)

// Ordered from most specific to most generic. The first match wins, so a
// narrower phrase must sit above the broader one it contains.
var specialtyRules = []specialtyRule{
	rule("Labor & Delivery", `\b(?:labor (?:&|and) delivery|l ?& ?d|l/d|birthing center|labor and birth)\b`),
	rule("NICU", `\b(?:nicu|neonatal intensive care|neonatal icu)\b`),
	rule("PICU", `\b(?:picu|pediatric intensive care|pediatric icu)\b`),
	rule("CVICU", `\b(?:cvicu|cardiovascular intensive care|cardiothoracic icu|cticu|cvor)\b`),
	rule("Progressive Care", `\b(?:progressive care|pcu|step[\s-]?down|intermediate care|imcu)\b`),
	rule("ICU", `\b(?:icu|intensive care|critical care|micu|sicu|ccu)\b`),
	rule("Emergency", `\b(?:emergency (?:department|room|services)|ed rn|er rn|emergency nurse|trauma (?:center|unit|nurse))\b`),
	rule("Operating Room", `\b(?:operating room|perioperative|peri-?op|surgical services|circulator|scrub nurse)\b`),
	{name: "Operating Room", re: regexp.MustCompile(`\bOR\b`), exact: true},
	rule("PACU", `\b(?:pacu|post[\s-]?anesthesia|recovery room)\b`),
	rule("Pre-Op", `\b(?:pre[\s-]?op|preoperative|same day surgery)\b`),
	rule("Cath Lab", `\b(?:cath(?:eterization)? lab|interventional radiology|cardiac cath)\b`),
	rule("Telemetry", `\b(?:telemetry|tele)\b`),
	rule("Cardiology", `\b(?:cardiac|cardiology|cardiovascular|heart (?:and|&) vascular)\b`),
	rule("Oncology", `\b(?:oncology|hematology|bone marrow|infusion center)\b`),
	rule("Dialysis", `\b(?:dialysis|nephrology|renal)\b`),
	rule("Mother/Baby", `\b(?:mother[\s/-]?baby|postpartum|maternity|women'?s (?:health|services)|antepartum|obstetric|ob/gyn|ob)\b`),
	rule("Pediatrics", `\b(?:pediatric|pediatrics|peds|children'?s)\b`),
	rule("Behavioral Health", `\b(?:behavioral health|psychiatric|psych|mental health)\b`),
	rule("Neurology", `\b(?:neuro(?:logy|science)?|stroke)\b`),
	rule("Orthopedics", `\b(?:orthopedic|orthopaedic|ortho)\b`),
	rule("Rehabilitation", `\b(?:rehab(?:ilitation)?|acute rehab)\b`),
	rule("Wound Care", `\b(?:wound(?: care)?|ostomy)\b`),
	rule("Endoscopy", `\b(?:endoscopy|gi lab)\b`),
	rule("Home Health", `\b(?:home health|home care|visiting nurse)\b`),
	rule("Hospice", `\b(?:hospice|palliative)\b`),
	rule("Ambulatory Care", `\b(?:ambulatory|outpatient clinic|clinic rn|primary care|urgent care)\b`),
	rule("Case Management", `\b(?:case manage(?:r|ment)|utilization review|care coordinat(?:or|ion))\b`),
	rule("Infection Prevention", `\b(?:infection (?:prevention|control))\b`),
	rule("Education", `\b(?:clinical educator|nurse educator|professional development)\b`),
	rule("Long-Term Care", `\b(?:long[\s-]?term care|skilled nursing|snf|nursing home)\b`),
	rule("Med-Surg", `\b(?:med[\s/-]?surg|medical[\s/-]surgical|general surgery|surgical unit)\b`),
}

// Specialty returns the specialty tag for a job. The override tier is checked
// first across title and description; below it the ordered table is applied
// to the title and only then to the full text. It never returns "".
func Specialty(title, description string) string {
	foldedTitle := FoldText(title)
	full := foldedTitle + " " + FoldText(description)

	if overrideTitle.MatchString(foldedTitle) || overrideBody.MatchString(full) {
		return FloatPoolSpecialty
	}
	if s := matchSpecialty(foldedTitle, title); s != "" {
		return s
	}
	if s := matchSpecialty(full, ""); s != "" {
		return s
	}
	return DefaultSpecialty
}

func matchSpecialty(folded, original string) string {
	for _, r := range specialtyRules {
		text := folded
		if r.exact {
			text = original
		}
		if r.re.MatchString(text) {
			return r.name
		}
	}
	return ""
}
