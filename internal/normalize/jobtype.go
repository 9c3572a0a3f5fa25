package normalize

import (
	"regexp"

	"github.com/amishk599/shiftline/internal/model"
)

type jobTypeAlias struct {
	re      *regexp.Regexp
	jobType model.JobType
}

var jobTypeAliases = []jobTypeAlias{
	{regexp.MustCompile(`\b(?:full[\s-]?time|f/t|ft|fte 1\.0|regular full)\b`), model.JobTypeFullTime},
	{regexp.MustCompile(`\b(?:part[\s-]?time|p/t|pt)\b`), model.JobTypePartTime},
	{regexp.MustCompile(`\b(?:prn|per[\s-]?diem|as needed|casual)\b`), model.JobTypePerDiem},
	{regexp.MustCompile(`\b(?:contract|contractor|temporary|temp|travel(?:er)?|locum)\b`), model.JobTypeContract},
}

// JobType maps a vendor employment label to a canonical job type. Unmatched
// or ambiguous labels ("Full-time / Part-time") return "", never a guess.
func JobType(input string) model.JobType {
	s := FoldText(input)
	if s == "" {
		return ""
	}
	var found model.JobType
	for _, a := range jobTypeAliases {
		if !a.re.MatchString(s) {
			continue
		}
		if found != "" && found != a.jobType {
			return ""
		}
		found = a.jobType
	}
	return found
}
