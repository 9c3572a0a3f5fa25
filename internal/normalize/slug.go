package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxSlugLen      = 100
	maxSlugTitleLen = 60
	maxSlugCityLen  = 30
)

var (
	bracketed   = regexp.MustCompile(`\[[^\]]*\]|\{[^}]*\}`)
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// slugNow is swapped in tests.
var slugNow = time.Now

// JobSlug builds a URL slug "title-city-state-id". Bracketed or braced
// fragments are dropped, title and city are truncated, and the result never
// exceeds 100 characters. An id with no letters or digits is replaced by a
// hash of its raw form. With an empty sourceID a time-derived suffix is used,
// so only calls that pass an id are deterministic.
func JobSlug(title, city, state, sourceID string) string {
	suffix := slugPart(sourceID, maxSlugLen/2)
	switch {
	case suffix != "":
	case sourceID != "":
		suffix = uuid.NewSHA1(uuid.NameSpaceOID, []byte(sourceID)).String()[:8]
	default:
		suffix = strconv.FormatInt(slugNow().UnixMilli(), 36)
	}

	var parts []string
	for _, p := range []string{
		slugPart(title, maxSlugTitleLen),
		slugPart(city, maxSlugCityLen),
		slugPart(state, 2),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	head := strings.Join(parts, "-")

	room := maxSlugLen - len(suffix) - 1
	if len(head) > room {
		head = strings.Trim(head[:room], "-")
	}
	if head == "" {
		return suffix
	}
	return head + "-" + suffix
}

func slugPart(s string, limit int) string {
	s = bracketed.ReplaceAllString(s, " ")
	s = nonAlnumRun.ReplaceAllString(FoldText(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > limit {
		s = strings.Trim(s[:limit], "-")
	}
	return s
}
