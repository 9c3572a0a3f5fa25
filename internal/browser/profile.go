package browser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/amishk599/shiftline/internal/model"
)

// Profile maps one portal's markup onto listings. It is loaded from config
// so adding a portal needs no Go code.
type Profile struct {
	Name      string
	SearchURL string

	// FilterLabel is the visible text of the category filter, e.g. "Nursing".
	FilterLabel string
	// FilterSelector is a structural fallback for the filter control.
	FilterSelector string

	CardSelector     string
	CardLinkSelector string // link inside a card; defaults to "a"

	DetailSelector string // container of the detail view
	// DetailInline is set when the detail opens in a panel beside the list
	// instead of navigating away from it.
	DetailInline bool
	// DetailURL is a printf template taking the source id, for portals with
	// stable per-listing links.
	DetailURL string

	IDPattern       string // first capture group is the source id
	LocationPattern string // first capture group is the location text
	ReadyPattern    string // detail text is ready when this matches

	idRe       *regexp.Regexp
	locationRe *regexp.Regexp
	readyRe    *regexp.Regexp
}

const (
	defaultLocationPattern = `(?m)^(?:Location:\s*)?([A-Z][A-Za-z .'-]+,\s*[A-Z]{2}(?:\s+\d{5})?)\s*$`
	defaultReadyPattern    = `(?i)\b(responsibilities|duties|qualifications|requirements|what you.ll do|benefits)\b`
)

var employmentLine = regexp.MustCompile(`(?i)\b(full[- ]?time|part[- ]?time|per[- ]diem|prn|contract|temporary|travel)\b`)

// Compile validates the profile and prepares its patterns.
func (p *Profile) Compile() error {
	if p.SearchURL == "" {
		return fmt.Errorf("profile %s: search_url is required", p.Name)
	}
	if p.CardSelector == "" {
		return fmt.Errorf("profile %s: card_selector is required", p.Name)
	}
	if p.DetailSelector == "" {
		p.DetailSelector = "body"
	}
	if p.CardLinkSelector == "" {
		p.CardLinkSelector = "a"
	}

	var err error
	if p.IDPattern != "" {
		if p.idRe, err = regexp.Compile(p.IDPattern); err != nil {
			return fmt.Errorf("profile %s: id_pattern: %w", p.Name, err)
		}
	}
	loc := p.LocationPattern
	if loc == "" {
		loc = defaultLocationPattern
	}
	if p.locationRe, err = regexp.Compile(loc); err != nil {
		return fmt.Errorf("profile %s: location_pattern: %w", p.Name, err)
	}
	ready := p.ReadyPattern
	if ready == "" {
		ready = defaultReadyPattern
	}
	if p.readyRe, err = regexp.Compile(ready); err != nil {
		return fmt.Errorf("profile %s: ready_pattern: %w", p.Name, err)
	}
	return nil
}

// ParseCard reads a listing card's rendered text. The first line is the
// title. Cards without a recognisable id get one derived from their title
// and location, which is stable for as long as those are. ok is false for
// cards with no title.
func (p *Profile) ParseCard(text string) (l model.RawListing, ok bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return l, false
	}
	l.Title = lines[0]

	if p.locationRe != nil {
		if m := p.locationRe.FindStringSubmatch(text); len(m) > 1 {
			l.LocationText = strings.TrimSpace(m[1])
		}
	}
	for _, line := range lines[1:] {
		if employmentLine.MatchString(line) && len(line) < 60 {
			l.EmploymentText = line
			break
		}
	}

	if p.idRe != nil {
		if m := p.idRe.FindStringSubmatch(text); len(m) > 1 {
			l.SourceID = m[1]
		}
	}
	if l.SourceID == "" {
		l.SourceID = uuid.NewSHA1(uuid.NameSpaceURL,
			[]byte(p.SearchURL+"|"+l.Title+"|"+l.LocationText)).String()
	}

	if p.DetailURL != "" {
		l.SourceURL = fmt.Sprintf(p.DetailURL, l.SourceID)
	} else {
		l.SourceURL = p.SearchURL + "#" + l.SourceID
	}
	return l, true
}

// ready reports whether detail text shows the structural markers of a
// loaded detail view.
func (p *Profile) ready(text string) bool {
	return p.readyRe.MatchString(text)
}
