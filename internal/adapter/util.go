package adapter

import (
	"github.com/amishk599/shiftline/internal/htmltext"
	"github.com/amishk599/shiftline/internal/model"
)

// describeHTML converts a vendor HTML description into the raw detail text
// (headings on their own lines) and its classified sections.
func describeHTML(fragment string) (string, []model.Section) {
	blocks := htmltext.Blocks(fragment)
	return htmltext.Text(blocks), htmltext.Sections(blocks)
}

// withDetail attaches description text to a listing and marks it fetched.
func withDetail(l model.RawListing, fragment string) model.RawListing {
	l.RawDetailText, l.Sections = describeHTML(fragment)
	l.DetailFetched = l.RawDetailText != ""
	return l
}
