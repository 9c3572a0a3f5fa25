// Package htmltext turns job-description HTML into text blocks that keep
// their headings, for section classification and raw-description storage.
package htmltext

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/normalize"
)

// Block is a run of text under one heading. Heading may be empty for text
// that precedes the first heading.
type Block struct {
	Heading string
	Lines   []string
}

// Text joins the block's lines with newlines.
func (b Block) Text() string {
	return strings.Join(b.Lines, "\n")
}

const (
	blockSelector  = "h1,h2,h3,h4,h5,h6,p,li,dt,dd,div"
	leafContainers = "p,li,dd"
	maxHeadingLen  = 80
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "dt": true,
}

// Blocks splits an HTML fragment into headed blocks by walking block-level
// elements in document order. HTML-escaped input (as some ATS APIs send) is
// unescaped first. Plain text falls back to blank-line splitting.
func Blocks(fragment string) []Block {
	if !strings.Contains(fragment, "<") && strings.Contains(fragment, "&lt;") {
		fragment = html.UnescapeString(fragment)
	}
	if !strings.Contains(fragment, "<") {
		return plainBlocks(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return plainBlocks(fragment)
	}

	var blocks []Block
	cur := Block{}
	flush := func() {
		if cur.Heading != "" || len(cur.Lines) > 0 {
			blocks = append(blocks, cur)
		}
		cur = Block{}
	}

	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(leafContainers).Length() > 0 {
			return
		}
		tag := goquery.NodeName(s)
		// A div only counts when it holds text directly, not other blocks.
		if tag == "div" && s.ChildrenFiltered(blockSelector).Length() > 0 {
			return
		}
		text := normalize.CleanText(s.Text())
		if text == "" {
			return
		}
		text = strings.Join(strings.Fields(text), " ")

		if isHeading(s, tag, text) {
			flush()
			cur.Heading = strings.TrimSuffix(text, ":")
			return
		}
		if tag == "li" {
			text = "- " + text
		}
		cur.Lines = append(cur.Lines, text)
	})
	flush()

	if len(blocks) == 0 {
		return plainBlocks(doc.Text())
	}
	return blocks
}

func isHeading(s *goquery.Selection, tag, text string) bool {
	if len(text) > maxHeadingLen {
		return false
	}
	if headingTags[tag] {
		return true
	}
	if tag != "p" && tag != "div" {
		return false
	}
	// <p><strong>Qualifications</strong></p> style headings.
	bold := normalize.CleanText(s.Find("strong,b").Text())
	if bold != "" && strings.Join(strings.Fields(bold), " ") == text {
		return true
	}
	return strings.HasSuffix(text, ":") && len(strings.Fields(text)) <= 6
}

func plainBlocks(text string) []Block {
	text = normalize.CleanText(text)
	if text == "" {
		return nil
	}
	var blocks []Block
	for _, para := range strings.Split(text, "\n\n") {
		lines := strings.Split(strings.TrimSpace(para), "\n")
		b := Block{}
		if len(lines) > 1 && len(lines[0]) <= maxHeadingLen && !strings.HasSuffix(lines[0], ".") {
			b.Heading = strings.TrimSuffix(lines[0], ":")
			lines = lines[1:]
		}
		b.Lines = lines
		blocks = append(blocks, b)
	}
	return blocks
}

// Text renders blocks as newline-separated text with headings on their own
// lines, the structural form kept as a job's raw description.
func Text(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if b.Heading != "" {
			sb.WriteString(b.Heading)
			if len(b.Lines) > 0 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(b.Text())
	}
	return sb.String()
}

// Sections classifies each block by content.
func Sections(blocks []Block) []model.Section {
	sections := make([]model.Section, 0, len(blocks))
	for _, b := range blocks {
		text := b.Text()
		sections = append(sections, model.Section{
			Kind:    normalize.ClassifySection(b.Heading, text),
			Heading: b.Heading,
			Text:    text,
		})
	}
	return sections
}
