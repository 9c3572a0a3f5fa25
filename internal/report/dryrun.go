package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/shiftline/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(12)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

var _ model.Reporter = (*Console)(nil)

// Console prints summaries for a human at a terminal. Dry runs get the full
// sample and breakdowns.
type Console struct {
	w io.Writer
}

// NewConsole returns a reporter that renders to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Report(s model.Summary) error {
	_, err := io.WriteString(c.w, Render(s)+"\n")
	return err
}

// Render formats a summary. Dry runs include sample records and the
// location and specialty breakdowns.
func Render(s model.Summary) string {
	title := s.Employer
	if s.DryRun {
		title += " · dry run"
	}
	parts := []string{titleStyle.Render(title), boxStyle.Render(renderCounts(s))}

	if s.DryRun {
		if len(s.Sample) > 0 {
			parts = append(parts, titleStyle.Render("Sample"))
			for _, j := range s.Sample {
				parts = append(parts, boxStyle.Render(renderJob(j)))
			}
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top,
			boxStyle.Render(renderBreakdown("By location", s.ByLocation)),
			" ",
			boxStyle.Render(renderBreakdown("By specialty", s.BySpecialty)),
		))
	}
	if len(s.Errors) > 0 {
		parts = append(parts, boxStyle.Render(renderErrors(s.Errors)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCounts(s model.Summary) string {
	rows := [][2]string{
		{"Pages", strconv.Itoa(s.Pages)},
		{"Fetched", strconv.Itoa(s.Fetched)},
	}
	if s.DryRun {
		rows = append(rows, [2]string{"Valid", strconv.Itoa(s.Valid)})
	} else {
		rows = append(rows,
			[2]string{"Created", strconv.Itoa(s.Created)},
			[2]string{"Updated", strconv.Itoa(s.Updated)},
		)
	}
	rows = append(rows,
		[2]string{"Skipped", strconv.Itoa(s.Skipped)},
		[2]string{"Failed", strconv.Itoa(s.Failed)},
		[2]string{"Degraded", strconv.Itoa(s.Degraded)},
		[2]string{"Duration", s.Duration.Round(time.Millisecond).String()},
	)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = labelStyle.Render(r[0]) + r[1]
	}
	return strings.Join(lines, "\n")
}

func renderJob(j model.CanonicalJob) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(j.Title),
		dimStyle.Render(j.Slug),
		labelStyle.Render("Location") + location(j),
		labelStyle.Render("Specialty") + j.Specialty,
	}
	if j.JobType != "" {
		lines = append(lines, labelStyle.Render("Type")+string(j.JobType))
	}
	if j.ShiftType != "" {
		lines = append(lines, labelStyle.Render("Shift")+j.ShiftType)
	}
	if j.ExperienceLevel != "" {
		lines = append(lines, labelStyle.Render("Experience")+string(j.ExperienceLevel))
	}
	if sal := Salary(j); sal != "" {
		lines = append(lines, labelStyle.Render("Salary")+sal)
	}
	lines = append(lines, labelStyle.Render("URL")+j.SourceURL)
	return strings.Join(lines, "\n")
}

func location(j model.CanonicalJob) string {
	loc := j.City + ", " + j.State
	if j.Zip != "" {
		loc += " " + j.Zip
	}
	return loc
}

// Salary formats a salary range, or returns "" when there is none.
func Salary(j model.CanonicalJob) string {
	if j.SalaryMin == nil && j.SalaryMax == nil {
		return ""
	}
	var lo, hi string
	if j.SalaryMin != nil {
		lo = fmt.Sprintf("$%.2f", *j.SalaryMin)
	}
	if j.SalaryMax != nil {
		hi = fmt.Sprintf("$%.2f", *j.SalaryMax)
	}
	s := lo
	switch {
	case lo == "":
		s = hi
	case hi != "" && hi != lo:
		s = lo + " - " + hi
	}
	if j.SalaryUnit != "" {
		s += " " + string(j.SalaryUnit)
	}
	return s
}

type bucket struct {
	key   string
	count int
}

// sortedBuckets orders by count descending, then key.
func sortedBuckets(m map[string]int) []bucket {
	out := make([]bucket, 0, len(m))
	for k, v := range m {
		out = append(out, bucket{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func renderBreakdown(title string, m map[string]int) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(title)}
	if len(m) == 0 {
		lines = append(lines, dimStyle.Render("none"))
	}
	for _, b := range sortedBuckets(m) {
		lines = append(lines, fmt.Sprintf("%4d  %s", b.count, b.key))
	}
	return strings.Join(lines, "\n")
}

func renderErrors(errs []model.RecordError) string {
	lines := []string{errStyle.Bold(true).Render(fmt.Sprintf("%d record errors", len(errs)))}
	for _, e := range errs {
		lines = append(lines, errStyle.Render(e.Stage)+" "+e.SourceID+dimStyle.Render(": "+strings.Join(e.Reasons, "; ")))
	}
	return strings.Join(lines, "\n")
}
