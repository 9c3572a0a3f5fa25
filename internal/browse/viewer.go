package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/shiftline/internal/model"
	"github.com/amishk599/shiftline/internal/report"
)

// Lines per record in the list pane (title + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(12)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type viewerModel struct {
	summary  model.Summary
	jobs     []model.CanonicalJob
	list     viewport.Model
	side     viewport.Model
	detail   viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	view     viewState
	wantQuit bool
	open     func(url string)
}

func newViewer(s model.Summary) viewerModel {
	jobs := append([]model.CanonicalJob(nil), s.Sample...)
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Specialty != jobs[j].Specialty {
			return jobs[i].Specialty < jobs[j].Specialty
		}
		return jobs[i].Title < jobs[j].Title
	})
	return viewerModel{summary: s, jobs: jobs, open: openURL}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m viewerModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
		return m, nil
	case "down", "j":
		m.move(1)
		return m, nil
	case "enter":
		if len(m.jobs) == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detail = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
		m.detail.SetContent(renderDetail(m.jobs[m.cursor], m.detail.Width))
		return m, nil
	}
	var cmd tea.Cmd
	m.side, cmd = m.side.Update(msg)
	return m, cmd
}

func (m viewerModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if m.open != nil {
			m.open(m.jobs[m.cursor].SourceURL)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *viewerModel) move(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.jobs)-1, 0))
	if !m.ready {
		return
	}
	m.list.SetContent(renderList(m.jobs, m.cursor))
	top := m.cursor * itemHeight
	bottom := top + itemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m *viewerModel) layout() {
	// 2 border chars per pane + 1 gap between panes.
	listWidth := max((m.width-5)*3/5, 20)
	sideWidth := max(m.width-5-listWidth, 20)
	// Header + border top/bottom + status bar.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(listWidth, paneHeight)
		m.side = viewport.New(sideWidth, paneHeight)
		m.ready = true
	} else {
		m.list.Width, m.list.Height = listWidth, paneHeight
		m.side.Width, m.side.Height = sideWidth, paneHeight
	}
	m.list.SetContent(renderList(m.jobs, m.cursor))
	m.side.SetContent(renderSide(m.summary))
	if m.view == viewDetail && len(m.jobs) > 0 {
		m.detail.Width, m.detail.Height = max(m.width-4, 20), max(m.height-4, 5)
		m.detail.SetContent(renderDetail(m.jobs[m.cursor], m.detail.Width))
	}
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		content := activeBorderStyle.Width(m.width - 2).Render(m.detail.View())
		status := statusBarStyle.Width(m.width).Render(" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
		return headerStyle.Render("Record") + "\n" + content + "\n" + status
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.list.Width+2).Render(headerStyle.Render(fmt.Sprintf("%s · %d valid records", m.summary.Employer, m.summary.Valid))),
		" ",
		headerStyle.Render("Breakdown"),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		activeBorderStyle.Width(m.list.Width).Render(m.list.View()),
		" ",
		inactiveBorderStyle.Width(m.side.Width).Render(m.side.View()),
	)
	s := m.summary
	status := statusBarStyle.Width(m.width).Render(fmt.Sprintf(
		" %d fetched | %d skipped | %d failed | %d degraded    ↑/↓ cursor  enter detail  esc back  q quit",
		s.Fetched, s.Skipped, s.Failed, s.Degraded))
	return header + "\n" + panes + "\n" + status
}

func renderList(jobs []model.CanonicalJob, cursor int) string {
	if len(jobs) == 0 {
		return subtitleStyle.Render("No valid records.")
	}
	var b strings.Builder
	for i, j := range jobs {
		title := j.Title
		sub := fmt.Sprintf("%s, %s · %s", j.City, j.State, j.Specialty)
		if j.ShiftType != "" {
			sub += " · " + j.ShiftType
		}
		if i == cursor {
			b.WriteString(selectedTitleStyle.Render(title) + "\n" + selectedSubtitleStyle.Render(sub) + "\n\n")
		} else {
			b.WriteString(titleStyle.Render(title) + "\n" + subtitleStyle.Render(sub) + "\n\n")
		}
	}
	return b.String()
}

func renderSide(s model.Summary) string {
	var b strings.Builder
	writeCounts := func(title string, m map[string]int) {
		b.WriteString(titleStyle.Render(title) + "\n")
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if m[keys[i]] != m[keys[j]] {
				return m[keys[i]] > m[keys[j]]
			}
			return keys[i] < keys[j]
		})
		for _, k := range keys {
			fmt.Fprintf(&b, "%4d  %s\n", m[k], k)
		}
		b.WriteString("\n")
	}
	writeCounts("By location", s.ByLocation)
	writeCounts("By specialty", s.BySpecialty)
	if len(s.Errors) > 0 {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Errors (%d)", len(s.Errors))) + "\n")
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "%s %s: %s\n", e.Stage, e.SourceID, strings.Join(e.Reasons, "; "))
		}
	}
	return b.String()
}

func renderDetail(j model.CanonicalJob, width int) string {
	row := func(label, value string) string {
		if value == "" {
			value = subtitleStyle.Render("unknown")
		}
		return labelStyle.Render(label) + value + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(j.Title) + "\n\n")
	b.WriteString(row("Slug", j.Slug))
	b.WriteString(row("Source ID", j.SourceJobID))
	loc := j.City + ", " + j.State
	if j.Zip != "" {
		loc += " " + j.Zip
	}
	b.WriteString(row("Location", loc))
	b.WriteString(row("Specialty", j.Specialty))
	b.WriteString(row("Type", string(j.JobType)))
	b.WriteString(row("Shift", j.ShiftType))
	b.WriteString(row("Experience", string(j.ExperienceLevel)))
	b.WriteString(row("Salary", report.Salary(j)))
	if !j.PostedAt.IsZero() {
		b.WriteString(row("Posted", j.PostedAt.Format("2006-01-02")))
	}
	b.WriteString(row("URL", j.SourceURL))
	b.WriteString("\n" + dividerStyle.Render(strings.Repeat("─", max(width-2, 10))) + "\n\n")
	b.WriteString(wordWrap(j.Description, max(width-2, 20)))
	return b.String()
}

// wordWrap wraps each paragraph of text to width, keeping blank lines.
func wordWrap(text string, width int) string {
	paras := strings.Split(text, "\n")
	for i, p := range paras {
		words := strings.Fields(p)
		if len(words) == 0 {
			paras[i] = ""
			continue
		}
		var lines []string
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				lines = append(lines, line)
				line = w
			}
		}
		paras[i] = strings.Join(append(lines, line), "\n")
	}
	return strings.Join(paras, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// View shows the records of a dry-run summary. It returns wantQuit=true if
// the user pressed q, false if they pressed esc to go back to the picker.
func View(s model.Summary) (bool, error) {
	p := tea.NewProgram(newViewer(s), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	return result.(viewerModel).wantQuit, nil
}
