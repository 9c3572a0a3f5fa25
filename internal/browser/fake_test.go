package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	testSearchURL = "https://portal.test/search"
	testCards     = ".job-card"
	testDetail    = "#job-detail"
	testFilterSel = "#category-nursing"
)

func testProfile() Profile {
	return Profile{
		Name:           "test-portal",
		SearchURL:      testSearchURL,
		FilterLabel:    "Nursing",
		FilterSelector: testFilterSel,
		CardSelector:   testCards,
		DetailSelector: testDetail,
		IDPattern:      `Req #(\d+)`,
	}
}

func testOptions() Options {
	return Options{
		ReadyAttempts:     3,
		ReadyInterval:     time.Millisecond,
		MaxReplayAttempts: 2,
		StepTimeout:       time.Second,
	}
}

func card(id int, title string) fakeCard {
	return fakeCard{
		text: fmt.Sprintf("%s\nAkron, OH\nFull time\nReq #%d", title, id),
		detail: `<h3>Responsibilities</h3><ul><li>Provides direct patient care</li></ul>` +
			`<h3>Qualifications</h3><ul><li>Current RN license</li><li>BLS required</li></ul>`,
	}
}

func cards(n int) []fakeCard {
	out := make([]fakeCard, n)
	for i := range out {
		out[i] = card(1000+i, fmt.Sprintf("Registered Nurse %d", i))
	}
	return out
}

type fakeCard struct {
	text   string
	detail string
}

// fakePage is an in-memory portal: a list that grows by step cards when the
// working scroll technique is used, and a detail view per card.
type fakePage struct {
	cards   []fakeCard
	initial int
	step    int
	visible int

	workingScroll string // "view", "bottom", "End", "PageDown" or "" for none
	filterMode    string // "button", "selector", "checkbox" or "" for none
	forgetOnBack  bool   // Back reloads the list at its initial length
	failClick     map[string]bool
	notReady      map[int]bool

	// inline shows the detail in a panel beside the list. The panel keeps
	// its previous content for lag reads after each click, and a click
	// through a stuck strategy lands without ever rendering.
	inline bool
	lag    int
	stuck  map[string]bool

	url      string
	onDetail int
	panel    int
	lagLeft  int
	stalled  bool

	loads       int
	backs       int
	scrollCalls int
	clicks      []string
	closed      bool
}

func newFakePage(all []fakeCard, initial, step int) *fakePage {
	return &fakePage{
		cards:     all,
		initial:   initial,
		step:      step,
		onDetail:  -1,
		panel:     -1,
		failClick: map[string]bool{},
		notReady:  map[int]bool{},
		stuck:     map[string]bool{},
	}
}

var errNoMatch = errors.New("no element matches")

func (f *fakePage) Goto(ctx context.Context, url string) error {
	f.url = url
	f.loads++
	f.onDetail = -1
	f.panel = -1
	f.visible = min(f.initial, len(f.cards))
	return ctx.Err()
}

func (f *fakePage) Reload(ctx context.Context) error {
	return f.Goto(ctx, f.url)
}

func (f *fakePage) Back(ctx context.Context) error {
	f.backs++
	f.onDetail = -1
	f.url = testSearchURL
	if f.forgetOnBack {
		f.visible = min(f.initial, len(f.cards))
	}
	return ctx.Err()
}

func (f *fakePage) URL() string { return f.url }

func (f *fakePage) Texts(ctx context.Context, selector string) ([]string, error) {
	if selector != testCards || (f.onDetail >= 0 && !f.inline) {
		return nil, ctx.Err()
	}
	out := make([]string, 0, f.visible)
	for _, c := range f.cards[:f.visible] {
		out = append(out, c.text)
	}
	return out, ctx.Err()
}

func (f *fakePage) Count(ctx context.Context, selector string) (int, error) {
	texts, err := f.Texts(ctx, selector)
	return len(texts), err
}

func (f *fakePage) HTML(ctx context.Context, selector string) (string, error) {
	if selector != testDetail || f.onDetail < 0 {
		return "", errNoMatch
	}
	if f.inline {
		if f.lagLeft > 0 {
			f.lagLeft--
		} else if !f.stalled {
			f.panel = f.onDetail
		}
		if f.panel < 0 {
			return "<p>Loading job...</p>", nil
		}
		return f.cards[f.panel].detail, ctx.Err()
	}
	if f.notReady[f.onDetail] {
		return "<p>Loading job...</p>", nil
	}
	return f.cards[f.onDetail].detail, ctx.Err()
}

func (f *fakePage) ClickButton(_ context.Context, label string) error {
	if f.filterMode == "button" && label == "Nursing" {
		return nil
	}
	return errNoMatch
}

func (f *fakePage) ClickNth(_ context.Context, selector string, n int) error {
	switch selector {
	case testFilterSel:
		if f.filterMode == "selector" {
			return nil
		}
		return errNoMatch
	case testCards:
		return f.openDetail("card", n)
	}
	return errNoMatch
}

func (f *fakePage) ClickWithin(_ context.Context, selector string, n int, _ string) error {
	if selector != testCards {
		return errNoMatch
	}
	return f.openDetail("link", n)
}

func (f *fakePage) ClickText(_ context.Context, text string) error {
	for i, c := range f.cards[:f.visible] {
		if strings.HasPrefix(c.text, text+"\n") {
			return f.openDetail("title", i)
		}
	}
	return errNoMatch
}

func (f *fakePage) openDetail(strategy string, n int) error {
	f.clicks = append(f.clicks, strategy)
	if f.failClick[strategy] || n >= f.visible {
		return errNoMatch
	}
	if f.inline {
		f.onDetail = n
		f.lagLeft = f.lag
		f.stalled = f.stuck[strategy]
		return nil
	}
	if f.onDetail >= 0 {
		return errNoMatch
	}
	f.onDetail = n
	f.url = fmt.Sprintf("https://portal.test/job/%d", n)
	return nil
}

func (f *fakePage) CheckLabel(_ context.Context, label string) error {
	if f.filterMode == "checkbox" && label == "Nursing" {
		return nil
	}
	return errNoMatch
}

func (f *fakePage) scrolled(technique string) {
	f.scrollCalls++
	if technique == f.workingScroll {
		f.visible = min(f.visible+f.step, len(f.cards))
	}
}

func (f *fakePage) ScrollIntoView(ctx context.Context, _ string, _ int) error {
	f.scrolled("view")
	return ctx.Err()
}

func (f *fakePage) ScrollToBottom(ctx context.Context) error {
	f.scrolled("bottom")
	return ctx.Err()
}

func (f *fakePage) Press(ctx context.Context, key string) error {
	f.scrolled(key)
	return ctx.Err()
}

func (f *fakePage) Wait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (f *fakePage) Close() error {
	f.closed = true
	return nil
}

type fakeLauncher struct {
	page   *fakePage
	closed bool
}

func (l *fakeLauncher) NewPage(_ context.Context) (Page, error) {
	return l.page, nil
}

func (l *fakeLauncher) Close() error {
	l.closed = true
	return nil
}
