package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/amishk599/shiftline/internal/model"
)

// LaunchOptions configure the headless browser.
type LaunchOptions struct {
	Headless       bool
	ExecutablePath string
	UserAgent      string
	StepTimeout    time.Duration
}

// PlaywrightLauncher owns one playwright driver process and one Chromium
// instance. Pages share a single browser context.
type PlaywrightLauncher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	timeout time.Duration
}

// NewPlaywrightLauncher starts playwright and launches Chromium. A failure
// here is fatal for the run.
func NewPlaywrightLauncher(opts LaunchOptions) (*PlaywrightLauncher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ExecutablePath != "" {
		launch.ExecutablePath = playwright.String(opts.ExecutablePath)
	}
	b, err := pw.Chromium.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1366, Height: 900},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	timeout := opts.StepTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PlaywrightLauncher{pw: pw, browser: b, bctx: bctx, timeout: timeout}, nil
}

// NewPage implements Launcher.
func (l *PlaywrightLauncher) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	p.SetDefaultTimeout(float64(l.timeout.Milliseconds()))
	return &playwrightPage{page: p, timeout: l.timeout}, nil
}

// Close shuts down the browser and the playwright driver.
func (l *PlaywrightLauncher) Close() error {
	var errs []error
	if err := l.bctx.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := l.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := l.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type playwrightPage struct {
	page    playwright.Page
	timeout time.Duration
}

// ms converts the time left on ctx into a playwright timeout, falling back
// to the page default when ctx has no deadline.
func (p *playwrightPage) ms(ctx context.Context) *float64 {
	d := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *playwrightPage) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &model.FetchError{Op: op, Timeout: errors.Is(err, playwright.ErrTimeout), Err: err}
}

func (p *playwrightPage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   p.ms(ctx),
	})
	return p.wrap("goto "+url, err)
}

func (p *playwrightPage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   p.ms(ctx),
	})
	return p.wrap("reload", err)
}

func (p *playwrightPage) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   p.ms(ctx),
	})
	return p.wrap("back", err)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Texts(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	texts, err := p.page.Locator(selector).AllInnerTexts()
	return texts, p.wrap("read "+selector, err)
}

func (p *playwrightPage) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.page.Locator(selector).Count()
	return n, p.wrap("count "+selector, err)
}

func (p *playwrightPage) HTML(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := p.page.Locator(selector).First().InnerHTML(playwright.LocatorInnerHTMLOptions{
		Timeout: p.ms(ctx),
	})
	return html, p.wrap("html "+selector, err)
}

func (p *playwrightPage) ClickButton(ctx context.Context, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{
		Name:  label,
		Exact: playwright.Bool(true),
	}).First().Click(playwright.LocatorClickOptions{Timeout: p.ms(ctx)})
	return p.wrap("click button "+label, err)
}

func (p *playwrightPage) ClickNth(ctx context.Context, selector string, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Locator(selector).Nth(n).Click(playwright.LocatorClickOptions{Timeout: p.ms(ctx)})
	return p.wrap(fmt.Sprintf("click %s[%d]", selector, n), err)
}

func (p *playwrightPage) ClickWithin(ctx context.Context, selector string, n int, inner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Locator(selector).Nth(n).Locator(inner).First().Click(playwright.LocatorClickOptions{
		Timeout: p.ms(ctx),
	})
	return p.wrap(fmt.Sprintf("click %s[%d] %s", selector, n, inner), err)
}

func (p *playwrightPage) ClickText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.GetByText(text, playwright.PageGetByTextOptions{Exact: playwright.Bool(true)}).
		First().Click(playwright.LocatorClickOptions{Timeout: p.ms(ctx)})
	return p.wrap("click text", err)
}

func (p *playwrightPage) CheckLabel(ctx context.Context, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.GetByLabel(label).First().Check(playwright.LocatorCheckOptions{Timeout: p.ms(ctx)})
	return p.wrap("check "+label, err)
}

func (p *playwrightPage) ScrollIntoView(ctx context.Context, selector string, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Locator(selector).Nth(n).ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: p.ms(ctx),
	})
	if err == nil {
		// Some lists only load on a scroll event from the container itself.
		_, err = p.page.Locator(selector).Nth(n).Evaluate(
			`el => el.dispatchEvent(new Event("scroll", {bubbles: true}))`, nil)
	}
	return p.wrap("scroll into view", err)
}

func (p *playwrightPage) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	return p.wrap("scroll to bottom", err)
}

func (p *playwrightPage) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.wrap("press "+key, p.page.Keyboard().Press(key))
}

func (p *playwrightPage) Wait(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}
