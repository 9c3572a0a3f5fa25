// Package browser drives legacy career portals that have no usable API:
// filter the search view, collect listings from an infinite-scroll list,
// open each listing's detail view and recover by replay when navigation
// state is lost.
package browser

import (
	"context"
	"time"
)

// Page is the narrow browser surface the driver needs. Every method that
// waits on the browser is bounded by the deadline carried in ctx.
type Page interface {
	Goto(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	Back(ctx context.Context) error
	URL() string

	// Texts returns the rendered text of every element matching selector.
	Texts(ctx context.Context, selector string) ([]string, error)
	Count(ctx context.Context, selector string) (int, error)
	// HTML returns the inner HTML of the first element matching selector.
	HTML(ctx context.Context, selector string) (string, error)

	ClickButton(ctx context.Context, label string) error
	ClickNth(ctx context.Context, selector string, n int) error
	// ClickWithin clicks the first inner match inside the nth selector match.
	ClickWithin(ctx context.Context, selector string, n int, inner string) error
	ClickText(ctx context.Context, text string) error
	CheckLabel(ctx context.Context, label string) error

	ScrollIntoView(ctx context.Context, selector string, n int) error
	ScrollToBottom(ctx context.Context) error
	Press(ctx context.Context, key string) error

	Wait(ctx context.Context, d time.Duration) error
	Close() error
}

// Launcher opens pages on a running browser.
type Launcher interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
