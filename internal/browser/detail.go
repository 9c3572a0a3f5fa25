package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amishk599/shiftline/internal/htmltext"
	"github.com/amishk599/shiftline/internal/model"
)

var (
	errNotReady   = errors.New("detail content never became ready")
	errNoListing  = errors.New("listing not found in list view")
	errNoStrategy = errors.New("no click strategy opened the listing")
)

// FetchDetail opens the listing's detail view and reads its sections. When
// the list view has to be rebuilt first, it replays to the listing. If the
// detail cannot be read the listing comes back unchanged with an
// *model.ExtractionError, so callers keep listing-level fields.
func (d *Driver) FetchDetail(ctx context.Context, s *Session, l model.RawListing) (model.RawListing, error) {
	if err := s.acquire(); err != nil {
		return l, err
	}
	defer s.release()

	if err := s.transition(DetailFetch); err != nil {
		return l, err
	}

	idx, err := d.locate(ctx, s, l)
	if err != nil {
		return l, err
	}

	html, err := d.open(ctx, s, idx, l)
	if err != nil {
		if errors.Is(err, errNotReady) || errors.Is(err, errNoStrategy) {
			d.logger.Warn("detail fetch fell back to listing fields", "source_id", l.SourceID, "error", err)
			return l, &model.ExtractionError{Field: "detail", Err: err}
		}
		return l, err
	}

	blocks := htmltext.Blocks(html)
	l.RawDetailText = htmltext.Text(blocks)
	l.Sections = htmltext.Sections(blocks)
	l.DetailFetched = true
	if d.profile.DetailURL == "" {
		if u := s.page.URL(); u != "" && u != d.profile.SearchURL {
			l.SourceURL = u
		}
	}
	return l, nil
}

// locate makes sure the list view is showing and returns the card index of
// the listing, replaying when the page lost its place.
func (d *Driver) locate(ctx context.Context, s *Session, l model.RawListing) (int, error) {
	if s.onDetail && !d.profile.DetailInline {
		sctx, cancel := d.step(ctx)
		err := s.page.Back(sctx)
		cancel()
		s.onDetail = false
		if err == nil {
			_ = s.page.Wait(ctx, d.opts.SettleDelay)
		} else {
			d.logger.Debug("back navigation failed", "error", err)
		}
	}

	if idx, ok := d.findCard(ctx, s, l); ok {
		return idx, nil
	}

	idx, err := d.replay(ctx, s, l)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		d.logger.Warn("replay exhausted, degrading listing", "source_id", l.SourceID, "index", l.DOMIndex, "error", err)
		return 0, &model.ExtractionError{Field: "replay", Err: err}
	}
	return idx, nil
}

// findCard checks the expected index first, then any visible card, for the
// listing's source id.
func (d *Driver) findCard(ctx context.Context, s *Session, l model.RawListing) (int, bool) {
	sctx, cancel := d.step(ctx)
	texts, err := s.page.Texts(sctx, d.profile.CardSelector)
	cancel()
	if err != nil {
		return 0, false
	}
	if l.DOMIndex >= 0 && l.DOMIndex < len(texts) {
		if c, ok := d.profile.ParseCard(texts[l.DOMIndex]); ok && c.SourceID == l.SourceID {
			return l.DOMIndex, true
		}
	}
	for i, text := range texts {
		if c, ok := d.profile.ParseCard(text); ok && c.SourceID == l.SourceID {
			return i, true
		}
	}
	return 0, false
}

// ReplayTo rebuilds the list view after the page lost its place: reload the
// search page, re-apply the filter and scroll until the listing at index
// with the given source id is on screen. It returns the card's current
// index. It is safe to call repeatedly.
func (d *Driver) ReplayTo(ctx context.Context, s *Session, l model.RawListing) (int, error) {
	if err := s.acquire(); err != nil {
		return 0, err
	}
	defer s.release()

	if s.state != DetailFetch && s.state != Collected {
		return 0, fmt.Errorf("%w: replay from %s", ErrBadTransition, s.state)
	}
	if s.state == Collected {
		if err := s.transition(DetailFetch); err != nil {
			return 0, err
		}
	}
	return d.replay(ctx, s, l)
}

func (d *Driver) replay(ctx context.Context, s *Session, l model.RawListing) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= d.opts.MaxReplayAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		d.logger.Debug("replaying to listing", "source_id", l.SourceID, "index", l.DOMIndex, "attempt", attempt)

		// The filter is always re-established before detail fetching resumes.
		if err := s.transition(FilterApplied); err != nil {
			return 0, err
		}
		if err := d.load(ctx, s); err != nil {
			lastErr = err
			_ = s.transition(DetailFetch)
			continue
		}
		d.applyFilter(ctx, s)
		if err := s.transition(DetailFetch); err != nil {
			return 0, err
		}

		if idx, ok := d.scrollTo(ctx, s, l); ok {
			s.Replays++
			return idx, nil
		}
		lastErr = errNoListing
	}
	return 0, fmt.Errorf("replay to %s after %d attempts: %w", l.SourceID, d.opts.MaxReplayAttempts, lastErr)
}

// scrollTo scrolls until the listing is visible, giving up after the stall
// threshold or MaxScrolls.
func (d *Driver) scrollTo(ctx context.Context, s *Session, l model.RawListing) (int, bool) {
	stall := 0
	for scrolls := 0; ; scrolls++ {
		if idx, ok := d.findCard(ctx, s, l); ok {
			return idx, true
		}
		if ctx.Err() != nil || stall >= d.opts.StallThreshold {
			return 0, false
		}
		if d.opts.MaxScrolls > 0 && scrolls >= d.opts.MaxScrolls {
			return 0, false
		}

		sctx, cancel := d.step(ctx)
		before, err := s.page.Count(sctx, d.profile.CardSelector)
		cancel()
		if err != nil {
			return 0, false
		}
		if d.scroll(ctx, s, before) {
			stall = 0
		} else {
			stall++
		}
	}
}

// open clicks into the listing, trying each click strategy until the detail
// view shows its ready markers, and returns the detail HTML.
func (d *Driver) open(ctx context.Context, s *Session, idx int, l model.RawListing) (string, error) {
	sel := d.profile.CardSelector
	strategies := []struct {
		name string
		run  func(context.Context) error
	}{
		{"card", func(c context.Context) error { return s.page.ClickNth(c, sel, idx) }},
		{"link", func(c context.Context) error { return s.page.ClickWithin(c, sel, idx, d.profile.CardLinkSelector) }},
		{"title", func(c context.Context) error { return s.page.ClickText(c, l.Title) }},
	}

	before := d.panelText(ctx, s)
	landed := false
	for _, st := range strategies {
		sctx, cancel := d.step(ctx)
		err := st.run(sctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			d.logger.Debug("click strategy failed", "strategy", st.name, "source_id", l.SourceID, "error", err)
			continue
		}
		s.onDetail = true
		landed = true
		html, err := d.awaitReady(ctx, s, l, before)
		if errors.Is(err, errNotReady) {
			d.logger.Debug("click landed but detail never showed", "strategy", st.name, "source_id", l.SourceID)
			continue
		}
		return html, err
	}
	if landed {
		return "", errNotReady
	}
	return "", errNoStrategy
}

// panelText reads what the detail container shows before a click, or ""
// when it is absent.
func (d *Driver) panelText(ctx context.Context, s *Session) string {
	sctx, cancel := d.step(ctx)
	defer cancel()
	html, err := s.page.HTML(sctx, d.profile.DetailSelector)
	if err != nil {
		return ""
	}
	return htmltext.Text(htmltext.Blocks(html))
}

// awaitReady polls the detail container until it shows ready markers for
// this listing. Content identical to what the container held before the
// click belongs to the previous listing unless it carries this listing's
// source id.
func (d *Driver) awaitReady(ctx context.Context, s *Session, l model.RawListing, before string) (string, error) {
	for attempt := 0; attempt < d.opts.ReadyAttempts; attempt++ {
		sctx, cancel := d.step(ctx)
		html, err := s.page.HTML(sctx, d.profile.DetailSelector)
		cancel()
		if err == nil {
			text := htmltext.Text(htmltext.Blocks(html))
			if d.profile.ready(text) && (before == "" || text != before || mentions(text, l.SourceID)) {
				return html, nil
			}
		}
		if err := s.page.Wait(ctx, d.opts.ReadyInterval); err != nil {
			return "", err
		}
	}
	return "", errNotReady
}

func mentions(text, id string) bool {
	return id != "" && strings.Contains(text, id)
}
