package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/shiftline/internal/model"
)

// Options bound the work a Driver does on one session.
type Options struct {
	MaxResults        int // 0 means unbounded
	MaxScrolls        int // 0 means unbounded
	StallThreshold    int // consecutive scrolls with no new ids
	ReadyAttempts     int // detail ready polls per click
	ReadyInterval     time.Duration
	SettleDelay       time.Duration // pause after a click or scroll
	MaxReplayAttempts int
	StepTimeout       time.Duration // bound on any single browser step
}

// DefaultOptions are used for zero fields.
var DefaultOptions = Options{
	StallThreshold:    4,
	ReadyAttempts:     10,
	ReadyInterval:     500 * time.Millisecond,
	SettleDelay:       750 * time.Millisecond,
	MaxReplayAttempts: 3,
	StepTimeout:       30 * time.Second,
}

func (o Options) withDefaults() Options {
	if o.StallThreshold <= 0 {
		o.StallThreshold = DefaultOptions.StallThreshold
	}
	if o.ReadyAttempts <= 0 {
		o.ReadyAttempts = DefaultOptions.ReadyAttempts
	}
	if o.ReadyInterval <= 0 {
		o.ReadyInterval = DefaultOptions.ReadyInterval
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.MaxReplayAttempts <= 0 {
		o.MaxReplayAttempts = DefaultOptions.MaxReplayAttempts
	}
	if o.StepTimeout <= 0 {
		o.StepTimeout = DefaultOptions.StepTimeout
	}
	return o
}

// Driver runs the portal state machine for one Profile.
type Driver struct {
	profile *Profile
	opts    Options
	logger  *slog.Logger
}

// NewDriver compiles the profile and returns a driver for it.
func NewDriver(profile Profile, opts Options, logger *slog.Logger) (*Driver, error) {
	if err := profile.Compile(); err != nil {
		return nil, &model.ConfigError{Err: err}
	}
	return &Driver{
		profile: &profile,
		opts:    opts.withDefaults(),
		logger:  logger.With("portal", profile.Name),
	}, nil
}

func (d *Driver) step(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.opts.StepTimeout)
}

// Open loads the search page and applies the category filter.
func (d *Driver) Open(ctx context.Context, s *Session) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if s.state != Idle {
		return fmt.Errorf("%w: open from %s", ErrBadTransition, s.state)
	}
	if err := d.load(ctx, s); err != nil {
		return err
	}
	d.applyFilter(ctx, s)
	return s.transition(FilterApplied)
}

// ApplyFilter re-applies the category filter on the current page.
func (d *Driver) ApplyFilter(ctx context.Context, s *Session) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if s.state != Idle && s.state != FilterApplied {
		return fmt.Errorf("%w: filter from %s", ErrBadTransition, s.state)
	}
	d.applyFilter(ctx, s)
	if s.state == Idle {
		return s.transition(FilterApplied)
	}
	return nil
}

func (d *Driver) load(ctx context.Context, s *Session) error {
	sctx, cancel := d.step(ctx)
	defer cancel()
	if err := s.page.Goto(sctx, d.profile.SearchURL); err != nil {
		return err
	}
	s.onDetail = false
	return s.page.Wait(ctx, d.opts.SettleDelay)
}

// applyFilter tries each filter strategy in order. The first that succeeds
// wins; when none does the session carries on unfiltered.
func (d *Driver) applyFilter(ctx context.Context, s *Session) {
	s.filtered = false
	p := d.profile
	if p.FilterLabel == "" && p.FilterSelector == "" {
		return
	}

	type strategy struct {
		name string
		run  func(context.Context) error
	}
	var strategies []strategy
	if p.FilterLabel != "" {
		strategies = append(strategies, strategy{"button", func(c context.Context) error {
			return s.page.ClickButton(c, p.FilterLabel)
		}})
	}
	if p.FilterSelector != "" {
		strategies = append(strategies, strategy{"selector", func(c context.Context) error {
			return s.page.ClickNth(c, p.FilterSelector, 0)
		}})
	}
	if p.FilterLabel != "" {
		strategies = append(strategies, strategy{"checkbox", func(c context.Context) error {
			return s.page.CheckLabel(c, p.FilterLabel)
		}})
	}

	for _, st := range strategies {
		sctx, cancel := d.step(ctx)
		err := st.run(sctx)
		cancel()
		if err == nil {
			s.filtered = true
			d.logger.Debug("filter applied", "strategy", st.name, "label", p.FilterLabel)
			_ = s.page.Wait(ctx, d.opts.SettleDelay)
			return
		}
		d.logger.Debug("filter strategy failed", "strategy", st.name, "error", err)
	}
	d.logger.Warn("could not apply category filter, continuing unfiltered", "label", p.FilterLabel)
}

// Collect gathers listings from the infinite-scroll list. It stops at
// MaxResults or MaxScrolls, or once StallThreshold consecutive scrolls
// surface no new ids, and returns whatever was collected.
func (d *Driver) Collect(ctx context.Context, s *Session) ([]model.RawListing, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	if err := s.transition(Collecting); err != nil {
		return nil, err
	}

	stall := 0
	for {
		if err := ctx.Err(); err != nil {
			return d.finishCollect(s), err
		}

		added, visible, err := d.harvest(ctx, s)
		if err != nil {
			if len(s.listings) == 0 {
				return nil, err
			}
			d.logger.Warn("listing extraction failed, keeping partial collection",
				"collected", len(s.listings), "error", err)
			break
		}
		if d.bounded(s) {
			break
		}

		if s.Scrolls > 0 {
			if added == 0 {
				stall++
			} else {
				stall = 0
			}
			if stall >= d.opts.StallThreshold {
				d.logger.Debug("collection stalled", "scrolls", s.Scrolls, "collected", len(s.listings))
				break
			}
		}
		if d.opts.MaxScrolls > 0 && s.Scrolls >= d.opts.MaxScrolls {
			break
		}

		if !d.scroll(ctx, s, visible) {
			d.logger.Debug("no scroll technique grew the list", "visible", visible)
		}
		s.Scrolls++
	}

	return d.finishCollect(s), nil
}

func (d *Driver) finishCollect(s *Session) []model.RawListing {
	s.collected = true
	_ = s.transition(Collected)
	d.logger.Info("collection finished",
		"collected", len(s.listings),
		"scrolls", s.Scrolls,
		"filtered", s.filtered,
	)
	out := make([]model.RawListing, len(s.listings))
	copy(out, s.listings)
	return out
}

func (d *Driver) bounded(s *Session) bool {
	return d.opts.MaxResults > 0 && len(s.listings) >= d.opts.MaxResults
}

// harvest parses the visible cards and appends unseen ones.
func (d *Driver) harvest(ctx context.Context, s *Session) (added, visible int, err error) {
	sctx, cancel := d.step(ctx)
	defer cancel()
	texts, err := s.page.Texts(sctx, d.profile.CardSelector)
	if err != nil {
		return 0, 0, err
	}
	for i, text := range texts {
		l, ok := d.profile.ParseCard(text)
		if !ok || s.seen[l.SourceID] {
			continue
		}
		l.DOMIndex = i
		s.seen[l.SourceID] = true
		s.listings = append(s.listings, l)
		added++
		if d.bounded(s) {
			break
		}
	}
	return added, len(texts), nil
}

// scroll tries each scroll technique, starting with the one that last
// worked, until the card count grows. It reports whether any did.
func (d *Driver) scroll(ctx context.Context, s *Session, before int) bool {
	sel := d.profile.CardSelector
	techniques := []func(context.Context) error{
		func(c context.Context) error { return s.page.ScrollIntoView(c, sel, max(before-1, 0)) },
		func(c context.Context) error { return s.page.ScrollToBottom(c) },
		func(c context.Context) error { return s.page.Press(c, "End") },
		func(c context.Context) error { return s.page.Press(c, "PageDown") },
	}

	for i := range techniques {
		idx := (s.scrollAt + i) % len(techniques)
		sctx, cancel := d.step(ctx)
		err := techniques[idx](sctx)
		cancel()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return false
			}
			continue
		}
		if err := s.page.Wait(ctx, d.opts.SettleDelay); err != nil {
			return false
		}
		sctx, cancel = d.step(ctx)
		n, err := s.page.Count(sctx, sel)
		cancel()
		if err == nil && n > before {
			s.scrollAt = idx
			return true
		}
	}
	return false
}
