package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
)

// Connector adapts the driver to model.Connector. The whole collection is
// returned as a single page; detail fetches run on the same session.
type Connector struct {
	launcher Launcher
	driver   *Driver
	filter   model.JobFilter
	logger   *slog.Logger

	mu      sync.Mutex
	session *Session
}

// NewConnector builds a connector that opens its session lazily on the
// first ListPage call.
func NewConnector(launcher Launcher, driver *Driver, f model.JobFilter, logger *slog.Logger) *Connector {
	return &Connector{
		launcher: launcher,
		driver:   driver,
		filter:   f,
		logger:   logger,
	}
}

// ListPage implements model.Connector.
func (c *Connector) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	if cursor != "" {
		return model.ListingPage{}, nil
	}

	s, err := c.open(ctx)
	if err != nil {
		return model.ListingPage{}, err
	}

	listings := s.Listings()
	if s.State() == FilterApplied {
		listings, err = c.driver.Collect(ctx, s)
		if err != nil && len(listings) == 0 {
			return model.ListingPage{}, err
		}
	}

	page := model.ListingPage{}
	page.Listings, page.Filtered = filter.Apply(c.filter, listings)
	c.logger.Debug("portal listings", "kept", len(page.Listings), "filtered", page.Filtered)
	return page, err
}

// open starts the session once. A failed open is discarded so a retry gets a
// fresh page.
func (c *Connector) open(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}

	page, err := c.launcher.NewPage(ctx)
	if err != nil {
		return nil, &model.FetchError{Op: "open page", Err: err}
	}
	s := NewSession(page)
	if err := c.driver.Open(ctx, s); err != nil {
		s.Close()
		return nil, fmt.Errorf("open portal: %w", err)
	}
	c.session = s
	return s, nil
}

// FetchDetail implements model.Connector.
func (c *Connector) FetchDetail(ctx context.Context, l model.RawListing) (model.RawListing, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return l, &model.ExtractionError{Field: "detail", Err: errors.New("session not open")}
	}
	return c.driver.FetchDetail(ctx, s, l)
}

// Close ends the session and shuts down the browser.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			errs = append(errs, err)
		}
		c.session = nil
	}
	if c.launcher != nil {
		if err := c.launcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
