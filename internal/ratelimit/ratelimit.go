package ratelimit

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/shiftline/internal/model"
)

// Request kinds paced independently per ATS.
const (
	KindPage   = "page"
	KindDetail = "detail"
)

// Pacer enforces a minimum delay between requests of the same kind to the
// same backend. Each "ats:kind" key gets its own token bucket with burst 1.
type Pacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delays   map[string]time.Duration
	minDelay time.Duration
}

// NewPacer creates a pacer that spaces requests on any key by minDelay.
// A zero delay never blocks.
func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{
		limiters: make(map[string]*rate.Limiter),
		delays:   make(map[string]time.Duration),
		minDelay: minDelay,
	}
}

// SetDelay overrides the delay for one ats and kind. It must be called before
// the first Wait on that key.
func (p *Pacer) SetDelay(ats, kind string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delays[ats+":"+kind] = d
}

func (p *Pacer) limiter(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.limiters[key]; ok {
		return l
	}
	d, ok := p.delays[key]
	if !ok {
		d = p.minDelay
	}
	limit := rate.Inf
	if d > 0 {
		limit = rate.Every(d)
	}
	l := rate.NewLimiter(limit, 1)
	p.limiters[key] = l
	return l
}

// Wait blocks until the next request of the given kind to ats may proceed.
// Returns an error if the context is cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context, ats, kind string) error {
	key := ats + ":" + kind
	if err := p.limiter(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}
	return nil
}

// Connector is a decorator that paces ListPage and FetchDetail calls before
// delegating to the wrapped connector.
type Connector struct {
	inner model.Connector
	pacer *Pacer
	ats   string
}

// NewConnector wraps a Connector with ATS-level pacing. All connectors
// targeting the same ATS should share the same Pacer.
func NewConnector(inner model.Connector, pacer *Pacer, ats string) *Connector {
	return &Connector{inner: inner, pacer: pacer, ats: ats}
}

// ListPage implements model.Connector.
func (c *Connector) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	if err := c.pacer.Wait(ctx, c.ats, KindPage); err != nil {
		return model.ListingPage{}, err
	}
	return c.inner.ListPage(ctx, cursor)
}

// FetchDetail implements model.Connector.
func (c *Connector) FetchDetail(ctx context.Context, l model.RawListing) (model.RawListing, error) {
	if err := c.pacer.Wait(ctx, c.ats, KindDetail); err != nil {
		return l, err
	}
	return c.inner.FetchDetail(ctx, l)
}

// Close forwards to the inner connector when it holds resources.
func (c *Connector) Close() error {
	if cl, ok := c.inner.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
