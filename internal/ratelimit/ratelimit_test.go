package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/amishk599/shiftline/internal/model"
)

func TestWait_SameKey_EnforcesMinDelay(t *testing.T) {
	pacer := NewPacer(100 * time.Millisecond)
	ctx := context.Background()

	if err := pacer.Wait(ctx, "greenhouse", KindPage); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := pacer.Wait(ctx, "greenhouse", KindPage); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Allow 80ms for timer jitter.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentATS_NoCrossBlocking(t *testing.T) {
	pacer := NewPacer(200 * time.Millisecond)
	ctx := context.Background()

	if err := pacer.Wait(ctx, "greenhouse", KindPage); err != nil {
		t.Fatalf("greenhouse wait: %v", err)
	}

	start := time.Now()
	if err := pacer.Wait(ctx, "lever", KindPage); err != nil {
		t.Fatalf("lever wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected lever wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_DifferentKind_NoCrossBlocking(t *testing.T) {
	pacer := NewPacer(200 * time.Millisecond)
	ctx := context.Background()

	if err := pacer.Wait(ctx, "workday", KindPage); err != nil {
		t.Fatalf("page wait: %v", err)
	}

	start := time.Now()
	if err := pacer.Wait(ctx, "workday", KindDetail); err != nil {
		t.Fatalf("detail wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected detail wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	pacer := NewPacer(0)
	start := time.Now()
	for i := 0; i < 20; i++ {
		if err := pacer.Wait(context.Background(), "lever", KindPage); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected no pacing, took %v", elapsed)
	}
}

func TestSetDelay_OverridesKey(t *testing.T) {
	pacer := NewPacer(time.Second)
	pacer.SetDelay("ashby", KindPage, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.Wait(context.Background(), "ashby", KindPage); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected override to disable pacing, took %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	pacer := NewPacer(5 * time.Second)

	if err := pacer.Wait(context.Background(), "greenhouse", KindPage); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pacer.Wait(ctx, "greenhouse", KindPage); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

type recordingConnector struct {
	pages   int
	details int
}

func (c *recordingConnector) ListPage(_ context.Context, _ string) (model.ListingPage, error) {
	c.pages++
	return model.ListingPage{}, nil
}

func (c *recordingConnector) FetchDetail(_ context.Context, l model.RawListing) (model.RawListing, error) {
	c.details++
	return l, nil
}

func TestConnector_Delegates(t *testing.T) {
	inner := &recordingConnector{}
	c := NewConnector(inner, NewPacer(0), "greenhouse")

	if _, err := c.ListPage(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.FetchDetail(context.Background(), model.RawListing{SourceID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.pages != 1 || inner.details != 1 {
		t.Fatalf("expected one call each, got pages=%d details=%d", inner.pages, inner.details)
	}
}

func TestConnector_CancelledSkipsInner(t *testing.T) {
	inner := &recordingConnector{}
	pacer := NewPacer(5 * time.Second)
	c := NewConnector(inner, pacer, "greenhouse")

	if _, err := c.ListPage(context.Background(), ""); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.ListPage(ctx, ""); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if inner.pages != 1 {
		t.Fatalf("expected inner called once, got %d", inner.pages)
	}
}
