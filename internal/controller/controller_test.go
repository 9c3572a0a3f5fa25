package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/shiftline/internal/model"
)

// --- Mock/Fake Implementations ---

// pagedConnector serves canned pages keyed by cursor.
type pagedConnector struct {
	pages     map[string]model.ListingPage
	pageErr   map[string]error
	detailErr map[string]error
	listCalls int
	details   []string
	onDetail  func()
}

func (c *pagedConnector) ListPage(_ context.Context, cursor string) (model.ListingPage, error) {
	c.listCalls++
	if err := c.pageErr[cursor]; err != nil {
		return model.ListingPage{}, err
	}
	return c.pages[cursor], nil
}

func (c *pagedConnector) FetchDetail(_ context.Context, l model.RawListing) (model.RawListing, error) {
	c.details = append(c.details, l.SourceID)
	if c.onDetail != nil {
		c.onDetail()
	}
	if err := c.detailErr[l.SourceID]; err != nil {
		return l, err
	}
	l.RawDetailText = "Responsibilities\nProvide safe, evidence-based nursing care to adult patients on a busy unit."
	l.DetailFetched = true
	return l, nil
}

// memStore mimics the upsert gate: inserts inactive, never touches IsActive
// on update.
type memStore struct {
	employers map[string]model.Employer
	jobs      map[string]model.CanonicalJob
	failOn    string
}

func newMemStore() *memStore {
	return &memStore{employers: map[string]model.Employer{}, jobs: map[string]model.CanonicalJob{}}
}

func (s *memStore) EnsureEmployer(_ context.Context, e model.Employer) (model.Employer, error) {
	if got, ok := s.employers[e.Slug]; ok {
		return got, nil
	}
	e.ID = int64(len(s.employers) + 1)
	s.employers[e.Slug] = e
	return e, nil
}

func (s *memStore) Upsert(_ context.Context, job model.CanonicalJob) (model.UpsertResult, error) {
	if job.SourceJobID == s.failOn {
		return 0, &model.PersistenceError{SourceID: job.SourceJobID, Err: errors.New("disk full")}
	}
	key := fmt.Sprintf("%d/%s", job.EmployerID, job.SourceJobID)
	if old, ok := s.jobs[key]; ok {
		job.IsActive = old.IsActive
		job.Slug = old.Slug
		s.jobs[key] = job
		return model.Updated, nil
	}
	job.IsActive = false
	s.jobs[key] = job
	return model.Created, nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testEmployer = model.Employer{Name: "Summa Health", Slug: "summa-health", ATSPlatform: "workday"}

func listing(id, title, location string) model.RawListing {
	return model.RawListing{
		SourceID:       id,
		Title:          title,
		LocationText:   location,
		SourceURL:      "https://summa.example.com/jobs/" + id,
		EmploymentText: "Full time",
	}
}

func onePage(listings ...model.RawListing) *pagedConnector {
	return &pagedConnector{pages: map[string]model.ListingPage{"": {Listings: listings}}}
}

func newRun(c model.Connector, s model.JobStore, opts Options) *EmployerRun {
	r := NewEmployerRun(testEmployer, c, s, opts, discardLogger())
	r.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return r
}

// --- Tests ---

func TestRun_CreatesThenUpdates(t *testing.T) {
	conn := onePage(
		listing("1", "Registered Nurse - ICU", "Akron, OH"),
		listing("2", "Charge Nurse - Med Surg", "Barberton, OH 44203"),
	)
	store := newMemStore()

	sum, err := newRun(conn, store, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Fetched != 2 || sum.Created != 2 || sum.Updated != 0 || sum.Failed != 0 || sum.Skipped != 0 {
		t.Fatalf("unexpected first summary: %+v", sum)
	}
	if sum.RunID == "" {
		t.Error("expected a run id")
	}

	// The classifier activates one job between runs.
	key := "1/1"
	j := store.jobs[key]
	j.IsActive = true
	store.jobs[key] = j

	sum, err = newRun(conn, store, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if sum.Created != 0 || sum.Updated != 2 {
		t.Fatalf("unexpected second summary: %+v", sum)
	}
	if len(store.jobs) != 2 {
		t.Errorf("expected 2 stored jobs, got %d", len(store.jobs))
	}
	if !store.jobs[key].IsActive {
		t.Error("re-ingest must keep is_active")
	}
	if got := store.jobs[key]; got.City != "Akron" || got.State != "OH" || got.EmployerID != 1 {
		t.Errorf("unexpected canonical job: %+v", got)
	}
}

func TestRun_SkipsInvalidAndDuplicates(t *testing.T) {
	conn := &pagedConnector{pages: map[string]model.ListingPage{
		"": {
			Listings: []model.RawListing{
				listing("1", "Registered Nurse", "Akron, OH"),
				listing("1", "Registered Nurse", "Akron, OH"),
				listing("2", "Registered Nurse", ""),
			},
			Filtered: 3,
		},
	}}

	sum, err := newRun(conn, newMemStore(), Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 3 filtered + 1 duplicate + 1 invalid.
	if sum.Skipped != 5 || sum.Created != 1 || sum.Fetched != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(sum.Errors) != 1 || sum.Errors[0].Stage != "validate" || sum.Errors[0].SourceID != "2" {
		t.Fatalf("expected one validation error, got %+v", sum.Errors)
	}
	found := false
	for _, reason := range sum.Errors[0].Reasons {
		if strings.Contains(reason, "city") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected itemized city error, got %v", sum.Errors[0].Reasons)
	}
}

func TestRun_PerRecordFailuresDoNotAbort(t *testing.T) {
	conn := onePage(
		listing("1", "Registered Nurse", "Akron, OH"),
		listing("2", "Registered Nurse", "Akron, OH"),
		listing("3", "Registered Nurse", "Akron, OH"),
		listing("4", "Registered Nurse", "Akron, OH"),
	)
	conn.detailErr = map[string]error{
		"2": &model.FetchError{Op: "detail", Timeout: true, Err: context.DeadlineExceeded},
		"3": &model.ExtractionError{Field: "detail", Err: errors.New("no sections")},
	}
	store := newMemStore()
	store.failOn = "4"

	sum, err := newRun(conn, store, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 1 ok; 2 fetch failure; 3 degraded, then rejected for a short description
	// or created; 4 persistence failure.
	if sum.Failed != 2 {
		t.Errorf("expected 2 failures, got %d (%+v)", sum.Failed, sum.Errors)
	}
	if sum.Degraded != 1 {
		t.Errorf("expected 1 degraded listing, got %d", sum.Degraded)
	}
	if sum.Fetched != 4 {
		t.Errorf("expected all 4 listings processed, got %d", sum.Fetched)
	}
	stages := map[string]bool{}
	for _, e := range sum.Errors {
		stages[e.Stage] = true
	}
	if !stages["detail"] || !stages["persist"] {
		t.Errorf("expected detail and persist errors, got %+v", sum.Errors)
	}
}

func TestRun_Pagination(t *testing.T) {
	conn := &pagedConnector{pages: map[string]model.ListingPage{
		"":   {Listings: []model.RawListing{listing("1", "RN", "Akron, OH")}, Next: "p2"},
		"p2": {Listings: []model.RawListing{listing("2", "RN", "Akron, OH")}, Next: "p3"},
		"p3": {Listings: []model.RawListing{listing("3", "RN", "Akron, OH")}},
	}}

	sum, err := newRun(conn, newMemStore(), Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Pages != 3 || sum.Created != 3 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestRun_Bounds(t *testing.T) {
	pages := map[string]model.ListingPage{
		"": {Listings: []model.RawListing{
			listing("1", "RN", "Akron, OH"),
			listing("2", "RN", "Akron, OH"),
		}, Next: "p2"},
		"p2": {Listings: []model.RawListing{listing("3", "RN", "Akron, OH")}},
	}

	t.Run("max pages", func(t *testing.T) {
		conn := &pagedConnector{pages: pages}
		sum, err := newRun(conn, newMemStore(), Options{MaxPages: 1}).Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if sum.Pages != 1 || sum.Created != 2 || conn.listCalls != 1 {
			t.Fatalf("unexpected summary: %+v calls=%d", sum, conn.listCalls)
		}
	})

	t.Run("max jobs", func(t *testing.T) {
		conn := &pagedConnector{pages: pages}
		sum, err := newRun(conn, newMemStore(), Options{MaxJobs: 1}).Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if sum.Fetched != 1 || sum.Created != 1 || len(conn.details) != 1 {
			t.Fatalf("unexpected summary: %+v", sum)
		}
	})
}

func TestRun_DryRunFillsSampleAndBreakdowns(t *testing.T) {
	conn := onePage(
		listing("1", "Registered Nurse - ICU", "Akron, OH"),
		listing("2", "Registered Nurse - ICU", "Akron, OH"),
		listing("3", "Registered Nurse - Emergency Department", "Canton, OH"),
	)
	store := newMemStore()

	sum, err := newRun(conn, store, Options{DryRun: true, SampleSize: 2}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.jobs) != 0 || len(store.employers) != 0 {
		t.Fatal("dry run must not persist")
	}
	if !sum.DryRun || sum.Valid != 3 || len(sum.Sample) != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.ByLocation["Akron, OH"] != 2 || sum.ByLocation["Canton, OH"] != 1 {
		t.Errorf("unexpected location breakdown: %v", sum.ByLocation)
	}
	if sum.BySpecialty["ICU"] != 2 {
		t.Errorf("unexpected specialty breakdown: %v", sum.BySpecialty)
	}
}

func TestRun_SourceUnreachableIsFatal(t *testing.T) {
	conn := &pagedConnector{pageErr: map[string]error{
		"": &model.FetchError{Op: "list", Err: errors.New("connection refused")},
	}}

	sum, err := newRun(conn, newMemStore(), Options{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if sum.Employer != "summa-health" {
		t.Error("a summary is still returned")
	}
}

func TestRun_LaterPageFailureKeepsEarlierWork(t *testing.T) {
	conn := &pagedConnector{
		pages: map[string]model.ListingPage{
			"": {Listings: []model.RawListing{listing("1", "RN", "Akron, OH")}, Next: "p2"},
		},
		pageErr: map[string]error{"p2": &model.HTTPError{StatusCode: 503}},
	}

	sum, err := newRun(conn, newMemStore(), Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Created != 1 || len(sum.Errors) != 1 || sum.Errors[0].Stage != "fetch" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestRun_CancelBetweenListingsReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := onePage(
		listing("1", "RN", "Akron, OH"),
		listing("2", "RN", "Akron, OH"),
		listing("3", "RN", "Akron, OH"),
	)
	calls := 0
	conn.onDetail = func() {
		calls++
		if calls == 2 {
			cancel()
		}
	}
	store := newMemStore()

	sum, err := newRun(conn, store, Options{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sum.Created != 1 {
		t.Errorf("expected 1 job persisted before cancellation, got %d", sum.Created)
	}
	if len(store.jobs) != 1 {
		t.Errorf("in-flight listing must be discarded, store has %d", len(store.jobs))
	}
}
