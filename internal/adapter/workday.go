package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
)

const workdayPageSize = 20

// workdayListingResponse is the response from the Workday jobs listing endpoint.
// Total is only reliable on the first page.
type workdayListingResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayListing `json:"jobPostings"`
}

type workdayListing struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

// workdayListingRequest is the POST body for the Workday jobs listing endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// workdayDetailResponse is the response from the Workday job detail endpoint.
type workdayDetailResponse struct {
	JobPostingInfo workdayJobDetail `json:"jobPostingInfo"`
}

type workdayJobDetail struct {
	JobReqID       string `json:"jobReqId"`
	Title          string `json:"title"`
	Location       string `json:"location"`
	PostedOn       string `json:"postedOn"`
	StartDate      string `json:"startDate"`
	TimeType       string `json:"timeType"`
	ExternalURL    string `json:"externalUrl"`
	JobDescription string `json:"jobDescription"`
}

// WorkdayAdapter pages through a Workday career site's CXS API. Listings come
// from POST /jobs with an offset; descriptions from GET /{externalPath}.
type WorkdayAdapter struct {
	baseURL    string // e.g. https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/Careers
	searchText string
	filter     model.JobFilter
	client     *http.Client
}

// NewWorkdayAdapter creates a new adapter for a Workday career site.
// searchText narrows the server-side search ("registered nurse"); it may be
// empty.
func NewWorkdayAdapter(baseURL, searchText string, f model.JobFilter, client *http.Client) *WorkdayAdapter {
	return &WorkdayAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		searchText: searchText,
		filter:     f,
		client:     client,
	}
}

// ListPage implements model.Connector. The cursor is the listing offset.
func (a *WorkdayAdapter) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return model.ListingPage{}, fmt.Errorf("workday list for %s: bad cursor %q", a.baseURL, cursor)
		}
		offset = n
	}

	body := workdayListingRequest{
		AppliedFacets: map[string]any{},
		Limit:         workdayPageSize,
		Offset:        offset,
		SearchText:    a.searchText,
	}
	var listResp workdayListingResponse
	if err := doJSON(ctx, a.client, http.MethodPost, a.baseURL+"/jobs", body, &listResp, "workday list "+a.baseURL); err != nil {
		return model.ListingPage{}, err
	}

	now := time.Now().UTC()
	listings := make([]model.RawListing, 0, len(listResp.JobPostings))
	for _, wl := range listResp.JobPostings {
		if wl.ExternalPath == "" {
			continue
		}
		listings = append(listings, a.listingFrom(wl, now))
	}

	page := model.ListingPage{}
	page.Listings, page.Filtered = filter.Apply(a.filter, listings)

	next := offset + workdayPageSize
	if len(listResp.JobPostings) == workdayPageSize && (listResp.Total == 0 || next < listResp.Total) {
		page.Next = strconv.Itoa(next)
	}
	return page, nil
}

// listingFrom builds listing-level fields. Ambiguous "N Locations" text is
// kept as-is; the detail fetch replaces it.
func (a *WorkdayAdapter) listingFrom(wl workdayListing, now time.Time) model.RawListing {
	return model.RawListing{
		SourceID:     workdayReqID(wl),
		Title:        wl.Title,
		LocationText: wl.LocationsText,
		SourceURL:    a.publicURL(wl.ExternalPath),
		PostedAt:     parsePostedOn(wl.PostedOn, now),
	}
}

// FetchDetail implements model.Connector.
func (a *WorkdayAdapter) FetchDetail(ctx context.Context, l model.RawListing) (model.RawListing, error) {
	path := strings.TrimPrefix(externalPathFromURL(l.SourceURL), "/")
	if path == "" {
		return l, &model.ExtractionError{Field: "externalPath", Err: fmt.Errorf("no detail path for %s", l.SourceID)}
	}

	var detail workdayDetailResponse
	if err := doJSON(ctx, a.client, http.MethodGet, a.baseURL+"/"+path, nil, &detail, "workday detail "+l.SourceID); err != nil {
		return l, err
	}

	info := detail.JobPostingInfo
	l = withDetail(l, info.JobDescription)
	if info.Location != "" {
		l.LocationText = info.Location
	}
	if info.ExternalURL != "" {
		l.SourceURL = info.ExternalURL
	}
	l.EmploymentText = info.TimeType
	if info.StartDate != "" {
		if t, err := time.Parse("2006-01-02", info.StartDate); err == nil {
			l.PostedAt = &t
		}
	}
	return l, nil
}

// publicURL maps an API externalPath onto the candidate-facing site:
// https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/Careers + /job/X
// becomes https://acme.wd5.myworkdayjobs.com/Careers/job/X.
func (a *WorkdayAdapter) publicURL(externalPath string) string {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return a.baseURL + externalPath
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) >= 4 && segs[0] == "wday" && segs[1] == "cxs" {
		segs = segs[3:]
	}
	u.Path = "/" + strings.Join(segs, "/") + "/" + strings.TrimPrefix(externalPath, "/")
	return u.String()
}

// externalPathFromURL recovers "job/..." from a public or API job URL.
func externalPathFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if i := strings.Index(u.Path, "/job/"); i >= 0 {
		return u.Path[i+1:]
	}
	return ""
}

var workdayReqPattern = regexp.MustCompile(`_((?:[A-Za-z]+-?)?\d+(?:-\d+)?)$`)

// workdayReqID extracts the requisition id ("R12345") from the externalPath
// suffix so the id survives title edits. Falls back to the last path segment.
func workdayReqID(wl workdayListing) string {
	if m := workdayReqPattern.FindStringSubmatch(wl.ExternalPath); m != nil {
		return m[1]
	}
	p := strings.TrimRight(wl.ExternalPath, "/")
	return p[strings.LastIndex(p, "/")+1:]
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+)\+? Days? Ago$`)

// parsePostedOn converts a Workday relative date string to an approximate
// timestamp. "Posted 30+ Days Ago" is a floor, not a date, and yields nil.
func parsePostedOn(postedOn string, now time.Time) *time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	if strings.Contains(postedOn, "+") {
		return nil
	}
	if m := daysAgoRegex.FindStringSubmatch(postedOn); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			t := today.AddDate(0, 0, -n)
			return &t
		}
	}
	return nil
}
