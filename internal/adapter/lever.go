package adapter

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
)

const (
	leverBaseURL  = "https://api.lever.co/v0/postings"
	leverPageSize = 100
)

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverList is one titled block ("Requirements", "Responsibilities") whose
// content is a run of <li> elements.
type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

type leverSalary struct {
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	Description string          `json:"description"`
	Lists       []leverList     `json:"lists"`
	Additional  string          `json:"additional"`
	Categories  leverCategories `json:"categories"`
	CreatedAt   int64           `json:"createdAt"`
	HostedURL   string          `json:"hostedUrl"`
	SalaryRange *leverSalary    `json:"salaryRange"`
}

// LeverAdapter pages through the Lever public postings API with skip/limit.
// Descriptions are inline, so FetchDetail is a no-op.
type LeverAdapter struct {
	companySlug string
	filter      model.JobFilter
	client      *http.Client
	pageSize    int
}

// NewLeverAdapter creates a new adapter for a Lever board.
func NewLeverAdapter(companySlug string, f model.JobFilter, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		companySlug: companySlug,
		filter:      f,
		client:      client,
		pageSize:    leverPageSize,
	}
}

// ListPage implements model.Connector. The cursor is the skip offset.
func (a *LeverAdapter) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	skip := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return model.ListingPage{}, fmt.Errorf("lever list for %s: bad cursor %q", a.companySlug, cursor)
		}
		skip = n
	}

	url := fmt.Sprintf("%s/%s?mode=json&skip=%d&limit=%d", leverBaseURL, a.companySlug, skip, a.pageSize)
	var leverJobs []leverJob
	if err := doJSON(ctx, a.client, http.MethodGet, url, nil, &leverJobs, "lever list "+a.companySlug); err != nil {
		return model.ListingPage{}, err
	}

	listings := make([]model.RawListing, 0, len(leverJobs))
	for _, lj := range leverJobs {
		listings = append(listings, a.toListing(lj))
	}

	page := model.ListingPage{}
	page.Listings, page.Filtered = filter.Apply(a.filter, listings)
	if len(leverJobs) == a.pageSize {
		page.Next = strconv.Itoa(skip + a.pageSize)
	}
	return page, nil
}

// FetchDetail implements model.Connector.
func (a *LeverAdapter) FetchDetail(_ context.Context, l model.RawListing) (model.RawListing, error) {
	return l, nil
}

func (a *LeverAdapter) toListing(lj leverJob) model.RawListing {
	// Prefer the primary location; allLocations is only a fallback.
	location := lj.Categories.Location
	if location == "" && len(lj.Categories.AllLocations) > 0 {
		location = lj.Categories.AllLocations[0]
	}

	var sb strings.Builder
	sb.WriteString(lj.Description)
	for _, list := range lj.Lists {
		fmt.Fprintf(&sb, "<h3>%s</h3><ul>%s</ul>", html.EscapeString(list.Text), list.Content)
	}
	sb.WriteString(lj.Additional)

	l := withDetail(model.RawListing{
		SourceID:       lj.ID,
		Title:          lj.Text,
		LocationText:   location,
		SourceURL:      lj.HostedURL,
		EmploymentText: lj.Categories.Commitment,
		Department:     lj.Categories.Department,
	}, sb.String())

	if lj.CreatedAt > 0 {
		t := time.UnixMilli(lj.CreatedAt).UTC()
		l.PostedAt = &t
	}
	if s := lj.SalaryRange; s != nil && s.Min > 0 {
		l.SalaryText = fmt.Sprintf("$%s - $%s %s", trimFloat(s.Min), trimFloat(s.Max), leverInterval(s.Interval))
	}
	return l
}

// leverInterval maps "per-hour-wage" style intervals to phrases the salary
// extractor understands.
func leverInterval(interval string) string {
	switch {
	case strings.Contains(interval, "hour"):
		return "per hour"
	case strings.Contains(interval, "week"):
		return "per week"
	case strings.Contains(interval, "year"):
		return "per year"
	default:
		return ""
	}
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
