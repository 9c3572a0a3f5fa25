package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
	FirstPub    string             `json:"first_published"`
	Metadata    []greenhouseMeta   `json:"metadata"`
	Departments []greenhouseNamed  `json:"departments"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseNamed struct {
	Name string `json:"name"`
}

// greenhouseMeta is a custom field; boards commonly put employment type here.
type greenhouseMeta struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// greenhouseDetail is the single-job response, with pay transparency enabled.
type greenhouseDetail struct {
	ID             int64                `json:"id"`
	Content        string               `json:"content"`
	AbsoluteURL    string               `json:"absolute_url"`
	PayInputRanges []greenhousePayRange `json:"pay_input_ranges"`
}

type greenhousePayRange struct {
	MinCents     int64  `json:"min_cents"`
	MaxCents     int64  `json:"max_cents"`
	CurrencyType string `json:"currency_type"`
	Title        string `json:"title"`
}

// GreenhouseAdapter lists jobs from the Greenhouse public boards API. The
// board returns every job on one page; descriptions come from the detail
// endpoint.
type GreenhouseAdapter struct {
	boardToken string
	filter     model.JobFilter
	client     *http.Client
}

// NewGreenhouseAdapter creates a new adapter for a Greenhouse board. A nil
// filter keeps every listing.
func NewGreenhouseAdapter(boardToken string, f model.JobFilter, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		boardToken: boardToken,
		filter:     f,
		client:     client,
	}
}

// ListPage implements model.Connector. Greenhouse has no pagination, so any
// non-empty cursor yields an empty page.
func (a *GreenhouseAdapter) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	if cursor != "" {
		return model.ListingPage{}, nil
	}

	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, a.boardToken)
	var ghResp greenhouseResponse
	if err := doJSON(ctx, a.client, http.MethodGet, url, nil, &ghResp, "greenhouse list "+a.boardToken); err != nil {
		return model.ListingPage{}, err
	}

	listings := make([]model.RawListing, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		l := model.RawListing{
			SourceID:       strconv.FormatInt(gj.ID, 10),
			Title:          gj.Title,
			LocationText:   gj.Location.Name,
			SourceURL:      gj.AbsoluteURL,
			EmploymentText: greenhouseEmployment(gj.Metadata),
		}
		if len(gj.Departments) > 0 {
			l.Department = gj.Departments[0].Name
		}
		published := gj.FirstPub
		if published == "" {
			published = gj.UpdatedAt
		}
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			l.PostedAt = &t
		}
		listings = append(listings, l)
	}

	kept, dropped := filter.Apply(a.filter, listings)
	return model.ListingPage{Listings: kept, Filtered: dropped}, nil
}

// FetchDetail implements model.Connector. It reads the description HTML and
// pay ranges from the single-job endpoint.
func (a *GreenhouseAdapter) FetchDetail(ctx context.Context, l model.RawListing) (model.RawListing, error) {
	url := fmt.Sprintf("%s/%s/jobs/%s?pay_transparency=true", greenhouseBaseURL, a.boardToken, l.SourceID)
	var detail greenhouseDetail
	if err := doJSON(ctx, a.client, http.MethodGet, url, nil, &detail, "greenhouse detail "+l.SourceID); err != nil {
		return l, err
	}

	l = withDetail(l, detail.Content)
	if detail.AbsoluteURL != "" {
		l.SourceURL = detail.AbsoluteURL
	}
	if len(detail.PayInputRanges) > 0 {
		l.SalaryText = formatPayRange(detail.PayInputRanges[0])
	}
	return l, nil
}

func greenhouseEmployment(meta []greenhouseMeta) string {
	for _, m := range meta {
		name := strings.ToLower(m.Name)
		if !strings.Contains(name, "employment") && !strings.Contains(name, "job type") && !strings.Contains(name, "status") {
			continue
		}
		if s, ok := m.Value.(string); ok {
			return s
		}
	}
	return ""
}

// formatPayRange renders cents as a dollar range the salary extractor reads,
// e.g. "$50000 - $75000 NYC Salary Range".
func formatPayRange(p greenhousePayRange) string {
	dollars := func(c int64) string {
		return strconv.FormatFloat(float64(c)/100, 'f', -1, 64)
	}
	s := "$" + dollars(p.MinCents)
	if p.MaxCents > p.MinCents {
		s += " - $" + dollars(p.MaxCents)
	}
	if p.Title != "" {
		s += " " + p.Title
	}
	return s
}
