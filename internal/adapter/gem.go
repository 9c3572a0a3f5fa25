package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
)

const gemBaseURL = "https://api.gem.com/job_board/v0"

type gemJob struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Location       gemLocation `json:"location"`
	AbsoluteURL    string      `json:"absolute_url"`
	FirstPublished string      `json:"first_published_at"`
	Content        string      `json:"content"`
	ContentPlain   string      `json:"content_plain"`
	Employment     string      `json:"employment_type"`
}

type gemLocation struct {
	Name string `json:"name"`
}

// GemAdapter reads the Gem public job board API: one page, descriptions
// inline.
type GemAdapter struct {
	boardToken string
	filter     model.JobFilter
	client     *http.Client
}

// NewGemAdapter creates a new adapter for a Gem job board.
func NewGemAdapter(boardToken string, f model.JobFilter, client *http.Client) *GemAdapter {
	return &GemAdapter{
		boardToken: boardToken,
		filter:     f,
		client:     client,
	}
}

// ListPage implements model.Connector.
func (a *GemAdapter) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	if cursor != "" {
		return model.ListingPage{}, nil
	}

	url := fmt.Sprintf("%s/%s/job_posts/", gemBaseURL, a.boardToken)
	var gemJobs []gemJob
	if err := doJSON(ctx, a.client, http.MethodGet, url, nil, &gemJobs, "gem list "+a.boardToken); err != nil {
		return model.ListingPage{}, err
	}

	listings := make([]model.RawListing, 0, len(gemJobs))
	for _, gj := range gemJobs {
		content := gj.Content
		if content == "" {
			content = gj.ContentPlain
		}
		l := withDetail(model.RawListing{
			SourceID:       gj.ID,
			Title:          gj.Title,
			LocationText:   gj.Location.Name,
			SourceURL:      gj.AbsoluteURL,
			EmploymentText: gj.Employment,
		}, content)
		if t, err := time.Parse(time.RFC3339, gj.FirstPublished); err == nil {
			l.PostedAt = &t
		}
		listings = append(listings, l)
	}

	page := model.ListingPage{}
	page.Listings, page.Filtered = filter.Apply(a.filter, listings)
	return page, nil
}

// FetchDetail implements model.Connector.
func (a *GemAdapter) FetchDetail(_ context.Context, l model.RawListing) (model.RawListing, error) {
	return l, nil
}
