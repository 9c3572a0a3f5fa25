package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Location         string             `json:"location"`
	Department       string             `json:"department"`
	EmploymentType   string             `json:"employmentType"`
	DescriptionHTML  string             `json:"descriptionHtml"`
	DescriptionPlain string             `json:"descriptionPlain"`
	JobURL           string             `json:"jobUrl"`
	PublishedAt      string             `json:"publishedAt"`
	IsListed         bool               `json:"isListed"`
	Address          *ashbyAddress      `json:"address"`
	Compensation     *ashbyCompensation `json:"compensation"`
}

type ashbyAddress struct {
	PostalAddress struct {
		Locality   string `json:"addressLocality"`
		Region     string `json:"addressRegion"`
		PostalCode string `json:"postalCode"`
	} `json:"postalAddress"`
}

type ashbyCompensation struct {
	Summary string `json:"compensationTierSummary"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyAdapter reads the Ashby public job board API. Everything arrives on
// one page with descriptions inline.
type AshbyAdapter struct {
	boardToken string
	filter     model.JobFilter
	client     *http.Client
}

// NewAshbyAdapter creates a new adapter for an Ashby job board.
func NewAshbyAdapter(boardToken string, f model.JobFilter, client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{
		boardToken: boardToken,
		filter:     f,
		client:     client,
	}
}

// ListPage implements model.Connector.
func (a *AshbyAdapter) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	if cursor != "" {
		return model.ListingPage{}, nil
	}

	url := fmt.Sprintf("%s/%s?includeCompensation=true", ashbyBaseURL, a.boardToken)
	var ashbyResp ashbyResponse
	if err := doJSON(ctx, a.client, http.MethodGet, url, nil, &ashbyResp, "ashby list "+a.boardToken); err != nil {
		return model.ListingPage{}, err
	}

	listings := make([]model.RawListing, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed {
			continue
		}
		listings = append(listings, toAshbyListing(aj))
	}

	page := model.ListingPage{}
	page.Listings, page.Filtered = filter.Apply(a.filter, listings)
	return page, nil
}

// FetchDetail implements model.Connector.
func (a *AshbyAdapter) FetchDetail(_ context.Context, l model.RawListing) (model.RawListing, error) {
	return l, nil
}

func toAshbyListing(aj ashbyJob) model.RawListing {
	id := aj.ID
	if id == "" {
		id = aj.JobURL
	}

	location := aj.Location
	if aj.Address != nil {
		pa := aj.Address.PostalAddress
		if pa.Locality != "" && pa.Region != "" {
			location = pa.Locality + ", " + pa.Region + " " + pa.PostalCode
		}
	}

	description := aj.DescriptionHTML
	if description == "" {
		description = aj.DescriptionPlain
	}

	l := withDetail(model.RawListing{
		SourceID:       id,
		Title:          aj.Title,
		LocationText:   location,
		SourceURL:      aj.JobURL,
		EmploymentText: aj.EmploymentType,
		Department:     aj.Department,
	}, description)

	if aj.Compensation != nil {
		l.SalaryText = aj.Compensation.Summary
	}
	if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
		l.PostedAt = &t
	}
	return l
}
