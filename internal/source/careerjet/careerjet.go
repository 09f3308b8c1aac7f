// Package careerjet extracts postings from the Careerjet public API,
// paged from 1, scoped to a country code.
package careerjet

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"jobcorpus-engine/internal/domain"
	"jobcorpus-engine/internal/extract"
	"jobcorpus-engine/internal/fingerprint"
	"jobcorpus-engine/internal/source/util"
)

const baseURL = "https://api.careerjet.com/jobs"

type Client struct {
	country string
	http    *util.Client
}

func New(countryCode string, hc *util.Client) *Client {
	if countryCode == "" {
		countryCode = "ec"
	}
	return &Client{country: strings.ToUpper(countryCode), http: hc}
}

func (c *Client) Name() string           { return "careerjet" }
func (c *Client) PageOrigin() int        { return 1 }
func (c *Client) Policy() extract.Policy { return extract.SkipSameDay }

func (c *Client) FetchPage(ctx context.Context, query string, page int) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("keywords", query)
	params.Set("location", c.country)
	params.Set("page", strconv.Itoa(page))

	var out struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := c.http.JSON(ctx, "GET", baseURL+"?"+params.Encode(), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("careerjet search: %w", err)
	}
	return out.Jobs, nil
}

func (c *Client) Map(raw map[string]any, career, runDate string) (domain.Record, bool) {
	title := util.Str(raw, "title")
	company := util.Str(raw, "company")
	location := util.Str(raw, "locations")
	posted := util.Str(raw, "date")

	return domain.Record{
		JobID:           fingerprint.RawID(title, company, location, posted),
		Source:          c.Name(),
		JobTitle:        title,
		Company:         company,
		Location:        location,
		Description:     util.Str(raw, "description"),
		CareersRequired: career,
		DatePosted:      posted,
		URL:             util.Str(raw, "url"),
		ExtractionDate:  runDate,
	}, true
}
