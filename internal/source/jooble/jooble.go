// Package jooble extracts postings from the Jooble search API: a paged
// POST endpoint keyed by API token, pages starting at 1.
package jooble

import (
	"context"
	"fmt"

	"jobcorpus-engine/internal/domain"
	"jobcorpus-engine/internal/extract"
	"jobcorpus-engine/internal/fingerprint"
	"jobcorpus-engine/internal/source/util"
)

const baseURL = "https://jooble.org/api/"

type Client struct {
	apiKey string
	http   *util.Client
}

func New(apiKey string, hc *util.Client) *Client {
	return &Client{apiKey: apiKey, http: hc}
}

func (c *Client) Name() string           { return "jooble" }
func (c *Client) PageOrigin() int        { return 1 }
func (c *Client) Policy() extract.Policy { return extract.ResumeSameDay }

func (c *Client) FetchPage(ctx context.Context, query string, page int) ([]map[string]any, error) {
	body := map[string]any{"keywords": query, "page": page}
	var out struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := c.http.JSON(ctx, "POST", baseURL+c.apiKey, nil, body, &out); err != nil {
		return nil, fmt.Errorf("jooble search: %w", err)
	}
	return out.Jobs, nil
}

func (c *Client) Map(raw map[string]any, career, runDate string) (domain.Record, bool) {
	title := util.Str(raw, "title")
	company := util.Str(raw, "company")
	location := util.Str(raw, "location")
	updated := util.Str(raw, "updated")

	return domain.Record{
		JobID:           fingerprint.RawID(title, company, location, updated),
		Source:          c.Name(),
		JobTitle:        title,
		Company:         company,
		Location:        location,
		Description:     util.Str(raw, "snippet"),
		CareersRequired: career,
		DatePosted:      updated,
		URL:             util.Str(raw, "link"),
		ExtractionDate:  runDate,
	}, true
}
