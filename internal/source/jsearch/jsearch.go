// Package jsearch extracts postings from the JSearch RapidAPI endpoint.
// Pages start at 1; a query that already ran today is skipped rather than
// resumed (the API has no stable intra-day pagination).
package jsearch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"jobcorpus-engine/internal/domain"
	"jobcorpus-engine/internal/extract"
	"jobcorpus-engine/internal/fingerprint"
	"jobcorpus-engine/internal/source/util"
)

const (
	host    = "jsearch.p.rapidapi.com"
	baseURL = "https://" + host + "/search"
)

type Client struct {
	apiKey string
	http   *util.Client
}

func New(apiKey string, hc *util.Client) *Client {
	return &Client{apiKey: apiKey, http: hc}
}

func (c *Client) Name() string           { return "jsearch" }
func (c *Client) PageOrigin() int        { return 1 }
func (c *Client) Policy() extract.Policy { return extract.SkipSameDay }

func (c *Client) FetchPage(ctx context.Context, query string, page int) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	headers := map[string]string{
		"x-rapidapi-host": host,
		"x-rapidapi-key":  c.apiKey,
	}
	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.http.JSON(ctx, "GET", baseURL+"?"+params.Encode(), headers, nil, &out); err != nil {
		return nil, fmt.Errorf("jsearch search: %w", err)
	}
	return out.Data, nil
}

func (c *Client) Map(raw map[string]any, career, runDate string) (domain.Record, bool) {
	title := util.Str(raw, "job_title")
	company := util.Str(raw, "employer_name")
	city := util.Str(raw, "job_city")
	country := util.Str(raw, "job_country")
	posted := util.Str(raw, "job_posted_at_datetime_utc")

	var skills []string
	if hl, ok := raw["job_highlights"].(map[string]any); ok {
		skills = append(skills, util.StrList(hl, "Qualifications")...)
		skills = append(skills, util.StrList(hl, "Responsibilities")...)
	}

	return domain.Record{
		JobID:           fingerprint.RawID(title, company, city, posted),
		Source:          c.Name(),
		JobTitle:        title,
		Company:         company,
		Location:        city + ", " + country,
		Description:     util.Str(raw, "job_description"),
		Skills:          skills,
		CareersRequired: career,
		DatePosted:      posted,
		URL:             util.Str(raw, "job_apply_link"),
		ExtractionDate:  runDate,
	}, true
}
