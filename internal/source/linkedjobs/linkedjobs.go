// Package linkedjobs extracts postings from the LinkedIn job-search
// RapidAPI endpoint. The endpoint paginates by offset in 100-item steps
// and is billed against a fixed monthly plan, so the runner trims the last
// call to whatever item budget remains.
package linkedjobs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"jobcorpus-engine/internal/domain"
	"jobcorpus-engine/internal/extract"
	"jobcorpus-engine/internal/fingerprint"
	"jobcorpus-engine/internal/quota"
	"jobcorpus-engine/internal/source/util"
)

const (
	host    = "linkedin-job-search-api.p.rapidapi.com"
	baseURL = "https://" + host + "/active-jb-7d"
)

// DefaultPlan mirrors the subscribed tier's ceilings.
var DefaultPlan = quota.Plan{
	MaxRequestsPerMonth: 5000,
	MaxJobsPerMonth:     10000,
	MaxJobsPerCall:      100,
}

type Client struct {
	apiKey    string
	http      *util.Client
	includeAI bool
	plan      quota.Plan
}

func New(apiKey string, hc *util.Client, includeAI bool) *Client {
	return &Client{apiKey: apiKey, http: hc, includeAI: includeAI, plan: DefaultPlan}
}

// OverridePlan swaps the plan ceilings, e.g. when the subscription tier
// changes. Zero fields fall back to the defaults.
func (c *Client) OverridePlan(p quota.Plan) {
	if p.MaxRequestsPerMonth > 0 {
		c.plan.MaxRequestsPerMonth = p.MaxRequestsPerMonth
	}
	if p.MaxJobsPerMonth > 0 {
		c.plan.MaxJobsPerMonth = p.MaxJobsPerMonth
	}
	if p.MaxJobsPerCall > 0 {
		c.plan.MaxJobsPerCall = p.MaxJobsPerCall
	}
}

func (c *Client) Name() string           { return "linkedjobs" }
func (c *Client) PageOrigin() int        { return 1 }
func (c *Client) Policy() extract.Policy { return extract.ResumeSameDay }
func (c *Client) Plan() quota.Plan       { return c.plan }

func (c *Client) FetchPage(ctx context.Context, query string, page int) ([]map[string]any, error) {
	return c.FetchPageLimit(ctx, query, page, c.plan.MaxJobsPerCall)
}

func (c *Client) FetchPageLimit(ctx context.Context, query string, page, limit int) ([]map[string]any, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > c.plan.MaxJobsPerCall {
		limit = c.plan.MaxJobsPerCall
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa((page-1)*c.plan.MaxJobsPerCall))
	params.Set("title_filter", `"`+query+`"`)
	params.Set("description_type", "text")
	if c.includeAI {
		params.Set("include_ai", "true")
	}

	headers := map[string]string{
		"x-rapidapi-host": host,
		"x-rapidapi-key":  c.apiKey,
	}
	var out []map[string]any
	if err := c.http.JSON(ctx, "GET", baseURL+"?"+params.Encode(), headers, nil, &out); err != nil {
		return nil, fmt.Errorf("linkedjobs search: %w", err)
	}
	return out, nil
}

func (c *Client) Map(raw map[string]any, career, runDate string) (domain.Record, bool) {
	title := util.Str(raw, "title")
	company := util.Str(raw, "organization")
	posted := util.Str(raw, "date_posted")
	location := flattenLocations(raw["locations_derived"])

	return domain.Record{
		JobID:           fingerprint.RawID(title, company, location, posted),
		Source:          c.Name(),
		JobTitle:        title,
		Company:         company,
		Location:        location,
		Description:     util.Str(raw, "description_text"),
		Skills:          util.StrList(raw, "ai_key_skills"),
		CareersRequired: career,
		DatePosted:      posted,
		URL:             util.Str(raw, "url"),
		ExtractionDate:  runDate,
	}, true
}

// flattenLocations joins the API's derived locations, each either a plain
// string or a {city, admin, country} object, into "city, admin, country"
// segments separated by "; ".
func flattenLocations(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	var out []string
	for _, it := range items {
		switch loc := it.(type) {
		case string:
			out = append(out, loc)
		case map[string]any:
			var parts []string
			for _, key := range []string{"city", "admin", "country"} {
				if s := util.Str(loc, key); s != "" {
					parts = append(parts, s)
				}
			}
			out = append(out, strings.Join(parts, ", "))
		default:
			out = append(out, "")
		}
	}
	return strings.Join(out, "; ")
}
