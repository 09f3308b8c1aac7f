// Package board scrapes a job-board results page directly from HTML,
// standing in for the browser-driven extraction. Pages are 0-based and map
// to a 10-result offset in the query string. Cards missing their link
// anchor are structurally unparseable and dropped.
package board

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobcorpus-engine/internal/domain"
	"jobcorpus-engine/internal/extract"
	"jobcorpus-engine/internal/fingerprint"
	"jobcorpus-engine/internal/source/util"
)

const resultsPerPage = 10

type Scraper struct {
	baseURL  string // e.g. https://ec.indeed.com
	location string // board-level location filter, e.g. Ecuador
	http     *util.Client
}

func New(baseURL, location string, hc *util.Client) *Scraper {
	return &Scraper{
		baseURL:  strings.TrimRight(baseURL, "/"),
		location: location,
		http:     hc,
	}
}

func (s *Scraper) Name() string           { return "board" }
func (s *Scraper) PageOrigin() int        { return 0 }
func (s *Scraper) Policy() extract.Policy { return extract.ResumeSameDay }

func (s *Scraper) FetchPage(ctx context.Context, query string, page int) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("l", s.location)
	params.Set("start", strconv.Itoa(page*resultsPerPage))
	pageURL := s.baseURL + "/jobs?" + params.Encode()

	resp, err := s.http.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("board page %d: %w", page, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("board parse page %d: %w", page, err)
	}

	var raws []map[string]any
	doc.Find("div.job_seen_beacon").Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Find("a[href]").First().Attr("href")
		raws = append(raws, map[string]any{
			"title":    util.CleanText(card.Find("h2.jobTitle span").First().Text()),
			"company":  util.CleanText(card.Find("span.companyName").First().Text()),
			"location": util.CleanText(card.Find("div.companyLocation").First().Text()),
			"snippet":  util.CleanText(card.Find("div.job-snippet").First().Text()),
			"href":     strings.TrimSpace(href),
		})
	})
	return raws, nil
}

func (s *Scraper) Map(raw map[string]any, career, runDate string) (domain.Record, bool) {
	href := util.Str(raw, "href")
	if href == "" {
		// card without a link anchor: nothing to identify the posting by
		return domain.Record{}, false
	}

	title := util.Str(raw, "title")
	company := util.Str(raw, "company")
	location := util.Str(raw, "location")

	jobURL := href
	if strings.HasPrefix(href, "/") {
		jobURL = s.baseURL + href
	}

	return domain.Record{
		JobID:           fingerprint.RawID(title, company, location, runDate),
		Source:          s.Name(),
		JobTitle:        title,
		Company:         company,
		Location:        location,
		Description:     util.Str(raw, "snippet"),
		CareersRequired: career,
		DatePosted:      runDate, // the results page carries no posting date
		URL:             jobURL,
		ExtractionDate:  runDate,
	}, true
}
