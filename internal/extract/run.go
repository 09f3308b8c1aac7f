// Package extract orchestrates one source's extraction runs: it consults
// the progress log to resume or restart, gates paged vendor calls on the
// monthly quota, writes the day's corpus files and records the outcome.
package extract

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"jobcorpus-engine/internal/catalog"
	"jobcorpus-engine/internal/corpus"
	"jobcorpus-engine/internal/domain"
	"jobcorpus-engine/internal/extlog"
	"jobcorpus-engine/internal/quota"
)

// Policy says how a source treats a query that already ran today.
type Policy int

const (
	// ResumeSameDay continues from last_page_extracted+1 on a same-day
	// re-run and restarts from the vendor's page origin on a new day.
	ResumeSameDay Policy = iota
	// SkipSameDay skips a query entirely once it ran today.
	SkipSameDay
)

// Source is one vendor: a paged fetcher plus its raw-to-canonical mapping
// rules. Page numbering follows the vendor's own convention (PageOrigin).
type Source interface {
	Name() string
	PageOrigin() int
	Policy() Policy
	FetchPage(ctx context.Context, query string, page int) ([]map[string]any, error)
	// Map converts one raw record; false means structurally unparseable
	// and the record is dropped with a warning, never a failed run.
	Map(raw map[string]any, career, runDate string) (domain.Record, bool)
}

// QuotaSource is a Source billed against a fixed monthly plan.
type QuotaSource interface {
	Source
	Plan() quota.Plan
}

// LimitedSource can cap one call's item count, letting the runner trim the
// final call to the jobs remaining in the plan.
type LimitedSource interface {
	FetchPageLimit(ctx context.Context, query string, page, limit int) ([]map[string]any, error)
}

// Runner drives extraction for any number of sources against one data
// tree. A (source, career) pair must not run concurrently; distinct
// sources own disjoint subtrees and may.
type Runner struct {
	Layout  corpus.Layout
	Logs    *extlog.Store
	Catalog *catalog.DB // optional
	Restart bool        // operator override: re-run even if done today
	Now     func() time.Time
}

func (r *Runner) today() string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().Format("2006-01-02")
}

// StartPage is the resume decision: same calendar day continues after the
// last extracted page, anything else restarts at the vendor's origin.
func StartPage(e *extlog.Entry, today string, origin int) int {
	if e == nil || e.LastExtractionDate != today {
		return origin
	}
	return e.LastPageExtracted + 1
}

// RunSource extracts every (career, query) for one source, then runs the
// per-career consolidation: daily merge, copy into the global tree, and
// the accumulated corpus. Careers run in sorted order for reproducibility.
func (r *Runner) RunSource(ctx context.Context, src Source, careers map[string][]string) error {
	today := r.today()

	lg, err := r.Logs.Load(src.Name())
	if err != nil {
		return err
	}
	if src.Policy() == SkipSameDay && !r.Restart && anyDoneToday(lg, careers, today) {
		log.Printf("[%s] already extracted today (%s); use -restart to repeat", src.Name(), today)
		return nil
	}

	names := make([]string, 0, len(careers))
	for c := range careers {
		names = append(names, c)
	}
	slices.Sort(names)

	for _, career := range names {
		log.Printf("[%s] career %q", src.Name(), career)
		for _, query := range careers[career] {
			if _, err := r.runQuery(ctx, src, career, query, today); err != nil {
				log.Printf("[%s] query %q failed: %v", src.Name(), query, err)
			}
		}
		if _, _, err := corpus.MergeCareerDay(r.Layout, src.Name(), career, today); err != nil {
			log.Printf("[%s] daily merge for %q failed: %v", src.Name(), career, err)
			continue
		}
		if err := corpus.CopyDailyToGlobal(r.Layout, src.Name(), career, today); err != nil {
			log.Printf("[%s] global copy for %q failed: %v", src.Name(), career, err)
		}
		if _, _, err := corpus.AccumulateCareer(r.Layout, src.Name(), career); err != nil {
			log.Printf("[%s] accumulate for %q failed: %v", src.Name(), career, err)
		}
	}
	return nil
}

func (r *Runner) runQuery(ctx context.Context, src Source, career, query, today string) (int, error) {
	// re-read per query: state is durable, runs are short-lived
	lg, err := r.Logs.Load(src.Name())
	if err != nil {
		return 0, err
	}
	entry := lg[query].Flat

	if entry != nil && entry.LastExtractionDate == today &&
		src.Policy() == SkipSameDay && !r.Restart {
		log.Printf("[%s] %q already extracted today, skipping", src.Name(), query)
		return 0, nil
	}

	start := StartPage(entry, today, src.PageOrigin())
	if r.Restart {
		start = src.PageOrigin()
	}
	if start != src.PageOrigin() {
		log.Printf("[%s] resuming %q from page %d (same day %s)", src.Name(), query, start, today)
	}

	var (
		led   *quota.Ledger
		plan  quota.Plan
		month string
	)
	if qs, ok := src.(QuotaSource); ok {
		plan = qs.Plan()
		month = quota.MonthKey(time.Now())
		if r.Now != nil {
			month = quota.MonthKey(r.Now())
		}
		led, err = quota.Open(r.Layout.SourceDir(src.Name()))
		if err != nil {
			return 0, err
		}
		if led.Exhausted(month, plan) {
			u := led.Usage(month)
			log.Printf("[%s] monthly quota exhausted for %s (requests=%d jobs=%d), not extracting",
				src.Name(), month, u.RequestsUsed, u.JobsUsed)
			return 0, nil
		}
	}

	var records []domain.Record
	lastPage := start
	fetched := false

	for page := start; ; page++ {
		if led != nil && led.Exhausted(month, plan) {
			log.Printf("[%s] stopping %q: monthly quota reached", src.Name(), query)
			break
		}

		limit := 0
		var raws []map[string]any
		if led != nil {
			limit = plan.MaxJobsPerCall
			if rem := led.RemainingJobs(month, plan); rem < limit {
				limit = rem
			}
		}
		if ls, ok := src.(LimitedSource); ok && limit > 0 {
			raws, err = ls.FetchPageLimit(ctx, query, page, limit)
		} else {
			raws, err = src.FetchPage(ctx, query, page)
		}
		if err != nil {
			// keep the pages already gathered this run
			log.Printf("[%s] page %d for %q: %v", src.Name(), page, query, err)
			break
		}
		if led != nil {
			if cerr := led.Charge(month, 1, len(raws)); cerr != nil {
				log.Printf("[%s] quota charge failed: %v", src.Name(), cerr)
			}
		}
		if len(raws) == 0 {
			break
		}

		for _, raw := range raws {
			rec, ok := src.Map(raw, career, today)
			if !ok {
				log.Printf("[%s] dropping unmappable record (query=%q page=%d)", src.Name(), query, page)
				continue
			}
			records = append(records, rec)
		}
		log.Printf("[%s] page %d: %d offers", src.Name(), page, len(raws))
		lastPage = page
		fetched = true

		// a short page means the vendor ran out of results
		if limit > 0 && len(raws) < limit {
			break
		}
	}

	if !fetched || len(records) == 0 {
		log.Printf("[%s] no new offers for %q", src.Name(), query)
		return 0, nil
	}

	path := r.Layout.DailyFile(src.Name(), career, query, today)
	rows, err := corpus.WriteDaily(path, records)
	if err != nil {
		return 0, fmt.Errorf("write daily corpus: %w", err)
	}
	log.Printf("[%s] updated %s (%d rows total)", src.Name(), path, rows)

	if err := r.Logs.Record(src.Name(), query, today, rows, lastPage, nil); err != nil {
		return 0, fmt.Errorf("record extraction log: %w", err)
	}

	if r.Catalog != nil {
		run := catalog.Run{
			Source:    src.Name(),
			Career:    career,
			Query:     query,
			RunDate:   today,
			StartPage: start,
			LastPage:  lastPage,
			RowsAdded: len(records),
		}
		if err := r.Catalog.RecordRun(ctx, run); err != nil {
			log.Printf("[catalog] record run failed: %v", err)
		}
	}
	return len(records), nil
}

// anyDoneToday reports whether any configured query already has a log
// entry for today, in either log shape.
func anyDoneToday(lg extlog.Log, careers map[string][]string, today string) bool {
	for _, terms := range careers {
		for _, term := range terms {
			q, ok := lg[term]
			if !ok {
				continue
			}
			if q.Flat != nil && q.Flat.LastExtractionDate == today {
				return true
			}
			for _, e := range q.ByLocation {
				if e.LastExtractionDate == today {
					return true
				}
			}
		}
	}
	return false
}
