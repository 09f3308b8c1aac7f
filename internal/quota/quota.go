// Package quota tracks monthly usage against a vendor's fixed plan limits.
// Counters only grow within a month; a new month gets a fresh entry and old
// months stay as a historical record. Every charge persists immediately so
// an interrupted run loses at most the in-flight call's accounting.
package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const fileName = ".quota.json"

// Plan is a vendor's monthly ceiling. Zero values mean "no limit on that
// axis".
type Plan struct {
	MaxRequestsPerMonth int
	MaxJobsPerMonth     int
	MaxJobsPerCall      int
}

// Usage is the persisted counter pair for one calendar month.
type Usage struct {
	RequestsUsed int `json:"requests_used"`
	JobsUsed     int `json:"jobs_used"`
}

// Ledger is the per-source quota file. Not safe for concurrent use within a
// process; cross-process access is serialized with a file lock.
type Ledger struct {
	path   string
	months map[string]Usage
}

// MonthKey formats the calendar-month key, e.g. "2025-08".
func MonthKey(t time.Time) string { return t.Format("2006-01") }

// Open loads the ledger under dir, creating an empty one when the file does
// not exist yet.
func Open(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	l := &Ledger{path: filepath.Join(dir, fileName), months: map[string]Usage{}}

	b, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read quota ledger: %w", err)
	}
	if err := json.Unmarshal(b, &l.months); err != nil {
		return nil, fmt.Errorf("decode quota ledger %s: %w", l.path, err)
	}
	return l, nil
}

// Usage returns the counters for a month, zero-initialized when absent.
func (l *Ledger) Usage(month string) Usage { return l.months[month] }

func (l *Ledger) RemainingRequests(month string, p Plan) int {
	return remaining(p.MaxRequestsPerMonth, l.months[month].RequestsUsed)
}

func (l *Ledger) RemainingJobs(month string, p Plan) int {
	return remaining(p.MaxJobsPerMonth, l.months[month].JobsUsed)
}

// Exhausted reports whether either axis of the plan has no room left.
func (l *Ledger) Exhausted(month string, p Plan) bool {
	return l.RemainingRequests(month, p) <= 0 || l.RemainingJobs(month, p) <= 0
}

// Charge adds the deltas to the month's counters and persists at once. The
// file lock spans the read-modify-write cycle, so charges from another
// process between Open and now are kept, not overwritten.
func (l *Ledger) Charge(month string, requests, jobs int) error {
	fl := flock.New(l.path + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lock quota ledger: %w", err)
	}
	defer fl.Unlock()

	if b, err := os.ReadFile(l.path); err == nil {
		fresh := map[string]Usage{}
		if jerr := json.Unmarshal(b, &fresh); jerr == nil {
			l.months = fresh
		}
	}

	u := l.months[month]
	u.RequestsUsed += requests
	u.JobsUsed += jobs
	l.months[month] = u

	b, err := json.MarshalIndent(l.months, "", "  ")
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}

func remaining(ceiling, used int) int {
	if ceiling <= 0 {
		return int(^uint(0) >> 1)
	}
	if used >= ceiling {
		return 0
	}
	return ceiling - used
}
