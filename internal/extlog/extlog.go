// Package extlog persists per-source extraction progress: one JSON file per
// source mapping query terms to what was last extracted and when. Two file
// shapes exist in the wild and both must load: a flat entry per query, or a
// map of location to entry under the query. The log stores facts only; the
// resume-or-restart decision lives in the extract orchestration.
package extlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Entry records progress for one query (or one location under a query).
type Entry struct {
	LastExtractionDate   string `json:"last_extraction_date"`
	LastPageExtracted    int    `json:"last_page_extracted"`
	TotalOffersExtracted int    `json:"total_offers_extracted"`
}

// UnmarshalJSON also accepts the historical "total_extracted" key used by
// nested per-location entries.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw struct {
		LastExtractionDate   string `json:"last_extraction_date"`
		LastPageExtracted    int    `json:"last_page_extracted"`
		TotalOffersExtracted *int   `json:"total_offers_extracted"`
		TotalExtracted       *int   `json:"total_extracted"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.LastExtractionDate = raw.LastExtractionDate
	e.LastPageExtracted = raw.LastPageExtracted
	switch {
	case raw.TotalOffersExtracted != nil:
		e.TotalOffersExtracted = *raw.TotalOffersExtracted
	case raw.TotalExtracted != nil:
		e.TotalOffersExtracted = *raw.TotalExtracted
	}
	return nil
}

// QueryLog is the tagged variant for one query: exactly one of Flat or
// ByLocation is set.
type QueryLog struct {
	Flat       *Entry
	ByLocation map[string]Entry
}

func (q *QueryLog) UnmarshalJSON(b []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if _, flat := probe["last_extraction_date"]; flat {
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return err
		}
		q.Flat = &e
		q.ByLocation = nil
		return nil
	}
	var byLoc map[string]Entry
	if err := json.Unmarshal(b, &byLoc); err != nil {
		return err
	}
	q.Flat = nil
	q.ByLocation = byLoc
	return nil
}

func (q QueryLog) MarshalJSON() ([]byte, error) {
	if q.Flat != nil {
		return json.Marshal(q.Flat)
	}
	return json.Marshal(q.ByLocation)
}

// Log maps query term to its progress.
type Log map[string]QueryLog

// Store reads and writes per-source logs under one directory.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store { return &Store{Dir: dir} }

func (s *Store) path(source string) string {
	return filepath.Join(s.Dir, source+"_log.json")
}

// Load returns the log for a source, or an empty log when none exists yet.
// An existing but unreadable file is an error.
func (s *Store) Load(source string) (Log, error) {
	b, err := os.ReadFile(s.path(source))
	if errors.Is(err, os.ErrNotExist) {
		return Log{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read extraction log for %s: %w", source, err)
	}
	var lg Log
	if err := json.Unmarshal(b, &lg); err != nil {
		return nil, fmt.Errorf("decode extraction log for %s: %w", source, err)
	}
	return lg, nil
}

// Record merges one run's outcome into the source's log and rewrites the
// whole file atomically. With locations nil the query's flat entry is
// replaced; otherwise the per-location entries are merged under the query,
// leaving other locations untouched. The read-modify-write cycle holds a
// cross-process lock.
func (s *Store) Record(source, query, date string, total, lastPage int, locations map[string]Entry) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	fl := flock.New(s.path(source) + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lock extraction log for %s: %w", source, err)
	}
	defer fl.Unlock()

	lg, err := s.Load(source)
	if err != nil {
		return err
	}

	if locations != nil {
		merged := lg[query].ByLocation
		if merged == nil {
			merged = map[string]Entry{}
		}
		for loc, e := range locations {
			e.LastExtractionDate = date
			merged[loc] = e
		}
		lg[query] = QueryLog{ByLocation: merged}
	} else {
		lg[query] = QueryLog{Flat: &Entry{
			LastExtractionDate:   date,
			LastPageExtracted:    lastPage,
			TotalOffersExtracted: total,
		}}
	}

	return writeAtomic(s.path(source), lg)
}

func writeAtomic(path string, lg Log) error {
	b, err := json.MarshalIndent(lg, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
