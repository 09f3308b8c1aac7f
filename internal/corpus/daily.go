package corpus

import (
	"errors"
	"log"
	"os"

	"jobcorpus-engine/internal/domain"
)

// WriteDaily merges one run's records into the day's per-query file and
// reports the resulting row count.
//
// Ordering is pinned: rows already in the file keep their positions and
// original order, new records append in extraction order. On a job_id
// collision with the existing file the new record's cells overwrite the old
// row in place (a same-day re-run is assumed to carry fresher data); a
// repeated job_id within the new batch keeps the first occurrence.
//
// Zero records is a no-op: the file is neither created nor touched, so an
// empty run can never clobber a prior successful one.
func WriteDaily(path string, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	t := &Table{Columns: append([]string(nil), domain.Columns...)}
	if existing, err := ReadTable(path); err == nil {
		t = existing
		for _, col := range domain.Columns {
			t.EnsureColumn(col)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("[corpus] unreadable daily file %s, rewriting: %v", path, err)
	}

	index := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		index[row["job_id"]] = i
	}
	existingRows := len(t.Rows)

	for _, rec := range records {
		cells := rec.Row()
		i, seen := index[rec.JobID]
		switch {
		case !seen:
			row := make(map[string]string, len(t.Columns))
			for _, col := range t.Columns {
				row[col] = cells[col]
			}
			index[rec.JobID] = len(t.Rows)
			t.Rows = append(t.Rows, row)
		case i < existingRows:
			// fresh run wins over the prior same-day file
			for col, v := range cells {
				t.Rows[i][col] = v
			}
		default:
			// duplicate within this run: first occurrence stands
		}
	}

	if err := t.Write(path); err != nil {
		return 0, err
	}
	return len(t.Rows), nil
}
