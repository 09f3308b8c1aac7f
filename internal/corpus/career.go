package corpus

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
)

// mergeFiles unions tables in the given order, deduplicating by idColumn
// with first occurrence winning. Unreadable files are skipped with a
// warning so one corrupt query file never hides the rest of the corpus.
func mergeFiles(paths []string, idColumn string) (*Table, int) {
	var out *Table
	seen := map[string]bool{}
	skipped := 0

	for _, p := range paths {
		t, err := ReadTable(p)
		if err != nil {
			log.Printf("[corpus] skipping unreadable file %s: %v", p, err)
			skipped++
			continue
		}
		if out == nil {
			out = &Table{Columns: append([]string(nil), t.Columns...)}
		}
		for _, col := range t.Columns {
			out.EnsureColumn(col)
		}
		for _, row := range t.Rows {
			id := row[idColumn]
			if seen[id] {
				continue
			}
			seen[id] = true
			full := make(map[string]string, len(out.Columns))
			for _, col := range out.Columns {
				full[col] = row[col]
			}
			out.Rows = append(out.Rows, full)
		}
	}
	return out, skipped
}

// MergeCareerDay unions all of one day's per-query files for a
// (source, career) into the consolidated corpus_unido file. Files merge in
// lexical filename order; first occurrence of a job_id wins.
func MergeCareerDay(lay Layout, source, career, date string) (string, int, error) {
	paths, err := filepath.Glob(lay.DailyPattern(source, career, date))
	if err != nil {
		return "", 0, err
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		log.Printf("[corpus] no daily files to merge in %s", lay.CareerDir(source, career))
		return "", 0, nil
	}

	merged, _ := mergeFiles(paths, "job_id")
	if merged == nil {
		return "", 0, fmt.Errorf("no readable daily files in %s", lay.CareerDir(source, career))
	}

	out := lay.MergedFile(source, career, date)
	if err := merged.Write(out); err != nil {
		return "", 0, err
	}
	log.Printf("[corpus] consolidated %s (%d rows)", out, len(merged.Rows))
	return out, len(merged.Rows), nil
}

// AccumulateCareer unions every consolidated daily for a (source, career)
// into the accumulated corpus, first occurrence winning across days.
func AccumulateCareer(lay Layout, source, career string) (string, int, error) {
	paths, err := filepath.Glob(lay.MergedPattern(source, career))
	if err != nil {
		return "", 0, err
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		log.Printf("[corpus] no consolidated dailies in %s", lay.MergedDir(source, career))
		return "", 0, nil
	}

	merged, _ := mergeFiles(paths, "job_id")
	if merged == nil {
		return "", 0, fmt.Errorf("no readable consolidated files in %s", lay.MergedDir(source, career))
	}

	out := lay.AccumulatedFile(source, career)
	if err := merged.Write(out); err != nil {
		return "", 0, err
	}
	log.Printf("[corpus] accumulated %s (%d rows)", out, len(merged.Rows))
	return out, len(merged.Rows), nil
}

// CopyDailyToGlobal copies a day's consolidated file into the cross-source
// tree, keeping the source filename so the global merger can order inputs
// reproducibly. Missing input is reported, not fatal.
func CopyDailyToGlobal(lay Layout, source, career, date string) error {
	src := lay.MergedFile(source, career, date)
	in, err := os.Open(src)
	if err != nil {
		log.Printf("[corpus] no consolidated daily to copy: %s", src)
		return nil
	}
	defer in.Close()

	dstDir := lay.GlobalCareerDir(career)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dstDir, filepath.Base(src))

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		return err
	}
	log.Printf("[corpus] copied to global tree: %s", dst)
	return nil
}
