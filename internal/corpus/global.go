package corpus

import (
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"jobcorpus-engine/internal/dates"
	"jobcorpus-engine/internal/fingerprint"
)

// requiredColumns are synthesized as empty when an input file lacks them,
// so heterogeneous historical files never abort the merge.
var requiredColumns = []string{"job_title", "company", "location", "date_posted"}

// MergeGlobalCareer unions every source's consolidated files for one career
// into <career>_Merged.csv.
//
// Before deduplication each row's job_id is recomputed from canonicalized
// (title, company, location, normalized date): vendors format the same
// posting's date and location differently, so the ingest-time id alone
// would keep cross-source duplicates apart. The normalized date lands in a
// date_posted_norm column placed immediately after date_posted; downstream
// consumers rely on that position. Files merge in sorted filename order,
// first occurrence wins.
//
// The prior merged output is itself an input. Downstream collaborators
// enrich its rows in place (career_tag, location_final, ...), and its
// capitalized filename sorts ahead of the lowercase per-source files, so
// those enriched rows win the dedup and a re-merge never loses them.
func MergeGlobalCareer(lay Layout, career string) (string, int, error) {
	dir := lay.GlobalCareerDir(career)
	if _, err := os.Stat(dir); err != nil {
		log.Printf("[corpus] no global folder for career %q (%s), skipping", career, dir)
		return "", 0, nil
	}

	outPath := lay.GlobalMergedFile(career)
	paths, err := listGlobalInputs(dir)
	if err != nil {
		return "", 0, err
	}
	if len(paths) == 0 {
		log.Printf("[corpus] nothing to merge for career %q in %s", career, dir)
		return "", 0, nil
	}

	var out *Table
	seen := map[string]bool{}

	for _, p := range paths {
		t, err := ReadTable(p)
		if err != nil {
			log.Printf("[corpus] skipping unreadable file %s: %v", p, err)
			continue
		}
		for _, col := range requiredColumns {
			t.EnsureColumn(col)
		}
		t.InsertColumnAfter("date_posted_norm", "date_posted")

		for _, row := range t.Rows {
			norm, ok := dates.Normalize(row["date_posted"])
			if !ok {
				norm = ""
			}
			row["date_posted_norm"] = norm
			row["job_id"] = fingerprint.Cross(
				row["job_title"], row["company"], row["location"], norm)
		}

		if out == nil {
			out = &Table{Columns: append([]string(nil), t.Columns...)}
			out.EnsureColumn("job_id")
		}
		for _, col := range t.Columns {
			out.EnsureColumn(col)
		}
		for _, row := range t.Rows {
			if seen[row["job_id"]] {
				continue
			}
			seen[row["job_id"]] = true
			full := make(map[string]string, len(out.Columns))
			for _, col := range out.Columns {
				full[col] = row[col]
			}
			out.Rows = append(out.Rows, full)
		}
	}

	if out == nil {
		log.Printf("[corpus] no readable inputs for career %q", career)
		return "", 0, nil
	}

	if err := out.Write(outPath); err != nil {
		return "", 0, err
	}
	log.Printf("[corpus] global merge %q: %d rows -> %s", career, len(out.Rows), outPath)
	return outPath, len(out.Rows), nil
}

// listGlobalInputs returns the career folder's mergeable files in sorted
// order, the prior merged output included.
func listGlobalInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".csv") && !strings.HasSuffix(name, "__merged") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	slices.Sort(paths)
	return paths, nil
}
